package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PullPolicy decides when the runtime is asked to pull an image.
type PullPolicy string

const (
	// PullPolicyIfNotPresent pulls only when the runtime does not have the image.
	PullPolicyIfNotPresent PullPolicy = "IfNotPresent"
	// PullPolicyAlways pulls every image without probing the runtime first.
	PullPolicyAlways PullPolicy = "Always"
	// PullPolicyNever never pulls. Images missing from the runtime are reported.
	PullPolicyNever PullPolicy = "Never"
)

// PullPolicies are the accepted pull policies.
var PullPolicies = []PullPolicy{PullPolicyIfNotPresent, PullPolicyAlways, PullPolicyNever}

// RuntimeKind selects the ContainerRuntime implementation.
type RuntimeKind string

const (
	// RuntimeDocker shells out to a docker compatible CLI.
	RuntimeDocker RuntimeKind = "docker"
	// RuntimeEngine talks to the docker engine API directly.
	RuntimeEngine RuntimeKind = "engine"
	// RuntimeCrane talks to registries directly and keeps a local OCI layout store.
	RuntimeCrane RuntimeKind = "crane"
)

// RuntimeKinds are the accepted runtime kinds.
var RuntimeKinds = []RuntimeKind{RuntimeDocker, RuntimeEngine, RuntimeCrane}

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the fully resolved configuration for a batch run. It is populated
// from flags, environment and an optional config file.
type Config struct {
	// Raw image references supplied directly
	Images []string `mapstructure:"images"`
	// Path to a newline-delimited list of image references
	File string `mapstructure:"file"`
	// Directory the archives are written to
	Path string `mapstructure:"path"`
	// Filename suffix for the archives
	Extension string `mapstructure:"extension"`
	// Replace archives that already exist
	Redownload bool `mapstructure:"redownload"`
	// The runtime implementation to use
	Runtime RuntimeKind `mapstructure:"runtime"`
	// The executable used by the docker runtime
	RuntimeBin string `mapstructure:"runtime_bin"`
	// When to pull images
	PullPolicy PullPolicy `mapstructure:"pull_policy"`
	// Optional os/arch[/variant] to pull
	Platform string `mapstructure:"platform"`
	// Bound on the local availability probe
	InspectTimeout time.Duration `mapstructure:"inspect_timeout"`
	// Optional path to write a YAML report of the run to
	Report string `mapstructure:"report"`
	// Directory for the crane runtime's local image store
	CacheDir string `mapstructure:"cache_dir"`
	// Enable debug logging
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults fills in zero values with their defaults.
func (c *Config) SetDefaults() *Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Runtime == "" {
		c.Runtime = RuntimeDocker
	}
	if c.RuntimeBin == "" {
		c.RuntimeBin = DefaultRuntimeBin
	}
	if c.PullPolicy == "" {
		c.PullPolicy = PullPolicyIfNotPresent
	}
	if c.InspectTimeout == 0 {
		c.InspectTimeout = DefaultInspectTimeout
	}
	return c
}

// Validate checks the values that can not be corrected by defaults. The input
// source is validated separately when it is resolved.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Extension) == "" {
		return fmt.Errorf("%w: extension must not be empty", ErrInvalidConfig)
	}
	if !isRuntimeKind(c.Runtime) {
		return fmt.Errorf("%w: unknown runtime %q, must be one of %v", ErrInvalidConfig, c.Runtime, RuntimeKinds)
	}
	if !isPullPolicy(c.PullPolicy) {
		return fmt.Errorf("%w: unknown pull policy %q, must be one of %v", ErrInvalidConfig, c.PullPolicy, PullPolicies)
	}
	if c.InspectTimeout <= 0 {
		return fmt.Errorf("%w: inspect timeout must be positive, got %s", ErrInvalidConfig, c.InspectTimeout)
	}
	if c.Runtime == RuntimeCrane && c.CacheDir == "" {
		return fmt.Errorf("%w: the crane runtime requires a cache directory", ErrInvalidConfig)
	}
	return nil
}

func isRuntimeKind(k RuntimeKind) bool {
	for _, known := range RuntimeKinds {
		if k == known {
			return true
		}
	}
	return false
}

func isPullPolicy(p PullPolicy) bool {
	for _, known := range PullPolicies {
		if p == known {
			return true
		}
	}
	return false
}
