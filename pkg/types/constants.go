package types

import "time"

// DefaultTag is appended to image references that do not carry a tag.
const DefaultTag string = "latest"

// Configuration defaults
const (
	DefaultExtension      = "docker"
	DefaultPath           = "."
	DefaultRuntimeBin     = "docker"
	DefaultInspectTimeout = 3 * time.Second
)
