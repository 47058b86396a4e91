package runtime

import (
	"fmt"

	"github.com/tinyzimmer/imgfetch/pkg/cache"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// New returns the ContainerRuntime selected by the given configuration.
func New(cfg *types.Config) (types.ContainerRuntime, error) {
	switch cfg.Runtime {
	case types.RuntimeDocker, "":
		return NewCLI(cfg.RuntimeBin, cfg.Platform), nil
	case types.RuntimeEngine:
		engine, err := NewEngine(cfg.Platform)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case types.RuntimeCrane:
		crane, err := NewCrane(cache.New(cfg.CacheDir), cfg.Platform)
		if err != nil {
			return nil, err
		}
		return crane, nil
	default:
		return nil, fmt.Errorf("unknown runtime %q", cfg.Runtime)
	}
}
