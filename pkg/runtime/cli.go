package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// waitDelay bounds how long a killed command may keep its output pipes open.
const waitDelay = time.Second

// NewCLI returns a runtime that executes a docker compatible binary, such as
// docker or podman, for every operation.
func NewCLI(bin, platform string) *CLI {
	if bin == "" {
		bin = types.DefaultRuntimeBin
	}
	return &CLI{bin: bin, platform: platform}
}

// CLI is a ContainerRuntime backed by external commands.
type CLI struct {
	bin, platform string
}

var _ types.ContainerRuntime = &CLI{}

// Name implements ContainerRuntime.
func (c *CLI) Name() string { return filepath.Base(c.bin) }

// Inspect implements ContainerRuntime. The image is present when the inspect
// command exits zero.
func (c *CLI) Inspect(ctx context.Context, image string) error {
	cmd := c.command(ctx, "inspect", image, "--format=exists")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s inspect %s: %w", c.Name(), image, ctxErr)
		}
		return fmt.Errorf("%s inspect %s: %w: %s", c.Name(), image, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Pull implements ContainerRuntime.
func (c *CLI) Pull(ctx context.Context, image string) error {
	args := []string{"pull"}
	if c.platform != "" {
		args = append(args, "--platform", c.platform)
	}
	return c.run(ctx, append(args, image)...)
}

// Save implements ContainerRuntime.
func (c *CLI) Save(ctx context.Context, image, dest string) error {
	return c.run(ctx, "save", "-o", dest, image)
}

func (c *CLI) command(ctx context.Context, args ...string) *exec.Cmd {
	log.Debug("Executing:", c.bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.WaitDelay = waitDelay
	return cmd
}

// run executes the runtime binary with its combined output tailed to the log.
func (c *CLI) run(ctx context.Context, args ...string) error {
	cmd := c.command(ctx, args...)
	out := log.TailWriter(c.Name())
	cmd.Stdout = out
	cmd.Stderr = out
	err := cmd.Run()
	out.Close()
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.Name(), args[0], err)
	}
	return nil
}
