package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyzimmer/imgfetch/pkg/cache"
	"github.com/tinyzimmer/imgfetch/pkg/images"
	"github.com/tinyzimmer/imgfetch/pkg/input"
	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/runtime"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// NewRootCommand returns the imgfetch command with all of its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imgfetch [IMAGE...]",
		Short: "imgfetch saves container images to local archive files",
		Long: `
The imgfetch command makes sure every given container image exists as an archive file
in the output directory. Archives that already exist are skipped unless --redownload is
given, so the same list can be run again to fetch only what is missing.
`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		RunE:              fetch,
	}

	flags := rootCmd.Flags()
	flags.StringSliceP("images", "i", nil, "The images to save, may be repeated or comma separated")
	flags.StringP("file", "f", "", "A file containing the images to save, one per line")
	flags.StringP("path", "p", types.DefaultPath, "The directory to save the images to")
	flags.StringP("extension", "e", types.DefaultExtension, "The extension to use for saved images")
	flags.BoolP("redownload", "r", false, "Redownload any images that were previously downloaded")
	flags.String("runtime", string(types.RuntimeDocker), "The container runtime to use (docker, engine, crane)")
	flags.String("runtime-bin", types.DefaultRuntimeBin, "The executable used by the docker runtime, e.g. podman")
	flags.String("pull-policy", string(types.PullPolicyIfNotPresent), "When to pull images (IfNotPresent, Always, Never)")
	flags.String("platform", "", "The platform to pull images for, e.g. linux/arm64")
	flags.Duration("inspect-timeout", types.DefaultInspectTimeout, "How long to wait for the runtime to report whether it has an image")
	flags.String("report", "", "Write a YAML report of the run to this file")

	rootCmd.RegisterFlagCompletionFunc("runtime", completeStringOpts(runtimeKindStrings()))
	rootCmd.RegisterFlagCompletionFunc("pull-policy", completeStringOpts(pullPolicyStrings()))

	persistent := rootCmd.PersistentFlags()
	persistent.String("config", "", "Path to a config file, defaults to imgfetch.yaml in the current or ~/.imgfetch directory")
	persistent.String("cache-dir", cache.DefaultCache.CacheDir(), "Override the default location for images kept by the crane runtime")
	persistent.BoolVarP(&log.Verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newCacheCommand(), newVersionCommand())
	return rootCmd
}

// GetRootCommand returns the root imgfetch command
func GetRootCommand() *cobra.Command { return NewRootCommand() }

func fetch(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	refs, err := input.Resolve(conf.Images, conf.File)
	if err != nil {
		return err
	}
	log.Debugf("Resolved %d image(s)\n", len(refs))

	if err := os.MkdirAll(conf.Path, 0755); err != nil {
		return err
	}

	rt, err := runtime.New(conf)
	if err != nil {
		return err
	}
	if closer, ok := rt.(io.Closer); ok {
		defer closer.Close()
	}
	log.Debugf("Using the %s runtime\n", rt.Name())

	report := images.Run(cmd.Context(), images.NewMaterializer(rt, conf.PullPolicy, conf.InspectTimeout), &images.BatchOptions{
		Path:       conf.Path,
		Extension:  conf.Extension,
		Redownload: conf.Redownload,
	}, refs)
	report.LogSummary()

	if conf.Report != "" {
		return report.WriteYAML(conf.Report)
	}
	return nil
}
