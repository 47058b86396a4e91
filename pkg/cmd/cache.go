package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tinyzimmer/imgfetch/pkg/cache"
)

func newCacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage images kept by the crane runtime",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Wipe the local image cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("cache-dir")
			if err != nil {
				return err
			}
			return cache.New(dir).Clean()
		},
	})
	return cacheCmd
}
