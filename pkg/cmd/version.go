package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyzimmer/imgfetch/pkg/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information for imgfetch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "imgfetch Version:", version.Version)
			fmt.Fprintln(cmd.OutOrStdout(), "imgfetch GitCommit:", version.GitCommit)
		},
	}
}
