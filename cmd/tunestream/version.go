package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := app.GetVersionInfo()
			fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
		},
	}
}
