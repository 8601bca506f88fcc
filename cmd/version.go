package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"frameworks/dbdoctor/pkg/report"
	"frameworks/dbdoctor/pkg/version"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if opts.v.GetString("output") == outputJSON {
				return report.RenderJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Name, info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), " - git: %s\n", version.GetShortCommit())
			fmt.Fprintf(cmd.OutOrStdout(), " - built: %s\n", info.BuildDate)
			return nil
		},
	}
}
