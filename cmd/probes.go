package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"frameworks/dbdoctor/pkg/probe"
	"frameworks/dbdoctor/pkg/report"
)

type probeInfo struct {
	Order           int    `json:"order"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	NeedsConnection bool   `json:"needs_connection"`
	Gates           bool   `json:"gates"`
	Optional        bool   `json:"optional,omitempty"`
}

func newProbesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probes",
		Short: "List the probes in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := probe.DefaultSettings()
			settings.TCPPrecheck = true

			var infos []probeInfo
			for i, p := range probe.Standard(settings) {
				infos = append(infos, probeInfo{
					Order:           i + 1,
					Name:            p.Name(),
					Description:     p.Description(),
					NeedsConnection: p.NeedsConnection(),
					Gates:           p.Gates(),
					Optional:        p.Name() == probe.ReachabilityName,
				})
			}

			if opts.v.GetString("output") == outputJSON {
				return report.RenderJSON(cmd.OutOrStdout(), infos)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Probes (execution order):")
			for _, info := range infos {
				conn := "no connection"
				if info.NeedsConnection {
					conn = "connection"
				}
				note := ""
				if info.Gates {
					note = ", gates later probes"
				}
				if info.Optional {
					note += ", only with --tcp-precheck"
				}
				fmt.Fprintf(out, " %d. %-18s %s (%s%s)\n", info.Order, info.Name+":", info.Description, conn, note)
			}
			return nil
		},
	}
}
