package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/danmuck/hekit/internal/components"
	"github.com/danmuck/hekit/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List component instances and their recorded stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(root.configPath, func(cfg config.Config) error {
				installed, err := components.ListInstalled(cfg.RepoLocation)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(root.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COMPONENT\tINSTANCE\tFETCH\tBUILD\tINSTALL")
				for _, item := range installed {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						item.Name,
						item.Instance,
						orDash(item.Status.Fetch),
						orDash(item.Status.Build),
						orDash(item.Status.Install),
					)
				}
				return tw.Flush()
			})
		},
	}
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
