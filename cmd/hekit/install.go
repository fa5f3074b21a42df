package main

import (
	"fmt"
	"io"

	"github.com/danmuck/hekit/internal/config"
	"github.com/danmuck/hekit/internal/install"
	"github.com/danmuck/hekit/internal/observability"
	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/danmuck/hekit/internal/recipe"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

type installOptions struct {
	recipeArg string
	uptoStage string
	force     bool
	textfile  string
}

func newInstallCmd(root *rootOptions, use string, short string, upTo pipeline.Stage, stageFlag bool) *cobra.Command {
	opts := &installOptions{uptoStage: upTo.String()}

	cmd := &cobra.Command{
		Use:   use + " RECIPE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipeArgs := map[string]string{}
			if cmd.Flags().Changed("recipe_arg") {
				parsed, err := recipe.ParseArgs(opts.recipeArg)
				if err != nil {
					return err
				}
				recipeArgs = parsed
			}
			stage, err := pipeline.ParseStage(opts.uptoStage)
			if err != nil {
				return err
			}

			return withConfig(root.configPath, func(cfg config.Config) error {
				var metrics *observability.Metrics
				if opts.textfile != "" {
					metrics = observability.NewMetrics()
				}
				inst, err := install.NewInstaller(install.InstallerConfig{
					Factory: newFactory(),
					Workers: cfg.Workers,
					Metrics: metrics,
				})
				if err != nil {
					return err
				}
				report, err := inst.InstallComponents(install.Args{
					RecipeFile: args[0],
					Config:     cfg,
					RecipeArgs: recipeArgs,
					UpToStage:  stage,
					Force:      opts.force,
				})
				if err != nil {
					return err
				}
				printReport(root.out, report, root.color)
				if metrics != nil {
					if err := metrics.WriteTextfile(opts.textfile); err != nil {
						return fmt.Errorf("write metrics: %w", err)
					}
				}
				return report.Err()
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.recipeArg, "recipe_arg", "", `recipe arguments as "key1=value1, key2=value2"`)
	flags.BoolVar(&opts.force, "force", false, "discard recorded progress and rerun from the requested stage")
	flags.StringVar(&opts.textfile, "metrics-textfile", "", "write stage metrics in Prometheus text format to this file")
	if stageFlag {
		flags.StringVar(&opts.uptoStage, "upto-stage", upTo.String(), "last stage to run (setup, fetch, build, install)")
	}
	return cmd
}

func printReport(w io.Writer, r install.Report, useColor bool) {
	paint := func(c color.Color, s string) string {
		if !useColor {
			return s
		}
		return c.Sprint(s)
	}

	for _, res := range r.Results {
		id := res.ComponentName + "/" + res.InstanceName
		switch {
		case res.Skipped:
			fmt.Fprintf(w, "%-5s %s\n", paint(color.Gray, "SKIP"), id)
		case res.Failed():
			fmt.Fprintf(w, "%-5s %s at %s (code %d)\n", paint(color.Red, "FAIL"), id, res.Stage, res.Outcome.Code)
		default:
			fmt.Fprintf(w, "%-5s %s up to %s\n", paint(color.Green, "OK"), id, res.Stage)
		}
	}

	summary := fmt.Sprintf("%s: %d executed, %d skipped, %d failed",
		r.Status(), r.Executed(), r.Skipped(), len(r.Failures()))
	switch r.Status() {
	case install.StatusFailed:
		summary = paint(color.Red, summary)
	case install.StatusSucceeded:
		summary = paint(color.Green, summary)
	}
	fmt.Fprintln(w, summary)
}
