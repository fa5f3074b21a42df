package main

import (
	"io"
	"os"

	"github.com/danmuck/hekit/internal/components"
	"github.com/danmuck/hekit/internal/config"
	"github.com/danmuck/hekit/internal/install"
	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	out        io.Writer
	color      bool
}

// newFactory is replaced in tests.
var newFactory = func() install.ComponentFactory {
	return components.NewFactory(nil)
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, color: isTerminal(out)}

	root := &cobra.Command{
		Use:   "hekit",
		Short: "Build and install components described by a recipe",
		Long: `hekit drives every component of a recipe through its
setup, fetch, build and install stages. Progress of each stage is recorded
per component instance under the configured repo location.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "hekit config file")

	root.AddCommand(
		newInstallCmd(opts, "install", "Fetch, build and install the components of a recipe", pipeline.StageInstall, true),
		newInstallCmd(opts, "build", "Fetch and build the components of a recipe", pipeline.StageBuild, false),
		newInstallCmd(opts, "fetch", "Fetch the components of a recipe", pipeline.StageFetch, false),
		newListCmd(opts),
	)
	return root
}

// withConfig loads and validates the config before running fn.
func withConfig(path string, fn func(cfg config.Config) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log.Debug().
		Str("config", cfg.ConfigFilename).
		Str("repo_location", cfg.RepoLocation).
		Int("workers", cfg.Workers).
		Msg("hekit config loaded")
	return fn(cfg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
