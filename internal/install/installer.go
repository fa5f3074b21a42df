package install

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/hekit/internal/config"
	"github.com/danmuck/hekit/internal/observability"
	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidArgs      = errors.New("install: invalid arguments")
	ErrNoFactory        = errors.New("install: component factory is required")
	ErrComponentsFailed = errors.New("install: one or more components failed")
)

// codeResetFailed is the outcome code recorded when force could not
// discard persisted progress.
const codeResetFailed = 1

// ComponentFactory produces the ordered components described by a recipe.
type ComponentFactory interface {
	ComponentsToBuildFrom(recipeFile string, repoLocation string, recipeArgs map[string]string) ([]pipeline.Component, error)
}

// Args is one install invocation.
type Args struct {
	RecipeFile string
	Config     config.Config
	RecipeArgs map[string]string
	UpToStage  pipeline.Stage
	Force      bool
}

// Validate enforces fields required before the factory is called.
func (a Args) Validate() error {
	if strings.TrimSpace(a.RecipeFile) == "" {
		return fmt.Errorf("%w: missing recipe file", ErrInvalidArgs)
	}
	if !a.UpToStage.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArgs, pipeline.ErrUnknownStage, a.UpToStage)
	}
	return nil
}

// InstallerConfig wires the orchestrator collaborators.
type InstallerConfig struct {
	Factory ComponentFactory
	// Runner defaults to pipeline.ChainRun.
	Runner pipeline.Runner
	// Workers bounds concurrent component pipelines; values below 2 run
	// components one at a time in recipe order.
	Workers int
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Installer drives every component of a recipe through its stage pipeline.
type Installer struct {
	factory ComponentFactory
	runner  pipeline.Runner
	workers int
	metrics *observability.Metrics
}

func NewInstaller(cfg InstallerConfig) (*Installer, error) {
	if cfg.Factory == nil {
		return nil, ErrNoFactory
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.ChainRun
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Installer{
		factory: cfg.Factory,
		runner:  runner,
		workers: workers,
		metrics: cfg.Metrics,
	}, nil
}

// InstallComponents calls the factory exactly once, then runs the planned
// stages of every unskipped component. A stage failure is recorded in the
// report and never stops other components; only invalid args and factory
// errors are returned as errors.
func (i *Installer) InstallComponents(args Args) (Report, error) {
	if err := args.Validate(); err != nil {
		return Report{}, err
	}

	comps, err := i.factory.ComponentsToBuildFrom(args.RecipeFile, args.Config.RepoLocation, args.RecipeArgs)
	if err != nil {
		return Report{}, err
	}
	log.Info().
		Str("recipe", args.RecipeFile).
		Str("upto_stage", args.UpToStage.String()).
		Bool("force", args.Force).
		Int("components", len(comps)).
		Msg("install.InstallComponents start")

	report := Report{UpToStage: args.UpToStage, Results: make([]Result, len(comps))}
	plan := pipeline.Plan(args.UpToStage)
	if i.metrics != nil {
		plan = i.metrics.Instrument(plan)
	}

	if i.workers < 2 {
		for idx, c := range comps {
			report.Results[idx] = i.installOne(c, plan, args)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(i.workers)
		for idx, c := range comps {
			g.Go(func() error {
				report.Results[idx] = i.installOne(c, plan, args)
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Info().
		Str("status", string(report.Status())).
		Int("executed", report.Executed()).
		Int("skipped", report.Skipped()).
		Int("failed", len(report.Failures())).
		Msg("install.InstallComponents complete")
	return report, nil
}

func (i *Installer) installOne(c pipeline.Component, plan pipeline.Planner, args Args) Result {
	res := i.runComponent(c, plan, args)
	if i.metrics != nil {
		i.metrics.RecordComponent(res.label())
	}
	return res
}

func (i *Installer) runComponent(c pipeline.Component, plan pipeline.Planner, args Args) Result {
	res := Result{ComponentName: c.ComponentName(), InstanceName: c.InstanceName()}
	logger := log.With().Str("component", res.ComponentName).Str("instance", res.InstanceName).Logger()

	if c.Skip() {
		logger.Info().Msg("install skip")
		res.Skipped = true
		return res
	}

	if args.Force {
		if err := c.ResetStageInfoFile(args.UpToStage); err != nil {
			logger.Error().Err(err).Str("stage", args.UpToStage.String()).Msg("install reset failed")
			res.Stage = args.UpToStage
			res.Outcome = pipeline.Failure(codeResetFailed)
			res.Err = err
			return res
		}
	}

	chain := i.runner(plan(c))
	res.Stage = chain.Stage
	res.Outcome = chain.Outcome

	event := logger.Info()
	if !res.Outcome.Succeeded {
		event = logger.Error()
	}
	event.
		Str("stage", res.Stage.String()).
		Bool("succeeded", res.Outcome.Succeeded).
		Int("code", res.Outcome.Code).
		Msg("install component done")
	return res
}
