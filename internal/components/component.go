package components

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/danmuck/hekit/internal/recipe"
	"github.com/danmuck/hekit/internal/tools"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// codeInternal is reported when a stage fails before any command ran.
const codeInternal = 1

var errNotRepository = errors.New("components: fetch dir exists but is not a git repository")

// Component runs the recipe commands of one component instance.
type Component struct {
	spec   recipe.ComponentSpec
	dirs   recipe.Dirs
	info   InfoFile
	runner tools.CommandRunner
	log    zerolog.Logger
}

var _ pipeline.Component = (*Component)(nil)

// NewComponent lays the instance out under repoLocation and expands the
// directory placeholders of spec.
func NewComponent(spec recipe.ComponentSpec, repoLocation string, runner tools.CommandRunner) *Component {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	dirs := recipe.NewDirs(repoLocation, spec.Name, spec.Instance)
	return &Component{
		spec:   spec.WithDirs(dirs),
		dirs:   dirs,
		info:   NewInfoFile(dirs.Root),
		runner: runner,
		log: log.With().
			Str("component", spec.Name).
			Str("instance", spec.Instance).
			Logger(),
	}
}

func (c *Component) ComponentName() string { return c.spec.Name }
func (c *Component) InstanceName() string  { return c.spec.Instance }
func (c *Component) Skip() bool            { return c.spec.Skip }

func (c *Component) Dirs() recipe.Dirs { return c.dirs }

// Setup creates the instance directories and its stage info file.
func (c *Component) Setup() pipeline.Outcome {
	for _, dir := range []string{c.dirs.Root, c.dirs.Fetch, c.dirs.Build, c.dirs.Install} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.log.Error().Err(err).Str("dir", dir).Msg("components.Setup mkdir failed")
			return pipeline.Failure(codeInternal)
		}
	}
	if err := c.info.Ensure(); err != nil {
		c.log.Error().Err(err).Str("path", c.info.Path()).Msg("components.Setup info file failed")
		return pipeline.Failure(codeInternal)
	}
	return pipeline.Success()
}

// Fetch clones or updates the source repository into the fetch dir.
func (c *Component) Fetch() pipeline.Outcome {
	return c.runRecorded(pipeline.StageFetch, c.fetchCommands)
}

// Build runs pre_build, build and post_build in the build dir.
func (c *Component) Build() pipeline.Outcome {
	return c.runRecorded(pipeline.StageBuild, func() ([]tools.Command, error) {
		return c.shellCommands(c.spec.PreBuild, c.spec.Build, c.spec.PostBuild), nil
	})
}

// Install runs the install command in the build dir.
func (c *Component) Install() pipeline.Outcome {
	return c.runRecorded(pipeline.StageInstall, func() ([]tools.Command, error) {
		return c.shellCommands(c.spec.Install), nil
	})
}

// ResetStageInfoFile clears recorded progress of stage and later stages.
func (c *Component) ResetStageInfoFile(stage pipeline.Stage) error {
	if !stage.Valid() {
		return pipeline.ErrUnknownStage
	}
	c.log.Debug().Str("stage", stage.String()).Msg("components.ResetStageInfoFile")
	return c.info.Reset(stage)
}

func (c *Component) runRecorded(stage pipeline.Stage, commands func() ([]tools.Command, error)) pipeline.Outcome {
	status, err := c.info.Load()
	if err == nil && status.Done(stage) {
		c.log.Info().Str("stage", stage.String()).Msg("components stage already done")
		return pipeline.Success()
	}

	cmds, err := commands()
	if err != nil {
		c.log.Error().Err(err).Str("stage", stage.String()).Msg("components stage prepare failed")
		return pipeline.Failure(codeInternal)
	}
	for _, cmd := range cmds {
		if out := c.run(stage, cmd); !out.Succeeded {
			return out
		}
	}

	if err := c.info.Record(stage); err != nil {
		c.log.Error().Err(err).Str("stage", stage.String()).Msg("components stage record failed")
		return pipeline.Failure(codeInternal)
	}
	return pipeline.Success()
}

func (c *Component) run(stage pipeline.Stage, cmd tools.Command) pipeline.Outcome {
	c.log.Info().Str("stage", stage.String()).Str("cmd", cmd.String()).Msg("components exec")
	stdout, stderr, exitCode, err := c.runner.Run(cmd)
	if err == nil {
		c.log.Trace().Str("stage", stage.String()).Bytes("stdout", stdout).Msg("components exec done")
		return pipeline.Success()
	}
	code := int(exitCode)
	if code == 0 {
		code = codeInternal
	}
	c.log.Error().
		Err(err).
		Str("stage", stage.String()).
		Str("cmd", cmd.String()).
		Int("exit", code).
		Str("stderr", strings.TrimSpace(string(stderr))).
		Msg("components exec failed")
	return pipeline.Failure(code)
}

func (c *Component) shellCommands(lines ...string) []tools.Command {
	out := make([]tools.Command, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, tools.Shell(line, c.dirs.Build, c.spec.Env))
	}
	return out
}

func (c *Component) fetchCommands() ([]tools.Command, error) {
	repo := strings.TrimSpace(c.spec.Fetch)
	if repo == "" {
		return nil, nil
	}
	dest := c.dirs.Fetch
	ref := strings.TrimSpace(c.spec.FetchRef)
	git := func(args ...string) tools.Command {
		return tools.Command{Name: "git", Args: args, Env: c.spec.Env}
	}

	cloned, err := isGitRepo(dest)
	if err != nil {
		return nil, err
	}
	if !cloned {
		empty, err := isEmptyDir(dest)
		if err != nil {
			return nil, err
		}
		if !empty {
			return nil, errNotRepository
		}
		args := []string{"clone"}
		if ref != "" {
			args = append(args, "--branch", ref, "--single-branch")
		}
		args = append(args, repo, dest)
		return []tools.Command{git(args...)}, nil
	}

	if ref == "" {
		return []tools.Command{git("-C", dest, "pull", "--ff-only")}, nil
	}
	return []tools.Command{
		git("-C", dest, "fetch", "origin", ref),
		git("-C", dest, "checkout", "FETCH_HEAD"),
	}, nil
}

func isGitRepo(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
