package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/hekit/internal/components"
	"github.com/danmuck/hekit/internal/config"
	"github.com/danmuck/hekit/internal/install"
	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/danmuck/hekit/internal/recipe"
	"github.com/danmuck/hekit/internal/testutil/testlog"
)

type workspace struct {
	dir    string
	config string
	repo   string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:    dir,
		config: filepath.Join(dir, "default.config"),
		repo:   filepath.Join(dir, "components"),
	}
	content := "repo_location = \"" + ws.repo + "\"\n"
	if err := os.WriteFile(ws.config, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return ws
}

func (ws workspace) recipe(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(ws.dir, "recipe.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type recordingFactory struct {
	calls int
}

func (f *recordingFactory) ComponentsToBuildFrom(string, string, map[string]string) ([]pipeline.Component, error) {
	f.calls++
	return nil, nil
}

func useFactory(t *testing.T, f install.ComponentFactory) {
	t.Helper()
	prev := newFactory
	newFactory = func() install.ComponentFactory { return f }
	t.Cleanup(func() { newFactory = prev })
}

func TestMalformedRecipeArgFailsBeforeConfig(t *testing.T) {
	testlog.Start(t)

	factory := &recordingFactory{}
	useFactory(t, factory)

	missing := filepath.Join(t.TempDir(), "missing.config")
	_, err := execute(t, "install", "recipe.toml", "--config", missing, "--recipe_arg", "key1=value1, key3")
	if !errors.Is(err, recipe.ErrRecipeFormat) {
		t.Fatalf("expected recipe format error, got %v", err)
	}
	if factory.calls != 0 {
		t.Fatalf("factory must not be called")
	}
}

func TestInstallRejectsUnknownStage(t *testing.T) {
	ws := newWorkspace(t)
	_, err := execute(t, "install", "recipe.toml", "--config", ws.config, "--upto-stage", "deploy")
	if !errors.Is(err, pipeline.ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}

func TestInstallMissingConfig(t *testing.T) {
	_, err := execute(t, "install", "recipe.toml", "--config", filepath.Join(t.TempDir(), "nope.config"))
	if !errors.Is(err, config.ErrConfigFile) {
		t.Fatalf("expected ErrConfigFile, got %v", err)
	}
}

func TestInstallRunsRecipeEndToEnd(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "tool"
instance = "!version!"
build = "echo built > %init_build_dir%/artifact"
install = "cp %init_build_dir%/artifact %init_install_dir%/artifact"

[[component]]
name = "optional"
instance = "0.1"
skip = true
`)

	out, err := execute(t, "install", recipePath, "--config", ws.config, "--recipe_arg", "version=1.0")
	if err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(ws.repo, "tool", "1.0", "install", "artifact")); err != nil {
		t.Fatalf("artifact not installed: %v", err)
	}
	if !strings.Contains(out, "tool/1.0") || !strings.Contains(out, "optional/0.1") {
		t.Fatalf("unexpected report: %s", out)
	}
	if !strings.Contains(out, "succeeded: 1 executed, 1 skipped, 0 failed") {
		t.Fatalf("unexpected summary: %s", out)
	}

	listOut, err := execute(t, "list", "--config", ws.config)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(listOut, "tool") || !strings.Contains(listOut, "success") {
		t.Fatalf("unexpected list output: %s", listOut)
	}
	if strings.Contains(listOut, "optional") {
		t.Fatalf("skipped component must not be listed: %s", listOut)
	}
}

func TestInstallFailingComponentExitsWithError(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "broken"
instance = "1"
build = "exit 3"
install = "touch %init_install_dir%/never"

[[component]]
name = "fine"
instance = "1"
build = "true"
`)

	out, err := execute(t, "install", recipePath, "--config", ws.config)
	if !errors.Is(err, install.ErrComponentsFailed) {
		t.Fatalf("expected ErrComponentsFailed, got %v", err)
	}
	if !strings.Contains(out, "broken/1 at build (code 3)") {
		t.Fatalf("unexpected report: %s", out)
	}
	if _, err := os.Stat(filepath.Join(ws.repo, "broken", "1", "install", "never")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("install stage must not run after build failure")
	}
	status, err := components.NewInfoFile(filepath.Join(ws.repo, "fine", "1")).Load()
	if err != nil {
		t.Fatalf("load info: %v", err)
	}
	if !status.Done(pipeline.StageInstall) {
		t.Fatalf("independent component must still install: %+v", status)
	}
}

func TestBuildCommandStopsBeforeInstall(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "lib"
instance = "2"
build = "true"
install = "touch %init_install_dir%/installed"
`)

	if _, err := execute(t, "build", recipePath, "--config", ws.config); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws.repo, "lib", "2", "install", "installed")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("build must not run install")
	}

	if _, err := execute(t, "install", recipePath, "--config", ws.config); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws.repo, "lib", "2", "install", "installed")); err != nil {
		t.Fatalf("install must run: %v", err)
	}
}

func TestForceRerunsRecordedStage(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "counter"
instance = "1"
install = "echo run >> %init_install_dir%/runs"
`)

	for _, args := range [][]string{
		{"install", recipePath, "--config", ws.config},
		{"install", recipePath, "--config", ws.config},
		{"install", recipePath, "--config", ws.config, "--force"},
	} {
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("install %v: %v", args, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(ws.repo, "counter", "1", "install", "runs"))
	if err != nil {
		t.Fatalf("read runs: %v", err)
	}
	if got := strings.Count(string(data), "run"); got != 2 {
		t.Fatalf("expected 2 install runs, got %d", got)
	}
}

func TestNothingToDoIsNotAnError(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "off"
instance = "1"
skip = true
`)
	out, err := execute(t, "install", recipePath, "--config", ws.config)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if !strings.Contains(out, string(install.StatusNothingToDo)) {
		t.Fatalf("unexpected summary: %s", out)
	}
}

func TestInstallWritesMetricsTextfile(t *testing.T) {
	testlog.Start(t)

	ws := newWorkspace(t)
	recipePath := ws.recipe(t, `
[[component]]
name = "tool"
instance = "1"
build = "true"
`)
	promPath := filepath.Join(ws.dir, "hekit.prom")
	if _, err := execute(t, "install", recipePath, "--config", ws.config, "--metrics-textfile", promPath); err != nil {
		t.Fatalf("install: %v", err)
	}
	data, err := os.ReadFile(promPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `hekit_stage_runs_total{code="0",component="tool",instance="1",stage="build",success="true"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", data)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg, err := config.Load("ex.config.toml")
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	if cfg.RepoLocation != filepath.Join(home, ".hekit", "components") {
		t.Fatalf("unexpected repo location: %q", cfg.RepoLocation)
	}
}
