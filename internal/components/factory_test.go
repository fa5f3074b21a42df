package components

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/danmuck/hekit/internal/testutil/testlog"
)

func TestFactoryComponentsToBuildFrom(t *testing.T) {
	testlog.Start(t)

	dir := t.TempDir()
	recipePath := filepath.Join(dir, "recipe.toml")
	content := `
[[component]]
name = "gmp"
instance = "!version!"
build = "make"

[[component]]
name = "ntl"
instance = "11.5.1"
skip = true
`
	if err := os.WriteFile(recipePath, []byte(content), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}

	comps, err := NewFactory(&componentFakeRunner{}).ComponentsToBuildFrom(recipePath, dir, map[string]string{"version": "6.3.0"})
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("unexpected component count: %d", len(comps))
	}
	if comps[0].ComponentName() != "gmp" || comps[0].InstanceName() != "6.3.0" || comps[0].Skip() {
		t.Fatalf("unexpected first component: %s/%s", comps[0].ComponentName(), comps[0].InstanceName())
	}
	if !comps[1].Skip() {
		t.Fatalf("second component must be skipped")
	}

	res := pipeline.ChainRun(pipeline.Plan(pipeline.StageInstall)(comps[0]))
	if !res.Outcome.Succeeded || res.Stage != pipeline.StageInstall {
		t.Fatalf("unexpected chain result: %+v", res)
	}
}

func TestFactoryMissingRecipe(t *testing.T) {
	if _, err := NewFactory(nil).ComponentsToBuildFrom(filepath.Join(t.TempDir(), "missing.toml"), t.TempDir(), nil); err == nil {
		t.Fatalf("expected factory error")
	}
}

func TestListInstalled(t *testing.T) {
	testlog.Start(t)

	repo := t.TempDir()
	runner := &componentFakeRunner{}
	b := NewComponent(hexlSpec(), repo, runner)
	b.Setup()
	b.Fetch()

	spec := hexlSpec()
	spec.Name = "alpha"
	a := NewComponent(spec, repo, runner)
	a.Setup()

	if err := os.MkdirAll(filepath.Join(repo, "stray", "dir"), 0o755); err != nil {
		t.Fatalf("mkdir stray: %v", err)
	}

	got, err := ListInstalled(repo)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if got[0].Name != "alpha" || got[1].Name != "hexl" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[1].Status.Done(pipeline.StageFetch) || got[1].Status.Done(pipeline.StageBuild) {
		t.Fatalf("unexpected hexl status: %+v", got[1].Status)
	}
}

func TestListInstalledMissingRepo(t *testing.T) {
	got, err := ListInstalled(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty listing, got %v %v", got, err)
	}
}
