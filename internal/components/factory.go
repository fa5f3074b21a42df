package components

import (
	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/danmuck/hekit/internal/recipe"
	"github.com/danmuck/hekit/internal/tools"
)

// Factory turns a recipe file into command-driven components.
type Factory struct {
	runner tools.CommandRunner
}

func NewFactory(runner tools.CommandRunner) *Factory {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Factory{runner: runner}
}

// ComponentsToBuildFrom loads recipeFile with recipeArgs and returns one
// component per recipe entry, in file order.
func (f *Factory) ComponentsToBuildFrom(recipeFile string, repoLocation string, recipeArgs map[string]string) ([]pipeline.Component, error) {
	r, err := recipe.Load(recipeFile, recipeArgs)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.Component, 0, len(r.Components))
	for _, spec := range r.Components {
		out = append(out, NewComponent(spec, repoLocation, f.runner))
	}
	return out, nil
}
