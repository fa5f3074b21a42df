package recipe

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	ErrInvalidRecipe     = errors.New("recipe: invalid recipe")
	ErrMissingRecipeArg  = errors.New("recipe: missing recipe argument")
	ErrDuplicateInstance = errors.New("recipe: duplicate component instance")
)

// Recipe is a decoded recipe file with recipe arguments applied.
type Recipe struct {
	Path       string
	Components []ComponentSpec
}

// ComponentSpec describes one component instance and its stage commands.
type ComponentSpec struct {
	Name      string
	Instance  string
	Skip      bool
	Fetch     string
	FetchRef  string
	PreBuild  string
	Build     string
	PostBuild string
	Install   string
	Env       map[string]string
}

type fileRecipe struct {
	Components []fileComponent `toml:"component"`
}

type fileComponent struct {
	Name      string            `toml:"name"`
	Instance  string            `toml:"instance"`
	Skip      bool              `toml:"skip"`
	Fetch     string            `toml:"fetch"`
	FetchRef  string            `toml:"fetch_ref"`
	PreBuild  string            `toml:"pre_build"`
	Build     string            `toml:"build"`
	PostBuild string            `toml:"post_build"`
	Install   string            `toml:"install"`
	Env       map[string]string `toml:"env"`
}

// Load decodes the recipe at path and substitutes every !key! placeholder
// from args. Component order follows the file.
func Load(path string, args map[string]string) (Recipe, error) {
	var raw fileRecipe
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Recipe{}, fmt.Errorf("load recipe %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Recipe{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidRecipe, path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("component") {
		return Recipe{}, fmt.Errorf("%w: %s: no [[component]] tables", ErrInvalidRecipe, path)
	}

	sub := newArgSubstituter(args)
	out := Recipe{Path: filepath.Clean(path), Components: make([]ComponentSpec, 0, len(raw.Components))}
	seen := make(map[string]struct{}, len(raw.Components))
	for idx, fc := range raw.Components {
		spec := ComponentSpec{
			Name:      sub.apply(fc.Name),
			Instance:  sub.apply(fc.Instance),
			Skip:      fc.Skip,
			Fetch:     sub.apply(fc.Fetch),
			FetchRef:  sub.apply(fc.FetchRef),
			PreBuild:  sub.apply(fc.PreBuild),
			Build:     sub.apply(fc.Build),
			PostBuild: sub.apply(fc.PostBuild),
			Install:   sub.apply(fc.Install),
			Env:       make(map[string]string, len(fc.Env)),
		}
		for k, v := range fc.Env {
			spec.Env[k] = sub.apply(v)
		}
		if err := spec.Validate(); err != nil {
			return Recipe{}, fmt.Errorf("component[%d]: %w", idx, err)
		}
		key := spec.Name + "/" + spec.Instance
		if _, ok := seen[key]; ok {
			return Recipe{}, fmt.Errorf("%w: %s", ErrDuplicateInstance, key)
		}
		seen[key] = struct{}{}
		out.Components = append(out.Components, spec)
	}
	if missing := sub.missingKeys(); len(missing) > 0 {
		return Recipe{}, fmt.Errorf("%w: %s", ErrMissingRecipeArg, strings.Join(missing, ", "))
	}
	return out, nil
}

// Validate enforces the identity fields used to lay out component directories.
func (s ComponentSpec) Validate() error {
	if err := validatePathElement("name", s.Name); err != nil {
		return err
	}
	return validatePathElement("instance", s.Instance)
}

func validatePathElement(field string, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecipe, field)
	}
	if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return fmt.Errorf("%w: %s=%q is not a valid directory name", ErrInvalidRecipe, field, v)
	}
	return nil
}
