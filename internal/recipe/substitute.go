package recipe

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var argPattern = regexp.MustCompile(`!([A-Za-z0-9_.\-]+)!`)

type argSubstituter struct {
	args    map[string]string
	missing map[string]struct{}
}

func newArgSubstituter(args map[string]string) *argSubstituter {
	return &argSubstituter{args: args, missing: make(map[string]struct{})}
}

func (s *argSubstituter) apply(v string) string {
	return argPattern.ReplaceAllStringFunc(v, func(match string) string {
		key := match[1 : len(match)-1]
		if val, ok := s.args[key]; ok {
			return val
		}
		s.missing[key] = struct{}{}
		return match
	})
}

func (s *argSubstituter) missingKeys() []string {
	out := make([]string, 0, len(s.missing))
	for k := range s.missing {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dirs is the on-disk layout of one component instance.
type Dirs struct {
	Root    string
	Fetch   string
	Build   string
	Install string
}

// NewDirs lays out <repo>/<name>/<instance>/{fetch,build,install}.
func NewDirs(repoLocation string, name string, instance string) Dirs {
	root := filepath.Join(repoLocation, name, instance)
	return Dirs{
		Root:    root,
		Fetch:   filepath.Join(root, "fetch"),
		Build:   filepath.Join(root, "build"),
		Install: filepath.Join(root, "install"),
	}
}

// Expand replaces %init_fetch_dir%, %init_build_dir% and %init_install_dir%.
func (d Dirs) Expand(v string) string {
	return strings.NewReplacer(
		"%init_fetch_dir%", d.Fetch,
		"%init_build_dir%", d.Build,
		"%init_install_dir%", d.Install,
	).Replace(v)
}

// WithDirs returns a copy of s with directory placeholders expanded.
func (s ComponentSpec) WithDirs(d Dirs) ComponentSpec {
	out := s
	out.Fetch = d.Expand(s.Fetch)
	out.FetchRef = d.Expand(s.FetchRef)
	out.PreBuild = d.Expand(s.PreBuild)
	out.Build = d.Expand(s.Build)
	out.PostBuild = d.Expand(s.PostBuild)
	out.Install = d.Expand(s.Install)
	out.Env = make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		out.Env[k] = d.Expand(v)
	}
	return out
}
