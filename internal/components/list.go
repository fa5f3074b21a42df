package components

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Installed is one component instance found under a repo location.
type Installed struct {
	Name     string
	Instance string
	Status   StageStatus
}

// ListInstalled returns every <name>/<instance> with a stage info file,
// sorted by name then instance. A missing repo location lists nothing.
func ListInstalled(repoLocation string) ([]Installed, error) {
	names, err := os.ReadDir(repoLocation)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Installed
	for _, name := range names {
		if !name.IsDir() {
			continue
		}
		instances, err := os.ReadDir(filepath.Join(repoLocation, name.Name()))
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			if !inst.IsDir() {
				continue
			}
			info := NewInfoFile(filepath.Join(repoLocation, name.Name(), inst.Name()))
			status, err := info.Load()
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, Installed{Name: name.Name(), Instance: inst.Name(), Status: status})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Instance < out[j].Instance
	})
	return out, nil
}
