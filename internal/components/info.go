package components

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danmuck/hekit/internal/pipeline"
	"github.com/pelletier/go-toml/v2"
)

// InfoFileName is the stage info file kept in every instance root.
const InfoFileName = "hekit.info"

const statusSuccess = "success"

var ErrInfoFile = errors.New("components: invalid stage info file")

// StageStatus is the recorded progress of the persisted stages.
type StageStatus struct {
	Fetch   string `toml:"fetch"`
	Build   string `toml:"build"`
	Install string `toml:"install"`
}

type infoDoc struct {
	Status StageStatus `toml:"status"`
}

// Get returns the recorded status of stage; setup is never recorded.
func (s StageStatus) Get(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageFetch:
		return s.Fetch
	case pipeline.StageBuild:
		return s.Build
	case pipeline.StageInstall:
		return s.Install
	default:
		return ""
	}
}

func (s *StageStatus) set(stage pipeline.Stage, v string) {
	switch stage {
	case pipeline.StageFetch:
		s.Fetch = v
	case pipeline.StageBuild:
		s.Build = v
	case pipeline.StageInstall:
		s.Install = v
	}
}

// Done reports whether stage completed in an earlier run.
func (s StageStatus) Done(stage pipeline.Stage) bool {
	return s.Get(stage) == statusSuccess
}

// InfoFile persists StageStatus as TOML.
type InfoFile struct {
	path string
}

func NewInfoFile(root string) InfoFile {
	return InfoFile{path: filepath.Join(root, InfoFileName)}
}

func (f InfoFile) Path() string {
	return f.path
}

// Load returns fs.ErrNotExist (wrapped) when the file was never written.
func (f InfoFile) Load() (StageStatus, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return StageStatus{}, err
	}
	var doc infoDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return StageStatus{}, fmt.Errorf("%w: %s: %v", ErrInfoFile, f.path, err)
	}
	return doc.Status, nil
}

// Save replaces the file contents via a temp file rename.
func (f InfoFile) Save(status StageStatus) error {
	data, err := toml.Marshal(infoDoc{Status: status})
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Ensure creates an empty info file when none exists.
func (f InfoFile) Ensure() error {
	_, err := f.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return f.Save(StageStatus{})
	}
	return err
}

// Record marks stage as completed.
func (f InfoFile) Record(stage pipeline.Stage) error {
	status, err := f.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	status.set(stage, statusSuccess)
	return f.Save(status)
}

// Reset clears stage and every later stage. A missing file is left alone.
func (f InfoFile) Reset(stage pipeline.Stage) error {
	status, err := f.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, s := range pipeline.Stages() {
		if !s.Before(stage) {
			status.set(s, "")
		}
	}
	return f.Save(status)
}
