package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStage = errors.New("pipeline: unknown stage")

// Stage is one step of a component pipeline.
type Stage string

const (
	StageSetup   Stage = "setup"
	StageFetch   Stage = "fetch"
	StageBuild   Stage = "build"
	StageInstall Stage = "install"
)

var stageOrder = []Stage{StageSetup, StageFetch, StageBuild, StageInstall}

// Stages returns every stage in canonical order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ParseStage resolves a user-supplied stage name.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if s.Index() < 0 {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownStage, raw, stageNames())
	}
	return s, nil
}

// Index is the position of s in the canonical order, or -1.
func (s Stage) Index() int {
	for i, known := range stageOrder {
		if s == known {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Before reports whether s runs strictly earlier than other.
func (s Stage) Before(other Stage) bool {
	return s.Index() < other.Index()
}

func (s Stage) String() string {
	return string(s)
}

func stageNames() string {
	names := make([]string, 0, len(stageOrder))
	for _, s := range stageOrder {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
