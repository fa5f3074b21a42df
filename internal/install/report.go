package install

import "github.com/danmuck/hekit/internal/pipeline"

// Status is the aggregate result of an install run.
type Status string

const (
	StatusSucceeded   Status = "succeeded"
	StatusNothingToDo Status = "nothing_to_do"
	StatusFailed      Status = "failed"
)

// Result is the outcome of one component. Stage is the last stage
// attempted; it is empty for skipped components.
type Result struct {
	ComponentName string
	InstanceName  string
	Skipped       bool
	Stage         pipeline.Stage
	Outcome       pipeline.Outcome
	Err           error
}

// Failed reports whether the component ran and did not succeed.
func (r Result) Failed() bool {
	return !r.Skipped && !r.Outcome.Succeeded
}

func (r Result) label() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Failed():
		return "failed"
	default:
		return "succeeded"
	}
}

// Report holds one result per component, in factory order.
type Report struct {
	UpToStage pipeline.Stage
	Results   []Result
}

func (r Report) Executed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Skipped {
			n++
		}
	}
	return n
}

func (r Report) Skipped() int {
	return len(r.Results) - r.Executed()
}

func (r Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded is the AND of every executed component outcome. Skipped
// components never count against it.
func (r Report) Succeeded() bool {
	return len(r.Failures()) == 0
}

func (r Report) Status() Status {
	switch {
	case !r.Succeeded():
		return StatusFailed
	case r.Executed() == 0:
		return StatusNothingToDo
	default:
		return StatusSucceeded
	}
}

// Err returns ErrComponentsFailed when the aggregate status is failed.
func (r Report) Err() error {
	if r.Status() == StatusFailed {
		return ErrComponentsFailed
	}
	return nil
}
