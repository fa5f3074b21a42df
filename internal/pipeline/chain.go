package pipeline

import (
	"iter"

	"github.com/rs/zerolog/log"
)

// ChainResult is the aggregate outcome of a chain run.
// Stage is the last stage invoked; Ran counts invoked operations.
type ChainResult struct {
	Outcome Outcome
	Stage   Stage
	Ran     int
}

// Runner executes a stage sequence for one component.
type Runner func(ops iter.Seq[StageOp]) ChainResult

// ChainRun invokes ops in order, each exactly once, and stops at the first
// failed outcome. Later operations are never invoked after a failure. The
// result carries the failing outcome, or the last outcome when every
// operation succeeded. An empty sequence succeeds with code 0.
func ChainRun(ops iter.Seq[StageOp]) ChainResult {
	res := ChainResult{Outcome: Success()}
	for op := range ops {
		log.Debug().Str("stage", op.Stage.String()).Msg("pipeline.ChainRun start")
		res.Outcome = op.Run()
		res.Stage = op.Stage
		res.Ran++
		if !res.Outcome.Succeeded {
			log.Debug().
				Str("stage", op.Stage.String()).
				Int("code", res.Outcome.Code).
				Msg("pipeline.ChainRun stopped")
			break
		}
	}
	return res
}
