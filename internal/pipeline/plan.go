package pipeline

import "iter"

// Planner yields the stage operations of one component.
type Planner func(c Component) iter.Seq[StageOp]

// Plan returns a Planner producing the canonical stage prefix ending at
// upTo. Operations are bound but not invoked; each range over the returned
// sequence starts again from setup. An invalid upTo yields nothing.
func Plan(upTo Stage) Planner {
	last := upTo.Index()
	return func(c Component) iter.Seq[StageOp] {
		return func(yield func(StageOp) bool) {
			for _, s := range stageOrder[:last+1] {
				if !yield(StageOp{Stage: s, Run: bind(c, s)}) {
					return
				}
			}
		}
	}
}

func bind(c Component, s Stage) func() Outcome {
	switch s {
	case StageSetup:
		return c.Setup
	case StageFetch:
		return c.Fetch
	case StageBuild:
		return c.Build
	default:
		return c.Install
	}
}
