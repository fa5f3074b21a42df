package pipeline

// Outcome is the result of one stage operation or of a whole chain.
// Code is a diagnostic exit code and is never interpreted here.
type Outcome struct {
	Succeeded bool
	Code      int
}

// Success is the outcome of a stage that completed.
func Success() Outcome {
	return Outcome{Succeeded: true}
}

// Failure is the outcome of a stage that failed with code.
func Failure(code int) Outcome {
	return Outcome{Succeeded: false, Code: code}
}

// Component is the capability contract every buildable unit exposes.
// Stage operations are called in canonical order only, and never after an
// earlier stage reported failure.
type Component interface {
	ComponentName() string
	InstanceName() string
	Skip() bool

	Setup() Outcome
	Fetch() Outcome
	Build() Outcome
	Install() Outcome

	// ResetStageInfoFile discards persisted progress from stage onward.
	ResetStageInfoFile(stage Stage) error
}

// StageOp is a bound, not yet invoked, stage operation of one component.
type StageOp struct {
	Stage Stage
	Run   func() Outcome
}
