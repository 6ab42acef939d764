package renderer

import (
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/state"
)

// Renderer defines the interface for command output backends.
// Implementations are the colored Console and the line-oriented JSON output.
type Renderer interface {
	// Init prepares the output; colors is a hint that text renderers may ignore
	Init(colors bool)

	// Result reports a generated seed
	Result(res *generator.Result)

	// Failure reports a seed that could not be generated
	Failure(err error)

	// Check reports a rule set check
	Check(report *generator.CheckReport)

	// MassSummary reports a finished mass test
	MassSummary(sum generator.MassSummary)

	// Messages flushes the run's message log
	Messages(run *state.Run)
}

// Current holds the active renderer instance
var Current Renderer

// SetRenderer sets the active renderer
func SetRenderer(r Renderer) {
	Current = r
}

// Init initializes the current renderer
func Init(colors bool) {
	if Current != nil {
		Current.Init(colors)
	}
}

// Result reports a seed through the current renderer
func Result(res *generator.Result) {
	if Current != nil {
		Current.Result(res)
	}
}

// Failure reports a failure through the current renderer
func Failure(err error) {
	if Current != nil {
		Current.Failure(err)
	}
}

// Check reports a check through the current renderer
func Check(report *generator.CheckReport) {
	if Current != nil {
		Current.Check(report)
	}
}

// MassSummary reports a mass test through the current renderer
func MassSummary(sum generator.MassSummary) {
	if Current != nil {
		Current.MassSummary(sum)
	}
}

// Messages flushes the run's messages through the current renderer
func Messages(run *state.Run) {
	if Current != nil {
		Current.Messages(run)
	}
}
