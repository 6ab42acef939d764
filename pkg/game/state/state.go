package state

import (
	"wwrando/pkg/engine/fill"
)

// Phase is how far a command has got
type Phase int

// Phases
const (
	PhaseLoading Phase = iota
	PhaseGenerating
	PhaseWriting
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{"loading", "generating", "writing", "done", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Run is the state of one CLI command: what it has reported so far
type Run struct {
	Command string
	Seed    string
	Phase   Phase

	Messages []string
	Warnings []fill.Warning

	// Outputs lists the files written by the run
	Outputs []string
}

// MaxMessages is how many messages a run keeps
const MaxMessages = 20

// NewRun creates a new run for a command
func NewRun(command string) *Run {
	return &Run{
		Command:  command,
		Messages: make([]string, 0),
	}
}

// AddMessage adds a message to the run's message log
func (r *Run) AddMessage(msg string) {
	r.Messages = append(r.Messages, msg)

	// Keep only the last MaxMessages
	if len(r.Messages) > MaxMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxMessages:]
	}
}

// ClearMessages clears all messages
func (r *Run) ClearMessages() {
	r.Messages = make([]string, 0)
}

// AddWarnings records placement warnings
func (r *Run) AddWarnings(ws ...fill.Warning) {
	r.Warnings = append(r.Warnings, ws...)
}

// AddOutput records a written file
func (r *Run) AddOutput(path string) {
	r.Outputs = append(r.Outputs, path)
}

// Advance moves the run to the next phase; a failed or done run stays put
func (r *Run) Advance(p Phase) {
	if r.Phase == PhaseDone || r.Phase == PhaseFailed {
		return
	}
	r.Phase = p
}
