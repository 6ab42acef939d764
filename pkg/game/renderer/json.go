package renderer

import (
	"encoding/json"
	"io"

	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/state"
)

// JSON writes one JSON object per event, for scripts driving the CLI
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON renderer writing to out
func NewJSON(out io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(out)}
}

type event struct {
	Event string `json:"event"`

	Seed       string `json:"seed,omitempty"`
	Hash       string `json:"hash,omitempty"`
	Algorithm  string `json:"algorithm,omitempty"`
	Builds     int    `json:"builds,omitempty"`
	Fills      int    `json:"fills,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Spheres    int    `json:"spheres,omitempty"`

	Error       string         `json:"error,omitempty"`
	Unreachable []string       `json:"unreachable,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
	Messages    []string       `json:"messages,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	Failures    map[string]int `json:"failures,omitempty"`
}

func (j *JSON) emit(e event) {
	_ = j.enc.Encode(e)
}

// Init has nothing to prepare
func (j *JSON) Init(bool) {}

// Result emits a "result" event
func (j *JSON) Result(res *generator.Result) {
	e := event{
		Event:      "result",
		Seed:       res.Seed,
		Hash:       res.Hash,
		Algorithm:  res.Algorithm,
		Builds:     res.BuildAttempts,
		Fills:      res.FillAttempts,
		DurationMS: res.Duration.Milliseconds(),
		Spheres:    len(res.Playthrough),
	}
	for _, w := range res.Warnings {
		e.Warnings = append(e.Warnings, w.Location)
	}
	j.emit(e)
}

// Failure emits a "failure" event
func (j *JSON) Failure(err error) {
	j.emit(event{Event: "failure", Error: err.Error()})
}

// Check emits a "check" event
func (j *JSON) Check(report *generator.CheckReport) {
	e := event{
		Event:       "check",
		Unreachable: report.Unreachable,
		Counts: map[string]int{
			"locations": report.Locations,
			"items":     report.Items,
			"macros":    report.Macros,
		},
	}
	if report.VanillaErr != nil {
		e.Error = report.VanillaErr.Error()
	}
	j.emit(e)
}

// MassSummary emits a "mass-test" event
func (j *JSON) MassSummary(sum generator.MassSummary) {
	j.emit(event{
		Event: "mass-test",
		Counts: map[string]int{
			"total":    sum.Total,
			"failed":   sum.Failed,
			"warnings": sum.Warnings,
		},
		Failures: sum.Errors,
	})
}

// Messages emits a "messages" event when there is anything to say
func (j *JSON) Messages(run *state.Run) {
	if len(run.Messages) == 0 {
		return
	}
	msgs := make([]string, len(run.Messages))
	for i, msg := range run.Messages {
		msgs[i] = StripMarkup(msg)
	}
	j.emit(event{Event: "messages", Seed: run.Seed, Messages: msgs})
}
