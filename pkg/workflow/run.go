package workflow

import (
	"fmt"

	"github.com/ethanbaker/soundscript/pkg/insight"
	"github.com/ethanbaker/soundscript/pkg/transcribe"
	"github.com/google/uuid"
)

// State is the furthest step a run has completed
type State int

const (
	StateCreated State = iota
	StateUploaded
	StateTranscribed
	StatePersisted
	StateSummarized
)

var stateNames = map[State]string{
	StateCreated:     "created",
	StateUploaded:    "uploaded",
	StateTranscribed: "transcribed",
	StatePersisted:   "persisted",
	StateSummarized:  "summarized",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Run tracks one file through upload, transcription, persistence and
// summarization. A failed step leaves State at the last completed step and
// records the failure in Err
type Run struct {
	ID           uuid.UUID
	State        State
	FileName     string // Staged base name, extension included
	Chunks       []transcribe.Chunk
	Transcript   string
	TranscriptID uint
	Insights     *insight.Insights
	Err          error
}

func newRun() *Run {
	return &Run{ID: uuid.New(), State: StateCreated}
}

// advance moves the run to the next state; skipping or repeating a step is
// rejected
func (r *Run) advance(to State) error {
	if to != r.State+1 {
		return fmt.Errorf("invalid transition from %s to %s", r.State, to)
	}
	r.State = to
	return nil
}

// Done reports whether every step completed
func (r *Run) Done() bool {
	return r.State == StateSummarized && r.Err == nil
}
