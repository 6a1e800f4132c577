package journal

import (
	"encoding/json"
	"time"

	"github.com/letrabox/mockup/internal/nats"
)

// Attempt outcomes.
const (
	OutcomePending   = "pending"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// State is a session's history rebuilt from its events.
type State struct {
	Session   string     `json:"session"`
	StartedAt time.Time  `json:"started_at"`
	Source    string     `json:"source,omitempty"` // wizard, cli, http, mcp
	Step      string     `json:"step"`
	Resets    int        `json:"resets"`
	Attempts  []*Attempt `json:"attempts"`
}

// Attempt is one generation request and its outcome.
type Attempt struct {
	Number      int       `json:"number"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at,omitempty"`
	Outcome     string    `json:"outcome"`
	Kind        string    `json:"kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	Bytes       int       `json:"bytes,omitempty"`
}

// NewState returns an empty State for session.
func NewState(session string) *State {
	return &State{Session: session, Attempts: []*Attempt{}}
}

// Apply reduces event into the state.
func (st *State) Apply(event Event) {
	switch event.Type {
	case nats.EventTypeSession:
		st.applySessionEvent(event)
	case nats.EventTypeInput:
		st.applyInputEvent(event)
	case nats.EventTypeGeneration:
		st.applyGenerationEvent(event)
	}
}

func (st *State) applySessionEvent(event Event) {
	switch event.Action {
	case "start":
		st.StartedAt = event.Timestamp
		st.Source = event.Data
		st.Step = "Base image"
	case "reset":
		st.Resets++
		st.Step = "Base image"
	}
}

func (st *State) applyInputEvent(event Event) {
	if event.Action != "step" {
		return
	}
	var meta struct {
		To string `json:"to"`
	}
	json.Unmarshal(event.Meta, &meta)
	if meta.To != "" {
		st.Step = meta.To
	}
}

func (st *State) applyGenerationEvent(event Event) {
	switch event.Action {
	case "begin":
		var meta struct {
			Category string `json:"category"`
		}
		json.Unmarshal(event.Meta, &meta)
		st.Attempts = append(st.Attempts, &Attempt{
			Number:      len(st.Attempts) + 1,
			Category:    meta.Category,
			Description: event.Data,
			StartedAt:   event.Timestamp,
			Outcome:     OutcomePending,
		})
		st.Step = "Generating"

	case "complete":
		var meta struct {
			Bytes int `json:"bytes"`
		}
		json.Unmarshal(event.Meta, &meta)
		if a := st.pending(); a != nil {
			a.Outcome = OutcomeSucceeded
			a.EndedAt = event.Timestamp
			a.Bytes = meta.Bytes
		}
		st.Step = "Result"

	case "fail":
		var meta struct {
			Kind string `json:"kind"`
		}
		json.Unmarshal(event.Meta, &meta)
		if a := st.pending(); a != nil {
			a.Outcome = OutcomeFailed
			a.EndedAt = event.Timestamp
			a.Kind = meta.Kind
			a.Error = event.Data
		}
		st.Step = "Description"
	}
}

// pending returns the last attempt if it has no outcome yet.
func (st *State) pending() *Attempt {
	if len(st.Attempts) == 0 {
		return nil
	}
	last := st.Attempts[len(st.Attempts)-1]
	if last.Outcome != OutcomePending {
		return nil
	}
	return last
}

// Succeeded counts successful attempts.
func (st *State) Succeeded() int {
	return st.count(OutcomeSucceeded)
}

// Failed counts failed attempts.
func (st *State) Failed() int {
	return st.count(OutcomeFailed)
}

func (st *State) count(outcome string) int {
	n := 0
	for _, a := range st.Attempts {
		if a.Outcome == outcome {
			n++
		}
	}
	return n
}
