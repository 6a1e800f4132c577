package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/nats"
	"github.com/letrabox/mockup/internal/session"
)

// publishTimeout bounds each journal write so a stalled bus never blocks the
// wizard.
const publishTimeout = 2 * time.Second

// Recorder mirrors one session's transitions into the journal.
type Recorder struct {
	store *Store
	id    string
	sess  *session.Session
}

// Attach assigns the session a new ID, publishes a start event and records
// every later transition. source names the surface (wizard, cli, http, mcp).
// Publish failures are logged and otherwise ignored.
func Attach(store *Store, sess *session.Session, source string) *Recorder {
	r := &Recorder{
		store: store,
		id:    uuid.NewString(),
		sess:  sess,
	}
	r.publish(Event{Type: nats.EventTypeSession, Action: "start", Data: source})
	sess.OnTransition(r.record)
	return r
}

// ID returns the journal session ID.
func (r *Recorder) ID() string {
	return r.id
}

// State replays this session's events.
func (r *Recorder) State(ctx context.Context) (*State, error) {
	return r.store.LoadState(ctx, r.id)
}

func (r *Recorder) record(tr session.Transition) {
	switch tr.Cause {
	case session.CauseAdvance, session.CauseRetreat:
		r.publish(Event{
			Type:   nats.EventTypeInput,
			Action: "step",
			Meta:   mustJSON(map[string]string{"from": tr.From.String(), "to": tr.To.String()}),
		})
	case session.CauseGenerate:
		r.publish(Event{
			Type:   nats.EventTypeGeneration,
			Action: "begin",
			Meta:   mustJSON(map[string]string{"category": r.sess.Category().Label()}),
			Data:   r.sess.Description(),
		})
	case session.CauseComplete:
		size := 0
		if img, ok := r.sess.Result(); ok {
			size = img.Size()
		}
		r.publish(Event{
			Type:   nats.EventTypeGeneration,
			Action: "complete",
			Meta:   mustJSON(map[string]int{"bytes": size}),
		})
	case session.CauseFail:
		r.publish(Event{
			Type:   nats.EventTypeGeneration,
			Action: "fail",
			Meta:   mustJSON(map[string]string{"kind": string(tr.Kind)}),
			Data:   tr.Error,
		})
	case session.CauseReset:
		r.publish(Event{Type: nats.EventTypeSession, Action: "reset"})
	}
}

func (r *Recorder) publish(event Event) {
	event.Session = r.id
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if _, err := r.store.PublishEvent(ctx, event); err != nil {
		logger.Warn("Journal write dropped for session %s: %v", r.id, err)
	}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
