package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "mockup_events"
	subjectPrefix = "mockup"

	// Event types
	EventTypeSession    = "session"
	EventTypeInput      = "input"
	EventTypeGeneration = "generation"
)

// SubjectForSession returns the wildcard subject for all events of a session.
// Example: "mockup.3f2a....>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, session)
}

// SubjectForEvent returns the subject for one event type in a session.
// Example: "mockup.3f2a....generation"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, session, eventType)
}

// SubjectAll matches every mockup event.
const SubjectAll = subjectPrefix + ".>"

// SetupStream creates or updates the memory-backed stream for session
// events. Nothing is kept across process restarts.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{SubjectAll},
		Storage:  jetstream.MemoryStorage,
		MaxAge:   24 * time.Hour,
		MaxMsgs:  100_000,
	})
}
