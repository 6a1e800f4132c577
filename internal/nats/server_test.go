package nats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "mockup.abc.>", SubjectForSession("abc"))
	assert.Equal(t, "mockup.abc.generation", SubjectForEvent("abc", EventTypeGeneration))
}

func TestEmbeddedServerRoundTrip(t *testing.T) {
	ns, err := StartEmbeddedNATS(t.TempDir())
	require.NoError(t, err)

	nc, err := ConnectInProcess(ns)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, Shutdown(nc, ns))
	}()

	js, err := CreateJetStream(nc)
	require.NoError(t, err)

	ctx := context.Background()
	stream, err := SetupStream(ctx, js)
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, jetstream.MemoryStorage, info.Config.Storage)

	_, err = js.Publish(ctx, SubjectForEvent("s1", EventTypeSession), []byte(`{}`))
	require.NoError(t, err)

	info, err = stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}
