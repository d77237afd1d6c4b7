package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubforms-backend/internal/domain"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: server.RANDOM_PORT, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready for connections")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSPublisher_Publish(t *testing.T) {
	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	s, err := sub.SubscribeSync("clubforms.>")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(ns.ClientURL(), "clubforms")
	require.NoError(t, err)
	defer pub.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err = pub.Publish(context.Background(), TopicSubmissionAccepted, SubmissionEvent{
		FormID: 4, SubmissionID: 2, FormVersion: 1, Count: 2, SubmittedAt: at,
	})
	require.NoError(t, err)

	msg, err := s.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "clubforms.submission.accepted", msg.Subject)

	var got SubmissionEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, int64(4), got.FormID)
	assert.Equal(t, int64(2), got.SubmissionID)
	assert.True(t, at.Equal(got.SubmittedAt))

	err = pub.Publish(context.Background(), TopicFormClosed, FormEvent{
		FormID: 4, Owner: domain.Owner{Kind: domain.OwnerKindEvent, ID: 9}, Version: 1, At: at,
	})
	require.NoError(t, err)

	msg, err = s.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "clubforms.form.closed", msg.Subject)
	assert.Contains(t, string(msg.Data), `"owner_kind":"event"`)
}

func TestNATSPublisher_ConnectFailure(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "clubforms")
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), TopicFormCreated, nil))
	p.Close()
}
