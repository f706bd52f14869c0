//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"idmonitor/internal/events"
	"idmonitor/pkg/testutil/containers"
)

func TestPublisherRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	const topic = "idmonitor.reminders.test"

	publisher, err := events.NewPublisher(ctx, []string{broker.Broker}, topic, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer publisher.Close()

	publisher.Emit(ctx, events.Event{
		Type:       events.TypeReminderDispatched,
		UserID:     "user-1",
		DocumentID: "doc-1",
		ReminderID: "rem-1",
		Channels:   []string{"email", "push"},
	})
	require.NoError(t, publisher.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []byte("user-1"), records[0].Key, "events are keyed by user for per-user ordering")

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, events.TypeReminderDispatched, got.Type)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, []string{"email", "push"}, got.Channels)
	assert.False(t, got.Timestamp.IsZero())
}
