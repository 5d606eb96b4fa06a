//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustledger/internal/events"
	"trustledger/internal/events/kafka"
	"trustledger/pkg/testutil/containers"
)

func TestPublisher_DeliversCommittedEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	const topic = "trustledger.events.test"
	pub, err := kafka.New(ctx, broker.Brokers, topic, logger)
	require.NoError(t, err)

	want := events.Event{
		ID:        uuid.NewString(),
		Type:      events.TypeCredentialRevoked,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Namespace: 1,
		Identity:  3,
	}
	pub.Publish(ctx, want)
	require.NoError(t, pub.Close())

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
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
	assert.Equal(t, string(events.TypeCredentialRevoked), string(records[0].Key))

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Namespace, got.Namespace)
	assert.Equal(t, want.Identity, got.Identity)
}
