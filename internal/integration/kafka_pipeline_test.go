//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/kafka"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/memory"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/nasa"
	"github.com/couchcryptid/breathing-rivers/internal/config"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/couchcryptid/breathing-rivers/internal/pipeline"
	"github.com/couchcryptid/breathing-rivers/internal/service"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testActivityTopic = "test-user-activity"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("breathing-rivers-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := c.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type publishedActivity struct {
	Activity domain.UserActivity
	Key      string
	Headers  map[string]string
}

func readActivity(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedActivity {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from activity topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a domain.UserActivity
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal activity")
	return publishedActivity{Activity: a, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testActivityTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func testConfig(broker string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaActivityTopic: testActivityTopic,
		BatchSize:          50,
		BatchFlushInterval: 100 * time.Millisecond,
	}
}

// TestWriterPublishesActivity round-trips one transformed activity through
// the broker.
func TestWriterPublishesActivity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testActivityTopic)

	writer := kafka.NewWriter(testConfig(broker), discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	a := domain.UserActivity{
		ID:        1,
		UserID:    "u-1",
		Type:      domain.ActivityCleanup,
		Points:    50,
		Timestamp: time.Date(2025, time.October, 4, 9, 0, 0, 0, time.UTC),
		Details:   map[string]any{"qrCode": "BR_EVENT_3_CLEANUP_1759568400000"},
	}
	ev, err := pipeline.NewTransformer().Transform(ctx, a)
	require.NoError(t, err)
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{ev}))

	got := readActivity(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "u-1", got.Key)
	assert.Equal(t, "cleanup", got.Headers[pipeline.HeaderActivityType])
	assert.Equal(t, "2025-10-04T09:00:00Z", got.Headers[pipeline.HeaderRecordedAt])
	assert.Equal(t, a.ID, got.Activity.ID)
	assert.Equal(t, 50, got.Activity.Points)
}

// TestOutboxPipelineEndToEnd records activities through the service and
// verifies the publisher drains them to Kafka and marks them published.
func TestOutboxPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testActivityTopic)
	cfg := testConfig(broker)

	store := memory.NewStore()
	metrics := observability.NewMetricsForTesting()
	gen := nasa.NewGenerator(domain.NewRand(7), clockwork.NewRealClock(), discardLogger(), metrics)
	svc := service.New(store, gen, domain.NewRand(7), discardLogger(), metrics)

	user, err := svc.Register(ctx, service.RegisterInput{
		Name:          "Amara",
		Email:         "amara@example.com",
		Role:          domain.RoleStudent,
		SelectedRiver: domain.Nile,
	})
	require.NoError(t, err)

	_, err = svc.SubmitDailyUsage(ctx, user.ID, domain.DailyUsage{WaterUsage: 120, EnergyUsage: 8})
	require.NoError(t, err)
	_, err = svc.SubmitQuizAnswer(ctx, user.ID, domain.Questions()[0].ID, true)
	require.NoError(t, err)

	pending, err := store.UnpublishedActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	outbox := pipeline.NewOutboxExtractor(store, cfg.BatchFlushInterval)
	p := pipeline.New(outbox, outbox, pipeline.NewTransformer(), writer, discardLogger(), metrics, cfg.BatchSize)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newConsumer(t, broker)
	types := map[string]int{}
	for range 2 {
		got := readActivity(ctx, t, consumer)
		assert.Equal(t, user.ID, got.Key)
		assert.Equal(t, user.ID, got.Activity.UserID)
		_, err := time.Parse(time.RFC3339Nano, got.Headers[pipeline.HeaderRecordedAt])
		assert.NoError(t, err, "recorded_at should be RFC3339")
		types[got.Headers[pipeline.HeaderActivityType]]++
	}
	assert.Equal(t, map[string]int{"simulation": 1, "quiz": 1}, types)

	require.Eventually(t, func() bool {
		left, err := store.UnpublishedActivities(ctx, 10)
		return err == nil && len(left) == 0
	}, 10*time.Second, 50*time.Millisecond, "outbox should drain")
	assert.NoError(t, p.CheckReadiness(ctx))

	pipelineCancel()
	require.NoError(t, <-errCh)
}
