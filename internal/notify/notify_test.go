package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"productcatalog/internal/notify"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func decode(t *testing.T, m kafka.Message) notify.Event {
	t.Helper()
	var e notify.Event
	require.NoError(t, json.Unmarshal(m.Value, &e))
	return e
}

func TestKafka_PublishesKeyedEvents(t *testing.T) {
	ctx := context.Background()
	w := &fakeWriter{}
	n := notify.NewKafkaNotifier(w, nil)

	require.NoError(t, n.ProductCreated(ctx, "Widget"))
	require.NoError(t, n.ProductUnavailable(ctx, "Widget"))
	require.NoError(t, n.ProductAvailable(ctx, "Widget"))
	require.NoError(t, n.ProductDiscontinued(ctx, "Gadget"))

	require.Len(t, w.msgs, 4)
	kinds := []string{}
	for _, m := range w.msgs {
		e := decode(t, m)
		assert.Equal(t, e.Product, string(m.Key))
		_, err := uuid.Parse(e.ID)
		assert.NoError(t, err)
		assert.False(t, e.OccurredAt.IsZero())
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{
		notify.KindCreated, notify.KindUnavailable, notify.KindAvailable, notify.KindDiscontinued,
	}, kinds)
	assert.Equal(t, "Gadget", string(w.msgs[3].Key))
}

func TestKafka_QuantityChanged(t *testing.T) {
	ctx := context.Background()
	w := &fakeWriter{}
	n := notify.NewKafkaNotifier(w, nil)

	require.NoError(t, n.QuantityChanged(ctx, "Widget", false, false))
	assert.Empty(t, w.msgs)

	require.NoError(t, n.QuantityChanged(ctx, "Widget", true, false))
	require.NoError(t, n.QuantityChanged(ctx, "Widget", false, true))
	require.Len(t, w.msgs, 2)

	in := decode(t, w.msgs[0])
	assert.Equal(t, notify.KindBackInStock, in.Kind)
	assert.True(t, in.BecameInStock)
	assert.False(t, in.BecameOutOfStock)

	out := decode(t, w.msgs[1])
	assert.Equal(t, notify.KindOutOfStock, out.Kind)
	assert.True(t, out.BecameOutOfStock)
}

func TestKafka_ChangedCarriesEmptyChanges(t *testing.T) {
	w := &fakeWriter{}
	n := notify.NewKafkaNotifier(w, nil)

	require.NoError(t, n.ProductChanged(context.Background(), "Widget", ""))
	require.Len(t, w.msgs, 1)
	e := decode(t, w.msgs[0])
	require.NotNil(t, e.Changes)
	assert.Equal(t, "", *e.Changes)
}

func TestKafka_WriteErrorPropagates(t *testing.T) {
	boom := errors.New("broker down")
	n := notify.NewKafkaNotifier(&fakeWriter{err: boom}, nil)

	err := n.ProductCreated(context.Background(), "Widget")
	assert.ErrorIs(t, err, boom)
}

func TestKafka_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, notify.NewKafkaNotifier(w, nil).Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter_DefaultTopic(t *testing.T) {
	w := notify.NewKafkaWriter([]string{"localhost:9092"}, "")
	assert.Equal(t, notify.DefaultTopic, w.Topic)
}

func TestLogNotifier(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	n := notify.NewLogNotifier(zap.New(core))

	require.NoError(t, n.ProductCreated(ctx, "Widget"))
	require.NoError(t, n.QuantityChanged(ctx, "Widget", false, false))
	require.NoError(t, n.QuantityChanged(ctx, "Widget", false, true))
	require.NoError(t, n.ProductChanged(ctx, "Widget", ""))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, notify.KindCreated, entries[0].ContextMap()["kind"])
	assert.Equal(t, notify.KindOutOfStock, entries[1].ContextMap()["kind"])
	assert.Equal(t, "Widget", entries[1].ContextMap()["product"])
	assert.Equal(t, "", entries[2].ContextMap()["changes"])
}

func TestLogNotifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := notify.NewLogNotifier(nil)
	assert.ErrorIs(t, n.ProductCreated(ctx, "Widget"), context.Canceled)
}
