package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "product-notifications"
	batchTimeout = 10 * time.Millisecond
	batchSize    = 100
)

// MessageWriter is the part of *kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous writer so publish errors reach the caller.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		BatchSize:              batchSize,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaNotifier publishes one JSON event per product change, keyed by product
// name so changes to the same product stay ordered within a partition.
type KafkaNotifier struct {
	w   MessageWriter
	log *zap.Logger
	now func() time.Time
}

func NewKafkaNotifier(w MessageWriter, logger *zap.Logger) *KafkaNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaNotifier{w: w, log: logger.Named("notify.kafka"), now: time.Now}
}

func (n *KafkaNotifier) publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.Product),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(e.Kind)},
			{Key: "event-id", Value: []byte(e.ID)},
		},
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		n.log.Error("publish failed", zap.String("kind", e.Kind), zap.String("product", e.Product), zap.Error(err))
		return fmt.Errorf("publish %s event: %w", e.Kind, err)
	}
	n.log.Debug("published", zap.String("kind", e.Kind), zap.String("event_id", e.ID))
	return nil
}

func (n *KafkaNotifier) ProductCreated(ctx context.Context, name string) error {
	return n.publish(ctx, newEvent(KindCreated, name, n.now()))
}

// QuantityChanged publishes nothing unless the stock status flipped.
func (n *KafkaNotifier) QuantityChanged(ctx context.Context, name string, becameInStock, becameOutOfStock bool) error {
	kind := quantityKind(becameInStock, becameOutOfStock)
	if kind == "" {
		return nil
	}
	e := newEvent(kind, name, n.now())
	e.BecameInStock = becameInStock
	e.BecameOutOfStock = becameOutOfStock
	return n.publish(ctx, e)
}

func (n *KafkaNotifier) ProductChanged(ctx context.Context, name, changes string) error {
	e := newEvent(KindChanged, name, n.now())
	e.Changes = &changes
	return n.publish(ctx, e)
}

func (n *KafkaNotifier) ProductUnavailable(ctx context.Context, name string) error {
	return n.publish(ctx, newEvent(KindUnavailable, name, n.now()))
}

func (n *KafkaNotifier) ProductAvailable(ctx context.Context, name string) error {
	return n.publish(ctx, newEvent(KindAvailable, name, n.now()))
}

func (n *KafkaNotifier) ProductDiscontinued(ctx context.Context, name string) error {
	return n.publish(ctx, newEvent(KindDiscontinued, name, n.now()))
}

func (n *KafkaNotifier) Close() error { return n.w.Close() }
