package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

// MessageWriter is the subset of *kafka.Writer the forwarder uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a synchronous writer that partitions by key, so
// all notifications about one event land on the same partition in order.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// KafkaForwarder produces every notification it receives to Kafka as JSON.
type KafkaForwarder struct {
	writer  MessageWriter
	retry   weerrors.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
	sub     *Subscription
}

// ForwarderOption configures a KafkaForwarder.
type ForwarderOption func(*KafkaForwarder)

// WithForwarderRetry sets the retry policy for failed writes.
func WithForwarderRetry(cfg weerrors.RetryConfig) ForwarderOption {
	return func(f *KafkaForwarder) { f.retry = cfg }
}

// WithForwarderLogger sets the logger for failed writes.
func WithForwarderLogger(l *slog.Logger) ForwarderOption {
	return func(f *KafkaForwarder) { f.logger = l }
}

// WithWriteTimeout bounds each write attempt.
func WithWriteTimeout(d time.Duration) ForwarderOption {
	return func(f *KafkaForwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewKafkaForwarder creates a forwarder over w. Call Attach to start
// forwarding.
func NewKafkaForwarder(w MessageWriter, opts ...ForwarderOption) *KafkaForwarder {
	f := &KafkaForwarder{
		writer:  w,
		retry:   weerrors.DefaultRetry,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = observability.EnrichLogger(f.logger, "kafka")
	return f
}

// Attach subscribes the forwarder to every kind on bus.
func (f *KafkaForwarder) Attach(bus *Bus) {
	f.sub = bus.SubscribeAll(func(n Notification) {
		if err := f.Forward(context.Background(), n); err != nil && f.logger != nil {
			f.logger.Error("kafka forward failed",
				slog.String("notification_id", n.ID),
				slog.String("kind", string(n.Kind)),
				slog.String("error", err.Error()),
			)
		}
	})
}

// Forward writes one notification, retrying transient failures.
func (f *KafkaForwarder) Forward(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(n.Key()),
		Value: body,
		Time:  n.Timestamp.UTC(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}

	attempts, err := weerrors.Retry(ctx, f.retry, "kafka write", func(ctx context.Context) error {
		wctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		err := f.writer.WriteMessages(wctx, msg)
		return writeError(err)
	})
	if err != nil {
		return fmt.Errorf("forward %s after %d attempts: %w", n.ID, attempts, err)
	}
	return nil
}

// writeError classifies a failed write. Broker error codes are judged by
// Categorize; anything else (dial failures, closed connections) is worth
// another attempt.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	var kerr kafka.Error
	if errors.As(err, &kerr) && !weerrors.IsRetryable(kerr) {
		return err
	}
	return weerrors.Transient(err, "")
}

// Close detaches from the bus and closes the writer.
func (f *KafkaForwarder) Close() error {
	if f.sub != nil {
		f.sub.Unsubscribe()
	}
	return f.writer.Close()
}
