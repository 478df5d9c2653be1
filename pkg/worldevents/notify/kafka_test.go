package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	err      error
	msgs     []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		if w.err != nil {
			return w.err
		}
		return errors.New("connection reset by peer")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

var fastRetry = weerrors.NewRetryConfig(
	weerrors.WithMaxAttempts(3),
	weerrors.WithInitialBackoff(time.Millisecond),
	weerrors.WithJitter(0),
)

func TestKafkaForwarder_Forward(t *testing.T) {
	w := &fakeWriter{failures: 2}
	f := NewKafkaForwarder(w, WithForwarderRetry(fastRetry))

	ev := model.WorldEvent{ID: "ev-9", Type: model.Piracy, Severity: model.High}
	n := Notification{ID: "n-1", Kind: KindEventActivated, Sequence: 4, Event: &ev, Timestamp: time.Unix(100, 0)}
	require.NoError(t, f.Forward(context.Background(), n))

	msgs := w.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ev-9", string(msgs[0].Key))
	assert.Equal(t, "kind", msgs[0].Headers[0].Key)
	assert.Equal(t, "event.activated", string(msgs[0].Headers[0].Value))

	var decoded Notification
	require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
	assert.Equal(t, KindEventActivated, decoded.Kind)
	assert.Equal(t, uint64(4), decoded.Sequence)
	require.NotNil(t, decoded.Event)
	assert.Equal(t, model.Piracy, decoded.Event.Type)
	assert.Equal(t, model.High, decoded.Event.Severity)
}

func TestKafkaForwarder_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	f := NewKafkaForwarder(w, WithForwarderRetry(fastRetry))

	err := f.Forward(context.Background(), Notification{ID: "n-1", Kind: KindSystemStarted})
	require.Error(t, err)
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Empty(t, w.messages())
}

func TestKafkaForwarder_RetryPolicy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    kafka.Error
		wantErr bool
	}{
		{"temporary broker error recovers", kafka.LeaderNotAvailable, kafka.LeaderNotAvailable, false},
		{"message too large is not retried", kafka.MessageSizeTooLarge, kafka.MessageSizeTooLarge, true},
		{"topic authorization is not retried", fmt.Errorf("write: %w", kafka.TopicAuthorizationFailed), kafka.TopicAuthorizationFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{failures: 1, err: tt.err}
			if tt.wantErr {
				w.failures = 10
			}
			f := NewKafkaForwarder(w, WithForwarderRetry(fastRetry))

			err := f.Forward(context.Background(), Notification{ID: "n-1", Kind: KindEventActivated})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Len(t, w.messages(), 1)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.code)
			assert.Equal(t, 9, w.remaining(), "one attempt only")
		})
	}
}

func TestKafkaForwarder_AttachForwardsBusTraffic(t *testing.T) {
	bus := NewBus(DefaultBusConfig)
	w := &fakeWriter{}
	f := NewKafkaForwarder(w, WithForwarderRetry(fastRetry))
	f.Attach(bus)

	for _, k := range []Kind{KindSystemStarted, KindEventActivated, KindSystemStopped} {
		_, err := bus.Publish(Notification{Kind: k})
		require.NoError(t, err)
	}
	require.NoError(t, bus.Close())
	require.NoError(t, f.Close())

	msgs := w.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "system.stopped", string(msgs[2].Headers[0].Value))
	assert.True(t, w.closed)
}
