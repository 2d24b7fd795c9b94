package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{w: w}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), CarEvent{
		Type: CarCreated, CarID: "c-1", UserID: "u-1", ImageCount: 2, OccurredAt: at,
	}))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("u-1"), msg.Key)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, []byte("car.created"), msg.Headers[0].Value)

	var decoded CarEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "c-1", decoded.CarID)
	assert.Equal(t, 2, decoded.ImageCount)
	assert.True(t, at.Equal(decoded.OccurredAt))
}

func TestKafkaPublisher_PropagatesWriterError(t *testing.T) {
	p := &KafkaPublisher{w: &recordingWriter{err: errors.New("broker down")}}
	assert.Error(t, p.Publish(context.Background(), CarEvent{Type: CarDeleted}))
}

func TestEncode_FillsTimestamp(t *testing.T) {
	msg, err := encode(CarEvent{Type: CarDeleted, UserID: "u"})
	require.NoError(t, err)
	assert.False(t, msg.Time.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), CarEvent{}))
	assert.NoError(t, p.Close())
}
