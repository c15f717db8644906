package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(config.KafkaConfig{Brokers: []string{" ", ""}}); err == nil {
		t.Fatalf("expected error without brokers")
	}
	p, err := NewProducer(config.KafkaConfig{Brokers: []string{" k1:9092 "}, ClientID: "hs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.brokers) != 1 || p.brokers[0] != "k1:9092" {
		t.Fatalf("unexpected brokers %v", p.brokers)
	}
}

func TestPublishMapsMessage(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{w: w}

	err := p.Publish(context.Background(), Message{
		Topic:   "bookings",
		Key:     "booking-1",
		Value:   []byte(`{"ok":true}`),
		Headers: map[string]string{"event_type": "booking.created"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(w.messages))
	}
	got := w.messages[0]
	if got.Topic != "bookings" || string(got.Key) != "booking-1" {
		t.Fatalf("unexpected message %+v", got)
	}
	if len(got.Headers) != 1 || got.Headers[0].Key != "event_type" || string(got.Headers[0].Value) != "booking.created" {
		t.Fatalf("unexpected headers %+v", got.Headers)
	}
	if got.Time.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestPublishValidatesAndWrapsErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := &Producer{w: w}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); err == nil {
		t.Fatalf("expected topic validation error")
	}
	err := p.Publish(context.Background(), Message{Topic: "bookings", Value: []byte("x")})
	if err == nil || !errors.Is(err, w.err) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}

	var nilProducer *Producer
	if err := nilProducer.Publish(context.Background(), Message{Topic: "t"}); err == nil {
		t.Fatalf("expected error from nil producer")
	}
}

func TestCloseClosesWriter(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{w: w}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !w.closed {
		t.Fatalf("expected writer closed")
	}
}
