package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
)

const dialTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Message is a single record handed to Publish.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Producer writes records synchronously so callers only mark work done once
// every in-sync replica has acknowledged it.
type Producer struct {
	w        messageWriter
	brokers  []string
	clientID string
}

// NewProducer builds a producer for the configured brokers. Messages are
// partitioned by key hash so one booking's events stay ordered.
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	brokers := cleanBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		Transport: &kafka.Transport{
			ClientID:    cfg.ClientID,
			DialTimeout: dialTimeout,
		},
	}
	return &Producer{w: w, brokers: brokers, clientID: cfg.ClientID}, nil
}

// Publish writes msg and blocks until the broker acknowledges it.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p == nil || p.w == nil {
		return errors.New("kafka producer not initialized")
	}
	if msg.Topic == "" {
		return errors.New("kafka topic is required")
	}
	record := kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  time.Now().UTC(),
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	if err := p.w.WriteMessages(ctx, record); err != nil {
		return fmt.Errorf("write kafka message to %s: %w", msg.Topic, err)
	}
	return nil
}

// Ping dials the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	if p == nil || len(p.brokers) == 0 {
		return errors.New("kafka producer not initialized")
	}
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka brokers unreachable: %w", lastErr)
}

// Close flushes pending writes and releases connections.
func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

func cleanBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
