// Package kafka owns the franz-go client used by the history outbox worker.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher produces records synchronously. The outbox worker relies on the
// returned error to decide whether a row may be marked published.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the cluster and ensures the topic exists.
// Returns nil if no seeds are configured (publishing disabled).
func NewPublisher(ctx context.Context, seeds []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	if logger != nil {
		logger.InfoContext(ctx, "kafka publisher ready",
			"topic", topic,
			"seeds", seeds,
		)
	}

	return &Publisher{client: client, topic: topic}, nil
}

// ensureTopic creates the topic if absent. Partition ordering per project
// depends on keyed records, so the topic is created with multiple partitions.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 6, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && resp.Err != kerr.TopicAlreadyExists {
			return fmt.Errorf("create topic %q: %w", topic, resp.Err)
		}
	}
	return nil
}

// Publish produces one keyed record and waits for the broker ack.
func (p *Publisher) Publish(ctx context.Context, key string, value []byte) error {
	record := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %q: %w", p.topic, err)
	}
	return nil
}

// Topic reports the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Close flushes and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
