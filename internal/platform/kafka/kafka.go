// Package kafka builds the franz-go client used to relay history entries.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"medledger/internal/platform/config"
)

const (
	defaultPartitions  int32 = 3
	defaultReplication int16 = 1
)

// NewClient returns a producer client for cfg, or nil when no brokers are
// configured. The history topic is created if missing.
func NewClient(ctx context.Context, cfg config.KafkaConfig) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.HistoryTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	if err := EnsureTopic(ctx, client, cfg.HistoryTopic); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// EnsureTopic creates topic if it does not already exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, defaultPartitions, defaultReplication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
