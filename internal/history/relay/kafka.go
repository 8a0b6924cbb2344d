package relay

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"medledger/internal/history"
)

// KafkaPublisher produces outbox records keyed by entry id.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(client *kgo.Client, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, records []history.OutboxRecord) error {
	batch := make([]*kgo.Record, len(records))
	for i, r := range records {
		batch[i] = &kgo.Record{
			Topic: p.topic,
			Key:   []byte(r.EntryID.String()),
			Value: r.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "content-type", Value: []byte("application/json")},
			},
		}
	}
	if err := p.client.ProduceSync(ctx, batch...).FirstErr(); err != nil {
		return fmt.Errorf("produce history records: %w", err)
	}
	return nil
}
