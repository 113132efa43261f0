// Package watermill adapts Watermill publishers and subscribers to the
// messaging interfaces. The in-process gochannel pub/sub backs the default
// memory broker; Kafka goes through watermill-kafka on Sarama.
package watermill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"
	wm "github.com/ThreeDotsLabs/watermill"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/medaimane/AthleticEdge/internal/messaging"
)

// keyMetadata carries the partition key of a message.
const keyMetadata = "partition_key"

type broker struct {
	publisher  message.Publisher
	subscriber func(groupID string) (message.Subscriber, error)

	mu      sync.Mutex
	closers []func() error
}

func (b *broker) onClose(fn func() error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closers = append(b.closers, fn)
}

// NewGoChannelBroker creates an in-process broker. Messages are delivered to
// the subscribers present at publish time and are not retained otherwise.
func NewGoChannelBroker(logger *slog.Logger) messaging.Broker {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, wm.NewSlogLogger(logger))

	return &broker{
		publisher:  pubSub,
		subscriber: func(string) (message.Subscriber, error) { return pubSub, nil },
		closers:    []func() error{pubSub.Close},
	}
}

// NewKafkaBroker creates a broker on watermill-kafka. Each consumer group gets
// its own Sarama subscriber.
func NewKafkaBroker(brokers []string, logger *slog.Logger) (messaging.Broker, error) {
	wlog := wm.NewSlogLogger(logger)

	pubCfg := wmkafka.DefaultSaramaSyncPublisherConfig()
	pubCfg.Producer.Partitioner = sarama.NewHashPartitioner
	publisher, err := wmkafka.NewPublisher(wmkafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             wmkafka.NewWithPartitioningMarshaler(partitionKey),
		OverwriteSaramaConfig: pubCfg,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	b := &broker{publisher: publisher, closers: []func() error{publisher.Close}}
	b.subscriber = func(groupID string) (message.Subscriber, error) {
		subCfg := wmkafka.DefaultSaramaSubscriberConfig()
		subCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
		sub, err := wmkafka.NewSubscriber(wmkafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           wmkafka.DefaultMarshaler{},
			OverwriteSaramaConfig: subCfg,
			ConsumerGroup:         groupID,
		}, wlog)
		if err != nil {
			return nil, err
		}
		b.onClose(sub.Close)
		return sub, nil
	}
	return b, nil
}

func partitionKey(topic string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(keyMetadata), nil
}

func (b *broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(keyMetadata, key)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *broker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	sub, err := b.subscriber(groupID)
	if err != nil {
		slog.Error("Failed to create subscriber", "topic", topic, "group", groupID, "err", err)
		return
	}
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Failed to subscribe", "topic", topic, "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer shutting down", "topic", topic)
			return
		case msg, ok := <-messages:
			if !ok {
				slog.Info("Consumer channel closed", "topic", topic)
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				slog.Error("Error handling message", "topic", topic, "message_uuid", msg.UUID, "err", err)
			}
			// Failed messages are logged and dropped, never redelivered.
			msg.Ack()
		}
	}
}

func (b *broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for _, c := range b.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
