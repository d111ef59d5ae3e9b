package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/IBM/sarama"
)

// MessageHandler handles one consumed message value.
// shouldMark=false (or an error) leaves the offset unmarked so the message is retried.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer wraps a sarama consumer group around a MessageHandler
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	ready   chan bool
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
	// OldestOffset starts a new group from the beginning of the topic
	OldestOffset bool
}

// NewSaramaConfig returns the consumer group settings shared by all consumers
func NewSaramaConfig(oldest bool) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.ClientID = "bgloop"
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	if oldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	cfg.Consumer.Return.Errors = true
	return cfg
}

// NewConsumer connects a consumer group
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, NewSaramaConfig(config.OldestOffset))
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: config.Handler,
		topic:   config.Topic,
		groupID: config.GroupID,
		ready:   make(chan bool),
	}, nil
}

// Start joins the group and blocks until the first session is set up
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{
		handler: c.handler,
		ready:   c.ready,
	}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
					log.Println("Kafka consumer stopped")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}

			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close leaves the group
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler
type groupHandler struct {
	handler MessageHandler
	ready   chan bool
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim hands every message of the claim to the MessageHandler
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			log.Printf("📥 Received Kafka message: partition=%d, offset=%d, key=%s",
				message.Partition, message.Offset, string(message.Key))

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				log.Printf("❌ Failed to handle message: %v", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON messages into T before processing
type TypedMessageHandler[T any] struct {
	// Validate checks if the message should be processed
	Validate func(msg *T) bool
	// Process handles the actual message processing
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable and invalid messages so they are skipped
	AlwaysMark bool
}

// HandleMessage implements MessageHandler
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("❌ Failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}

	return true, nil
}
