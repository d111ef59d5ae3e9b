package kafka

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bgloop/planner"
)

// PlanCreator is the part of the background service the consumer needs
type PlanCreator interface {
	CreatePlan(ctx context.Context, req planner.Request) (*planner.Plan, error)
}

// NewPlanHandler validates plan requests and hands them to the creator.
// Invalid requests are marked and dropped; planning failures are retried.
func NewPlanHandler(creator PlanCreator) *TypedMessageHandler[planner.Request] {
	return &TypedMessageHandler[planner.Request]{
		Validate: func(msg *planner.Request) bool {
			if msg.UUID == "" {
				log.Printf("❌ Plan request missing UUID, skipping")
				return false
			}
			if err := msg.Validate(); err != nil {
				log.Printf("⚠️  Skipping plan request %s: %v", msg.UUID, err)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *planner.Request) error {
			log.Printf("🎬 Planning background: UUID=%s", msg.UUID)

			plan, err := creator.CreatePlan(ctx, *msg)
			if err != nil {
				log.Printf("❌ Failed to plan %s: %v", msg.UUID, err)
				return err
			}

			log.Printf("✅ Planned background: UUID=%s frames=%d loops=%d", plan.UUID, plan.Timing.DurationInFrames, plan.Loops)
			return nil
		},
		AlwaysMark: true,
	}
}

// RunPlanConsumer consumes plan requests until SIGINT/SIGTERM
func RunPlanConsumer(brokers []string, topic, groupID string, creator PlanCreator) error {
	consumer, err := NewConsumer(ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		Handler: NewPlanHandler(creator),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigterm:
		log.Println("Received termination signal")
	case <-ctx.Done():
		log.Println("Context canceled")
	}

	cancel()

	// Give in-flight plans a moment to finish
	time.Sleep(2 * time.Second)

	return consumer.Close()
}
