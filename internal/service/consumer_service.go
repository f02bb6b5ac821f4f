package service

import (
	"context"
	"encoding/json"
	"log"

	"elasticquest-be/internal/dto"
	"elasticquest-be/pkg/events"
	pkgNats "elasticquest-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService processes challenge results off the in-process bus. It
// keeps the Redis leaderboard current and forwards achievement unlocks to
// NATS for the notification pipeline.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	leaderboard ILeaderboardService
	publisher   *pkgNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	leaderboard ILeaderboardService,
	publisher *pkgNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		leaderboard: leaderboard,
		publisher:   publisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChallengeResultMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal challenge result: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing challenge result for user %s (xp=%d)", payload.UserId, payload.TotalExperience)

	if err := cs.leaderboard.RecordScore(ctx, payload.UserId, payload.TotalExperience); err != nil {
		msg.Nack() // Nack for retriable errors
		return
	}

	if cs.publisher != nil {
		for _, achievement := range payload.NewAchievements {
			event := events.NewAchievementUnlocked(payload.UserId, achievement, payload.TotalExperience)
			if err := cs.publisher.Publish(ctx, event); err != nil {
				log.Printf("[ERROR] Failed to publish achievement event: %v", err)
				msg.Nack()
				return
			}
		}
	}

	msg.Ack()
}
