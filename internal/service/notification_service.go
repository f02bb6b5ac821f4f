package service

import (
	"context"
	"fmt"
	"time"

	"elasticquest-be/internal/model"
	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/pkg/events"
	pkgNats "elasticquest-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userId string, notification model.Notification)
	Broadcast(notification model.Notification)
}

// NotificationService turns exam events from NATS into websocket
// notifications.
type NotificationService struct {
	subscriber *pkgNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pkgNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("exam.>", "exam-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to exam.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	payload := event.Payload()
	userId, _ := payload["user_id"].(string)
	if userId == "" {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s has no user_id, dropping", event.EventType()), nil)
		return nil
	}

	notif := s.buildNotification(userId, event)
	if s.delivery != nil {
		s.delivery.Send(userId, notif)
	}
	return nil
}

func (s *NotificationService) buildNotification(userId string, event events.Event) model.Notification {
	payload := event.Payload()

	title := "Exam update"
	message := ""
	switch event.EventType() {
	case "ACHIEVEMENT_UNLOCKED":
		title = "Achievement unlocked!"
		achievement, _ := payload["achievement"].(string)
		message = fmt.Sprintf("You earned %s", achievement)
	case "LEVEL_UP":
		title = "Level up!"
		message = fmt.Sprintf("You reached level %v", payload["level"])
	}

	return model.Notification{
		Id:        uuid.NewString(),
		UserId:    userId,
		Type:      event.EventType(),
		Title:     title,
		Message:   message,
		Metadata:  payload,
		CreatedAt: time.Now(),
	}
}
