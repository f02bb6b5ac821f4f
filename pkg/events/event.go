package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "ACHIEVEMENT_UNLOCKED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic event implementation used across the system.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewAchievementUnlocked is emitted when a user earns a new badge.
func NewAchievementUnlocked(userId, achievement string, totalExperience int) Event {
	return BaseEvent{
		Type: "ACHIEVEMENT_UNLOCKED",
		Data: map[string]interface{}{
			"user_id":          userId,
			"achievement":      achievement,
			"total_experience": totalExperience,
		},
		OccurredAt: time.Now(),
	}
}

// NewLevelUp is emitted when a user's experience crosses a level boundary.
func NewLevelUp(userId string, level, totalExperience int) Event {
	return BaseEvent{
		Type: "LEVEL_UP",
		Data: map[string]interface{}{
			"user_id":          userId,
			"level":            level,
			"total_experience": totalExperience,
		},
		OccurredAt: time.Now(),
	}
}
