package model

import (
	"time"

	"gorm.io/datatypes"
)

// ExamProgress persists the whole progress document as one JSON blob per
// user. TotalExperience is denormalized for leaderboard queries.
type ExamProgress struct {
	UserId          string         `gorm:"type:varchar(100);primaryKey" json:"user_id"`
	Data            datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	TotalExperience int            `gorm:"not null;default:0;index:idx_exam_progress_xp" json:"total_experience"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ExamProgress) TableName() string {
	return "exam_progress"
}
