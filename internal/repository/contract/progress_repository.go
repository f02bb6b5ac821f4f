package contract

import (
	"context"

	"elasticquest-be/internal/dto"
)

// ProgressRepository stores exam progress documents keyed by user id.
// Get returns (nil, nil) when the user has no saved progress yet.
type ProgressRepository interface {
	Get(ctx context.Context, userId string) (*dto.ExamProgress, error)
	Save(ctx context.Context, progress *dto.ExamProgress) error
	Delete(ctx context.Context, userId string) error
}
