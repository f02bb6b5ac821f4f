package memory

import (
	"context"
	"time"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// ProgressRepository keeps progress in process memory. It backs the
// service when no database connection string is configured.
type ProgressRepository struct {
	cache *cache.Cache
}

func NewProgressRepository() contract.ProgressRepository {
	return &ProgressRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *ProgressRepository) Get(ctx context.Context, userId string) (*dto.ExamProgress, error) {
	if x, found := r.cache.Get(userId); found {
		stored := x.(dto.ExamProgress)
		return &stored, nil
	}
	return nil, nil
}

func (r *ProgressRepository) Save(ctx context.Context, progress *dto.ExamProgress) error {
	r.cache.Set(progress.UserId, *progress, cache.NoExpiration)
	return nil
}

func (r *ProgressRepository) Delete(ctx context.Context, userId string) error {
	r.cache.Delete(userId)
	return nil
}
