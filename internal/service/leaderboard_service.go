package service

import (
	"context"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "exam:leaderboard"

type ILeaderboardService interface {
	RecordScore(ctx context.Context, userId string, totalExperience int) error
	Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

// leaderboardService ranks users by total experience in a Redis sorted
// set. With no Redis configured it degrades to a no-op.
type leaderboardService struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewLeaderboardService(rdb *redis.Client, log logger.ILogger) ILeaderboardService {
	return &leaderboardService{rdb: rdb, logger: log}
}

func (s *leaderboardService) RecordScore(ctx context.Context, userId string, totalExperience int) error {
	if s.rdb == nil {
		return nil
	}

	err := s.rdb.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(totalExperience),
		Member: userId,
	}).Err()
	if err != nil {
		s.logger.Warn("LeaderboardService", "Failed to record score", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}
	return err
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if s.rdb == nil {
		return []dto.LeaderboardEntry{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	results, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		userId, _ := z.Member.(string)
		entries = append(entries, dto.LeaderboardEntry{
			Rank:       i + 1,
			UserId:     userId,
			Experience: int(z.Score),
		})
	}
	return entries, nil
}
