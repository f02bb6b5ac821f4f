package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/internal/repository/contract"
)

const (
	topicExperience    = 50
	fullChallengeScore = 100
	partialScore       = 50
	experiencePerLevel = 1000
	minValidDSLLength  = 50
	defaultLevelReward = 100
)

// levelRewards maps a completed curriculum level to its experience bonus.
var levelRewards = map[string]int{
	"level-1": 500,
	"level-2": 1000,
	"level-3": 2000,
	"level-4": 5000,
}

// levelAchievements maps a completed curriculum level to the badge it unlocks.
var levelAchievements = map[string]string{
	"level-1": "🎓 ES Apprentice",
	"level-2": "🔍 Query Master",
	"level-3": "🏆 ES Architect",
	"level-4": "👑 Certified Engineer",
}

type IExamService interface {
	GetProgress(ctx context.Context, userId string) (*dto.ExamProgress, error)
	SubmitChallenge(ctx context.Context, userId string, submission *dto.ChallengeSubmission) (*dto.ChallengeValidationResult, *dto.ExamProgress, error)
	CompleteTopic(ctx context.Context, userId, topicId string) (*dto.ExamProgress, error)
	CompleteLevel(ctx context.Context, userId, levelId string) (*dto.ExamProgress, error)
	ResetProgress(ctx context.Context, userId string) (*dto.ExamProgress, error)
	GetStats(ctx context.Context, userId string) (*dto.ExamStats, error)
}

type examService struct {
	repo      contract.ProgressRepository
	publisher IPublisherService
	logger    logger.ILogger
}

func NewExamService(repo contract.ProgressRepository, publisher IPublisherService, log logger.ILogger) IExamService {
	return &examService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

func newProgress(userId string) *dto.ExamProgress {
	return &dto.ExamProgress{
		UserId:              userId,
		CompletedTopics:     []string{},
		CompletedChallenges: map[string]dto.ChallengeResult{},
		CompletedLevels:     []string{},
		Achievements:        []string{},
		Level:               1,
	}
}

func (s *examService) GetProgress(ctx context.Context, userId string) (*dto.ExamProgress, error) {
	progress, err := s.repo.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = newProgress(userId)
	}
	return progress, nil
}

func (s *examService) SubmitChallenge(ctx context.Context, userId string, submission *dto.ChallengeSubmission) (*dto.ChallengeValidationResult, *dto.ExamProgress, error) {
	progress, err := s.GetProgress(ctx, userId)
	if err != nil {
		return nil, nil, err
	}

	validation := validateChallenge(submission)

	now := time.Now().UTC().Format(time.RFC3339)
	result := progress.CompletedChallenges[submission.ChallengeId]
	previousBest := result.BestScore
	result.Attempts++
	result.Score = validation.Score
	result.TimeSpent += submission.TimeSpent
	result.LastAttempt = now
	if validation.Score > result.BestScore {
		result.BestScore = validation.Score
	}
	progress.CompletedChallenges[submission.ChallengeId] = result

	// Experience is granted once per challenge, on the first correct attempt.
	var newAchievements []string
	if validation.Correct && previousBest < fullChallengeScore {
		newAchievements = s.grantExperience(progress, validation.Score)
	}

	s.refreshStats(progress)

	if err := s.repo.Save(ctx, progress); err != nil {
		return nil, nil, err
	}

	msg := dto.ChallengeResultMessage{
		UserId:          userId,
		ChallengeId:     submission.ChallengeId,
		Score:           validation.Score,
		TotalExperience: progress.TotalExperience,
		NewAchievements: newAchievements,
	}
	if err := s.publisher.PublishChallengeResult(ctx, msg); err != nil {
		s.logger.Warn("ExamService", "Failed to publish challenge result", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}

	return &validation, progress, nil
}

func (s *examService) CompleteTopic(ctx context.Context, userId, topicId string) (*dto.ExamProgress, error) {
	progress, err := s.GetProgress(ctx, userId)
	if err != nil {
		return nil, err
	}

	if containsString(progress.CompletedTopics, topicId) {
		return progress, nil
	}

	progress.CompletedTopics = append(progress.CompletedTopics, topicId)
	s.grantExperience(progress, topicExperience)

	if err := s.repo.Save(ctx, progress); err != nil {
		return nil, err
	}
	s.logger.Info("ExamService", "Topic completed", map[string]interface{}{
		"user_id":  userId,
		"topic_id": topicId,
	})
	return progress, nil
}

func (s *examService) CompleteLevel(ctx context.Context, userId, levelId string) (*dto.ExamProgress, error) {
	progress, err := s.GetProgress(ctx, userId)
	if err != nil {
		return nil, err
	}

	if containsString(progress.CompletedLevels, levelId) {
		return progress, nil
	}

	progress.CompletedLevels = append(progress.CompletedLevels, levelId)

	reward, ok := levelRewards[levelId]
	if !ok {
		reward = defaultLevelReward
	}
	newAchievements := s.grantExperience(progress, reward)

	if badge, ok := levelAchievements[levelId]; ok && !containsString(progress.Achievements, badge) {
		progress.Achievements = append(progress.Achievements, badge)
		progress.CurrentTitle = badge
		newAchievements = append(newAchievements, badge)
	}

	if err := s.repo.Save(ctx, progress); err != nil {
		return nil, err
	}

	if len(newAchievements) > 0 {
		msg := dto.ChallengeResultMessage{
			UserId:          userId,
			Score:           reward,
			TotalExperience: progress.TotalExperience,
			NewAchievements: newAchievements,
		}
		if err := s.publisher.PublishChallengeResult(ctx, msg); err != nil {
			s.logger.Warn("ExamService", "Failed to publish level completion", map[string]interface{}{
				"user_id": userId,
				"error":   err.Error(),
			})
		}
	}

	s.logger.Info("ExamService", "Level completed", map[string]interface{}{
		"user_id":  userId,
		"level_id": levelId,
		"reward":   reward,
	})
	return progress, nil
}

func (s *examService) ResetProgress(ctx context.Context, userId string) (*dto.ExamProgress, error) {
	if err := s.repo.Delete(ctx, userId); err != nil {
		return nil, err
	}
	progress := newProgress(userId)
	if err := s.repo.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *examService) GetStats(ctx context.Context, userId string) (*dto.ExamStats, error) {
	progress, err := s.GetProgress(ctx, userId)
	if err != nil {
		return nil, err
	}
	s.refreshStats(progress)
	return &progress.Stats, nil
}

// grantExperience adds experience, recomputes the level and returns any
// level-up achievements unlocked by the gain.
func (s *examService) grantExperience(progress *dto.ExamProgress, amount int) []string {
	progress.TotalExperience += amount
	newLevel := progress.TotalExperience/experiencePerLevel + 1

	var unlocked []string
	if newLevel > progress.Level {
		unlocked = append(unlocked, fmt.Sprintf("Reached level %d", newLevel))
	}
	progress.Level = newLevel
	return unlocked
}

func (s *examService) refreshStats(progress *dto.ExamProgress) {
	stats := dto.ExamStats{}

	passed := 0
	categoryScores := map[string][]int{}
	for challengeId, result := range progress.CompletedChallenges {
		stats.TotalChallenges++
		stats.TotalStudyTime += result.TimeSpent / 60
		if result.BestScore >= fullChallengeScore {
			passed++
		}
		category := challengeCategory(challengeId)
		categoryScores[category] = append(categoryScores[category], result.BestScore)
	}

	if stats.TotalChallenges > 0 {
		stats.SuccessRate = passed * 100 / stats.TotalChallenges
	}

	var categories []string
	for category := range categoryScores {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		scores := categoryScores[category]
		sum := 0
		for _, score := range scores {
			sum += score
		}
		avg := sum / len(scores)
		if avg >= fullChallengeScore {
			stats.StrongCategories = append(stats.StrongCategories, category)
		} else if avg < partialScore {
			stats.WeakCategories = append(stats.WeakCategories, category)
		}
	}

	progress.Stats = stats
}

// validateChallenge checks a submission. A code submission needs a
// non-trivial query body; a free-text answer only needs to be non-empty.
func validateChallenge(submission *dto.ChallengeSubmission) dto.ChallengeValidationResult {
	code := strings.TrimSpace(submission.Code)

	var correct bool
	if code != "" {
		correct = len(code) > minValidDSLLength
	} else {
		correct = strings.TrimSpace(submission.Answer) != ""
	}

	if correct {
		return dto.ChallengeValidationResult{
			Correct:  true,
			Score:    fullChallengeScore,
			Feedback: "Great work! Your answer solves the challenge.",
		}
	}

	return dto.ChallengeValidationResult{
		Correct:  false,
		Score:    partialScore,
		Feedback: "Your answer looks incomplete. Review the challenge requirements and try again.",
	}
}

func challengeCategory(challengeId string) string {
	if idx := strings.LastIndex(challengeId, "-"); idx > 0 {
		return challengeId[:idx]
	}
	return challengeId
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
