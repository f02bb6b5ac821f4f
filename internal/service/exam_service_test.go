package service

import (
	"context"
	"strings"
	"testing"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/pkg/logger"
	"elasticquest-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []dto.ChallengeResultMessage
}

func (p *fakePublisher) PublishChallengeResult(ctx context.Context, result dto.ChallengeResultMessage) error {
	p.published = append(p.published, result)
	return nil
}

func newTestExamService(t *testing.T) (IExamService, *fakePublisher) {
	t.Helper()
	publisher := &fakePublisher{}
	svc := NewExamService(
		memory.NewProgressRepository(),
		publisher,
		logger.NewZapLogger(t.TempDir()+"/exam.log", false),
	)
	return svc, publisher
}

func TestGetProgressNewUser(t *testing.T) {
	svc, _ := newTestExamService(t)

	progress, err := svc.GetProgress(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", progress.UserId)
	assert.Equal(t, 1, progress.Level)
	assert.Zero(t, progress.TotalExperience)
	assert.Empty(t, progress.CompletedTopics)
	assert.Empty(t, progress.CompletedChallenges)
}

func TestCompleteTopic(t *testing.T) {
	svc, _ := newTestExamService(t)
	ctx := context.Background()

	progress, err := svc.CompleteTopic(ctx, "alice", "topic-shards")
	require.NoError(t, err)
	assert.Equal(t, []string{"topic-shards"}, progress.CompletedTopics)
	assert.Equal(t, 50, progress.TotalExperience)

	// Completing the same topic twice does not double-count.
	progress, err = svc.CompleteTopic(ctx, "alice", "topic-shards")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.TotalExperience)
	assert.Len(t, progress.CompletedTopics, 1)
}

func TestSubmitChallenge(t *testing.T) {
	svc, publisher := newTestExamService(t)
	ctx := context.Background()

	longQuery := `{"query": {"bool": {"must": [{"match": {"title": "search"}}]}}}`
	require.Greater(t, len(longQuery), minValidDSLLength)

	validation, progress, err := svc.SubmitChallenge(ctx, "alice", &dto.ChallengeSubmission{
		ChallengeId: "query-basics-1",
		Code:        longQuery,
		TimeSpent:   120,
	})
	require.NoError(t, err)

	assert.True(t, validation.Correct)
	assert.Equal(t, fullChallengeScore, validation.Score)
	assert.Equal(t, fullChallengeScore, progress.TotalExperience)

	result := progress.CompletedChallenges["query-basics-1"]
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, fullChallengeScore, result.BestScore)
	assert.Equal(t, 120, result.TimeSpent)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "alice", publisher.published[0].UserId)
	assert.Equal(t, fullChallengeScore, publisher.published[0].TotalExperience)
}

func TestSubmitChallengeIncomplete(t *testing.T) {
	svc, _ := newTestExamService(t)

	validation, progress, err := svc.SubmitChallenge(context.Background(), "alice", &dto.ChallengeSubmission{
		ChallengeId: "query-basics-1",
		Code:        "GET /",
	})
	require.NoError(t, err)

	assert.False(t, validation.Correct)
	assert.Equal(t, partialScore, validation.Score)
	assert.Zero(t, progress.TotalExperience)
}

func TestSubmitChallengeExperienceGrantedOnce(t *testing.T) {
	svc, _ := newTestExamService(t)
	ctx := context.Background()
	longQuery := strings.Repeat(`{"match_all": {}} `, 5)

	_, progress, err := svc.SubmitChallenge(ctx, "alice", &dto.ChallengeSubmission{
		ChallengeId: "agg-1",
		Code:        longQuery,
	})
	require.NoError(t, err)
	assert.Equal(t, fullChallengeScore, progress.TotalExperience)

	_, progress, err = svc.SubmitChallenge(ctx, "alice", &dto.ChallengeSubmission{
		ChallengeId: "agg-1",
		Code:        longQuery,
	})
	require.NoError(t, err)
	assert.Equal(t, fullChallengeScore, progress.TotalExperience)
	assert.Equal(t, 2, progress.CompletedChallenges["agg-1"].Attempts)
}

func TestSubmitChallengeTextAnswer(t *testing.T) {
	svc, _ := newTestExamService(t)

	// Free-text answers only need to be non-empty; the query length rule
	// applies to code submissions alone.
	validation, progress, err := svc.SubmitChallenge(context.Background(), "alice", &dto.ChallengeSubmission{
		ChallengeId: "theory-1",
		Answer:      "inverted index",
	})
	require.NoError(t, err)

	assert.True(t, validation.Correct)
	assert.Equal(t, fullChallengeScore, validation.Score)
	assert.Equal(t, fullChallengeScore, progress.TotalExperience)
}

func TestCompleteLevelGrantsBadge(t *testing.T) {
	svc, publisher := newTestExamService(t)
	ctx := context.Background()

	progress, err := svc.CompleteLevel(ctx, "alice", "level-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"level-1"}, progress.CompletedLevels)
	assert.Equal(t, 500, progress.TotalExperience)
	assert.Contains(t, progress.Achievements, "🎓 ES Apprentice")
	assert.Equal(t, "🎓 ES Apprentice", progress.CurrentTitle)

	require.Len(t, publisher.published, 1)
	assert.Contains(t, publisher.published[0].NewAchievements, "🎓 ES Apprentice")

	// Completing it again changes nothing.
	progress, err = svc.CompleteLevel(ctx, "alice", "level-1")
	require.NoError(t, err)
	assert.Equal(t, 500, progress.TotalExperience)
	assert.Len(t, publisher.published, 1)
}

func TestCompleteLevelUnknownLevel(t *testing.T) {
	svc, _ := newTestExamService(t)

	// Levels outside the known curriculum still grant the default reward.
	progress, err := svc.CompleteLevel(context.Background(), "alice", "level-99")
	require.NoError(t, err)

	assert.Equal(t, defaultLevelReward, progress.TotalExperience)
	assert.Empty(t, progress.Achievements)
	assert.Empty(t, progress.CurrentTitle)
}

func TestLevelFromExperience(t *testing.T) {
	svc, _ := newTestExamService(t)
	ctx := context.Background()

	// level-2 and level-3 completions give 1000 + 2000 xp.
	_, err := svc.CompleteLevel(ctx, "alice", "level-2")
	require.NoError(t, err)
	progress, err := svc.CompleteLevel(ctx, "alice", "level-3")
	require.NoError(t, err)

	assert.Equal(t, 3000, progress.TotalExperience)
	assert.Equal(t, 4, progress.Level) // 3000/1000 + 1
}

func TestResetProgress(t *testing.T) {
	svc, _ := newTestExamService(t)
	ctx := context.Background()

	_, err := svc.CompleteTopic(ctx, "alice", "topic-1")
	require.NoError(t, err)

	progress, err := svc.ResetProgress(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, progress.TotalExperience)
	assert.Empty(t, progress.CompletedTopics)

	progress, err = svc.GetProgress(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, progress.TotalExperience)
}

func TestGetStats(t *testing.T) {
	svc, _ := newTestExamService(t)
	ctx := context.Background()
	longQuery := strings.Repeat(`{"term": {"status": "active"}} `, 3)

	_, _, err := svc.SubmitChallenge(ctx, "alice", &dto.ChallengeSubmission{
		ChallengeId: "query-1",
		Code:        longQuery,
		TimeSpent:   180,
	})
	require.NoError(t, err)
	_, _, err = svc.SubmitChallenge(ctx, "alice", &dto.ChallengeSubmission{
		ChallengeId: "agg-1",
		Code:        "short",
		TimeSpent:   60,
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalChallenges)
	assert.Equal(t, 4, stats.TotalStudyTime) // (180+60)/60
	assert.Equal(t, 50, stats.SuccessRate)
	assert.Contains(t, stats.StrongCategories, "query")
}
