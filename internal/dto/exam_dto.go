package dto

// ChallengeResult tracks one challenge's attempt history.
type ChallengeResult struct {
	Score       int    `json:"score"`
	TimeSpent   int    `json:"timeSpent"`
	Attempts    int    `json:"attempts"`
	LastAttempt string `json:"lastAttempt"`
	BestScore   int    `json:"bestScore"`
}

// ExamStats aggregates study statistics derived from challenge history.
type ExamStats struct {
	TotalStudyTime   int      `json:"totalStudyTime"` // minutes
	TotalChallenges  int      `json:"totalChallenges"`
	SuccessRate      int      `json:"successRate"` // percent
	StrongCategories []string `json:"strongCategories"`
	WeakCategories   []string `json:"weakCategories"`
}

// ExamProgress is the full learning state for one user.
type ExamProgress struct {
	UserId              string                     `json:"userId"`
	CompletedTopics     []string                   `json:"completedTopics"`
	CompletedChallenges map[string]ChallengeResult `json:"completedChallenges"`
	CompletedLevels     []string                   `json:"completedLevels"`
	Achievements        []string                   `json:"achievements"`
	Level               int                        `json:"level"`
	TotalExperience     int                        `json:"totalExperience"`
	CurrentTitle        string                     `json:"currentTitle,omitempty"`
	Stats               ExamStats                  `json:"stats"`
}

// ChallengeSubmission is a challenge answer to validate.
type ChallengeSubmission struct {
	ChallengeId string `json:"challengeId" validate:"required"`
	Answer      string `json:"answer"`
	Code        string `json:"code"`
	TimeSpent   int    `json:"timeSpent"` // seconds
}

type ChallengeValidationResult struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// ChallengeResultMessage is the event payload published after a submission.
type ChallengeResultMessage struct {
	UserId          string   `json:"user_id"`
	ChallengeId     string   `json:"challenge_id"`
	Score           int      `json:"score"`
	TotalExperience int      `json:"total_experience"`
	NewAchievements []string `json:"new_achievements,omitempty"`
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserId     string `json:"userId"`
	Experience int    `json:"experience"`
}
