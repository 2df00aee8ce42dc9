package progress

import "context"

// Store is the persistence contract for completion records and assessment
// attempts. Implementations must make UpsertProgress an atomic upsert keyed
// by (user, lesson) and CreateAttempt an atomic count-checked insert, so two
// near-simultaneous calls collapse to one row / one allowed attempt.
type Store interface {
	GetProgress(ctx context.Context, userID, lessonID string) (*ProgressRecord, error) // nil when absent
	UpsertProgress(ctx context.Context, rec ProgressRecord) (ProgressRecord, error)
	ListProgress(ctx context.Context, userID, courseID string) ([]ProgressRecord, error)

	CreateAttempt(ctx context.Context, userID, assessmentID string, maxAttempts int) (AttemptResult, error)
	GetAttempt(ctx context.Context, attemptID string) (AttemptResult, error)
	SaveAttemptResponses(ctx context.Context, attemptID string, responses map[string]interface{}) (AttemptResult, error)
	FinalizeAttempt(ctx context.Context, a AttemptResult) (AttemptResult, error)
	ListAttempts(ctx context.Context, userID, assessmentID string) ([]AttemptResult, error)
}
