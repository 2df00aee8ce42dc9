package progress

// ProgressRecord is the per-learner, per-lesson completion fact. At most one
// record exists per (UserID, LessonID); repeat completions fold into it.
type ProgressRecord struct {
	UserID       string `json:"user_id"`
	LessonID     string `json:"lesson_id"`
	CourseID     string `json:"course_id"`
	Completed    bool   `json:"completed"`
	CompletedAt  *int64 `json:"completed_at,omitempty"` // unix seconds; nil until completed
	TimeSpentMin int    `json:"time_spent_min"`
}

// QuestionOutcome is the graded result for one question within an attempt.
type QuestionOutcome struct {
	Correct     bool    `json:"correct"`
	Points      float64 `json:"points"` // awarded
	MaxPoints   float64 `json:"max_points"`
	NeedsManual bool    `json:"needs_manual,omitempty"`
}

// AttemptResult is one scored pass through an assessment. Immutable once
// graded; a new attempt never mutates a prior one.
type AttemptResult struct {
	ID            string                     `json:"id"`
	AssessmentID  string                     `json:"assessment_id"`
	UserID        string                     `json:"user_id"`
	AttemptNumber int                        `json:"attempt_number"` // 1-based
	Status        string                     `json:"status"`         // in_progress|graded
	Score         float64                    `json:"score"`          // 0..100
	Passed        bool                       `json:"passed"`
	Responses     map[string]interface{}     `json:"responses,omitempty"` // questionID -> response payload
	Outcomes      map[string]QuestionOutcome `json:"outcomes,omitempty"`  // questionID -> graded outcome
	StartedAt     int64                      `json:"started_at"`
	GradedAt      *int64                     `json:"graded_at,omitempty"`
}

// Persisted attempt statuses. Submission and grading are one synchronous
// step, so a stored attempt is only ever in progress or graded.
const (
	AttemptInProgress = "in_progress"
	AttemptGraded     = "graded"
)
