package assessment

import (
	"context"

	"github.com/pathwise/pathwise-lms/internal/progress"
)

// AssessmentStore is the content-provider slice the attempt flow needs.
type AssessmentStore interface {
	PutAssessment(ctx context.Context, a Assessment) error
	GetAssessment(ctx context.Context, id string) (Assessment, error)
}

// Service drives the attempt lifecycle against the shared progress store.
// Each call is a single transaction from the engine's point of view; the
// service keeps no state between calls.
type Service struct {
	assessments AssessmentStore
	attempts    progress.Store
	evaluator   *Evaluator
}

func NewService(assessments AssessmentStore, attempts progress.Store, ev *Evaluator) *Service {
	if ev == nil {
		ev = NewEvaluator(nil)
	}
	return &Service{assessments: assessments, attempts: attempts, evaluator: ev}
}

// StartAttempt checks the attempt budget and creates the next attempt. The
// count check and the insert are atomic at the store; exhausted budgets
// surface as *progress.AttemptsExhaustedError.
func (s *Service) StartAttempt(ctx context.Context, userID, assessmentID string) (progress.AttemptResult, error) {
	a, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return progress.AttemptResult{}, err
	}
	return s.attempts.CreateAttempt(ctx, userID, a.ID, a.MaxAttempts)
}

// SaveResponses merges answer captures into an in-progress attempt after
// validating each question ID against the assessment.
func (s *Service) SaveResponses(ctx context.Context, attemptID string, responses map[string]interface{}) (progress.AttemptResult, error) {
	att, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return progress.AttemptResult{}, err
	}
	if att.Status != progress.AttemptInProgress {
		return progress.AttemptResult{}, ErrNotInProgress
	}
	a, err := s.assessments.GetAssessment(ctx, att.AssessmentID)
	if err != nil {
		return progress.AttemptResult{}, err
	}
	sess := NewSession(a, att.Responses)
	for qid, resp := range responses {
		if err := sess.Answer(qid, resp); err != nil {
			return progress.AttemptResult{}, err
		}
	}
	return s.attempts.SaveAttemptResponses(ctx, attemptID, responses)
}

// Submit runs the InProgress -> Submitted -> Graded transitions and persists
// the immutable graded result. forced marks a time-limit expiry submission,
// which skips the require-all-questions guard; it is ignored when the
// assessment carries no time limit, so untimed assessments cannot be forced
// past the guard.
func (s *Service) Submit(ctx context.Context, attemptID string, forced bool) (progress.AttemptResult, error) {
	att, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return progress.AttemptResult{}, err
	}
	if att.Status != progress.AttemptInProgress {
		return progress.AttemptResult{}, ErrNotInProgress
	}
	a, err := s.assessments.GetAssessment(ctx, att.AssessmentID)
	if err != nil {
		return progress.AttemptResult{}, err
	}

	if a.TimeLimitMin == 0 {
		forced = false
	}
	sess := NewSession(a, att.Responses)
	if err := sess.Submit(forced); err != nil {
		return progress.AttemptResult{}, err
	}
	graded, err := sess.Grade(ctx, s.evaluator)
	if err != nil {
		return progress.AttemptResult{}, err
	}

	att.Score = graded.Score
	att.Passed = graded.Passed
	att.Outcomes = graded.Outcomes
	return s.attempts.FinalizeAttempt(ctx, att)
}

// Attempt exposes a single attempt for owners and reviewers.
func (s *Service) Attempt(ctx context.Context, attemptID string) (progress.AttemptResult, error) {
	return s.attempts.GetAttempt(ctx, attemptID)
}

// Attempts lists a learner's attempts on one assessment, ordered by number.
func (s *Service) Attempts(ctx context.Context, userID, assessmentID string) ([]progress.AttemptResult, error) {
	return s.attempts.ListAttempts(ctx, userID, assessmentID)
}
