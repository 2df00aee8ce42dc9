package assessment

import (
	"errors"
	"fmt"
)

// IncompleteSubmissionError reports unanswered questions on an assessment
// that requires all answers. Recoverable: the caller may re-prompt and
// resubmit.
type IncompleteSubmissionError struct {
	AssessmentID string
	Missing      []string // question IDs without a recorded answer
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("assessment %s: %d questions unanswered", e.AssessmentID, len(e.Missing))
}

// NoGradableQuestionsError reports an assessment whose questions are all
// manually reviewed; the automatic score is undefined. An authoring defect,
// never defaulted to pass or fail.
type NoGradableQuestionsError struct {
	AssessmentID string
}

func (e *NoGradableQuestionsError) Error() string {
	return fmt.Sprintf("assessment %s has no auto-gradable questions", e.AssessmentID)
}

var (
	ErrNotFound      = errors.New("assessment not found")
	ErrNotInProgress = errors.New("attempt is not in progress")
	ErrNotSubmitted  = errors.New("attempt has not been submitted")
	ErrUnknownItem   = errors.New("no such question in assessment")
)
