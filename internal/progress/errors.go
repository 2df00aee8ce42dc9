package progress

import "fmt"

// EmptyCourseError reports a tree with no lessons; there is no position to
// resume to.
type EmptyCourseError struct {
	CourseID string
}

func (e *EmptyCourseError) Error() string {
	return fmt.Sprintf("course %s has no lessons", e.CourseID)
}

// OutOfRangeError reports navigation indices that do not exist in the tree.
// This is a caller programming error, not a learner-facing condition.
type OutOfRangeError struct {
	ModuleIndex int
	LessonIndex int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("no lesson at module %d, lesson %d", e.ModuleIndex, e.LessonIndex)
}

// AttemptsExhaustedError reports that a learner has used every allowed
// attempt on an assessment.
type AttemptsExhaustedError struct {
	AssessmentID string
	UserID       string
	MaxAttempts  int
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("user %s has exhausted %d attempts on assessment %s", e.UserID, e.MaxAttempts, e.AssessmentID)
}
