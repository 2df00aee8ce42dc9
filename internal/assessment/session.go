package assessment

import "context"

// State of a single attempt's lifecycle. A session comes into being
// in progress (creation is the start); transitions only move forward:
// InProgress -> Submitted -> Graded.
type State string

const (
	StateInProgress State = "in_progress"
	StateSubmitted  State = "submitted"
	StateGraded     State = "graded"
)

// Session is the pure state machine for one attempt. It accumulates answers
// locally; persistence and time limits belong to the caller. Grading is a
// synchronous computation performed exactly once on submission.
type Session struct {
	assessment Assessment
	state      State
	answers    map[string]interface{}
	graded     *Graded
}

// NewSession hydrates a session in InProgress with any previously saved
// answers (nil for a fresh attempt).
func NewSession(a Assessment, saved map[string]interface{}) *Session {
	answers := map[string]interface{}{}
	for k, v := range saved {
		answers[k] = v
	}
	return &Session{assessment: a, state: StateInProgress, answers: answers}
}

func (s *Session) State() State { return s.state }

// Answers returns a copy of the captured answers.
func (s *Session) Answers() map[string]interface{} {
	out := make(map[string]interface{}, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Answer captures a response for one question. InProgress -> InProgress; no
// side effect beyond local accumulation.
func (s *Session) Answer(questionID string, response interface{}) error {
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	found := false
	for _, q := range s.assessment.Questions {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownItem
	}
	s.answers[questionID] = response
	return nil
}

// Submit transitions InProgress -> Submitted. With forced=false the
// require-all-questions policy is enforced; forced submission (time-limit
// expiry, signalled by the caller's clock) skips the guard.
func (s *Session) Submit(forced bool) error {
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if s.assessment.RequireAll && !forced {
		var missing []string
		for _, q := range s.assessment.Questions {
			if _, ok := s.answers[q.ID]; !ok {
				missing = append(missing, q.ID)
			}
		}
		if len(missing) > 0 {
			return &IncompleteSubmissionError{AssessmentID: s.assessment.ID, Missing: missing}
		}
	}
	s.state = StateSubmitted
	return nil
}

// Grade transitions Submitted -> Graded through the evaluator. Immediate and
// never retried; the result is cached on the session.
func (s *Session) Grade(ctx context.Context, ev *Evaluator) (Graded, error) {
	if s.state != StateSubmitted {
		return Graded{}, ErrNotSubmitted
	}
	g, err := ev.Grade(ctx, s.assessment, s.answers)
	if err != nil {
		return Graded{}, err
	}
	s.state = StateGraded
	s.graded = &g
	return g, nil
}
