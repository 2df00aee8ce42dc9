package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/pathwise/pathwise-lms/internal/progress"
)

type fakeAssessmentStore struct {
	byID map[string]Assessment
}

func (f *fakeAssessmentStore) PutAssessment(_ context.Context, a Assessment) error {
	if f.byID == nil {
		f.byID = map[string]Assessment{}
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAssessmentStore) GetAssessment(_ context.Context, id string) (Assessment, error) {
	a, ok := f.byID[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func newTestService(t *testing.T, a Assessment) *Service {
	t.Helper()
	store := &fakeAssessmentStore{}
	if err := store.PutAssessment(context.Background(), a); err != nil {
		t.Fatalf("PutAssessment: %v", err)
	}
	return NewService(store, progress.NewMemoryStore(), nil)
}

func TestServiceAttemptFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, quizFixture())

	att, err := svc.StartAttempt(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if att.AttemptNumber != 1 || att.Status != progress.AttemptInProgress {
		t.Fatalf("attempt = %+v", att)
	}

	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q1": 0}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q2": "hi"}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}

	got, err := svc.Submit(ctx, att.ID, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Status != progress.AttemptGraded || got.Score != 100 || !got.Passed {
		t.Fatalf("graded attempt = %+v", got)
	}
	if !got.Outcomes["q1"].Correct || !got.Outcomes["q2"].Correct {
		t.Fatalf("outcomes = %+v", got.Outcomes)
	}

	// graded attempts are immutable
	if _, err := svc.Submit(ctx, att.ID, false); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("resubmit: %v", err)
	}
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q1": 1}); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("save after grade: %v", err)
	}
}

func TestServiceAttemptBudget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, quizFixture()) // MaxAttempts: 3

	for i := 1; i <= 3; i++ {
		att, err := svc.StartAttempt(ctx, "u1", "as1")
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if att.AttemptNumber != i {
			t.Fatalf("attempt number = %d, want %d", att.AttemptNumber, i)
		}
	}
	_, err := svc.StartAttempt(ctx, "u1", "as1")
	var exhausted *progress.AttemptsExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want AttemptsExhaustedError, got %v", err)
	}

	list, err := svc.Attempts(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("attempt list len = %d", len(list))
	}
}

func TestServiceSaveRejectsUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, quizFixture())

	att, err := svc.StartAttempt(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"ghost": 1}); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown question: %v", err)
	}
}

func TestServiceSubmitRequireAll(t *testing.T) {
	ctx := context.Background()
	a := quizFixture()
	a.RequireAll = true
	svc := newTestService(t, a)

	att, err := svc.StartAttempt(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q1": 0}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}

	_, err = svc.Submit(ctx, att.ID, false)
	var inc *IncompleteSubmissionError
	if !errors.As(err, &inc) {
		t.Fatalf("want IncompleteSubmissionError, got %v", err)
	}

	// the attempt survives the rejection and a forced submit grades it
	got, err := svc.Submit(ctx, att.ID, true)
	if err != nil {
		t.Fatalf("forced submit: %v", err)
	}
	if got.Status != progress.AttemptGraded || got.Score != 50 {
		t.Fatalf("forced graded = %+v", got)
	}
}

func TestServiceForcedSubmitIgnoredWithoutTimeLimit(t *testing.T) {
	ctx := context.Background()
	a := quizFixture()
	a.RequireAll = true
	a.TimeLimitMin = 0
	svc := newTestService(t, a)

	att, err := svc.StartAttempt(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	// no time limit: the expiry flag must not bypass the completeness guard
	_, err = svc.Submit(ctx, att.ID, true)
	var inc *IncompleteSubmissionError
	if !errors.As(err, &inc) {
		t.Fatalf("want IncompleteSubmissionError, got %v", err)
	}
	if len(inc.Missing) != 2 {
		t.Fatalf("Missing = %v", inc.Missing)
	}

	got, err := svc.Attempt(ctx, att.ID)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if got.Status != progress.AttemptInProgress {
		t.Fatalf("rejected submit changed status to %q", got.Status)
	}

	// answering everything still submits normally
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q1": 0, "q2": "hi"}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	if _, err := svc.Submit(ctx, att.ID, true); err != nil {
		t.Fatalf("complete submit: %v", err)
	}
}

func TestServiceUnknownAssessment(t *testing.T) {
	svc := newTestService(t, quizFixture())
	if _, err := svc.StartAttempt(context.Background(), "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown assessment: %v", err)
	}
}
