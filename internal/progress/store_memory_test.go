package progress

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreAttemptBudget(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 1; i <= 3; i++ {
		a, err := store.CreateAttempt(ctx, "u1", "as1", 3)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if a.AttemptNumber != i {
			t.Fatalf("attempt number = %d, want %d", a.AttemptNumber, i)
		}
		if a.Status != AttemptInProgress {
			t.Fatalf("status = %q", a.Status)
		}
	}

	_, err := store.CreateAttempt(ctx, "u1", "as1", 3)
	var exhausted *AttemptsExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want AttemptsExhaustedError, got %v", err)
	}
	if exhausted.MaxAttempts != 3 || exhausted.UserID != "u1" {
		t.Fatalf("error fields = %+v", exhausted)
	}

	// the budget is per (user, assessment)
	if _, err := store.CreateAttempt(ctx, "u2", "as1", 3); err != nil {
		t.Fatalf("other user blocked: %v", err)
	}
	if _, err := store.CreateAttempt(ctx, "u1", "as2", 3); err != nil {
		t.Fatalf("other assessment blocked: %v", err)
	}
}

func TestMemoryStoreSaveResponsesMerges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.CreateAttempt(ctx, "u1", "as1", 1)
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}

	if _, err := store.SaveAttemptResponses(ctx, a.ID, map[string]interface{}{"q1": 0}); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	got, err := store.SaveAttemptResponses(ctx, a.ID, map[string]interface{}{"q2": "go", "q1": 1})
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if got.Responses["q1"] != 1 || got.Responses["q2"] != "go" {
		t.Fatalf("responses = %v", got.Responses)
	}
}

func TestMemoryStoreFinalizeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.CreateAttempt(ctx, "u1", "as1", 1)
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	a.Score = 80
	a.Passed = true

	final, err := store.FinalizeAttempt(ctx, a)
	if err != nil {
		t.Fatalf("FinalizeAttempt: %v", err)
	}
	if final.Status != AttemptGraded || final.GradedAt == nil || !final.Passed {
		t.Fatalf("finalized = %+v", final)
	}

	if _, err := store.FinalizeAttempt(ctx, a); !errors.Is(err, ErrAttemptAlreadyGraded) {
		t.Fatalf("second finalize: %v", err)
	}
	if _, err := store.SaveAttemptResponses(ctx, a.ID, map[string]interface{}{"q1": 0}); !errors.Is(err, ErrAttemptAlreadyGraded) {
		t.Fatalf("save after grade: %v", err)
	}
}

func TestMemoryStoreListAttemptsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		if _, err := store.CreateAttempt(ctx, "u1", "as1", 5); err != nil {
			t.Fatalf("CreateAttempt: %v", err)
		}
	}
	list, err := store.ListAttempts(ctx, "u1", "as1")
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	for i, a := range list {
		if a.AttemptNumber != i+1 {
			t.Fatalf("list[%d].AttemptNumber = %d", i, a.AttemptNumber)
		}
	}
}

func TestMemoryStoreGetProgressAbsent(t *testing.T) {
	store := NewMemoryStore()
	rec, err := store.GetProgress(context.Background(), "u1", "l1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if rec != nil {
		t.Fatalf("want nil for absent record, got %+v", rec)
	}
}
