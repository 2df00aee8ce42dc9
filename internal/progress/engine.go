package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise/pathwise-lms/internal/content"
)

// Engine binds the pure progression functions to a Store. It holds no state
// of its own; every call fetches the records it needs and delegates.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

func (e *Engine) Resume(ctx context.Context, tree *content.Tree, userID string) (Position, error) {
	records, err := e.store.ListProgress(ctx, userID, tree.Course.ID)
	if err != nil {
		return Position{}, err
	}
	return ResumePosition(tree, records)
}

// RecordCompletion marks a lesson complete for a learner. Idempotent: a
// repeat call adds timeSpentMin to the running total but leaves Completed
// and CompletedAt untouched. The upsert is atomic at the store.
func (e *Engine) RecordCompletion(ctx context.Context, userID, lessonID, courseID string, timeSpentMin int) (ProgressRecord, error) {
	if timeSpentMin < 0 {
		return ProgressRecord{}, fmt.Errorf("negative time spent: %d", timeSpentMin)
	}
	now := e.now().Unix()
	return e.store.UpsertProgress(ctx, ProgressRecord{
		UserID:       userID,
		LessonID:     lessonID,
		CourseID:     courseID,
		Completed:    true,
		CompletedAt:  &now,
		TimeSpentMin: timeSpentMin,
	})
}

func (e *Engine) CourseProgress(ctx context.Context, tree *content.Tree, userID string) (int, error) {
	records, err := e.store.ListProgress(ctx, userID, tree.Course.ID)
	if err != nil {
		return 0, err
	}
	return CourseProgressPercent(tree, records), nil
}

func (e *Engine) ModuleProgress(ctx context.Context, tree *content.Tree, moduleIdx int, userID string) (int, error) {
	if moduleIdx < 0 || moduleIdx >= len(tree.Modules) {
		return 0, &OutOfRangeError{ModuleIndex: moduleIdx}
	}
	records, err := e.store.ListProgress(ctx, userID, tree.Course.ID)
	if err != nil {
		return 0, err
	}
	return ModuleProgressPercent(tree.Modules[moduleIdx], records), nil
}
