package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps progress and attempts in maps behind a mutex. The lock
// makes the upsert and the attempt-count check atomic, matching the SQL
// store's transactional guarantees.
type MemoryStore struct {
	mu       sync.RWMutex
	progress map[string]ProgressRecord // key: userID|lessonID
	attempts map[string]AttemptResult  // key: attempt ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		progress: map[string]ProgressRecord{},
		attempts: map[string]AttemptResult{},
	}
}

func progressKey(userID, lessonID string) string { return userID + "|" + lessonID }

func (m *MemoryStore) GetProgress(_ context.Context, userID, lessonID string) (*ProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.progress[progressKey(userID, lessonID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) UpsertProgress(_ context.Context, rec ProgressRecord) (ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey(rec.UserID, rec.LessonID)
	if existing, ok := m.progress[key]; ok {
		existing.TimeSpentMin += rec.TimeSpentMin
		existing.Completed = existing.Completed || rec.Completed
		if existing.CompletedAt == nil {
			existing.CompletedAt = rec.CompletedAt
		}
		m.progress[key] = existing
		return existing, nil
	}
	m.progress[key] = rec
	return rec, nil
}

func (m *MemoryStore) ListProgress(_ context.Context, userID, courseID string) ([]ProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ProgressRecord
	for _, rec := range m.progress {
		if rec.UserID == userID && rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, userID, assessmentID string, maxAttempts int) (AttemptResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			count++
		}
	}
	if count >= maxAttempts {
		return AttemptResult{}, &AttemptsExhaustedError{AssessmentID: assessmentID, UserID: userID, MaxAttempts: maxAttempts}
	}
	a := AttemptResult{
		ID:            "a-" + uuid.NewString(),
		AssessmentID:  assessmentID,
		UserID:        userID,
		AttemptNumber: count + 1,
		Status:        AttemptInProgress,
		Responses:     map[string]interface{}{},
		StartedAt:     time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *MemoryStore) GetAttempt(_ context.Context, attemptID string) (AttemptResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return AttemptResult{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *MemoryStore) SaveAttemptResponses(_ context.Context, attemptID string, responses map[string]interface{}) (AttemptResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return AttemptResult{}, ErrAttemptNotFound
	}
	if a.Status != AttemptInProgress {
		return AttemptResult{}, ErrAttemptAlreadyGraded
	}
	if a.Responses == nil {
		a.Responses = map[string]interface{}{}
	}
	for k, v := range responses {
		a.Responses[k] = v
	}
	m.attempts[attemptID] = a
	return a, nil
}

func (m *MemoryStore) FinalizeAttempt(_ context.Context, in AttemptResult) (AttemptResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[in.ID]
	if !ok {
		return AttemptResult{}, ErrAttemptNotFound
	}
	if a.Status == AttemptGraded {
		return AttemptResult{}, ErrAttemptAlreadyGraded
	}
	now := time.Now().Unix()
	a.Status = AttemptGraded
	a.Score = in.Score
	a.Passed = in.Passed
	a.Responses = in.Responses
	a.Outcomes = in.Outcomes
	a.GradedAt = &now
	m.attempts[a.ID] = a
	return a, nil
}

func (m *MemoryStore) ListAttempts(_ context.Context, userID, assessmentID string) ([]AttemptResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []AttemptResult
	for _, a := range m.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			out = append(out, a)
		}
	}
	// keep attempt order stable for callers
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].AttemptNumber < out[j-1].AttemptNumber; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}
