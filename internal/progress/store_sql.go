package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptAlreadyGraded = errors.New("attempt already graded")
)

// SQLStore persists progress records and attempts. Completion is a single
// ON CONFLICT upsert keyed by (user_id, lesson_id); attempt creation runs the
// count check and the insert in one transaction, with a unique index on
// (user_id, assessment_id, attempt_number) as a backstop against races.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetProgress(ctx context.Context, userID, lessonID string) (*ProgressRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, lesson_id, course_id, completed, completed_at, time_spent_min
		   FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) UpsertProgress(ctx context.Context, rec ProgressRecord) (ProgressRecord, error) {
	var completedAt any
	if rec.CompletedAt != nil {
		completedAt = *rec.CompletedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (user_id, lesson_id, course_id, completed, completed_at, time_spent_min)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, lesson_id) DO UPDATE SET
		   completed      = lesson_progress.completed OR excluded.completed,
		   completed_at   = COALESCE(lesson_progress.completed_at, excluded.completed_at),
		   time_spent_min = lesson_progress.time_spent_min + excluded.time_spent_min`,
		rec.UserID, rec.LessonID, rec.CourseID, rec.Completed, completedAt, rec.TimeSpentMin)
	if err != nil {
		return ProgressRecord{}, err
	}
	out, err := s.GetProgress(ctx, rec.UserID, rec.LessonID)
	if err != nil {
		return ProgressRecord{}, err
	}
	return *out, nil
}

func (s *SQLStore) ListProgress(ctx context.Context, userID, courseID string) ([]ProgressRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, lesson_id, course_id, completed, completed_at, time_spent_min
		   FROM lesson_progress WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProgress(r rowScanner) (ProgressRecord, error) {
	var rec ProgressRecord
	var completedAt sql.NullInt64
	if err := r.Scan(&rec.UserID, &rec.LessonID, &rec.CourseID, &rec.Completed, &completedAt, &rec.TimeSpentMin); err != nil {
		return ProgressRecord{}, err
	}
	if completedAt.Valid {
		v := completedAt.Int64
		rec.CompletedAt = &v
	}
	return rec, nil
}

func (s *SQLStore) CreateAttempt(ctx context.Context, userID, assessmentID string, maxAttempts int) (AttemptResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttemptResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id=$1 AND assessment_id=$2`,
		userID, assessmentID).Scan(&count); err != nil {
		return AttemptResult{}, err
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
	respJSON, _ := json.Marshal(a.Responses)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (id, assessment_id, user_id, attempt_number, status, score, passed, responses_json, outcomes_json, started_at)
		 VALUES ($1,$2,$3,$4,$5,0,$6,$7,'{}',$8)`,
		a.ID, a.AssessmentID, a.UserID, a.AttemptNumber, a.Status, false, string(respJSON), a.StartedAt); err != nil {
		return AttemptResult{}, err
	}
	return a, tx.Commit()
}

func (s *SQLStore) GetAttempt(ctx context.Context, attemptID string) (AttemptResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, assessment_id, user_id, attempt_number, status, score, passed, responses_json, outcomes_json, started_at, graded_at
		   FROM attempts WHERE id=$1`, attemptID)

	var a AttemptResult
	var respJSON, outJSON string
	var gradedAt sql.NullInt64
	err := row.Scan(&a.ID, &a.AssessmentID, &a.UserID, &a.AttemptNumber, &a.Status,
		&a.Score, &a.Passed, &respJSON, &outJSON, &a.StartedAt, &gradedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AttemptResult{}, ErrAttemptNotFound
		}
		return AttemptResult{}, err
	}
	if err := json.Unmarshal([]byte(respJSON), &a.Responses); err != nil {
		a.Responses = map[string]interface{}{}
	}
	if err := json.Unmarshal([]byte(outJSON), &a.Outcomes); err != nil {
		a.Outcomes = nil
	}
	if gradedAt.Valid {
		v := gradedAt.Int64
		a.GradedAt = &v
	}
	return a, nil
}

func (s *SQLStore) SaveAttemptResponses(ctx context.Context, attemptID string, responses map[string]interface{}) (AttemptResult, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return AttemptResult{}, err
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
	buf, _ := json.Marshal(a.Responses)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET responses_json=$1 WHERE id=$2`, string(buf), attemptID); err != nil {
		return AttemptResult{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

// FinalizeAttempt writes the graded outcome exactly once; a graded attempt is
// immutable.
func (s *SQLStore) FinalizeAttempt(ctx context.Context, a AttemptResult) (AttemptResult, error) {
	outJSON, _ := json.Marshal(a.Outcomes)
	respJSON, _ := json.Marshal(a.Responses)
	gradedAt := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET status=$1, score=$2, passed=$3, responses_json=$4, outcomes_json=$5, graded_at=$6
		  WHERE id=$7 AND status != $8`,
		AttemptGraded, a.Score, a.Passed, string(respJSON), string(outJSON), gradedAt, a.ID, AttemptGraded)
	if err != nil {
		return AttemptResult{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return AttemptResult{}, ErrAttemptAlreadyGraded
	}
	return s.GetAttempt(ctx, a.ID)
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID, assessmentID string) ([]AttemptResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM attempts WHERE user_id=$1 AND assessment_id=$2 ORDER BY attempt_number`,
		userID, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]AttemptResult, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAttempt(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
