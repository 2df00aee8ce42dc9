package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore persists assessments with the question list as a JSON column, the
// same shape the HTTP layer speaks.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutAssessment(ctx context.Context, a Assessment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, title, passing_score, max_attempts, time_limit_min, shuffle_questions, require_all, questions_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
		   title=excluded.title, passing_score=excluded.passing_score, max_attempts=excluded.max_attempts,
		   time_limit_min=excluded.time_limit_min, shuffle_questions=excluded.shuffle_questions,
		   require_all=excluded.require_all, questions_json=excluded.questions_json`,
		a.ID, a.Title, a.PassingScore, a.MaxAttempts, a.TimeLimitMin, a.ShuffleQuestions, a.RequireAll,
		string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, passing_score, max_attempts, time_limit_min, shuffle_questions, require_all, questions_json, created_at
		   FROM assessments WHERE id=$1`, id)
	var a Assessment
	var qjson string
	err := row.Scan(&a.ID, &a.Title, &a.PassingScore, &a.MaxAttempts, &a.TimeLimitMin,
		&a.ShuffleQuestions, &a.RequireAll, &qjson, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Assessment{}, err
	}
	return a, nil
}
