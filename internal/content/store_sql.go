package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrCourseNotFound = errors.New("course not found")

// SQLStore is the content provider backed by the shared database. Reads
// return fully-populated trees; writes append children at the next dense
// position so a freshly-built tree always validates.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateCourse(ctx context.Context, title, createdBy string) (Course, error) {
	c := Course{
		ID:        "c-" + uuid.NewString(),
		Title:     title,
		CreatedBy: createdBy,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, created_by, created_at) VALUES ($1,$2,$3,$4)`,
		c.ID, c.Title, c.CreatedBy, c.CreatedAt)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) AddModule(ctx context.Context, courseID, title string, required bool) (Module, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Module{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, courseID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Module{}, ErrCourseNotFound
		}
		return Module{}, err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position),0)+1 FROM modules WHERE course_id=$1`, courseID).Scan(&next); err != nil {
		return Module{}, err
	}
	m := Module{ID: "m-" + uuid.NewString(), CourseID: courseID, Title: title, Position: next, Required: required}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO modules (id, course_id, title, position, required) VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.CourseID, m.Title, m.Position, m.Required); err != nil {
		return Module{}, err
	}
	return m, tx.Commit()
}

func (s *SQLStore) AddLesson(ctx context.Context, moduleID, title string, typ LessonType, required bool, durationMin int, assessmentID string) (Lesson, error) {
	if !typ.Valid() {
		return Lesson{}, errors.New("invalid lesson type: " + string(typ))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Lesson{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM modules WHERE id=$1`, moduleID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, errors.New("module not found")
		}
		return Lesson{}, err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position),0)+1 FROM lessons WHERE module_id=$1`, moduleID).Scan(&next); err != nil {
		return Lesson{}, err
	}
	l := Lesson{
		ID:           "l-" + uuid.NewString(),
		ModuleID:     moduleID,
		Title:        title,
		Type:         typ,
		Position:     next,
		Required:     required,
		DurationMin:  durationMin,
		AssessmentID: assessmentID,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lessons (id, module_id, title, lesson_type, position, required, duration_min, assessment_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		l.ID, l.ModuleID, l.Title, string(l.Type), l.Position, l.Required, l.DurationMin, nullable(l.AssessmentID)); err != nil {
		return Lesson{}, err
	}
	return l, tx.Commit()
}

// GetCourseTree loads the course and all children ordered by position and
// builds a validated tree.
func (s *SQLStore) GetCourseTree(ctx context.Context, courseID string) (*Tree, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_by, created_at FROM courses WHERE id=$1`, courseID).
		Scan(&c.ID, &c.Title, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, position, required FROM modules WHERE course_id=$1 ORDER BY position`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Position, &m.Required); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.module_id, l.title, l.lesson_type, l.position, l.required, l.duration_min, l.assessment_id
		   FROM lessons l
		   JOIN modules m ON m.id = l.module_id
		  WHERE m.course_id=$1
		  ORDER BY m.position, l.position`, courseID)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()

	byModule := map[string][]Lesson{}
	for lrows.Next() {
		var l Lesson
		var typ string
		var aid sql.NullString
		if err := lrows.Scan(&l.ID, &l.ModuleID, &l.Title, &typ, &l.Position, &l.Required, &l.DurationMin, &aid); err != nil {
			return nil, err
		}
		l.Type = LessonType(typ)
		l.AssessmentID = aid.String
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}

	return BuildTree(c, modules, byModule)
}

func (s *SQLStore) GetLesson(ctx context.Context, lessonID string) (Lesson, error) {
	var l Lesson
	var typ string
	var aid sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, lesson_type, position, required, duration_min, assessment_id
		   FROM lessons WHERE id=$1`, lessonID).
		Scan(&l.ID, &l.ModuleID, &l.Title, &typ, &l.Position, &l.Required, &l.DurationMin, &aid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, errors.New("lesson not found")
		}
		return Lesson{}, err
	}
	l.Type = LessonType(typ)
	l.AssessmentID = aid.String
	return l, nil
}

// CourseIDForLesson resolves the owning course, used when scoping progress.
func (s *SQLStore) CourseIDForLesson(ctx context.Context, lessonID string) (string, error) {
	var courseID string
	err := s.db.QueryRowContext(ctx,
		`SELECT m.course_id FROM lessons l JOIN modules m ON m.id=l.module_id WHERE l.id=$1`, lessonID).
		Scan(&courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.New("lesson not found")
		}
		return "", err
	}
	return courseID, nil
}

// LessonForAssessment finds the quiz lesson referencing an assessment, if
// any. A graded pass on that assessment counts as completing the lesson.
func (s *SQLStore) LessonForAssessment(ctx context.Context, assessmentID string) (lessonID, courseID string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT l.id, m.course_id FROM lessons l JOIN modules m ON m.id=l.module_id WHERE l.assessment_id=$1`,
		assessmentID).Scan(&lessonID, &courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return lessonID, courseID, true, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
