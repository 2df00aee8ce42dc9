package http

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pathwise/pathwise-lms/internal/assessment"
	authmw "github.com/pathwise/pathwise-lms/internal/auth/middleware"
	"github.com/pathwise/pathwise-lms/internal/content"
	"github.com/pathwise/pathwise-lms/internal/db"
	"github.com/pathwise/pathwise-lms/internal/progress"
	syncx "github.com/pathwise/pathwise-lms/internal/sync"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

// a graded pass on a quiz lesson's assessment must mark the lesson complete
// and append the replay events
func TestSubmitPassCompletesQuizLesson(t *testing.T) {
	ctx := context.Background()
	dbh := newTestDB(t)

	contentStore := content.NewSQLStore(dbh)
	progressStore := progress.NewSQLStore(dbh)
	assessStore := assessment.NewSQLStore(dbh)
	engine := progress.NewEngine(progressStore)
	events := syncx.NewEventRepo(dbh, "test")
	svc := assessment.NewService(assessStore, progressStore, nil)

	a := assessment.Assessment{
		ID: "as-flow", Title: "checkpoint", PassingScore: 50, MaxAttempts: 1,
		Questions: []assessment.Question{
			{ID: "q1", Type: assessment.MultipleChoice, Prompt: "pick", Points: 1,
				Payload: assessment.ChoicePayload{Options: []string{"a", "b"}, Correct: []int{0}}},
		},
	}
	if err := assessStore.PutAssessment(ctx, a); err != nil {
		t.Fatalf("PutAssessment: %v", err)
	}

	course, err := contentStore.CreateCourse(ctx, "Go", "t1")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	mod, err := contentStore.AddModule(ctx, course.ID, "Basics", true)
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	lesson, err := contentStore.AddLesson(ctx, mod.ID, "Checkpoint", content.LessonQuiz, true, 0, a.ID)
	if err != nil {
		t.Fatalf("AddLesson: %v", err)
	}

	att, err := svc.StartAttempt(ctx, "u1", a.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := svc.SaveResponses(ctx, att.ID, map[string]interface{}{"q1": 0}); err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}

	handler := SubmitAttemptHandler(svc, contentStore, engine, events)
	req := httptest.NewRequest("POST", "/attempts/"+att.ID+"/submit", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("attemptID", att.ID)
	reqCtx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	reqCtx = authmw.WithSubject(reqCtx, "u1")
	rec := httptest.NewRecorder()
	handler(rec, req.WithContext(reqCtx))

	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	prog, err := progressStore.GetProgress(ctx, "u1", lesson.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if prog == nil || !prog.Completed {
		t.Fatalf("quiz lesson not completed: %+v", prog)
	}

	evs, err := events.ListSince(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	var graded, completed bool
	for _, e := range evs {
		switch e.Type {
		case syncx.EventAttemptGraded:
			graded = true
		case syncx.EventLessonCompleted:
			completed = true
		}
	}
	if !graded || !completed {
		t.Fatalf("events missing: graded=%v completed=%v (%d rows)", graded, completed, len(evs))
	}
}
