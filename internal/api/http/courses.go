package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/pathwise/pathwise-lms/internal/auth/middleware"
	"github.com/pathwise/pathwise-lms/internal/content"
)

// Handlers only — routes remain in main.go

func CreateCourseHandler(store *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		c, err := store.CreateCourse(r.Context(), strings.TrimSpace(req.Title), sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func AddModuleHandler(store *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			Title    string `json:"title"`
			Required *bool  `json:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		required := true
		if req.Required != nil {
			required = *req.Required
		}
		m, err := store.AddModule(r.Context(), courseID, strings.TrimSpace(req.Title), required)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func AddLessonHandler(store *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		var req struct {
			Title        string `json:"title"`
			Type         string `json:"type"`
			Required     *bool  `json:"required"`
			DurationMin  int    `json:"duration_min"`
			AssessmentID string `json:"assessment_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		if req.DurationMin < 0 {
			http.Error(w, "duration must be >= 0", http.StatusBadRequest)
			return
		}
		required := true
		if req.Required != nil {
			required = *req.Required
		}
		l, err := store.AddLesson(r.Context(), moduleID, strings.TrimSpace(req.Title),
			content.LessonType(req.Type), required, req.DurationMin, req.AssessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

// GetCourseTreeHandler serves the full ordered hierarchy. The tree is
// rebuilt from storage on every read; authoring writes never patch a served
// tree in place.
func GetCourseTreeHandler(store *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := store.GetCourseTree(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}
