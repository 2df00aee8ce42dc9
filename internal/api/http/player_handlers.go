package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/pathwise/pathwise-lms/internal/auth/middleware"
	"github.com/pathwise/pathwise-lms/internal/content"
	"github.com/pathwise/pathwise-lms/internal/progress"
	syncx "github.com/pathwise/pathwise-lms/internal/sync"
)

// ResumeHandler returns the position a learner should land on when
// reopening a course.
func ResumeHandler(trees *content.SQLStore, engine *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		tree, err := trees.GetCourseTree(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		pos, err := engine.Resume(r.Context(), tree, sub)
		if err != nil {
			writeError(w, err)
			return
		}
		lesson, _ := tree.LessonAt(pos.ModuleIndex, pos.LessonIndex)
		writeJSON(w, http.StatusOK, map[string]any{"position": pos, "lesson": lesson})
	}
}

// NavigateHandler computes the next position from an explicit current one.
// Body: {"position": {...}, "op": "next"|"prev"|"jump", "to": {...}}.
// The position is a value owned by the caller; nothing server-side tracks it.
func NavigateHandler(trees *content.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Position progress.Position  `json:"position"`
			Op       string             `json:"op"`
			To       *progress.Position `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		tree, err := trees.GetCourseTree(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		// the starting position must exist in the tree
		if _, err := progress.JumpTo(tree, req.Position.ModuleIndex, req.Position.LessonIndex); err != nil {
			writeError(w, err)
			return
		}

		var pos progress.Position
		switch req.Op {
		case "next":
			pos = progress.Advance(tree, req.Position)
		case "prev":
			pos = progress.Retreat(tree, req.Position)
		case "jump":
			if req.To == nil {
				http.Error(w, "jump requires a target", http.StatusBadRequest)
				return
			}
			pos, err = progress.JumpTo(tree, req.To.ModuleIndex, req.To.LessonIndex)
			if err != nil {
				writeError(w, err)
				return
			}
		default:
			http.Error(w, "op must be next, prev, or jump", http.StatusBadRequest)
			return
		}
		lesson, _ := tree.LessonAt(pos.ModuleIndex, pos.LessonIndex)
		writeJSON(w, http.StatusOK, map[string]any{"position": pos, "lesson": lesson})
	}
}

func CourseProgressHandler(trees *content.SQLStore, engine *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		tree, err := trees.GetCourseTree(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		pct, err := engine.CourseProgress(r.Context(), tree, sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"course_id": tree.Course.ID, "percent": pct})
	}
}

// ModuleProgressHandler scopes the completion ratio to a single module,
// addressed by its 0-based index in the tree.
func ModuleProgressHandler(trees *content.SQLStore, engine *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		tree, err := trees.GetCourseTree(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		idx := parseIntDefault(chi.URLParam(r, "moduleIndex"), -1)
		pct, err := engine.ModuleProgress(r.Context(), tree, idx, sub)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"module_index": idx, "percent": pct})
	}
}

// CompleteLessonHandler records a completion for the authenticated learner.
// Repeat calls fold into the existing record: time adds up, the completion
// timestamp stays.
func CompleteLessonHandler(trees *content.SQLStore, engine *progress.Engine, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		lessonID := chi.URLParam(r, "lessonID")
		var req struct {
			TimeSpentMin int `json:"time_spent_min"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		courseID, err := trees.CourseIDForLesson(r.Context(), lessonID)
		if err != nil {
			writeError(w, err)
			return
		}
		rec, err := engine.RecordCompletion(r.Context(), sub, lessonID, courseID, req.TimeSpentMin)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventLessonCompleted, lessonID, rec); err != nil {
			log.Printf("append completion event for lesson %s: %v", lessonID, err)
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
