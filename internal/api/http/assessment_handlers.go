package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pathwise/pathwise-lms/internal/assessment"
	authmw "github.com/pathwise/pathwise-lms/internal/auth/middleware"
	"github.com/pathwise/pathwise-lms/internal/content"
	"github.com/pathwise/pathwise-lms/internal/progress"
	"github.com/pathwise/pathwise-lms/internal/rbac"
	syncx "github.com/pathwise/pathwise-lms/internal/sync"
)

var checker = rbac.NewChecker(nil)

// UpsertAssessmentHandler stores a full assessment (questions with answer
// keys). Authoring-only; validation rejects out-of-range policy fields and
// malformed payloads.
func UpsertAssessmentHandler(store *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a assessment.Assessment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if a.ID == "" {
			a.ID = "as-" + uuid.NewString()
		}
		if err := store.PutAssessment(r.Context(), a); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": a.ID})
	}
}

// GetAssessmentHandler serves the student-safe view: answer keys stripped,
// ordering items shuffled, question order permuted when the policy says so.
// Roles with assessment:view-full may request ?full=1 for the authoring view.
func GetAssessmentHandler(store *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAssessment(r.Context(), chi.URLParam(r, "assessmentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if r.URL.Query().Get("full") == "1" {
			role := rbac.RoleFromContext(r.Context())
			if !checker.Has(role, "assessment:view-full") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			writeJSON(w, http.StatusOK, a)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		writeJSON(w, http.StatusOK, a.Redacted(sub))
	}
}

// StartAttemptHandler opens the learner's next attempt. The attempt budget
// check and the row insert are a single transaction.
func StartAttemptHandler(svc *assessment.Service, store *assessment.SQLStore, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		assessmentID := chi.URLParam(r, "assessmentID")
		att, err := svc.StartAttempt(r.Context(), sub, assessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventAttemptStarted, att.ID, att); err != nil {
			log.Printf("append attempt-started event for %s: %v", att.ID, err)
		}

		a, err := store.GetAssessment(r.Context(), assessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		// the redaction seed is the attempt ID so shuffled order is stable
		// for the whole attempt
		writeJSON(w, http.StatusCreated, map[string]any{
			"attempt":    att,
			"assessment": a.Redacted(att.ID),
		})
	}
}

// SaveAttemptResponsesHandler merges answer captures into an in-progress
// attempt.
func SaveAttemptResponsesHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var responses map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&responses); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if !ownsAttempt(r, svc, attemptID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		att, err := svc.SaveResponses(r.Context(), attemptID, responses)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, att)
	}
}

// SubmitAttemptHandler grades an attempt. ?expired=1 marks a time-limit
// submission signalled by the caller's clock; on timed assessments it
// bypasses the require-all-questions guard. A passing grade on an assessment
// referenced by a quiz lesson also records that lesson as completed.
func SubmitAttemptHandler(svc *assessment.Service, trees *content.SQLStore, engine *progress.Engine, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		if !ownsAttempt(r, svc, attemptID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		forced := r.URL.Query().Get("expired") == "1"
		att, err := svc.Submit(r.Context(), attemptID, forced)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := events.Append(r.Context(), syncx.EventAttemptGraded, att.ID, att); err != nil {
			log.Printf("append attempt-graded event for %s: %v", att.ID, err)
		}

		if att.Passed {
			lessonID, courseID, ok, err := trees.LessonForAssessment(r.Context(), att.AssessmentID)
			switch {
			case err != nil:
				log.Printf("lesson lookup for assessment %s: %v", att.AssessmentID, err)
			case ok:
				if _, err := engine.RecordCompletion(r.Context(), att.UserID, lessonID, courseID, 0); err != nil {
					log.Printf("record completion for lesson %s: %v", lessonID, err)
				} else if err := events.Append(r.Context(), syncx.EventLessonCompleted, lessonID, att.UserID); err != nil {
					log.Printf("append completion event for lesson %s: %v", lessonID, err)
				}
			}
		}
		writeJSON(w, http.StatusOK, att)
	}
}

func GetAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		att, err := svc.Attempt(r.Context(), attemptID)
		if err != nil {
			writeError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())
		if att.UserID != sub && !checker.Has(role, "attempt:view-all") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, att)
	}
}

// ListAttemptsHandler lists one learner's attempts on an assessment.
// Callers without attempt:view-all are scoped to their own.
func ListAttemptsHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		assessmentID := r.URL.Query().Get("assessment_id")
		userID := r.URL.Query().Get("user_id")
		if assessmentID == "" {
			http.Error(w, "assessment_id required", http.StatusBadRequest)
			return
		}
		if userID == "" || !checker.Has(role, "attempt:view-all") {
			userID = sub
		}
		list, err := svc.Attempts(r.Context(), userID, assessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func ownsAttempt(r *http.Request, svc *assessment.Service, attemptID string) bool {
	att, err := svc.Attempt(r.Context(), attemptID)
	if err != nil {
		// let the main handler surface the not-found
		return true
	}
	return att.UserID == authmw.SubjectFromContext(r.Context())
}
