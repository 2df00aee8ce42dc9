package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pathwise/pathwise-lms/internal/assessment"
	"github.com/pathwise/pathwise-lms/internal/content"
	"github.com/pathwise/pathwise-lms/internal/progress"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures onto HTTP statuses. Every error carries
// enough detail (kind + offending identifier) for the client to render a
// message without inspecting internals.
func writeError(w http.ResponseWriter, err error) {
	var (
		malformed  *content.MalformedContentError
		empty      *progress.EmptyCourseError
		outOfRange *progress.OutOfRangeError
		exhausted  *progress.AttemptsExhaustedError
		incomplete *assessment.IncompleteSubmissionError
		noGradable *assessment.NoGradableQuestionsError
	)
	switch {
	case errors.As(err, &malformed):
		writeJSON(w, http.StatusUnprocessableEntity, errBody("malformed_content", err))
	case errors.As(err, &empty):
		writeJSON(w, http.StatusUnprocessableEntity, errBody("empty_course", err))
	case errors.As(err, &outOfRange):
		writeJSON(w, http.StatusBadRequest, errBody("out_of_range", err))
	case errors.As(err, &exhausted):
		writeJSON(w, http.StatusConflict, errBody("attempts_exhausted", err))
	case errors.As(err, &incomplete):
		body := errBody("incomplete_submission", err)
		body["missing"] = incomplete.Missing
		writeJSON(w, http.StatusConflict, body)
	case errors.As(err, &noGradable):
		writeJSON(w, http.StatusUnprocessableEntity, errBody("no_gradable_questions", err))
	case errors.Is(err, assessment.ErrNotFound),
		errors.Is(err, progress.ErrAttemptNotFound),
		errors.Is(err, content.ErrCourseNotFound):
		writeJSON(w, http.StatusNotFound, errBody("not_found", err))
	case errors.Is(err, assessment.ErrNotInProgress),
		errors.Is(err, progress.ErrAttemptAlreadyGraded):
		writeJSON(w, http.StatusConflict, errBody("attempt_closed", err))
	case errors.Is(err, assessment.ErrUnknownItem):
		writeJSON(w, http.StatusBadRequest, errBody("unknown_question", err))
	default:
		writeJSON(w, http.StatusInternalServerError, errBody("internal", err))
	}
}

func errBody(kind string, err error) map[string]any {
	return map[string]any{"error": kind, "detail": err.Error()}
}

func parseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
