package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/quiz"
)

var (
	errEmptyAnswer = errors.New("empty answer")
	errRequest     = errors.New("bad request")
)

func errBadRequest(err error) error {
	return fmt.Errorf("%w: %w", errRequest, err)
}

// apiError is the body of every non-2xx response. Extra carries the
// regular payload when the request partially succeeded.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Extra any    `json:"data,omitempty"`
}

// classify maps an error to its HTTP status, error code and message ID.
func classify(err error) (status int, code, msgID string) {
	switch {
	case errors.Is(err, quiz.ErrChapterNotFound):
		return http.StatusBadRequest, "chapter_not_found", "ErrChapterNotFound"
	case errors.Is(err, quiz.ErrNoQuestions):
		return http.StatusBadRequest, "no_questions", "ErrNoQuestions"
	case errors.Is(err, errEmptyAnswer):
		return http.StatusBadRequest, "empty_answer", "ErrEmptyAnswer"
	case errors.Is(err, errRequest):
		return http.StatusBadRequest, "bad_request", "ErrBadRequest"
	case errors.Is(err, quiz.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", "ErrInvalidTransition"
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return http.StatusConflict, "already_answered", "ErrAlreadyAnswered"
	case errors.Is(err, quiz.ErrEvaluationInFlight):
		return http.StatusConflict, "evaluation_in_flight", "ErrEvaluationInFlight"
	case errors.Is(err, quiz.ErrNotInSummary):
		return http.StatusConflict, "not_in_summary", "ErrNotInSummary"
	}
	var evalErr *quiz.EvaluationError
	if errors.As(err, &evalErr) {
		return http.StatusBadGateway, "evaluation_failed", "ErrEvaluationFailed"
	}
	return http.StatusInternalServerError, "internal", "ErrInternal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorWith(w, r, err, nil)
}

func writeErrorWith(w http.ResponseWriter, r *http.Request, err error, extra any) {
	status, code, msgID := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	}
	writeJSON(w, status, apiError{
		Error: i18n.T(r.Context(), msgID),
		Code:  code,
		Extra: extra,
	})
}
