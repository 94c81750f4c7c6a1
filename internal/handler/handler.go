package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/quiz"
)

const maxBodyBytes = 64 << 10

// Handler exposes the quiz machine as a JSON API.
type Handler struct {
	bank    *bank.Bank
	machine *quiz.Machine
}

// New creates a new Handler.
func New(b *bank.Bank, m *quiz.Machine) *Handler {
	return &Handler{bank: b, machine: m}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(requireJSON)
		r.Get("/subjects", h.handleSubjects)
		r.Get("/quiz", h.handleQuiz)
		r.Post("/quiz/start", h.handleStart)
		r.Post("/quiz/answer", h.handleAnswer)
		r.Post("/quiz/advance", h.handleAdvance)
		r.Post("/quiz/restart", h.handleRestart)
		r.Post("/quiz/abandon", h.handleAbandon)
		r.Get("/quiz/summary", h.handleSummary)
	})
}

type startRequest struct {
	Subject    string `json:"subject"`
	Chapter    string `json:"chapter"`
	Difficulty string `json:"difficulty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type advanceRequest struct {
	Answered bool `json:"answered"`
}

type answerResponse struct {
	Result *model.EvaluationResult `json:"result"`
	Quiz   quiz.Snapshot           `json:"quiz"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subjects": h.bank.Catalog()})
}

func (h *Handler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.machine.Snapshot())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest(err))
		return
	}
	d, err := model.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, r, errBadRequest(err))
		return
	}
	if err := h.machine.StartQuiz(r.Context(), req.Subject, req.Chapter, d); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.machine.Snapshot())
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest(err))
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeError(w, r, errEmptyAnswer)
		return
	}

	result, err := h.machine.SubmitAnswer(r.Context(), req.Answer)
	var evalErr *quiz.EvaluationError
	if errors.As(err, &evalErr) {
		// The failure is already recorded; the client still gets the zero-score result.
		writeErrorWith(w, r, err, answerResponse{Result: result, Quiz: h.machine.Snapshot()})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Result: result, Quiz: h.machine.Snapshot()})
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest(err))
		return
	}
	if err := h.machine.Advance(req.Answered); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.machine.Snapshot())
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Restart(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.machine.Snapshot())
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Abandon(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.machine.Snapshot())
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.machine.Summary()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// decodeBody reads a single JSON object. An empty body decodes as the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
