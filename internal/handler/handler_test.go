package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/llm"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/quiz"
	"github.com/pavelanni/quizzer/internal/store"
)

const testBank = `[
  {"name": "Biology", "chapters": [
    {"name": "Digestion", "questions": {
      "basic": [
        {"id": "dig-1", "prompt": "What is digestion?", "answer": "Breakdown of food.", "max_marks": 5},
        {"id": "dig-2", "prompt": "Name a digestive enzyme.", "answer": "Amylase.", "max_marks": 5},
        {"id": "dig-3", "prompt": "Where is bile made?", "answer": "The liver.", "max_marks": 5}
      ],
      "medium": []
    }}
  ]}
]`

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServer struct {
	srv  *httptest.Server
	mock *llm.MockProvider
}

func newTestServer(t *testing.T, size int) *testServer {
	t.Helper()
	b, err := bank.Parse([]byte(testBank))
	if err != nil {
		t.Fatalf("bank.Parse: %v", err)
	}
	mock := llm.NewMockProvider()
	eval, err := llm.NewEvaluator(mock, "standard")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	streak, err := quiz.NewStreak(context.Background(), store.NewMemory(0))
	if err != nil {
		t.Fatalf("NewStreak: %v", err)
	}
	m := quiz.NewMachine(b, eval, streak, quiz.Options{
		SessionSize: size,
		Rand:        rand.New(rand.NewPCG(1, 2)),
	})

	r := chi.NewRouter()
	r.Use(i18n.Middleware("en"))
	New(b, m).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, mock: mock}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp, out
}

func gradeReply(score int, correct bool) llm.MockResponse {
	b, _ := json.Marshal(map[string]any{
		"score":                  score,
		"feedback":               "Good effort.",
		"isCorrect":              correct,
		"missingConcepts":        []string{},
		"terminologyCorrections": []string{},
		"modelAnswerImprovement": "Mention enzymes.",
	})
	return llm.MockResponse{Content: b}
}

func startBody() map[string]string {
	return map[string]string{"subject": "Biology", "chapter": "Digestion", "difficulty": "basic"}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 2)
	resp, body := ts.do(t, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", resp.StatusCode, body)
	}
}

func TestSubjects(t *testing.T) {
	ts := newTestServer(t, 2)
	resp, body := ts.do(t, http.MethodGet, "/api/subjects", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	subjects, ok := body["subjects"].([]any)
	if !ok || len(subjects) != 1 {
		t.Fatalf("unexpected subjects: %v", body)
	}
}

func TestFullQuizFlow(t *testing.T) {
	ts := newTestServer(t, 2)
	ts.mock.AddResponse(gradeReply(4, true))

	resp, snap := ts.do(t, http.MethodPost, "/api/quiz/start", startBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: %d %v", resp.StatusCode, snap)
	}
	if snap["state"] != string(model.StateQuiz) || snap["total"] != float64(2) {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
	q := snap["question"].(map[string]any)
	if _, leaked := q["answer"]; leaked {
		t.Error("snapshot must not expose the reference answer")
	}

	resp, body := ts.do(t, http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "Food is broken down."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer: %d %v", resp.StatusCode, body)
	}
	result := body["result"].(map[string]any)
	if result["score"] != float64(4) || result["isCorrect"] != true {
		t.Errorf("unexpected result: %v", result)
	}
	quizSnap := body["quiz"].(map[string]any)
	if quizSnap["streak"] != float64(1) || quizSnap["answered"] != true {
		t.Errorf("unexpected quiz after answer: %v", quizSnap)
	}

	// Second submission for the same question is refused.
	resp, body = ts.do(t, http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "again"})
	if resp.StatusCode != http.StatusConflict || body["code"] != "already_answered" {
		t.Errorf("double submit: %d %v", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/quiz/advance", map[string]bool{"answered": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance: %d", resp.StatusCode)
	}

	// Summary is not available yet.
	resp, body = ts.do(t, http.MethodGet, "/api/quiz/summary", nil)
	if resp.StatusCode != http.StatusConflict || body["code"] != "not_in_summary" {
		t.Errorf("early summary: %d %v", resp.StatusCode, body)
	}

	// Skip the last question.
	resp, snap = ts.do(t, http.MethodPost, "/api/quiz/advance", map[string]bool{"answered": false})
	if resp.StatusCode != http.StatusOK || snap["state"] != string(model.StateSummary) {
		t.Fatalf("final advance: %d %v", resp.StatusCode, snap)
	}
	if snap["streak"] != float64(0) {
		t.Errorf("skip should reset streak: %v", snap["streak"])
	}

	resp, sum := ts.do(t, http.MethodGet, "/api/quiz/summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: %d", resp.StatusCode)
	}
	if sum["total_score"] != float64(4) || sum["max_score"] != float64(10) || sum["percentage"] != float64(40) {
		t.Errorf("unexpected summary: %v", sum)
	}

	resp, snap = ts.do(t, http.MethodPost, "/api/quiz/restart", nil)
	if resp.StatusCode != http.StatusOK || snap["state"] != string(model.StateSetup) {
		t.Errorf("restart: %d %v", resp.StatusCode, snap)
	}
}

func TestEvaluationFailureReturnsSyntheticResult(t *testing.T) {
	ts := newTestServer(t, 2)
	ts.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"score":"high"}`)})

	ts.do(t, http.MethodPost, "/api/quiz/start", startBody())
	resp, body := ts.do(t, http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "something"})
	if resp.StatusCode != http.StatusBadGateway || body["code"] != "evaluation_failed" {
		t.Fatalf("expected 502 evaluation_failed, got %d %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	result := data["result"].(map[string]any)
	if result["score"] != float64(0) || result["isCorrect"] != false || result["feedback"] != quiz.FailureFeedback {
		t.Errorf("unexpected synthetic result: %v", result)
	}

	// The session can still move on.
	resp, _ = ts.do(t, http.MethodPost, "/api/quiz/advance", map[string]bool{"answered": true})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("advance after failure: %d", resp.StatusCode)
	}
}

func TestRequestErrors(t *testing.T) {
	ts := newTestServer(t, 2)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"unknown chapter", http.MethodPost, "/api/quiz/start", map[string]string{"subject": "Biology", "chapter": "Genetics", "difficulty": "basic"}, http.StatusBadRequest, "chapter_not_found"},
		{"empty pool", http.MethodPost, "/api/quiz/start", map[string]string{"subject": "Biology", "chapter": "Digestion", "difficulty": "medium"}, http.StatusBadRequest, "no_questions"},
		{"bad difficulty", http.MethodPost, "/api/quiz/start", map[string]string{"subject": "Biology", "chapter": "Digestion", "difficulty": "hard"}, http.StatusBadRequest, "bad_request"},
		{"unknown field", http.MethodPost, "/api/quiz/start", map[string]string{"topic": "x"}, http.StatusBadRequest, "bad_request"},
		{"answer in setup", http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "x"}, http.StatusConflict, "invalid_transition"},
		{"advance in setup", http.MethodPost, "/api/quiz/advance", map[string]bool{"answered": false}, http.StatusConflict, "invalid_transition"},
		{"abandon in setup", http.MethodPost, "/api/quiz/abandon", nil, http.StatusConflict, "invalid_transition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus || body["code"] != tt.wantCode {
				t.Fatalf("got %d %v, want %d %s", resp.StatusCode, body, tt.wantStatus, tt.wantCode)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Error("error message should be set")
			}
		})
	}
}

func TestEmptyAnswerRejected(t *testing.T) {
	ts := newTestServer(t, 2)
	ts.do(t, http.MethodPost, "/api/quiz/start", startBody())

	resp, body := ts.do(t, http.MethodPost, "/api/quiz/answer", map[string]string{"answer": "  \n"})
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "empty_answer" {
		t.Fatalf("got %d %v", resp.StatusCode, body)
	}
	if ts.mock.CallCount() != 0 {
		t.Error("empty answers must not reach the evaluator")
	}
}

func TestErrorMessagesAreLocalised(t *testing.T) {
	ts := newTestServer(t, 2)
	data, _ := json.Marshal(map[string]string{"answer": "x"})
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/quiz/answer", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "ru")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["error"] != "Это действие сейчас недоступно." {
		t.Errorf("expected Russian message, got %v", body["error"])
	}
}

func TestRequireJSON(t *testing.T) {
	ts := newTestServer(t, 2)
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/quiz/start", bytes.NewReader([]byte("subject=Biology")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("form post: status %d, want 415", resp.StatusCode)
	}
}
