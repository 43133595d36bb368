package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	gamemodel "github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/model/question"
	analysisservice "github.com/duetlabs/duet/backend/internal/service/analysis"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
	"github.com/duetlabs/duet/backend/internal/service/prompt"
)

type scriptedCompleter struct{}

func (scriptedCompleter) Complete(_ context.Context, promptText string) (string, error) {
	if strings.Contains(promptText, "Cards analyzed:") {
		return `{"score": 77, "summary": "synthesized", "tone": "warm"}`, nil
	}
	if strings.Contains(promptText, "answered card") {
		return `{"insight": "shared ground", "cardScore": 70, "tone": "warm"}`, nil
	}
	return `{"score": 65, "summary": "one-shot", "tone": "reflective"}`, nil
}

func setupRouter(t *testing.T) (*chi.Mux, *gameservice.Service) {
	t.Helper()
	engine, err := prompt.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine err: %v", err)
	}
	analysisSvc := analysisservice.NewService(scriptedCompleter{}, prompt.NewBuilder(engine), analysisservice.Config{ModelVersion: "test"})
	gameSvc := gameservice.NewService(nil)
	handler := New(analysisSvc, gameSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, gameSvc
}

func playingSession(t *testing.T, gameSvc *gameservice.Service, withAnswers bool) gamemodel.GameSession {
	t.Helper()
	ctx := context.Background()

	players := [gamemodel.PlayerCount]gamemodel.Player{
		{Name: "Alex"},
		{Name: "Jordan"},
	}
	session, err := gameSvc.CreateSession(ctx, players, gamemodel.ModeCouple)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := gameSvc.StartGame(ctx, session.ID); err != nil {
		t.Fatalf("StartGame err: %v", err)
	}

	q := question.Question{Text: "What do you value most?", Category: question.CategoryValues}
	session, index, err := gameSvc.PresentCard(ctx, session.ID, q)
	if err != nil {
		t.Fatalf("PresentCard err: %v", err)
	}

	if withAnswers {
		if _, err := gameSvc.RecordAnswer(ctx, session.ID, index, 0, gamemodel.PlayerAnswer{Text: "honesty"}); err != nil {
			t.Fatalf("RecordAnswer err: %v", err)
		}
		session, err = gameSvc.RecordAnswer(ctx, session.ID, index, 1, gamemodel.PlayerAnswer{Text: "kindness"})
		if err != nil {
			t.Fatalf("RecordAnswer err: %v", err)
		}
	}
	return session
}

func TestAnalyzeRejectsUnsupportedType(t *testing.T) {
	r, _ := setupRouter(t)

	payload := []byte(`{"type": "card", "question": "Q", "response": "A"}`)
	req := httptest.NewRequest(http.MethodPost, "/analysis", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAnalyzeIndividual(t *testing.T) {
	r, _ := setupRouter(t)

	payload := []byte(`{"type": "individual", "question": "Q", "response": "I value honesty."}`)
	req := httptest.NewRequest(http.MethodPost, "/analysis", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.Score != 65 {
		t.Fatalf("unexpected score: %d", result.Score)
	}
}

func TestSynthesisWithoutCompletedCardsConflicts(t *testing.T) {
	r, gameSvc := setupRouter(t)
	session := playingSession(t, gameSvc, false)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/analysis/synthesis", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSynthesisThenReport(t *testing.T) {
	r, gameSvc := setupRouter(t)
	session := playingSession(t, gameSvc, true)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/analysis/synthesis", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("synthesis: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+session.ID+"/analysis/", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", resp.Code)
	}

	var report analysisservice.SessionReport
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(report.Summaries) != 1 || report.Synthesis.Score != 77 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestReportBeforeSynthesisIs404(t *testing.T) {
	r, gameSvc := setupRouter(t)
	session := playingSession(t, gameSvc, true)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+session.ID+"/analysis/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAnalyzeCardEndpoint(t *testing.T) {
	r, gameSvc := setupRouter(t)
	session := playingSession(t, gameSvc, true)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/analysis/cards/0", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var summary struct {
		CardScore int `json:"cardScore"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if summary.CardScore != 70 {
		t.Fatalf("unexpected card score: %d", summary.CardScore)
	}
}

func TestAnalyzeCardOutOfRange(t *testing.T) {
	r, gameSvc := setupRouter(t)
	session := playingSession(t, gameSvc, true)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/analysis/cards/9", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
