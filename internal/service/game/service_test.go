package game_test

import (
	"context"
	"errors"
	"testing"

	gamemodel "github.com/duetlabs/duet/backend/internal/model/game"
	"github.com/duetlabs/duet/backend/internal/model/question"
	game "github.com/duetlabs/duet/backend/internal/service/game"
)

func testPlayers() [gamemodel.PlayerCount]gamemodel.Player {
	return [gamemodel.PlayerCount]gamemodel.Player{
		{Name: "Alex", Pronouns: gamemodel.PronounsTheyThem},
		{Name: "Jordan", Pronouns: gamemodel.PronounsSheHer},
	}
}

func startedSession(t *testing.T, svc *game.Service) gamemodel.GameSession {
	t.Helper()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, testPlayers(), gamemodel.ModeCouple)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	session, err = svc.StartGame(ctx, session.ID)
	if err != nil {
		t.Fatalf("StartGame err: %v", err)
	}
	return session
}

func TestCreateSessionValidatesPlayers(t *testing.T) {
	svc := game.NewService(nil)

	players := testPlayers()
	players[1].Name = "X"
	if _, err := svc.CreateSession(context.Background(), players, ""); !errors.Is(err, gamemodel.ErrInvalidPlayerData) {
		t.Fatalf("expected ErrInvalidPlayerData, got %v", err)
	}
}

func TestCreateSessionAssignsIdentity(t *testing.T) {
	svc := game.NewService(nil)

	session, err := svc.CreateSession(context.Background(), testPlayers(), "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if session.Phase != gamemodel.PhaseSetup {
		t.Fatalf("new session must start in setup, got %s", session.Phase)
	}
	for i, p := range session.Players {
		if p.ID == "" {
			t.Fatalf("player %d missing ID", i)
		}
		if p.Number != i+1 {
			t.Fatalf("player %d has number %d", i, p.Number)
		}
	}
}

func TestStartGameRequiresMode(t *testing.T) {
	svc := game.NewService(nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, testPlayers(), "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := svc.StartGame(ctx, session.ID); !errors.Is(err, game.ErrMissingConfiguration) {
		t.Fatalf("expected ErrMissingConfiguration, got %v", err)
	}

	if _, err := svc.SetMode(ctx, session.ID, gamemodel.ModeFirstDate); err != nil {
		t.Fatalf("SetMode err: %v", err)
	}
	started, err := svc.StartGame(ctx, session.ID)
	if err != nil {
		t.Fatalf("StartGame err: %v", err)
	}
	if started.Phase != gamemodel.PhasePlaying {
		t.Fatalf("expected playing phase, got %s", started.Phase)
	}
	if started.Turn.CurrentPlayerIndex != 0 || started.TurnCounter != 0 || started.RoundCounter != 0 {
		t.Fatalf("turn state not reset: %+v", started)
	}
}

func TestStartGameTwiceFails(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)

	if _, err := svc.StartGame(context.Background(), session.ID); !errors.Is(err, game.ErrInvalidPhaseTransition) {
		t.Fatalf("expected ErrInvalidPhaseTransition, got %v", err)
	}
}

func TestNextTurnAlternatesAndCountsRounds(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	session, err := svc.NextTurn(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextTurn err: %v", err)
	}
	if session.Turn.CurrentPlayerIndex != 1 || session.TurnCounter != 1 || session.RoundCounter != 0 {
		t.Fatalf("after one turn: %+v", session)
	}

	session, err = svc.NextTurn(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextTurn err: %v", err)
	}
	if session.Turn.CurrentPlayerIndex != 0 || session.TurnCounter != 2 || session.RoundCounter != 1 {
		t.Fatalf("after a full round: %+v", session)
	}
}

func TestRoundCounterInvariant(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		var err error
		session, err = svc.NextTurn(ctx, session.ID)
		if err != nil {
			t.Fatalf("NextTurn %d err: %v", i, err)
		}
		if session.RoundCounter != session.TurnCounter/gamemodel.PlayerCount {
			t.Fatalf("invariant broken at turn %d: rounds=%d turns=%d",
				i, session.RoundCounter, session.TurnCounter)
		}
	}
}

func TestNextTurnResetsTurnState(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	if _, err := svc.SetQuestionCategory(ctx, session.ID, question.CategoryFuture); err != nil {
		t.Fatalf("SetQuestionCategory err: %v", err)
	}
	if _, err := svc.MarkAnswered(ctx, session.ID); err != nil {
		t.Fatalf("MarkAnswered err: %v", err)
	}

	session, err := svc.NextTurn(ctx, session.ID)
	if err != nil {
		t.Fatalf("NextTurn err: %v", err)
	}
	if session.Turn.Category != nil || session.Turn.Answered {
		t.Fatalf("per-turn state must reset: %+v", session.Turn)
	}
}

func TestMarkAnsweredTwiceFails(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	if _, err := svc.MarkAnswered(ctx, session.ID); err != nil {
		t.Fatalf("MarkAnswered err: %v", err)
	}
	if _, err := svc.MarkAnswered(ctx, session.ID); !errors.Is(err, game.ErrTurnAlreadyAnswered) {
		t.Fatalf("expected ErrTurnAlreadyAnswered, got %v", err)
	}
}

func TestCompleteThenResetReturnsToSetup(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	session, err := svc.CompleteGame(ctx, session.ID)
	if err != nil {
		t.Fatalf("CompleteGame err: %v", err)
	}
	if session.Phase != gamemodel.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", session.Phase)
	}

	if _, err := svc.NextTurn(ctx, session.ID); !errors.Is(err, game.ErrInvalidPhaseTransition) {
		t.Fatalf("expected ErrInvalidPhaseTransition after completion, got %v", err)
	}

	session, err = svc.ResetGame(ctx, session.ID)
	if err != nil {
		t.Fatalf("ResetGame err: %v", err)
	}
	if session.Phase != gamemodel.PhaseSetup || session.Mode != "" {
		t.Fatalf("reset must clear phase and mode: %+v", session)
	}
	if session.TurnCounter != 0 || session.RoundCounter != 0 || len(session.Cards) != 0 {
		t.Fatalf("reset must clear counters and cards: %+v", session)
	}
}

func TestUpdatePlayerKeepsIdentity(t *testing.T) {
	svc := game.NewService(nil)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, testPlayers(), "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	originalID := session.Players[0].ID

	session, err = svc.UpdatePlayer(ctx, session.ID, 0, gamemodel.Player{Name: "Alexandra", Pronouns: gamemodel.PronounsSheHer})
	if err != nil {
		t.Fatalf("UpdatePlayer err: %v", err)
	}
	if session.Players[0].ID != originalID {
		t.Fatalf("player ID must be immutable: got %s want %s", session.Players[0].ID, originalID)
	}
	if session.Players[0].Name != "Alexandra" || session.Players[0].Number != 1 {
		t.Fatalf("player not updated: %+v", session.Players[0])
	}
}

func TestCardCompletionLifecycle(t *testing.T) {
	svc := game.NewService(nil)
	session := startedSession(t, svc)
	ctx := context.Background()

	q := question.Question{Text: "What makes you feel seen?", Category: question.CategoryIntimacy}
	session, index, err := svc.PresentCard(ctx, session.ID, q)
	if err != nil {
		t.Fatalf("PresentCard err: %v", err)
	}
	if session.Cards[index].IsComplete() {
		t.Fatal("fresh card must not be complete")
	}

	session, err = svc.RecordAnswer(ctx, session.ID, index, 0, gamemodel.PlayerAnswer{Text: "Being listened to"})
	if err != nil {
		t.Fatalf("RecordAnswer err: %v", err)
	}
	if session.Cards[index].IsComplete() {
		t.Fatal("one answer must not complete a card")
	}

	session, err = svc.RecordAnswer(ctx, session.ID, index, 1, gamemodel.PlayerAnswer{Text: "Small unprompted gestures"})
	if err != nil {
		t.Fatalf("RecordAnswer err: %v", err)
	}
	if !session.Cards[index].IsComplete() || session.Cards[index].CompletedAt == nil {
		t.Fatal("both answers must complete the card")
	}
	if session.Cards[index].Answers[0].PlayerID != session.Players[0].ID {
		t.Fatal("answer must carry the slot player's ID")
	}

	session, err = svc.RemoveAnswer(ctx, session.ID, index, 1)
	if err != nil {
		t.Fatalf("RemoveAnswer err: %v", err)
	}
	if session.Cards[index].IsComplete() || session.Cards[index].CompletedAt != nil {
		t.Fatal("removing an answer must reopen the card")
	}
}

func TestSessionNotFound(t *testing.T) {
	svc := game.NewService(nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestEventsReachSink(t *testing.T) {
	var events []game.Event
	svc := game.NewService(func(ev game.Event) {
		events = append(events, ev)
	})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, testPlayers(), gamemodel.ModeDeepDive)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if _, err := svc.StartGame(ctx, session.ID); err != nil {
		t.Fatalf("StartGame err: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "session_created" || events[1].Type != "game_started" {
		t.Fatalf("unexpected event order: %s, %s", events[0].Type, events[1].Type)
	}
	if events[1].SessionID != session.ID {
		t.Fatalf("event carries wrong session ID: %s", events[1].SessionID)
	}
}
