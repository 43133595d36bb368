package game

import (
	"testing"

	"github.com/duetlabs/duet/backend/internal/model/question"
)

func TestCardCompletionTimestampSetOnce(t *testing.T) {
	card := CardAnswers{Question: "Q", Category: question.CategoryValues}

	if err := card.SetAnswer(0, PlayerAnswer{Text: "first"}); err != nil {
		t.Fatalf("SetAnswer err: %v", err)
	}
	if card.IsComplete() || card.CompletedAt != nil {
		t.Fatal("card must stay open with one answer")
	}

	if err := card.SetAnswer(1, PlayerAnswer{Text: "second"}); err != nil {
		t.Fatalf("SetAnswer err: %v", err)
	}
	if !card.IsComplete() || card.CompletedAt == nil {
		t.Fatal("card must complete with both answers")
	}

	completedAt := *card.CompletedAt
	if err := card.SetAnswer(0, PlayerAnswer{Text: "revised"}); err != nil {
		t.Fatalf("SetAnswer err: %v", err)
	}
	if card.CompletedAt == nil || !card.CompletedAt.Equal(completedAt) {
		t.Fatal("replacing an answer on a complete card must not move the completion time")
	}
}

func TestCardRemoveAnswerReopens(t *testing.T) {
	card := CardAnswers{Question: "Q", Category: question.CategoryGrowth}
	if err := card.SetAnswer(0, PlayerAnswer{Text: "a"}); err != nil {
		t.Fatalf("SetAnswer err: %v", err)
	}
	if err := card.SetAnswer(1, PlayerAnswer{Text: "b"}); err != nil {
		t.Fatalf("SetAnswer err: %v", err)
	}

	if err := card.RemoveAnswer(1); err != nil {
		t.Fatalf("RemoveAnswer err: %v", err)
	}
	if card.IsComplete() || card.CompletedAt != nil || card.Answers[1] != nil {
		t.Fatal("removal must reopen the card and clear the slot")
	}
}

func TestCardRejectsOutOfRangeSlot(t *testing.T) {
	card := CardAnswers{}
	if err := card.SetAnswer(2, PlayerAnswer{Text: "x"}); err == nil {
		t.Fatal("expected error for slot 2")
	}
	if err := card.RemoveAnswer(-1); err == nil {
		t.Fatal("expected error for slot -1")
	}
}

func TestPlayerAnswerValidation(t *testing.T) {
	if err := (PlayerAnswer{Text: "   "}).Validate(); err == nil {
		t.Fatal("blank text must fail validation")
	}
	if err := (PlayerAnswer{Text: "ok", AudioQuality: 1.5}).Validate(); err == nil {
		t.Fatal("quality above 1 must fail validation")
	}
	if err := (PlayerAnswer{Text: "ok", AudioQuality: 0.8}).Validate(); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}
}
