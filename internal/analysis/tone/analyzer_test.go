package tone

import "testing"

func TestAnalyzeEmptyAnswersAreNeutral(t *testing.T) {
	got := Analyze("", "   ")
	if got.Tone != Neutral || got.Score != 0 {
		t.Fatalf("expected neutral zero decision, got %+v", got)
	}
}

func TestAnalyzeDetectsWarmth(t *testing.T) {
	got := Analyze("I feel safe and grateful when we are together", "It was fine")
	if got.Tone != Warm {
		t.Fatalf("expected warm, got %+v", got)
	}
}

func TestAnalyzeDetectsTension(t *testing.T) {
	got := Analyze("Honestly I am frustrated, we argue and I am tired of it", "ok")
	if got.Tone != Tense {
		t.Fatalf("expected tense, got %+v", got)
	}
}

func TestAnalyzePicksStrongerAnswer(t *testing.T) {
	got := Analyze("maybe", "We laughed so hard, such a silly joke, haha!")
	if got.Tone != Playful {
		t.Fatalf("expected playful from the stronger answer, got %+v", got)
	}
}

func TestAnalyzeUnmatchedTextIsNeutral(t *testing.T) {
	got := Analyze("The meeting starts at nine", "Bring the documents")
	if got.Tone != Neutral {
		t.Fatalf("expected neutral, got %+v", got)
	}
}
