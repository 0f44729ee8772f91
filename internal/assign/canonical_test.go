package assign

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		role       string
		wantKind   Kind
		wantLabel  string
		recognized bool
	}{
		{"Speaker 1", KindSpeaker, "Speaker", true},
		{"  speaker 2 ", KindSpeaker, "Speaker", true},
		{"Evaluator 3", KindEvaluator, "Evaluator", true},
		{"Timer", KindTimer, "Timer", true},
		{"Assistant Timer", KindTimer, "Timer", true},
		{"Table Topics Evaluation odd #", KindTableTopicsEvaluation, "Table Topics Evaluation", true},
		{"Table Topics Master", KindTableTopics, "Table Topics", true},
		{"General Evaluator", KindOther, "General Evaluator", false},
		{"ah-counter", KindOther, "Ah-Counter", false},
		{"GRAMMARIAN", KindOther, "Grammarian", false},
		{"", KindOther, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := Canonicalize(tt.role)
			if got.Kind != tt.wantKind {
				t.Errorf("Canonicalize(%q).Kind = %v, want %v", tt.role, got.Kind, tt.wantKind)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("Canonicalize(%q).Label = %q, want %q", tt.role, got.Label, tt.wantLabel)
			}
			if got.Recognized() != tt.recognized {
				t.Errorf("Canonicalize(%q).Recognized() = %v, want %v", tt.role, got.Recognized(), tt.recognized)
			}
		})
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	for _, role := range []string{"Speaker 1", "Toastmaster of the Evening", "Table Topics"} {
		if Canonicalize(role) != Canonicalize(role) {
			t.Errorf("Canonicalize(%q) is not deterministic", role)
		}
	}
}

func TestCanonicalize_OtherDoesNotCollideWithKnown(t *testing.T) {
	// A passthrough label spelled like a category is still a different category.
	other := Canonicalize("X Speaker")
	if other == Canonicalize("Speaker 1") {
		t.Error("passthrough role should not equal a recognised category")
	}
}
