package assign

import (
	"strings"
	"unicode"
)

// Kind identifies a recognised role category
type Kind int

const (
	// KindOther is an unrecognised role; its Label is the title-cased raw text
	KindOther Kind = iota
	KindSpeaker
	KindEvaluator
	KindTimer
	KindTableTopicsEvaluation
	KindTableTopics
)

var kindLabels = map[Kind]string{
	KindSpeaker:               "Speaker",
	KindEvaluator:             "Evaluator",
	KindTimer:                 "Timer",
	KindTableTopicsEvaluation: "Table Topics Evaluation",
	KindTableTopics:           "Table Topics",
}

// CanonicalRole is the category a free-text role label maps to for fairness checks.
// It is never shown to users.
type CanonicalRole struct {
	Kind  Kind
	Label string
}

// Recognized reports whether the role matched one of the known categories
// rather than passing through as its own category.
func (c CanonicalRole) Recognized() bool {
	return c.Kind != KindOther
}

func (c CanonicalRole) String() string {
	return c.Label
}

// Canonicalize maps a role label to its category. Rules are checked in order
// against the trimmed, lower-cased label.
func Canonicalize(role string) CanonicalRole {
	r := strings.ToLower(strings.TrimSpace(role))

	var kind Kind
	switch {
	case strings.HasPrefix(r, "speaker"):
		kind = KindSpeaker
	case strings.HasPrefix(r, "evaluator"):
		kind = KindEvaluator
	case strings.Contains(r, "timer"):
		kind = KindTimer
	case strings.Contains(r, "table topics") && strings.Contains(r, "evaluation"):
		kind = KindTableTopicsEvaluation
	case strings.Contains(r, "table topics"):
		kind = KindTableTopics
	default:
		return CanonicalRole{Kind: KindOther, Label: titleCase(r)}
	}
	return CanonicalRole{Kind: kind, Label: kindLabels[kind]}
}

// titleCase upper-cases the first letter of every run of letters and lower-cases
// the rest, so "ah-counter" becomes "Ah-Counter".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
