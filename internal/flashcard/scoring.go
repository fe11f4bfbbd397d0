package flashcard

import (
	"fmt"
	"strings"

	"github.com/vytor/flashdrill/internal/models"
)

// Outcome is the result of one attempt at a card.
type Outcome int

const (
	Known Outcome = iota
	Wrong
)

func (o Outcome) String() string {
	switch o {
	case Known:
		return "known"
	case Wrong:
		return "wrong"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome accepts "known" or "wrong", case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "known":
		return Known, nil
	case "wrong":
		return Wrong, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

// MasteryThreshold is the number of correct answers, with no incorrect
// ones, at which a card counts as mastered.
const MasteryThreshold = 2

// ApplyOutcome returns card with the outcome counted.
//
// A card is marked unsure once, the first time it is scored while holding
// both correct and incorrect answers. Mastery is recomputed every time, so
// a wrong answer clears it.
func ApplyOutcome(card models.Card, outcome Outcome) models.Card {
	switch outcome {
	case Known:
		card.CorrectCount++
	case Wrong:
		card.IncorrectCount++
	default:
		return card
	}

	if card.IncorrectCount > 0 && card.CorrectCount > 0 && card.UnsureCount == 0 {
		card.UnsureCount++
	}

	if outcome == Wrong {
		card.Mastered = false
	} else {
		card.Mastered = IsMastered(card)
	}
	return card
}

// IsMastered evaluates the mastery rule against the card's counters.
func IsMastered(card models.Card) bool {
	return card.CorrectCount >= MasteryThreshold && card.IncorrectCount == 0
}

// NeedsReview reports whether the card has any recorded difficulty and is
// therefore eligible for a review round.
func NeedsReview(card models.Card) bool {
	return card.UnsureCount > 0 ||
		(card.CorrectCount > 0 && card.IncorrectCount > 0) ||
		card.IncorrectCount > 0
}

// Normalize trims the card's text and clamps negative counters to zero.
// The mastered flag is kept as given.
func Normalize(card models.Card) models.Card {
	card.Question = strings.TrimSpace(card.Question)
	card.Answer = strings.TrimSpace(card.Answer)
	card.CorrectCount = max(card.CorrectCount, 0)
	card.UnsureCount = max(card.UnsureCount, 0)
	card.IncorrectCount = max(card.IncorrectCount, 0)
	return card
}

// ResetStats zeroes every counter and clears mastery.
func ResetStats(card models.Card) models.Card {
	card.CorrectCount = 0
	card.UnsureCount = 0
	card.IncorrectCount = 0
	card.Mastered = false
	return card
}
