package models

import "time"

type Card struct {
	ID             int64     `json:"id"`
	GroupID        int64     `json:"group_id"`
	Position       int       `json:"position"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	CorrectCount   int       `json:"correct_count"`
	UnsureCount    int       `json:"unsure_count"`
	IncorrectCount int       `json:"incorrect_count"`
	Mastered       bool      `json:"mastered"`
	CreatedAt      time.Time `json:"created_at"`
}

// CardDocument is the portable form of a card used by JSON import and
// export. Field names match the documents produced by earlier versions of
// the tool so old exports can be re-imported.
type CardDocument struct {
	Question  string `json:"q"`
	Answer    string `json:"a"`
	Correct   int    `json:"correct"`
	Unsure    int    `json:"unsure"`
	Incorrect int    `json:"incorrect"`
	Mastered  bool   `json:"mastered"`
}

// Document converts c to its portable form.
func (c Card) Document() CardDocument {
	return CardDocument{
		Question:  c.Question,
		Answer:    c.Answer,
		Correct:   c.CorrectCount,
		Unsure:    c.UnsureCount,
		Incorrect: c.IncorrectCount,
		Mastered:  c.Mastered,
	}
}

// Card converts d into an unsaved card.
func (d CardDocument) Card() Card {
	return Card{
		Question:       d.Question,
		Answer:         d.Answer,
		CorrectCount:   d.Correct,
		UnsureCount:    d.Unsure,
		IncorrectCount: d.Incorrect,
		Mastered:       d.Mastered,
	}
}

// CardFilter narrows card listings. Mastered and NeedsReview are
// independent; setting both returns their intersection.
type CardFilter struct {
	GroupID     int64
	IDs         []int64
	Mastered    *bool
	NeedsReview bool
	Limit       int
	Offset      int
}
