package models

// CardStats summarizes the outcome counters of one group.
type CardStats struct {
	TotalCards     int `json:"total_cards"`
	CorrectTotal   int `json:"correct_total"`
	UnsureTotal    int `json:"unsure_total"`
	IncorrectTotal int `json:"incorrect_total"`
	MasteredCards  int `json:"mastered_cards"`
	ReviewCards    int `json:"review_cards"`
}

// Report is the per-group study report: the summary plus every card in
// group order.
type Report struct {
	Group Group     `json:"group"`
	Stats CardStats `json:"stats"`
	Cards []Card    `json:"cards"`
}
