// Package importer converts between cards and the formats users bring in
// or take out: pasted free text, JSON card documents and CSV reports.
package importer

import (
	"regexp"
	"strings"

	"github.com/vytor/flashdrill/internal/models"
)

const ws = `[\s\p{Zs}]`

var (
	questionPrefix = regexp.MustCompile(`^[Qq]` + ws + `*[:：]` + ws + `*`)
	numberPrefix   = regexp.MustCompile(`^\d+[.、．]?` + ws + `*`)
	parenPrefix    = regexp.MustCompile(`^[（(]` + ws + `*\d+` + ws + `*[）)]` + ws + `*`)
	circledPrefix  = regexp.MustCompile(`^[①②③④⑤⑥⑦⑧⑨⑩]`)
	questionSuffix = regexp.MustCompile(`[？?]$`)

	answerPrefix = regexp.MustCompile(`^[Aa]` + ws + `*[:：]` + ws + `*`)
	answerMarker = regexp.MustCompile(`^答` + ws + `*[:：]?` + ws + `*`)
)

func isQuestionStart(line string) bool {
	return questionPrefix.MatchString(line) ||
		numberPrefix.MatchString(line) ||
		parenPrefix.MatchString(line) ||
		circledPrefix.MatchString(line) ||
		questionSuffix.MatchString(line)
}

func isAnswerStart(line string) bool {
	return answerPrefix.MatchString(line) || answerMarker.MatchString(line)
}

// ParseText extracts question/answer pairs from pasted notes.
//
// A question starts with "Q:", a number ("1.", "1、", "(1)"), a circled
// digit, or ends in a question mark. An answer starts with "A:" or "答".
// Full-width colons are accepted. Unlabeled lines extend whichever side is
// open; a line right after a bare question becomes its answer. A blank line
// closes the current pair. Pairs missing either side are dropped.
func ParseText(text string) []models.CardDocument {
	var (
		cards      []models.CardDocument
		q, a       string
		inQuestion bool
		inAnswer   bool
	)
	flush := func() {
		if q != "" && a != "" {
			cards = append(cards, models.CardDocument{
				Question: strings.TrimSpace(q),
				Answer:   strings.TrimSpace(a),
			})
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" {
			if q != "" && a != "" {
				flush()
				q, a = "", ""
			}
			inQuestion, inAnswer = false, false
			continue
		}

		question, answer := isQuestionStart(line), isAnswerStart(line)
		switch {
		case question && !answer:
			flush()
			line = questionPrefix.ReplaceAllString(line, "")
			line = numberPrefix.ReplaceAllString(line, "")
			line = parenPrefix.ReplaceAllString(line, "")
			q = strings.TrimSpace(line)
			a = ""
			inQuestion, inAnswer = true, false
		case answer:
			line = answerPrefix.ReplaceAllString(line, "")
			line = answerMarker.ReplaceAllString(line, "")
			a = strings.TrimSpace(line)
			inQuestion, inAnswer = false, true
		case inQuestion:
			q = appendLine(q, line)
		case inAnswer || a != "":
			a = appendLine(a, line)
		case q != "":
			a = line
			inAnswer = true
		default:
			q = line
			a = ""
			inQuestion, inAnswer = true, false
		}
	}
	flush()
	return cards
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n" + line
}

// Confirmed keeps the pairs with both sides non-empty after trimming and
// returns them as fresh cards with zeroed counters.
func Confirmed(docs []models.CardDocument) []models.Card {
	var cards []models.Card
	for _, d := range docs {
		q, a := strings.TrimSpace(d.Question), strings.TrimSpace(d.Answer)
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, models.Card{Question: q, Answer: a})
	}
	return cards
}
