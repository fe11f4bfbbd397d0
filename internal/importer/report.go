package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/vytor/flashdrill/internal/models"
)

var reportHeader = []string{"question", "correct", "unsure", "incorrect", "mastered"}

// WriteReportCSV writes one row per card. Line breaks inside a question are
// written as a literal \n so every card stays on one line.
func WriteReportCSV(w io.Writer, cards []models.Card) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, c := range cards {
		mastered := "no"
		if c.Mastered {
			mastered = "yes"
		}
		row := []string{
			escapeNewlines(c.Question),
			strconv.Itoa(c.CorrectCount),
			strconv.Itoa(c.UnsureCount),
			strconv.Itoa(c.IncorrectCount),
			mastered,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	return strings.ReplaceAll(s, "\n", `\n`)
}
