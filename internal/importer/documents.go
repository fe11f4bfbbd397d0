package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vytor/flashdrill/internal/models"
)

// ErrNotArray is returned when a JSON import is not a top-level array.
var ErrNotArray = errors.New("JSON must be an array")

// DecodeDocuments reads a JSON array of card documents. Elements that are
// not objects, and fields with the wrong type, are normalized to defaults:
// empty text, zero counters, not mastered. Numeric strings are accepted for
// counters.
func DecodeDocuments(r io.Reader) ([]models.CardDocument, error) {
	var raw any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	docs := make([]models.CardDocument, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		docs = append(docs, models.CardDocument{
			Question:  text(obj["q"]),
			Answer:    text(obj["a"]),
			Correct:   count(obj["correct"]),
			Unsure:    count(obj["unsure"]),
			Incorrect: count(obj["incorrect"]),
			Mastered:  truthy(obj["mastered"]),
		})
	}
	return docs, nil
}

// EncodeDocuments writes docs as an indented JSON array.
func EncodeDocuments(w io.Writer, docs []models.CardDocument) error {
	if docs == nil {
		docs = []models.CardDocument{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func count(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = n
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case nil:
		return false
	default:
		return true
	}
}
