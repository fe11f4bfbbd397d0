package study

import (
	"sync"
	"time"

	"github.com/vytor/flashdrill/internal/models"
)

type EventKind string

const (
	EventCardShown       EventKind = "card_shown"
	EventAnswerRevealed  EventKind = "answer_revealed"
	EventCountdown       EventKind = "countdown"
	EventRoundFinished   EventKind = "round_finished"
	EventStatus          EventKind = "status"
	EventPersistFailed   EventKind = "persist_failed"
	EventCorrectFeedback EventKind = "feedback_correct"
	EventWrongFeedback   EventKind = "feedback_wrong"
	EventWarningFeedback EventKind = "feedback_warning"
	EventSpeak           EventKind = "speak"
)

// Event is one notification recorded by a Journal.
type Event struct {
	Seq       int64        `json:"seq"`
	Kind      EventKind    `json:"kind"`
	At        time.Time    `json:"at"`
	Draw      int          `json:"draw,omitempty"`
	Card      *models.Card `json:"card,omitempty"`
	Text      string       `json:"text,omitempty"`
	Remaining *int         `json:"remaining,omitempty"`
	Warning   bool         `json:"warning,omitempty"`
	Status    *Status      `json:"status,omitempty"`
	Error     string       `json:"error,omitempty"`
}

const DefaultJournalCapacity = 256

// Journal records Presenter and Feedback notifications for clients that
// poll instead of holding a connection. Only the newest capacity events
// are kept.
type Journal struct {
	mu       sync.Mutex
	capacity int
	events   []Event
	seq      int64
	now      func() time.Time
}

var (
	_ Presenter = (*Journal)(nil)
	_ Feedback  = (*Journal)(nil)
)

// NewJournal creates a journal keeping at most capacity events.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{capacity: capacity, now: time.Now}
}

// Since returns the retained events with a sequence number above after.
func (j *Journal) Since(after int64) []Event {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := []Event{}
	for _, e := range j.events {
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest event, or zero.
func (j *Journal) LastSeq() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

func (j *Journal) append(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	e.Seq = j.seq
	e.At = j.now()
	j.events = append(j.events, e)
	if over := len(j.events) - j.capacity; over > 0 {
		j.events = append(j.events[:0:0], j.events[over:]...)
	}
}

func (j *Journal) CardShown(draw int, card models.Card) {
	j.append(Event{Kind: EventCardShown, Draw: draw, Card: &card})
}

func (j *Journal) AnswerRevealed(answer string) {
	j.append(Event{Kind: EventAnswerRevealed, Text: answer})
}

func (j *Journal) CountdownTicked(remaining int, warning bool) {
	j.append(Event{Kind: EventCountdown, Remaining: &remaining, Warning: warning})
}

func (j *Journal) RoundFinished() {
	j.append(Event{Kind: EventRoundFinished})
}

func (j *Journal) StatusChanged(status Status) {
	j.append(Event{Kind: EventStatus, Status: &status})
}

func (j *Journal) PersistFailed(err error) {
	j.append(Event{Kind: EventPersistFailed, Error: err.Error()})
}

func (j *Journal) Correct() { j.append(Event{Kind: EventCorrectFeedback}) }
func (j *Journal) Wrong()   { j.append(Event{Kind: EventWrongFeedback}) }
func (j *Journal) Warning() { j.append(Event{Kind: EventWarningFeedback}) }

func (j *Journal) Speak(text string) {
	j.append(Event{Kind: EventSpeak, Text: text})
}
