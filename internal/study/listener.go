package study

import (
	"fmt"
	"strings"

	"github.com/vytor/flashdrill/internal/models"
)

// Mode selects which cards a round drills.
type Mode int

const (
	// Learn drills every card of the group.
	Learn Mode = iota
	// Review drills only cards with recorded difficulty.
	Review
)

func (m Mode) String() string {
	switch m {
	case Learn:
		return "learn"
	case Review:
		return "review"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode accepts "learn" or "review".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "learn":
		return Learn, nil
	case "review":
		return Review, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Stage is the position of a session in its round.
type Stage int

const (
	Idle Stage = iota
	// Filtering is the first pass over the learn queue.
	Filtering
	// Reviewing drains the review queue.
	Reviewing
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Filtering:
		return "filtering"
	case Reviewing:
		return "reviewing"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "filtering":
		*s = Filtering
	case "reviewing":
		*s = Reviewing
	default:
		return fmt.Errorf("unknown stage %q", b)
	}
	return nil
}

// Status is the summary shown next to the current card.
type Status struct {
	GroupID        int64 `json:"group_id"`
	Mode           Mode  `json:"mode"`
	Stage          Stage `json:"stage"`
	TotalCards     int   `json:"total_cards"`
	MasteredCards  int   `json:"mastered_cards"`
	Remaining      int   `json:"remaining"`
	Position       int   `json:"position"`
	RoundTotal     int   `json:"round_total"`
	Countdown      int   `json:"countdown"`
	AwaitingAnswer bool  `json:"awaiting_answer"`
	CurrentCardID  int64 `json:"current_card_id,omitempty"`
}

// Presenter receives everything a display needs. Calls are made while the
// session is locked; implementations must not call back into the Session.
type Presenter interface {
	// CardShown reports a newly drawn card. draw is its round position and
	// identifies the card in Reveal and RecordOutcome.
	CardShown(draw int, card models.Card)
	AnswerRevealed(answer string)
	CountdownTicked(remaining int, warning bool)
	RoundFinished()
	StatusChanged(status Status)
	PersistFailed(err error)
}

// Feedback plays audio cues. Like Presenter, it is called under the session
// lock.
type Feedback interface {
	Correct()
	Wrong()
	Warning()
	Speak(text string)
}

type nopPresenter struct{}

func (nopPresenter) CardShown(int, models.Card) {}
func (nopPresenter) AnswerRevealed(string)      {}
func (nopPresenter) CountdownTicked(int, bool)  {}
func (nopPresenter) RoundFinished()             {}
func (nopPresenter) StatusChanged(Status)       {}
func (nopPresenter) PersistFailed(error)        {}

type nopFeedback struct{}

func (nopFeedback) Correct()     {}
func (nopFeedback) Wrong()       {}
func (nopFeedback) Warning()     {}
func (nopFeedback) Speak(string) {}
