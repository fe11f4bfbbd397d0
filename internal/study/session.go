package study

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/vytor/flashdrill/internal/clock"
	"github.com/vytor/flashdrill/internal/flashcard"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
)

var (
	ErrNothingToReview = errors.New("nothing to review")
	ErrUnknownMode     = errors.New("unknown study mode")

	// ErrCardGone is returned by a Store for a card deleted since the round
	// started.
	ErrCardGone = errors.New("card no longer exists")
)

// Store is the session's view of the card store. Cards may be edited,
// reset or deleted through other paths while a round runs, so outcomes are
// counted against the stored copy.
type Store interface {
	// LoadCard returns the stored card, or ErrCardGone.
	LoadCard(ctx context.Context, groupID, cardID int64) (models.Card, error)
	// SaveCards writes the counters and mastery of cards. Text and order
	// are left alone.
	SaveCards(ctx context.Context, groupID int64, cards []models.Card) error
}

// Session drives one study round over a snapshot of a group's cards.
//
// Cards are drawn from the first-pass queue, then from the review queue.
// A wrong answer, typed or timed out, appends the card to the review queue,
// so a round ends only when every card has been answered correctly once
// after its last miss. All methods are safe for concurrent use; countdown
// ticks take the same lock as callers.
type Session struct {
	mu sync.Mutex

	ctx       context.Context
	groupID   int64
	cfg       Config
	store     Store
	presenter Presenter
	feedback  Feedback
	clock     clock.Clock
	log       *logger.Logger
	shuffle   func(n int, swap func(i, j int))

	cards        []models.Card
	mode         Mode
	stage        Stage
	firstPass    []int
	review       []int
	current      int
	totalInRound int
	indexInRound int
	awaiting     bool

	countdown  *countdown
	advance    clock.Timer
	advanceGen uint64
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock driving countdowns and delayed advances.
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithPresenter sets the display adapter.
func WithPresenter(p Presenter) Option {
	return func(s *Session) { s.presenter = p }
}

// WithFeedback sets the audio adapter.
func WithFeedback(f Feedback) Option {
	return func(s *Session) { s.feedback = f }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithShuffle replaces the queue shuffler, e.g. with an identity function
// for predictable ordering.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Session) { s.shuffle = shuffle }
}

// WithContext sets the context used for saves triggered by timers.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// NewSession creates an idle session for groupID. cfg is normalized once
// here.
func NewSession(groupID int64, store Store, cfg Config, opts ...Option) *Session {
	s := &Session{
		ctx:       context.Background(),
		groupID:   groupID,
		cfg:       cfg.Normalize(),
		store:     store,
		presenter: nopPresenter{},
		feedback:  nopFeedback{},
		clock:     clock.Real(),
		log:       logger.Default().WithPrefix("study"),
		shuffle:   rand.Shuffle,
		current:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.countdown = newCountdown(s.clock, s.cfg.TimeoutSeconds, s.cfg.WarnSeconds)
	return s
}

// Config returns the normalized configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Start begins a round over cards, stopping any round in progress.
//
// Learn queues every card in random order. Review queues only cards that
// flashcard.NeedsReview accepts and returns ErrNothingToReview, leaving the
// session idle, when there are none. An empty learn round finishes at once.
func (s *Session) Start(ctx context.Context, mode Mode, cards []models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()

	snapshot := make([]models.Card, len(cards))
	for i, c := range cards {
		snapshot[i] = flashcard.Normalize(c)
	}

	var queue []int
	switch mode {
	case Learn:
		queue = make([]int, len(snapshot))
		for i := range snapshot {
			queue[i] = i
		}
	case Review:
		for i, c := range snapshot {
			if flashcard.NeedsReview(c) {
				queue = append(queue, i)
			}
		}
		if len(queue) == 0 {
			s.log.Info("no cards need review: group_id=%d", s.groupID)
			s.emitStatusLocked()
			return ErrNothingToReview
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	s.shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	s.cards = snapshot
	s.mode = mode
	s.totalInRound = len(queue)
	if mode == Learn {
		s.stage = Filtering
		s.firstPass = queue
	} else {
		s.stage = Reviewing
		s.review = queue
	}

	s.log.Info("round started: mode=%s, cards=%d, queued=%d", mode, len(snapshot), len(queue))
	s.nextCardLocked()
	return nil
}

// Reveal shows the answer of draw and stops the countdown. The card stays
// open until RecordOutcome. A draw other than the current one is ignored.
func (s *Session) Reveal(draw int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.openLocked(draw) {
		return
	}
	answer := s.cards[s.current].Answer
	s.presenter.AnswerRevealed(answer)
	if s.cfg.speakAnswers() {
		s.feedback.Speak(answer)
	}
	s.countdown.cancel()
	s.emitStatusLocked()
}

// RecordOutcome scores draw, the card shown at that round position, and
// advances to the next card. Calls for any other draw, without a current
// card, or after the card was already scored are ignored, so a repeated
// submission never scores twice.
//
// The outcome is applied to the stored copy of the card and saved before
// any in-memory state changes. If the save fails the error is returned,
// nothing is applied, and the card can be answered again. A card deleted
// since the round started is dropped from the round without scoring.
func (s *Session) RecordOutcome(ctx context.Context, draw int, outcome flashcard.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.openLocked(draw) {
		s.log.Debug("ignoring outcome for draw %d (current %d, awaiting=%t)", draw, s.indexInRound, s.awaiting)
		return nil
	}
	return s.recordLocked(ctx, outcome, false)
}

func (s *Session) openLocked(draw int) bool {
	return s.current >= 0 && !s.awaiting && draw == s.indexInRound
}

// Stop abandons the round without saving and returns the session to idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != Idle {
		s.log.Info("round stopped at %d/%d", s.indexInRound, s.totalInRound)
	}
	s.resetLocked()
	s.emitStatusLocked()
}

// Status returns the current summary.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Snapshot is a copy of the session's queues and cards.
type Snapshot struct {
	Status    Status        `json:"status"`
	Current   *models.Card  `json:"current,omitempty"`
	FirstPass []models.Card `json:"first_pass"`
	Review    []models.Card `json:"review"`
	Cards     []models.Card `json:"cards"`
}

// Snapshot returns a copy of the session's state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:    s.statusLocked(),
		FirstPass: s.cardsAt(s.firstPass),
		Review:    s.cardsAt(s.review),
		Cards:     slices.Clone(s.cards),
	}
	if s.current >= 0 {
		c := s.cards[s.current]
		snap.Current = &c
	}
	return snap
}

func (s *Session) cardsAt(indexes []int) []models.Card {
	out := make([]models.Card, len(indexes))
	for i, idx := range indexes {
		out[i] = s.cards[idx]
	}
	return out
}

func (s *Session) recordLocked(ctx context.Context, outcome flashcard.Outcome, timedOut bool) error {
	if s.current < 0 || s.awaiting {
		return nil
	}
	s.awaiting = true

	idx := s.current
	id := s.cards[idx].ID
	stored, err := s.store.LoadCard(ctx, s.groupID, id)
	if errors.Is(err, ErrCardGone) {
		s.log.Info("card deleted during round, skipping: card_id=%d", id)
		s.nextCardLocked()
		return nil
	}
	if err != nil {
		s.awaiting = false
		s.log.Error("failed to load card: card_id=%d: %v", id, err)
		s.emitStatusLocked()
		return fmt.Errorf("load card: %w", err)
	}

	card := flashcard.ApplyOutcome(flashcard.Normalize(stored), outcome)
	if err := s.store.SaveCards(ctx, s.groupID, []models.Card{card}); err != nil {
		s.awaiting = false
		s.log.Error("failed to save outcome: card_id=%d, outcome=%s: %v", id, outcome, err)
		s.emitStatusLocked()
		return fmt.Errorf("save cards: %w", err)
	}
	s.cards[idx] = card
	s.countdown.cancel()

	s.log.Debug("outcome recorded: card_id=%d, outcome=%s, timed_out=%t, correct=%d, incorrect=%d, unsure=%d, mastered=%t",
		card.ID, outcome, timedOut, card.CorrectCount, card.IncorrectCount, card.UnsureCount, card.Mastered)

	if s.cfg.SoundEnabled {
		if outcome == flashcard.Known {
			s.feedback.Correct()
		} else {
			s.feedback.Wrong()
		}
	}

	if outcome == flashcard.Wrong {
		s.review = append(s.review, idx)
	}

	if timedOut {
		s.presenter.AnswerRevealed(card.Answer)
		s.scheduleAdvanceLocked()
		s.emitStatusLocked()
		return nil
	}
	s.nextCardLocked()
	return nil
}

func (s *Session) nextCardLocked() {
	s.countdown.cancel()
	s.awaiting = false

	if s.stage == Filtering && len(s.firstPass) == 0 {
		if len(s.review) == 0 {
			s.finishRoundLocked()
			return
		}
		s.stage = Reviewing
		s.log.Debug("first pass done, reviewing %d cards", len(s.review))
	}

	var queue *[]int
	switch s.stage {
	case Filtering:
		queue = &s.firstPass
	case Reviewing:
		queue = &s.review
	default:
		s.finishRoundLocked()
		return
	}
	if len(*queue) == 0 {
		s.finishRoundLocked()
		return
	}

	s.current = (*queue)[0]
	*queue = (*queue)[1:]
	s.indexInRound++

	card := s.cards[s.current]
	s.presenter.CardShown(s.indexInRound, card)
	if s.cfg.speakQuestions() {
		s.feedback.Speak(card.Question)
	}

	s.countdown.start(s.onTick)
	s.presenter.CountdownTicked(s.countdown.remaining, s.countdown.warning())
	s.emitStatusLocked()
}

// finishRoundLocked ends the round. Every outcome was saved when it was
// recorded, so nothing is written here.
func (s *Session) finishRoundLocked() {
	s.log.Info("round finished: mode=%s, shown=%d", s.mode, s.indexInRound)

	cards := s.cards
	s.resetLocked()
	s.cards = cards

	s.presenter.RoundFinished()
	s.emitStatusLocked()
}

func (s *Session) onTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.countdown.advance(gen)
	if !ok {
		return
	}
	if t.firstWarning && s.cfg.SoundEnabled {
		s.feedback.Warning()
	}
	s.presenter.CountdownTicked(t.remaining, t.warning)

	if !t.expired {
		s.countdown.schedule(s.onTick)
		s.emitStatusLocked()
		return
	}

	s.countdown.cancel()
	if s.current < 0 || s.awaiting {
		s.emitStatusLocked()
		return
	}
	s.log.Debug("countdown expired: card_id=%d", s.cards[s.current].ID)
	if err := s.recordLocked(s.ctx, flashcard.Wrong, true); err != nil {
		s.presenter.PersistFailed(err)
	}
}

func (s *Session) scheduleAdvanceLocked() {
	s.cancelAdvanceLocked()
	gen := s.advanceGen
	s.advance = s.clock.AfterFunc(s.cfg.WrongDelay(), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.advanceGen {
			return
		}
		s.advance = nil
		s.nextCardLocked()
	})
}

func (s *Session) cancelAdvanceLocked() {
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
	s.advanceGen++
}

func (s *Session) resetLocked() {
	s.countdown.cancel()
	s.cancelAdvanceLocked()
	s.cards = nil
	s.stage = Idle
	s.firstPass = nil
	s.review = nil
	s.current = -1
	s.totalInRound = 0
	s.indexInRound = 0
	s.awaiting = false
}

func (s *Session) statusLocked() Status {
	st := Status{
		GroupID:        s.groupID,
		Mode:           s.mode,
		Stage:          s.stage,
		TotalCards:     len(s.cards),
		Position:       s.indexInRound,
		RoundTotal:     s.totalInRound,
		Countdown:      s.countdown.remaining,
		AwaitingAnswer: s.awaiting,
	}
	for _, c := range s.cards {
		if c.Mastered {
			st.MasteredCards++
		}
	}
	switch s.stage {
	case Filtering:
		st.Remaining = len(s.firstPass)
	case Reviewing:
		st.Remaining = len(s.review)
	}
	if s.current >= 0 {
		st.CurrentCardID = s.cards[s.current].ID
	}
	return st
}

func (s *Session) emitStatusLocked() {
	s.presenter.StatusChanged(s.statusLocked())
}
