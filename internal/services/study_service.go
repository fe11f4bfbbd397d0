package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"

	"github.com/vytor/flashdrill/internal/clock"
	"github.com/vytor/flashdrill/internal/errors"
	"github.com/vytor/flashdrill/internal/flashcard"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
	"github.com/vytor/flashdrill/internal/study"
)

const DefaultMaxSessions = 64

// StudyOptions overrides the default study settings for one session.
// Nil fields keep the defaults.
type StudyOptions struct {
	Mode              study.Mode
	TimeoutSeconds    *int
	WarnSeconds       *int
	WrongDelaySeconds *int
	SoundEnabled      *bool
	Speech            *study.SpeechSettings
}

// StudyView is what clients see of a session.
type StudyView struct {
	ID       string       `json:"id"`
	Status   study.Status `json:"status"`
	Config   study.Config `json:"config"`
	Question string       `json:"question,omitempty"`
	LastSeq  int64        `json:"last_seq"`
}

// StudyService owns the live study sessions.
type StudyService interface {
	Start(ctx context.Context, groupID int64, opts StudyOptions) (*StudyView, error)
	Get(ctx context.Context, id string) (*StudyView, error)
	Reveal(ctx context.Context, id string, draw int) (*StudyView, error)
	Answer(ctx context.Context, id string, draw int, outcome string) (*StudyView, error)
	Events(ctx context.Context, id string, after int64) ([]study.Event, error)
	Stop(ctx context.Context, id string) error
	// StopGroup ends every session of a group, e.g. after it was deleted.
	StopGroup(ctx context.Context, groupID int64)
	Shutdown()
}

type liveSession struct {
	session *study.Session
	journal *study.Journal
	groupID int64
}

type studyService struct {
	groupRepo repository.GroupRepository
	cardRepo  repository.CardRepository
	defaults  study.Config
	clock     clock.Clock
	baseCtx   context.Context
	max       int

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// StudyServiceOption configures a StudyService.
type StudyServiceOption func(*studyService)

// WithStudyClock sets the clock sessions run on.
func WithStudyClock(c clock.Clock) StudyServiceOption {
	return func(s *studyService) { s.clock = c }
}

// WithMaxSessions bounds the number of registered sessions.
func WithMaxSessions(n int) StudyServiceOption {
	return func(s *studyService) { s.max = n }
}

// NewStudyService creates a new StudyService. baseCtx is used for saves
// triggered by timers after the starting request has returned.
func NewStudyService(baseCtx context.Context, groupRepo repository.GroupRepository, cardRepo repository.CardRepository, defaults study.Config, opts ...StudyServiceOption) StudyService {
	s := &studyService{
		groupRepo: groupRepo,
		cardRepo:  cardRepo,
		defaults:  defaults,
		clock:     clock.Real(),
		baseCtx:   baseCtx,
		max:       DefaultMaxSessions,
		sessions:  make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cardStore adapts the card repository to the session's store.
type cardStore struct {
	cards repository.CardRepository
}

func (c cardStore) LoadCard(ctx context.Context, groupID, cardID int64) (models.Card, error) {
	card, err := c.cards.Get(ctx, groupID, cardID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Card{}, study.ErrCardGone
	}
	if err != nil {
		return models.Card{}, err
	}
	return *card, nil
}

func (c cardStore) SaveCards(ctx context.Context, groupID int64, cards []models.Card) error {
	return c.cards.SaveStats(ctx, groupID, cards)
}

func (s *studyService) config(opts StudyOptions) study.Config {
	cfg := s.defaults
	if opts.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *opts.TimeoutSeconds
	}
	if opts.WarnSeconds != nil {
		cfg.WarnSeconds = *opts.WarnSeconds
	}
	if opts.WrongDelaySeconds != nil {
		cfg.WrongDelaySeconds = *opts.WrongDelaySeconds
	}
	if opts.SoundEnabled != nil {
		cfg.SoundEnabled = *opts.SoundEnabled
	}
	if opts.Speech != nil {
		cfg.Speech = *opts.Speech
	}
	return cfg
}

func (s *studyService) Start(ctx context.Context, groupID int64, opts StudyOptions) (*StudyView, error) {
	log := logger.FromContext(ctx)

	if _, err := s.groupRepo.Get(ctx, groupID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("group", groupID)
		}
		log.Error("failed to get group: %v", err)
		return nil, errors.NewInternalError(err)
	}
	cards, err := s.cardRepo.List(ctx, models.CardFilter{GroupID: groupID})
	if err != nil {
		log.Error("failed to load cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.makeRoom(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	journal := study.NewJournal(study.DefaultJournalCapacity)
	sessionLog := logger.Default().WithPrefix("study").WithFields(map[string]any{
		"session_id": id,
		"group_id":   groupID,
	})
	session := study.NewSession(groupID, cardStore{cards: s.cardRepo}, s.config(opts),
		study.WithClock(s.clock),
		study.WithPresenter(journal),
		study.WithFeedback(journal),
		study.WithLogger(sessionLog),
		study.WithContext(logger.NewContext(s.baseCtx, sessionLog)),
	)

	if err := session.Start(ctx, opts.Mode, cards); err != nil {
		switch {
		case stderrors.Is(err, study.ErrNothingToReview):
			return nil, errors.NewConflictError("nothing to review")
		case stderrors.Is(err, study.ErrUnknownMode):
			return nil, errors.NewValidationError("mode", "must be learn or review")
		}
		// The round may have finished at once and failed to save; the
		// session is still usable.
		log.Error("failed to start study session: %v", err)
		session.Stop()
		return nil, errors.NewInternalError(err)
	}

	live := &liveSession{session: session, journal: journal, groupID: groupID}
	s.mu.Lock()
	s.sessions[id] = live
	s.mu.Unlock()

	log.Info("study session started: id=%s, group_id=%d, mode=%s, cards=%d", id, groupID, opts.Mode, len(cards))
	return s.view(id, live), nil
}

// makeRoom drops finished sessions when the registry is full.
func (s *studyService) makeRoom() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) < s.max {
		return nil
	}
	for id, live := range s.sessions {
		if live.session.Status().Stage == study.Idle {
			delete(s.sessions, id)
		}
	}
	if len(s.sessions) >= s.max {
		return errors.NewUnavailableError("too many active study sessions", nil)
	}
	return nil
}

func (s *studyService) lookup(id string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("study session", id)
	}
	return live, nil
}

func (s *studyService) view(id string, live *liveSession) *StudyView {
	snap := live.session.Snapshot()
	v := &StudyView{
		ID:      id,
		Status:  snap.Status,
		Config:  live.session.Config(),
		LastSeq: live.journal.LastSeq(),
	}
	if snap.Current != nil {
		v.Question = snap.Current.Question
	}
	return v
}

func (s *studyService) Get(ctx context.Context, id string) (*StudyView, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.view(id, live), nil
}

func (s *studyService) Reveal(ctx context.Context, id string, draw int) (*StudyView, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	live.session.Reveal(draw)
	return s.view(id, live), nil
}

func (s *studyService) Answer(ctx context.Context, id string, draw int, outcome string) (*StudyView, error) {
	log := logger.FromContext(ctx)

	o, err := flashcard.ParseOutcome(outcome)
	if err != nil {
		return nil, errors.NewValidationError("outcome", "must be known or wrong")
	}
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := live.session.RecordOutcome(ctx, draw, o); err != nil {
		log.Error("failed to record outcome: session_id=%s: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	return s.view(id, live), nil
}

func (s *studyService) Events(ctx context.Context, id string, after int64) ([]study.Event, error) {
	live, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return live.journal.Since(after), nil
}

func (s *studyService) Stop(ctx context.Context, id string) error {
	s.mu.Lock()
	live, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError("study session", id)
	}
	live.session.Stop()
	logger.FromContext(ctx).Info("study session stopped: id=%s", id)
	return nil
}

func (s *studyService) StopGroup(ctx context.Context, groupID int64) {
	s.mu.Lock()
	var stopped []*liveSession
	for id, live := range s.sessions {
		if live.groupID == groupID {
			stopped = append(stopped, live)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, live := range stopped {
		live.session.Stop()
	}
	if len(stopped) > 0 {
		logger.FromContext(ctx).Info("stopped %d study sessions of group %d", len(stopped), groupID)
	}
}

func (s *studyService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, live := range sessions {
		live.session.Stop()
	}
}
