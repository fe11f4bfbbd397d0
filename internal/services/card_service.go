package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/flashdrill/internal/errors"
	"github.com/vytor/flashdrill/internal/flashcard"
	"github.com/vytor/flashdrill/internal/importer"
	"github.com/vytor/flashdrill/internal/jobs"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
	"github.com/vytor/flashdrill/internal/worker"
)

const (
	FilterAll      = ""
	FilterMastered = "mastered"
	FilterReview   = "review"

	MoveUp   = "up"
	MoveDown = "down"
)

// CardService handles card-related business logic
type CardService interface {
	ListCards(ctx context.Context, groupID int64, filter string) ([]models.Card, error)
	AddCard(ctx context.Context, groupID int64, question, answer string) (*models.Card, error)
	UpdateCard(ctx context.Context, groupID, id int64, question, answer string) (*models.Card, error)
	DeleteCards(ctx context.Context, groupID int64, ids []int64) (int64, error)
	MoveCard(ctx context.Context, groupID, id int64, direction string) error
	ResetStats(ctx context.Context, groupID int64, ids []int64) (int64, error)
	ClearGroup(ctx context.Context, groupID int64) (int64, error)

	PreviewImport(text string) []models.CardDocument
	// ImportConfirmed queues the pairs with both sides filled and returns
	// how many were queued.
	ImportConfirmed(ctx context.Context, groupID int64, docs []models.CardDocument) (int, error)
	ImportJSON(ctx context.Context, groupID int64, r io.Reader) (int, error)
	Export(ctx context.Context, groupID int64) ([]models.CardDocument, error)

	Report(ctx context.Context, groupID int64) (*models.Report, error)
	WriteReportCSV(ctx context.Context, groupID int64, w io.Writer) error
}

type cardService struct {
	groupRepo repository.GroupRepository
	cardRepo  repository.CardRepository
	jobQueue  jobs.JobQueue
}

// NewCardService creates a new CardService
func NewCardService(groupRepo repository.GroupRepository, cardRepo repository.CardRepository, jobQueue jobs.JobQueue) CardService {
	return &cardService{groupRepo: groupRepo, cardRepo: cardRepo, jobQueue: jobQueue}
}

func (s *cardService) requireGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	g, err := s.groupRepo.Get(ctx, groupID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("group", groupID)
		}
		logger.FromContext(ctx).Error("failed to get group: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return g, nil
}

func (s *cardService) ListCards(ctx context.Context, groupID int64, filter string) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: group_id=%d, filter=%s", groupID, filter)

	f := models.CardFilter{GroupID: groupID}
	switch filter {
	case FilterAll:
	case FilterMastered:
		mastered := true
		f.Mastered = &mastered
	case FilterReview:
		f.NeedsReview = true
	default:
		return nil, errors.NewValidationError("filter", "must be mastered or review")
	}

	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.List(ctx, f)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *cardService) AddCard(ctx context.Context, groupID int64, question, answer string) (*models.Card, error) {
	log := logger.FromContext(ctx)
	question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)

	if question == "" {
		return nil, errors.NewValidationError("question", "cannot be empty")
	}
	if answer == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}
	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	ids, err := s.cardRepo.Append(ctx, groupID, []models.Card{{Question: question, Answer: answer}})
	if err != nil {
		log.Error("failed to add card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.getCard(ctx, groupID, ids[0])
}

func (s *cardService) UpdateCard(ctx context.Context, groupID, id int64, question, answer string) (*models.Card, error) {
	log := logger.FromContext(ctx)
	question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)

	if question == "" {
		return nil, errors.NewValidationError("question", "cannot be empty")
	}
	if answer == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}

	if err := s.cardRepo.UpdateText(ctx, groupID, id, question, answer); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("card", id)
		}
		log.Error("failed to update card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.getCard(ctx, groupID, id)
}

func (s *cardService) getCard(ctx context.Context, groupID, id int64) (*models.Card, error) {
	card, err := s.cardRepo.Get(ctx, groupID, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("card", id)
		}
		logger.FromContext(ctx).Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *cardService) DeleteCards(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.NewValidationError("ids", "select at least one card")
	}
	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return 0, err
	}
	n, err := s.cardRepo.Delete(ctx, groupID, ids)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete cards: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *cardService) MoveCard(ctx context.Context, groupID, id int64, direction string) error {
	var delta int
	switch direction {
	case MoveUp:
		delta = -1
	case MoveDown:
		delta = 1
	default:
		return errors.NewValidationError("direction", "must be up or down")
	}

	if err := s.cardRepo.Move(ctx, groupID, id, delta); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("card", id)
		}
		logger.FromContext(ctx).Error("failed to move card: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *cardService) ResetStats(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.NewValidationError("ids", "select at least one card")
	}
	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return 0, err
	}
	n, err := s.cardRepo.ResetStats(ctx, groupID, ids)
	if err != nil {
		logger.FromContext(ctx).Error("failed to reset card stats: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *cardService) ClearGroup(ctx context.Context, groupID int64) (int64, error) {
	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return 0, err
	}
	n, err := s.cardRepo.Clear(ctx, groupID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to clear group: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *cardService) PreviewImport(text string) []models.CardDocument {
	docs := importer.ParseText(text)
	if docs == nil {
		docs = []models.CardDocument{}
	}
	return docs
}

func (s *cardService) ImportConfirmed(ctx context.Context, groupID int64, docs []models.CardDocument) (int, error) {
	cards := importer.Confirmed(docs)
	if len(cards) == 0 {
		return 0, errors.NewValidationError("cards", "no card has both a question and an answer")
	}
	return s.enqueue(ctx, groupID, cards, "text")
}

func (s *cardService) ImportJSON(ctx context.Context, groupID int64, r io.Reader) (int, error) {
	docs, err := importer.DecodeDocuments(r)
	if err != nil {
		if stderrors.Is(err, importer.ErrNotArray) {
			return 0, errors.NewBadRequestError(importer.ErrNotArray.Error())
		}
		return 0, errors.NewBadRequestError(err.Error())
	}

	cards := make([]models.Card, len(docs))
	for i, d := range docs {
		cards[i] = flashcard.Normalize(d.Card())
	}
	if len(cards) == 0 {
		_, err := s.requireGroup(ctx, groupID)
		return 0, err
	}
	return s.enqueue(ctx, groupID, cards, "json")
}

func (s *cardService) enqueue(ctx context.Context, groupID int64, cards []models.Card, source string) (int, error) {
	log := logger.FromContext(ctx)

	if _, err := s.requireGroup(ctx, groupID); err != nil {
		return 0, err
	}
	if err := s.jobQueue.EnqueueImport(groupID, cards, source); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrPoolStopped) {
			log.Warn("import rejected: group_id=%d, cards=%d: %v", groupID, len(cards), err)
			return 0, errors.NewUnavailableError("import queue is busy, try again later", err)
		}
		log.Error("failed to enqueue import: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("import queued: group_id=%d, cards=%d, source=%s", groupID, len(cards), source)
	return len(cards), nil
}

func (s *cardService) Export(ctx context.Context, groupID int64) ([]models.CardDocument, error) {
	cards, err := s.ListCards(ctx, groupID, FilterAll)
	if err != nil {
		return nil, err
	}
	docs := make([]models.CardDocument, len(cards))
	for i, c := range cards {
		docs[i] = c.Document()
	}
	return docs, nil
}

func (s *cardService) Report(ctx context.Context, groupID int64) (*models.Report, error) {
	log := logger.FromContext(ctx)
	log.Debug("building report: group_id=%d", groupID)

	var (
		group *models.Group
		stats *models.CardStats
		cards []models.Card
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = s.requireGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.cardRepo.Stats(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.cardRepo.List(gctx, models.CardFilter{GroupID: groupID})
		return err
	})
	if err := g.Wait(); err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		log.Error("failed to build report: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.Report{Group: *group, Stats: *stats, Cards: cards}, nil
}

func (s *cardService) WriteReportCSV(ctx context.Context, groupID int64, w io.Writer) error {
	cards, err := s.ListCards(ctx, groupID, FilterAll)
	if err != nil {
		return err
	}
	if err := importer.WriteReportCSV(w, cards); err != nil {
		logger.FromContext(ctx).Error("failed to write report: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
