package worker

import (
	"context"

	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
)

// ImportCardsJob appends confirmed cards to a group.
type ImportCardsJob struct {
	CardRepo repository.CardRepository
	GroupID  int64
	Cards    []models.Card
	Source   string
}

func (j *ImportCardsJob) Name() string { return "import_cards" }

func (j *ImportCardsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"group_id": j.GroupID,
		"source":   j.Source,
	})
	log.Info("importing %d cards", len(j.Cards))

	ids, err := j.CardRepo.Append(ctx, j.GroupID, j.Cards)
	if err != nil {
		log.Error("failed to import cards: %v", err)
		return err
	}
	log.Info("imported %d cards", len(ids))
	return nil
}
