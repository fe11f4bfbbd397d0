package jobs

import (
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
	"github.com/vytor/flashdrill/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool *worker.Pool
	cardRepo   repository.CardRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, cardRepo repository.CardRepository) JobQueue {
	return &WorkerQueue{
		importPool: importPool,
		cardRepo:   cardRepo,
	}
}

func (q *WorkerQueue) EnqueueImport(groupID int64, cards []models.Card, source string) error {
	return q.importPool.Submit(&worker.ImportCardsJob{
		CardRepo: q.cardRepo,
		GroupID:  groupID,
		Cards:    cards,
		Source:   source,
	})
}
