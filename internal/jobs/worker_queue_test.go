package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdrill/internal/jobs"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/testutil/mocks"
	"github.com/vytor/flashdrill/internal/worker"
)

func TestWorkerQueue_EnqueueImportRunsOnPool(t *testing.T) {
	repo := new(mocks.MockCardRepository)
	cards := []models.Card{{Question: "q", Answer: "a"}}
	repo.On("Append", mock.Anything, int64(1), cards).Return([]int64{1}, nil).Once()

	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	queue := jobs.NewWorkerQueue(pool, repo)

	require.NoError(t, queue.EnqueueImport(1, cards, "text"))
	pool.Stop()

	repo.AssertExpectations(t)
}

func TestWorkerQueue_EnqueueAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	err := jobs.NewWorkerQueue(pool, new(mocks.MockCardRepository)).EnqueueImport(1, nil, "json")
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}
