package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdrill/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(groupID int64, cards []models.Card, source string) error {
	args := m.Called(groupID, cards, source)
	return args.Error(0)
}
