package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdrill/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, groupID, id int64) (*models.Card, error) {
	args := m.Called(ctx, groupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) Append(ctx context.Context, groupID int64, cards []models.Card) ([]int64, error) {
	args := m.Called(ctx, groupID, cards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockCardRepository) UpdateText(ctx context.Context, groupID, id int64, question, answer string) error {
	args := m.Called(ctx, groupID, id, question, answer)
	return args.Error(0)
}

func (m *MockCardRepository) SaveStats(ctx context.Context, groupID int64, cards []models.Card) error {
	args := m.Called(ctx, groupID, cards)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	args := m.Called(ctx, groupID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Move(ctx context.Context, groupID, id int64, delta int) error {
	args := m.Called(ctx, groupID, id, delta)
	return args.Error(0)
}

func (m *MockCardRepository) ResetStats(ctx context.Context, groupID int64, ids []int64) (int64, error) {
	args := m.Called(ctx, groupID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Clear(ctx context.Context, groupID int64) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Stats(ctx context.Context, groupID int64) (*models.CardStats, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardStats), args.Error(1)
}
