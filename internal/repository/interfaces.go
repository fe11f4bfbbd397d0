package repository

import (
	"context"
	"errors"

	"github.com/vytor/flashdrill/internal/models"
)

// ErrDuplicateName is returned when a group name is already taken.
var ErrDuplicateName = errors.New("duplicate group name")

// GroupRepository handles group data access
type GroupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	// Get returns sql.ErrNoRows when the group does not exist.
	Get(ctx context.Context, id int64) (*models.Group, error)
	// GetByName returns nil, nil when no group has that name.
	GetByName(ctx context.Context, name string) (*models.Group, error)
	Insert(ctx context.Context, name string) (int64, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// CardRepository handles card data access. Cards are kept in position
// order within their group.
type CardRepository interface {
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	// Get returns sql.ErrNoRows when the card is not in the group.
	Get(ctx context.Context, groupID, id int64) (*models.Card, error)
	// Append adds cards after the last card of the group.
	Append(ctx context.Context, groupID int64, cards []models.Card) ([]int64, error)
	// UpdateText edits a card's question and answer.
	UpdateText(ctx context.Context, groupID, id int64, question, answer string) error
	// SaveStats writes the counters and mastery flag of each card. Text and
	// positions are left alone, and cards no longer in the group are
	// skipped.
	SaveStats(ctx context.Context, groupID int64, cards []models.Card) error
	Delete(ctx context.Context, groupID int64, ids []int64) (int64, error)
	// Move swaps the card with its neighbour delta steps away in position
	// order. Moving past either end is a no-op.
	Move(ctx context.Context, groupID, id int64, delta int) error
	ResetStats(ctx context.Context, groupID int64, ids []int64) (int64, error)
	Clear(ctx context.Context, groupID int64) (int64, error)
	Stats(ctx context.Context, groupID int64) (*models.CardStats, error)
}
