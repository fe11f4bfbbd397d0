package jobs

import "github.com/vytor/flashdrill/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueImport queues cards to be appended to a group. source names
	// where they came from, e.g. "text" or "json".
	EnqueueImport(groupID int64, cards []models.Card, source string) error
}
