package api

import (
	"context"
	"time"

	"github.com/vytor/flashdrill/internal/services"
)

// DefaultRequestTimeout bounds every request handled by Routes.
const DefaultRequestTimeout = 30 * time.Second

// Pinger checks that the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB             Pinger
	GroupService   services.GroupService
	CardService    services.CardService
	StudyService   services.StudyService
	RequestTimeout time.Duration
}
