// Package api implements the JSON surface of §6: chi routing, the
// request-correlation/logging/recovery middleware chain, and one handler
// per endpoint, wired to the scheduling-core services.
package api

import (
	"context"
	"database/sql"

	"github.com/hifzlab/scheduler/internal/analytics"
	"github.com/hifzlab/scheduler/internal/eventstore"
	"github.com/hifzlab/scheduler/internal/fluency"
	"github.com/hifzlab/scheduler/internal/queue"
	"github.com/hifzlab/scheduler/internal/repository"
	"github.com/hifzlab/scheduler/internal/session"
)

// Server holds every dependency a handler needs. It carries no business
// logic of its own — each handler translates one HTTP request into a call
// on one of these services.
type Server struct {
	DB *sql.DB

	Users        repository.UserRepository
	Ayahs        repository.AyahRepository
	Events       repository.EventRepository
	ItemStates   repository.ItemStateRepository
	Transitions  repository.TransitionScoreRepository
	FluencyTests repository.FluencyGateRepository

	Store     *eventstore.Store
	Gate      *fluency.Gate
	Queue     *queue.Planner
	Session   *session.Service
	Analytics *analytics.Views
}

// checkDatabase verifies database connectivity with a lightweight ping.
func (s *Server) checkDatabase(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
