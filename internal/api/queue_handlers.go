package api

import (
	"net/http"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
)

// handleQueueToday builds and returns today's queue plan (§4.6) for the
// caller.
func (s *Server) handleQueueToday(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	plan, err := s.Queue.Build(r.Context(), *user, time.Now().UTC())
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}

	writeJSON(w, r, http.StatusOK, plan)
}
