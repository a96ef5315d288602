package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Routes wires chi to every endpoint in §6: correlation-id/logging,
// panic recovery, and security headers wrap everything; health checks
// stay open, everything else requires a resolved identity.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/assessment/submit", s.handleAssessmentSubmit)

		r.Post("/fluency-gate/start", s.handleFluencyGateStart)
		r.Post("/fluency-gate/submit", s.handleFluencyGateSubmit)
		r.Get("/fluency-gate/status", s.handleFluencyGateStatus)

		r.Get("/queue/today", s.handleQueueToday)

		r.Post("/session/start", s.handleSessionStart)
		r.Post("/session/step-complete", s.handleSessionStepComplete)
		r.Post("/session/complete", s.handleSessionComplete)

		r.Post("/review/event", s.handleReviewEvent)

		r.Get("/user/stats", s.handleUserStats)
		r.Get("/user/calendar", s.handleUserCalendar)
		r.Get("/user/achievements", s.handleUserAchievements)
		r.Get("/user/progress", s.handleUserProgress)
	})

	return r
}
