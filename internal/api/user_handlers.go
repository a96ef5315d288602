package api

import (
	"net/http"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/models"
)

// handleUserStats reports a lightweight snapshot of the caller's item-state
// distribution, ahead of the richer calendar/achievements/progress views.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	now := time.Now().UTC()

	learning, err := s.ItemStates.CountByStatus(r.Context(), user.ID, models.StatusLearning)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}
	memorized, err := s.ItemStates.CountByStatus(r.Context(), user.ID, models.StatusMemorized)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}
	due, err := s.ItemStates.CountDue(r.Context(), user.ID, now)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"learning":  learning,
		"memorized": memorized,
		"due_now":   due,
	})
}

// handleUserCalendar returns the per-day calendar view (§4.9). `from`/`to`
// are UTC day strings; `month=YYYY-MM` is a shorthand for the whole month.
func (s *Server) handleUserCalendar(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	from, to, err := calendarRange(r)
	if err != nil {
		handleError(w, r, apperr.NewValidationError("month", err.Error()))
		return
	}

	cal, err := s.Analytics.Calendar(r.Context(), user.ID, from, to)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, cal)
}

func calendarRange(r *http.Request) (from, to string, err error) {
	if month := r.URL.Query().Get("month"); month != "" {
		start, parseErr := time.Parse("2006-01", month)
		if parseErr != nil {
			return "", "", parseErr
		}
		end := start.AddDate(0, 1, -1)
		return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
	}

	from = r.URL.Query().Get("from")
	to = r.URL.Query().Get("to")
	if from == "" || to == "" {
		now := time.Now().UTC()
		from = now.AddDate(0, 0, -29).Format("2006-01-02")
		to = now.Format("2006-01-02")
	}
	return from, to, nil
}

// handleUserAchievements evaluates the fixed badge table (§4.9).
func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	achievements, err := s.Analytics.Achievements(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"achievements": achievements})
}

// handleUserProgress returns the overall-retention, transition-strength,
// and checkpoint-distribution view plus a textual recommendation (§4.9).
func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	progress, err := s.Analytics.Progress(r.Context(), user.ID, s.Transitions)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}
