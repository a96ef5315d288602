package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
)

// identity is what bearer-token verification hands the scheduling core
// (§6's collaborator contract): a userId/email pair. This server does not
// verify the token itself — only the dev-mode decoding below.
type identity struct {
	UserID string
	Email  string
}

type contextKeyUser struct{}

func userFromContext(ctx context.Context) *models.User {
	if v, ok := ctx.Value(contextKeyUser{}).(*models.User); ok {
		return v
	}
	return nil
}

// authMiddleware decodes the bearer token into an identity, then
// find-or-creates the User row by email (§6: "find-or-create by email;
// fallback email if the provider has none"). Token verification itself is
// out of scope; the token body is trusted as already-verified.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			handleError(w, r, apperr.NewUnauthorizedError("missing bearer token"))
			return
		}

		email := token
		if email == "" {
			email = "user-" + ids.New() + "@unknown.local"
		}

		user, err := s.Users.GetByEmail(r.Context(), email)
		if err != nil {
			log.Error("failed to look up user by email: %v", err)
			handleError(w, r, apperr.NewInternalError(err))
			return
		}
		if user == nil {
			created := newUser(email)
			if err := s.Users.Insert(r.Context(), created); err != nil {
				log.Error("failed to provision user: %v", err)
				handleError(w, r, apperr.NewInternalError(err))
				return
			}
			user = &created
			log.Info("provisioned new user %s", user.ID)
		}

		ctx := context.WithValue(r.Context(), contextKeyUser{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newUser builds the default-parameter User row assigned on first login,
// before the onboarding assessment (C6) has run.
func newUser(email string) models.User {
	return models.User{
		ID:                          ids.New(),
		Email:                       email,
		TimeBudgetMinutes:           30,
		FluencyGatePassed:           false,
		RequiresPreHifz:             true,
		ScaffoldingLevel:            models.ScaffoldingStandard,
		Variant:                     models.VariantStandard,
		DailyNewTargetAyahs:         7,
		ReviewRatioTarget:           70,
		RetentionThreshold:          0.85,
		BacklogFreezeRatio:          0.8,
		ConsolidationRetentionFloor: 0.77,
		ManzilRotationDays:          30,
		AvgSecondsPerItem:           70,
		OverdueCapSeconds:           48 * 3600,
		PriorJuzBand:                models.JuzBandZero,
		TajwidConfidence:            models.TajwidMedium,
		CreatedAt:                   time.Now().UTC(),
	}
}
