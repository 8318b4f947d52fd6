package middleware

import (
	"errors"
	"net/http"

	"foodshare/internal/auth"
	"foodshare/internal/models"
	"foodshare/internal/utils"

	"go.uber.org/zap"
)

// TokenVerifier checks a signed token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// Authenticate requires a valid token cookie and attaches the decoded
// identity to the request context. Missing, malformed, badly signed and
// expired tokens all get the same 401 body.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With(zap.String("request_id", RequestIDFromContext(r.Context())))

			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				log.Debug("token cookie", zap.Bool("present", false))
				utils.WriteMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			log.Debug("token cookie", zap.Bool("present", true))

			identity, err := verifier.Verify(cookie.Value)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, auth.ErrExpired) {
					reason = "expired"
				}
				log.Warn("token rejected", zap.String("reason", reason), zap.Error(err))
				utils.WriteMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetIdentity(r.Context(), identity)))
		})
	}
}

// OwnerOnly lets the request through only when the authenticated email equals
// the query parameter param exactly. A repeated parameter never matches. It
// must run after Authenticate.
func OwnerOnly(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				utils.WriteMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			values, present := r.URL.Query()[param]
			owner := ""
			if present {
				owner = values[0]
			}

			if len(values) > 1 || auth.Authorize(identity, owner, present) != nil {
				utils.WriteMessage(w, http.StatusForbidden, "forbidden access")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
