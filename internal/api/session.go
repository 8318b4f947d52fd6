package api

import (
	"net/http"

	"foodshare/internal/auth"
	"foodshare/internal/middleware"
	"foodshare/internal/models"
	"foodshare/internal/utils"

	"go.uber.org/zap"
)

// issueToken signs the posted object as the token claims and sets the
// token cookie. Nothing about the caller is checked.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	body, err := decodeDocument(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	email, _ := body["email"].(string)
	token, err := s.tokens.Issue(models.Identity{Email: email, Claims: body})
	if err != nil {
		s.logger.Error("failed to issue token",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		utils.WriteMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("issued token", zap.String("email", email))

	auth.SetTokenCookie(w, token, s.tokens.TTL(), s.opts.CookieSecure)
	utils.WriteJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	auth.Revoke(w, s.opts.CookieSecure)
	utils.WriteJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}
