package handlers

import (
	"net/http"
	"time"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/models"
)

// The session cookie is cross-site, so it is always Secure with SameSite=None.
func setSessionCookie(w http.ResponseWriter, token models.SessionToken, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token.Value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
