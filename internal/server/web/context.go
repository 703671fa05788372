package web

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	refreshKey ctxKey = "refresh_token"
)

func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// currentUser returns the authenticated user placed in ctx by requireLogin.
func currentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func withRefreshToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, refreshKey, token)
}

// refreshToken returns the refresh token of the current session: the one
// rotated during this request if any, else the cookie value.
func refreshToken(r *http.Request) string {
	if token, ok := r.Context().Value(refreshKey).(string); ok && token != "" {
		return token
	}
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		return c.Value
	}
	return ""
}
