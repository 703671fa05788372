package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// requireLogin lets authenticated requests through with the user in the
// context and sends everyone else to the login page.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, rotated, ok := s.identify(w, r)
		if !ok {
			s.redirectToLogin(w, r)
			return
		}

		user, err := s.accounts.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.clearSessionCookies(w)
				s.redirectToLogin(w, r)
				return
			}
			s.serverError(w, r, err)
			return
		}

		ctx := withUser(r.Context(), user)
		if rotated != "" {
			ctx = withRefreshToken(ctx, rotated)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	addFlash(w, r, FlashInfo, "Please log in to access this page.")
	http.Redirect(w, r, "/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}

// identify resolves the session cookies to a user id. A valid access token
// is enough; otherwise a valid refresh token is rotated, fresh cookies are
// set and the new refresh token is returned.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		if userID, err := s.sessions.Authenticate(c.Value); err == nil {
			return userID, "", true
		}
	}

	c, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil || c.Value == "" {
		return 0, "", false
	}

	pair, err := s.sessions.Refresh(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) && !errors.Is(err, common.ErrRefreshTokenExpired) {
			s.logger.Warn(r.Context(), "session refresh failed", "error", err)
		}
		s.clearSessionCookies(w)
		return 0, "", false
	}

	s.setSessionCookies(w, pair)
	return pair.UserID, pair.RefreshToken, true
}

func (s *Server) setSessionCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, s.sessionCookie(common.AccessTokenCookieName, pair.AccessToken, s.opts.AccessTokenTTL))
	http.SetCookie(w, s.sessionCookie(common.RefreshTokenCookieName, pair.RefreshToken, s.opts.RefreshTokenTTL))
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie(common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, s.sessionCookie(common.RefreshTokenCookieName, "", -1))
}

// sessionCookie builds a session cookie. A negative ttl deletes it.
func (s *Server) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl / time.Second)
	}
	return c
}

// safeNext returns next when it is a path on this site, "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
