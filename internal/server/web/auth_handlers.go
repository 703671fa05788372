package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/tasktracker/internal/common"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.identify(w, r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := &viewData{Next: r.URL.Query().Get("next"), Login: &LoginForm{Errors: FieldErrors{}}}

	if r.Method == http.MethodPost {
		form := parseLoginForm(r)
		data.Login = form

		if form.Validate() {
			user, err := s.accounts.Login(r.Context(), form.Email, form.Password)
			switch {
			case err == nil:
				pair, err := s.sessions.Issue(r.Context(), user.ID)
				if err != nil {
					s.serverError(w, r, err)
					return
				}
				s.setSessionCookies(w, pair)
				http.Redirect(w, r, safeNext(data.Next), http.StatusFound)
				return
			case errors.Is(err, common.ErrInvalidCredentials):
				data.Flashes = append(data.Flashes, Flash{Category: FlashError, Message: "Invalid email or password"})
			default:
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "login.html", data)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.identify(w, r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := &viewData{Register: &RegisterForm{Errors: FieldErrors{}}}

	if r.Method == http.MethodPost {
		form := parseRegisterForm(r)
		data.Register = form

		if form.Validate() {
			_, err := s.accounts.Register(r.Context(), form.Username, form.Email, form.Password)
			switch {
			case err == nil:
				addFlash(w, r, FlashSuccess, "Account created successfully! Please log in.")
				http.Redirect(w, r, "/login/", http.StatusFound)
				return
			case errors.Is(err, common.ErrDuplicateEmail):
				data.Flashes = append(data.Flashes, Flash{Category: FlashError, Message: "Email already registered"})
			case errors.Is(err, common.ErrDuplicateUsername):
				data.Flashes = append(data.Flashes, Flash{Category: FlashError, Message: "Username already taken"})
			default:
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "register.html", data)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token := refreshToken(r); token != "" {
		if err := s.sessions.Revoke(r.Context(), token); err != nil {
			s.logger.Warn(r.Context(), "could not revoke session", "error", err)
		}
	}
	s.clearSessionCookies(w)
	addFlash(w, r, FlashInfo, "You have been logged out.")
	http.Redirect(w, r, "/login/", http.StatusFound)
}
