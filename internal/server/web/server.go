// Package web serves the tracker's HTML interface: session cookies, forms,
// flash messages and the task pages.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/gorilla/mux"
)

// Options tune cookie handling.
type Options struct {
	SecureCookies   bool
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type Server struct {
	address   string
	logger    logging.Logger
	accounts  Accounts
	tasks     Tasks
	sessions  Sessions
	opts      Options
	templates map[string]*template.Template
	now       func() time.Time
}

func NewServer(address string, l logging.Logger, accounts Accounts, tasks Tasks, sessions Sessions, opts Options) (*Server, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		address:   address,
		logger:    l.With("module", "web"),
		accounts:  accounts,
		tasks:     tasks,
		sessions:  sessions,
		opts:      opts,
		templates: tpl,
		now:       time.Now,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(s.requestLogger)

	r.HandleFunc("/login/", s.login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/register/", s.register).Methods(http.MethodGet, http.MethodPost)

	p := r.NewRoute().Subrouter()
	p.Use(s.requireLogin)

	p.HandleFunc("/logout/", s.logout).Methods(http.MethodGet)
	p.HandleFunc("/", s.listTasks(models.FilterPending)).Methods(http.MethodGet)
	p.HandleFunc("/completed/", s.listTasks(models.FilterCompleted)).Methods(http.MethodGet)
	p.HandleFunc("/all/", s.listTasks(models.FilterAll)).Methods(http.MethodGet)
	p.HandleFunc("/task/create/", s.createTask).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/task/{id:[0-9]+}/", s.taskDetails).Methods(http.MethodGet)
	p.HandleFunc("/task/{id:[0-9]+}/delete/", s.deleteTask).Methods(http.MethodGet)
	p.HandleFunc("/task/{id:[0-9]+}/toggle/", s.toggleTask).Methods(http.MethodGet)
	p.HandleFunc("/task/{id:[0-9]+}/update/", s.updateTask).Methods(http.MethodGet, http.MethodPost)

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
