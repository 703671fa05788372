package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/dbx"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/credentials"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/repositories/repomanager"
)

// AccountService registers users and checks their credentials.
//
// Email hashes carry a per-record salt, so both Register and Login find the
// owner of an address by checking it against every stored user in turn.
// Cost is linear in the number of accounts. Two concurrent registrations
// with the same email can both pass the scan; only usernames are protected
// by a unique index.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	creds       *credentials.Store
	log         logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, creds *credentials.Store, log logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		creds:       creds,
		log:         log.With("module", "accounts"),
	}
}

// Register creates a user. It fails with common.ErrDuplicateEmail when any
// existing user has the same email (case-insensitively), and with
// common.ErrDuplicateUsername when the username is taken.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var created *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := s.findByEmail(ctx, repo.ListAll, email); err == nil {
			return common.ErrDuplicateEmail
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return common.ErrDuplicateUsername
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error looking up username: %w", err)
		}

		user := &models.User{Username: username}
		if err := s.creds.SetEmail(user, email); err != nil {
			return err
		}
		if err := s.creds.SetPassword(user, password); err != nil {
			return err
		}

		u, err := repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrDuplicateUsername
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		s.log.Info(ctx, "registration rejected", "username", username, "error", err)
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Login returns the user the email and password belong to. An unknown email
// and a wrong password both yield common.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.findByEmail(ctx, s.repomanager.Users(s.db).ListAll, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "login failed", "reason", "unknown email")
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.creds.CheckPassword(user, password) {
		s.log.Info(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser returns the user with id, or common.ErrorNotFound.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// findByEmail returns the first user, in insertion order, whose email hash
// matches email.
func (s *AccountService) findByEmail(ctx context.Context, list func(context.Context) ([]models.User, error), email string) (*models.User, error) {
	all, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	for i := range all {
		if s.creds.CheckEmail(&all[i], email) {
			return &all[i], nil
		}
	}
	return nil, common.ErrorNotFound
}
