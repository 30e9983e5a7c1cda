package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/logging"
	"github.com/dmitrijs2005/keygate/internal/server/auth"
	"github.com/dmitrijs2005/keygate/internal/server/config"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/repomanager"
)

// UserService manages accounts: registration, role changes and listing.
type UserService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	adminSecret string
	log         logging.Logger
}

func NewUserService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		tx:          tx,
		repomanager: m,
		hasher:      auth.NewPasswordHasher(cfg.BcryptCost),
		adminSecret: cfg.AdminSecret,
		log:         log.With("module", "users"),
	}
}

// Register creates an account. A non-empty adminSecret must match the
// configured registration secret and makes the account an admin; a
// mismatch aborts the registration with common.ErrForbidden.
func (s *UserService) Register(ctx context.Context, username, password, adminSecret string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, username)
	if err == nil {
		return nil, common.ErrAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	isAdmin := false
	if adminSecret != "" {
		if !common.SecretsEqual(adminSecret, s.adminSecret) {
			s.log.Warn(ctx, "registration with invalid admin secret", "username", username)
			return nil, common.ErrForbidden
		}
		isAdmin = true
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash, IsAdmin: isAdmin})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "username", u.UserName, "is_admin", u.IsAdmin)
	return u, nil
}

// SetAdminStatus sets target's admin flag to makeAdmin on behalf of actor.
// The lookup and the update run in one transaction. Asking for the state
// the user is already in gives common.ErrAlreadyInState.
func (s *UserService) SetAdminStatus(ctx context.Context, actor *auth.Identity, target string, makeAdmin bool) (*models.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetUserByLoginForUpdate(ctx, target)
		if err != nil {
			return err
		}
		if u.IsAdmin == makeAdmin {
			return common.ErrAlreadyInState
		}

		updated, err = repo.SetAdmin(ctx, target, makeAdmin)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrAlreadyInState) {
			return nil, err
		}
		return nil, fmt.Errorf("error changing admin status: %w", err)
	}

	s.log.Info(ctx, "admin status changed", "actor", actor.Username, "username", target, "is_admin", makeAdmin)
	return updated, nil
}

func (s *UserService) Promote(ctx context.Context, actor *auth.Identity, target string) (*models.User, error) {
	return s.SetAdminStatus(ctx, actor, target, true)
}

func (s *UserService) Demote(ctx context.Context, actor *auth.Identity, target string) (*models.User, error) {
	return s.SetAdminStatus(ctx, actor, target, false)
}

// List returns every user, oldest first. Admins only.
func (s *UserService) List(ctx context.Context, actor *auth.Identity) ([]*models.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}
