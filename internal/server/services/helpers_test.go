package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/logging"
	"github.com/dmitrijs2005/keygate/internal/server/config"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/keygate/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const testAdminSecret = "let-me-in"

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "test-signing-key",
		AdminSecret:                 testAdminSecret,
		AccessTokenValidityDuration: time.Hour,
		BcryptCost:                  bcrypt.MinCost,
	}
}

// fakeUsersRepo lets a test force errors out of single calls.
type fakeUsersRepo struct {
	getOut *models.User
	getErr error

	createErr error
	created   *models.User

	setOut *models.User
	setErr error
	setArg *bool

	listOut []*models.User
	listErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByLoginForUpdate(ctx context.Context, login string) (*models.User, error) {
	return f.GetUserByLogin(ctx, login)
}

func (f *fakeUsersRepo) SetAdmin(_ context.Context, _ string, isAdmin bool) (*models.User, error) {
	f.setArg = &isAdmin
	if f.setErr != nil {
		return nil, f.setErr
	}
	return f.setOut, nil
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	return f.listOut, f.listErr
}

type fakeRepoManager struct {
	u usersrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }

// fakeTransactor records whether a unit of work ran inside it.
type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	t.calls++
	return fn(ctx, nil)
}

// memoryServices wires both services over one in-memory store.
func memoryServices(cfg *config.Config) (*AuthService, *UserService, *repomanager.InMemoryRepositoryManager) {
	m := repomanager.NewInMemoryRepositoryManager()
	log := logging.Nop{}
	return NewAuthService(nil, m, cfg, log), NewUserService(nil, &dbx.LockTransactor{}, m, cfg, log), m
}
