package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out the same in-memory store regardless
// of the DBTX it is given.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

// Store exposes the concrete store for tests that need to tamper with it.
func (m *InMemoryRepositoryManager) Store() *users.InMemoryRepository {
	return m.users
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
