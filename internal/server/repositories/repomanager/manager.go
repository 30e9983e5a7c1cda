package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX and prepares the
// schema they need.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
