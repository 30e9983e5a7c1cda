package users

import (
	"context"

	"github.com/dmitrijs2005/keygate/internal/server/models"
)

// Repository is the credential store. Lookups of a missing username return
// common.ErrorNotFound; creating a taken username returns
// common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// GetUserByLoginForUpdate is GetUserByLogin that also locks the row
	// until the surrounding transaction ends.
	GetUserByLoginForUpdate(ctx context.Context, login string) (*models.User, error)
	SetAdmin(ctx context.Context, login string, isAdmin bool) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
