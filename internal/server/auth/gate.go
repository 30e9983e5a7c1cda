package auth

import "github.com/dmitrijs2005/keygate/internal/common"

// Identity is the caller of one request as established from its token.
// It never carries the password hash.
type Identity struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// RequireAdmin returns common.ErrForbidden unless id is an admin.
func RequireAdmin(id *Identity) error {
	if id == nil || !id.IsAdmin {
		return common.ErrForbidden
	}
	return nil
}
