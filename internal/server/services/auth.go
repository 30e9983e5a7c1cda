package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/logging"
	"github.com/dmitrijs2005/keygate/internal/server/auth"
	"github.com/dmitrijs2005/keygate/internal/server/config"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/repomanager"
)

// Token is what a successful login hands back to the client.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService verifies credentials and turns bearer tokens back into
// identities.
type AuthService struct {
	db             dbx.DBTX
	repomanager    repomanager.RepositoryManager
	codec          *auth.TokenCodec
	hasher         *auth.PasswordHasher
	liveAdminCheck bool
	dummyHash      string
	log            logging.Logger
}

// NewAuthService builds an AuthService from the signing and hashing
// settings in cfg.
func NewAuthService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AuthService {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	// Compared against when the user does not exist, so a miss costs the
	// same bcrypt work as a wrong password.
	dummy, _ := hasher.Hash("keygate/no-such-user")
	return &AuthService{
		db:             db,
		repomanager:    m,
		codec:          auth.NewTokenCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		hasher:         hasher,
		liveAdminCheck: cfg.LiveAdminCheck,
		dummyHash:      dummy,
		log:            log.With("module", "auth"),
	}
}

// Codec exposes the token codec, mainly so tests can mint tokens.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

// Login checks username and password and mints an access token carrying
// the user's current admin flag. An unknown user and a wrong password both
// give common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	access, err := s.codec.Encode(user.UserName, user.IsAdmin, 0)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &Token{AccessToken: access, TokenType: common.TokenTypeBearer}, nil
}

// Resolve validates a bearer token and returns the caller's identity. Any
// token problem, and a subject that no longer exists, gives
// common.ErrUnauthenticated.
//
// The admin flag comes from the token claim unless the service was built
// with LiveAdminCheck, in which case the stored flag wins.
func (s *AuthService) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "reason", err)
		return nil, common.ErrUnauthenticated
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "token subject no longer exists", "username", claims.Subject)
			return nil, common.ErrUnauthenticated
		}
		s.log.Error(ctx, "session lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	isAdmin := claims.Admin()
	if s.liveAdminCheck {
		isAdmin = user.IsAdmin
	}

	return &auth.Identity{Username: user.UserName, IsAdmin: isAdmin}, nil
}
