package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/server/auth"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/dmitrijs2005/keygate/internal/server/services"
)

const (
	adminToken   = "admin-token"
	regularToken = "regular-token"
	outageToken  = "outage-token"
)

type fakeAuthService struct {
	loginFunc func(username, password string) (*services.Token, error)
}

func (f fakeAuthService) Login(_ context.Context, username, password string) (*services.Token, error) {
	if f.loginFunc == nil {
		return nil, common.ErrInvalidCredentials
	}
	return f.loginFunc(username, password)
}

func (f fakeAuthService) Resolve(_ context.Context, token string) (*auth.Identity, error) {
	switch token {
	case adminToken:
		return &auth.Identity{Username: "root", IsAdmin: true}, nil
	case regularToken:
		return &auth.Identity{Username: "joe"}, nil
	case outageToken:
		return nil, common.ErrorInternal
	default:
		return nil, common.ErrUnauthenticated
	}
}

type fakeUserService struct {
	registerFunc func(username, password, secret string) (*models.User, error)
	setFunc      func(actor *auth.Identity, target string, makeAdmin bool) (*models.User, error)
	listFunc     func(actor *auth.Identity) ([]*models.User, error)
}

func (f fakeUserService) Register(_ context.Context, username, password, secret string) (*models.User, error) {
	return f.registerFunc(username, password, secret)
}

func (f fakeUserService) Promote(_ context.Context, actor *auth.Identity, target string) (*models.User, error) {
	return f.setFunc(actor, target, true)
}

func (f fakeUserService) Demote(_ context.Context, actor *auth.Identity, target string) (*models.User, error) {
	return f.setFunc(actor, target, false)
}

func (f fakeUserService) List(_ context.Context, actor *auth.Identity) ([]*models.User, error) {
	return f.listFunc(actor)
}

func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return got
}
