package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/keygate/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "memory://"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.BcryptCost = bcrypt.MinCost
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := memoryConfig()
	c.SecretKey = ""

	_, err := newApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid config")
}

func TestNewApp_WarnsOnDefaultSecretsWithoutLeakingThem(t *testing.T) {
	var buf bytes.Buffer
	app, err := newApp(context.Background(), memoryConfig(), &buf)
	require.NoError(t, err)
	require.NotNil(t, app)

	out := buf.String()
	assert.Contains(t, out, "default secrets in use")
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, config.DefaultSecretKey)
	assert.NotContains(t, out, config.DefaultAdminSecret)
}

func TestNewApp_NoWarningWithCustomSecrets(t *testing.T) {
	c := memoryConfig()
	c.SecretKey = "custom-signing-key"
	c.AdminSecret = "custom-admin"

	var buf bytes.Buffer
	_, err := newApp(context.Background(), c, &buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "default secrets in use")
}

func TestNewApp_DatabaseUnreachable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	orig := openDB
	openDB = func(string) (*sql.DB, error) { return db, nil }
	defer func() { openDB = orig }()

	c := memoryConfig()
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/db"

	_, err = newApp(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "db init error"), err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_OpenFails(t *testing.T) {
	orig := openDB
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad driver") }
	defer func() { openDB = orig }()

	c := memoryConfig()
	c.DatabaseDSN = "postgres://x"

	_, err := newApp(context.Background(), c, &bytes.Buffer{})
	assert.ErrorContains(t, err, "bad driver")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := newApp(context.Background(), memoryConfig(), &bytes.Buffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
