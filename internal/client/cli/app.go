package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/keygate/internal/client/client"
	"github.com/dmitrijs2005/keygate/internal/client/config"
	"github.com/dmitrijs2005/keygate/internal/client/session"
)

// getPassword is a seam so tests can script secret input.
var getPassword = GetPassword

type App struct {
	config *config.Config
	api    client.Client
	tokens *session.Store
	reader *bufio.Reader
	out    io.Writer

	token    string
	userName string
}

func NewApp(cfg *config.Config) (*App, error) {
	a := newApp(cfg, client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout), os.Stdin, os.Stdout)

	tok, err := a.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	a.token = tok
	return a, nil
}

func newApp(cfg *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{
		config: cfg,
		api:    api,
		tokens: session.NewStore(cfg.TokenFile),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
