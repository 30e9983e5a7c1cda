// Package httpapi exposes the keygate services over HTTP/JSON using a chi
// router: login, registration, role management, the array resource and
// the operational endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/keygate/internal/logging"
	"github.com/dmitrijs2005/keygate/internal/server/auth"
	"github.com/dmitrijs2005/keygate/internal/server/metrics"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/dmitrijs2005/keygate/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.Token, error)
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
}

type UserService interface {
	Register(ctx context.Context, username, password, adminSecret string) (*models.User, error)
	Promote(ctx context.Context, actor *auth.Identity, target string) (*models.User, error)
	Demote(ctx context.Context, actor *auth.Identity, target string) (*models.User, error)
	List(ctx context.Context, actor *auth.Identity) ([]*models.User, error)
}

type ArrayService interface {
	All() []any
	Get(i int) (any, error)
	Append(v any) []any
	Update(i int, v any) error
	DeleteLast() (any, []any, error)
	Reset(i int) ([]any, error)
}

type Deps struct {
	Auth        AuthService
	Users       UserService
	Array       ArrayService
	Metrics     *metrics.Metrics
	Logger      logging.Logger
	CORSOrigins []string
	// Now is used by the greeting endpoint; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	handler         http.Handler
	logger          logging.Logger
}

func NewServer(address string, shutdownTimeout time.Duration, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	return &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		handler:         NewHandler(deps),
		logger:          deps.Logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}

// NewHandler builds the routed handler with all middleware applied.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	h := &handlers{deps: deps, log: deps.Logger.With("module", "http")}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.observe)
	r.Use(middleware.Recoverer)

	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"WWW-Authenticate", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Post("/login", h.login)
	r.Post("/users", h.register)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/", h.greet)
		r.Get("/health", h.health)
		r.Get("/me", h.me)
		r.Get("/echo", h.echo)

		r.Get("/users", h.listUsers)
		r.Put("/users/{username}/promote", h.promote)
		r.Put("/users/{username}/demote", h.demote)

		r.Get("/array", h.getArray)
		r.Get("/array/{index}", h.getArrayValue)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Post("/array", h.appendArray)
			r.Put("/array/{index}", h.updateArray)
			r.Delete("/array", h.deleteLast)
			r.Delete("/array/{index}", h.resetArray)
		})
	})

	return r
}

type handlers struct {
	deps Deps
	log  logging.Logger
}
