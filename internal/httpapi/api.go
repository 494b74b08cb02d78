// Package httpapi exposes the user and session services over a versioned
// REST surface.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/model"
	"github.com/zeedivx/web-starter/internal/service"
)

// UserService is the slice of the user service the handlers consume.
type UserService interface {
	Create(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) (*service.UserPage, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

// SessionService is the slice of the session service the handlers consume.
type SessionService interface {
	Create(ctx context.Context, userID uuid.UUID, meta service.SessionMeta) (*model.Session, error)
	Validate(ctx context.Context, token string) (*model.Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Session, error)
}

// Pinger reports database connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	cfg       *config.Config
	log       *zap.Logger
	users     UserService
	sessions  SessionService
	db        Pinger
	validate  *validator.Validate
	version   string
	startedAt time.Time
}

func New(cfg *config.Config, log *zap.Logger, users UserService, sessions SessionService, db Pinger, version string) *API {
	return &API{
		cfg:       cfg,
		log:       log,
		users:     users,
		sessions:  sessions,
		db:        db,
		validate:  newValidator(),
		version:   version,
		startedAt: time.Now(),
	}
}

// Routes builds the router with the full middleware chain.
func (a *API) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(a.requestIDMiddleware, a.recoveryMiddleware, a.loggingMiddleware, a.corsMiddleware)

	r.NotFoundHandler = a.withBaseMiddleware(http.HandlerFunc(a.handleNotFound))
	r.MethodNotAllowedHandler = a.withBaseMiddleware(http.HandlerFunc(a.handleMethodNotAllowed))

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("", a.handleRoot).Methods(http.MethodGet)
	v1.HandleFunc("/", a.handleRoot).Methods(http.MethodGet)
	v1.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	v1.HandleFunc("/users", a.handleCreateUser).Methods(http.MethodPost)
	v1.HandleFunc("/users", a.handleListUsers).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id}", a.handleGetUser).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id}", a.handleUpdateUser).Methods(http.MethodPatch)
	v1.HandleFunc("/users/{id}", a.handleDeleteUser).Methods(http.MethodDelete)

	v1.HandleFunc("/auth/login", a.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/logout", a.requireSession(a.handleLogout)).Methods(http.MethodPost)
	v1.HandleFunc("/auth/me", a.requireSession(a.handleMe)).Methods(http.MethodGet)
	v1.HandleFunc("/auth/sessions", a.requireSession(a.handleListSessions)).Methods(http.MethodGet)
	v1.HandleFunc("/auth/sessions", a.requireSession(a.handleRevokeSessions)).Methods(http.MethodDelete)

	return r
}

// withBaseMiddleware wraps the catch-all handlers, which bypass the
// router's Use chain in gorilla/mux.
func (a *API) withBaseMiddleware(h http.Handler) http.Handler {
	return a.requestIDMiddleware(a.recoveryMiddleware(a.loggingMiddleware(h)))
}

func (a *API) handleNotFound(w http.ResponseWriter, r *http.Request) {
	a.writeError(w, r, apperr.NotFound("Route "+r.URL.Path+" not found"))
}

func (a *API) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{
		Error:   "METHOD_NOT_ALLOWED",
		Message: "Method " + r.Method + " is not allowed for " + r.URL.Path,
	})
}
