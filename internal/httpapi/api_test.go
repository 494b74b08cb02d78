package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/model"
	"github.com/zeedivx/web-starter/internal/service"
)

// Function-field fakes for the service interfaces. Unset fields fail the
// request instead of panicking so route tests stay debuggable.

type fakeUserService struct {
	create       func(in service.CreateUserInput) (*model.User, error)
	get          func(id uuid.UUID) (*model.User, error)
	update       func(id uuid.UUID, in service.UpdateUserInput) (*model.User, error)
	remove       func(id uuid.UUID) error
	list         func(page, pageSize int) (*service.UserPage, error)
	authenticate func(email, password string) (*model.User, error)
}

var errUnexpectedCall = errors.New("unexpected service call")

func (f *fakeUserService) Create(_ context.Context, in service.CreateUserInput) (*model.User, error) {
	if f.create == nil {
		return nil, errUnexpectedCall
	}
	return f.create(in)
}

func (f *fakeUserService) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.get == nil {
		return nil, errUnexpectedCall
	}
	return f.get(id)
}

func (f *fakeUserService) Update(_ context.Context, id uuid.UUID, in service.UpdateUserInput) (*model.User, error) {
	if f.update == nil {
		return nil, errUnexpectedCall
	}
	return f.update(id, in)
}

func (f *fakeUserService) Delete(_ context.Context, id uuid.UUID) error {
	if f.remove == nil {
		return errUnexpectedCall
	}
	return f.remove(id)
}

func (f *fakeUserService) List(_ context.Context, page, pageSize int) (*service.UserPage, error) {
	if f.list == nil {
		return nil, errUnexpectedCall
	}
	return f.list(page, pageSize)
}

func (f *fakeUserService) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	if f.authenticate == nil {
		return nil, errUnexpectedCall
	}
	return f.authenticate(email, password)
}

type fakeSessionService struct {
	create      func(userID uuid.UUID, meta service.SessionMeta) (*model.Session, error)
	validate    func(token string) (*model.Session, error)
	revoke      func(token string) error
	revokeAll   func(userID uuid.UUID) (int64, error)
	listForUser func(userID uuid.UUID) ([]*model.Session, error)
}

func (f *fakeSessionService) Create(_ context.Context, userID uuid.UUID, meta service.SessionMeta) (*model.Session, error) {
	if f.create == nil {
		return nil, errUnexpectedCall
	}
	return f.create(userID, meta)
}

func (f *fakeSessionService) Validate(_ context.Context, token string) (*model.Session, error) {
	if f.validate == nil {
		return nil, errUnexpectedCall
	}
	return f.validate(token)
}

func (f *fakeSessionService) Revoke(_ context.Context, token string) error {
	if f.revoke == nil {
		return errUnexpectedCall
	}
	return f.revoke(token)
}

func (f *fakeSessionService) RevokeAll(_ context.Context, userID uuid.UUID) (int64, error) {
	if f.revokeAll == nil {
		return 0, errUnexpectedCall
	}
	return f.revokeAll(userID)
}

func (f *fakeSessionService) ListForUser(_ context.Context, userID uuid.UUID) ([]*model.Session, error) {
	if f.listForUser == nil {
		return nil, errUnexpectedCall
	}
	return f.listForUser(userID)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthyDB() Pinger   { return pingFunc(func(context.Context) error { return nil }) }
func unhealthyDB() Pinger { return pingFunc(func(context.Context) error { return errors.New("down") }) }

func newTestAPI(users *fakeUserService, sessions *fakeSessionService, db Pinger) *API {
	cfg := &config.Config{AppName: "web-starter", Environment: "test"}
	cfg.HTTP.SlowRequest = time.Second
	cfg.HTTP.AllowedOrigins = []string{"*"}
	return New(cfg, zap.NewNop(), users, sessions, db, "test")
}

func testUser() *model.User {
	username := "ada"
	first := "Ada"
	last := "Lovelace"
	return &model.User{
		ID:        uuid.MustParse("0191e3a0-0000-7000-8000-000000000001"),
		Email:     "ada@example.com",
		Username:  &username,
		IsActive:  true,
		FirstName: &first,
		LastName:  &last,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func testSession(userID uuid.UUID, token string) *model.Session {
	return &model.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

type reqOption func(*http.Request)

func withHeader(key, value string) reqOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func doRequest(t *testing.T, a *API, method, path, body string, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	a.Routes().ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
