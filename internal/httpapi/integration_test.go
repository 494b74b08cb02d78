//go:build integration

package httpapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/auth"
	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/httpapi"
	"github.com/zeedivx/web-starter/internal/repository"
	"github.com/zeedivx/web-starter/internal/service"
)

// setupAPI stands up the whole stack: a throwaway postgres, the real
// repositories and services, and the router.
func setupAPI(t *testing.T, ctx context.Context) http.Handler {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("web_starter_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(filepath.Join("..", "repository", "testdata", "schema.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	cfg := &config.Config{AppName: "web-starter", Environment: "test"}
	cfg.HTTP.SlowRequest = time.Second
	cfg.HTTP.AllowedOrigins = []string{"*"}

	hasher := auth.NewPasswordHasher(1, 8192, 2)
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	users := service.NewUserService(userRepo, sessionRepo, hasher)
	sessions := service.NewSessionService(sessionRepo, time.Hour)

	return httpapi.New(cfg, zap.NewNop(), users, sessions, pool, "test").Routes()
}

func call(t *testing.T, h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, gjson.Result) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, gjson.Parse(rec.Body.String())
}

func TestAPILifecycle(t *testing.T) {
	ctx := context.Background()
	api := setupAPI(t, ctx)

	rec, got := call(t, api, http.MethodGet, "/v1/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", got.Get("status").String())

	// Register.
	body := `{"email":"ada@example.com","username":"ada","password":"Sup3rSecret","first_name":"Ada","last_name":"Lovelace"}`
	rec, got = call(t, api, http.MethodPost, "/v1/users", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	userID := got.Get("id").String()
	require.NotEmpty(t, userID)
	assert.Equal(t, "Ada Lovelace", got.Get("full_name").String())

	// Duplicate registration conflicts.
	rec, got = call(t, api, http.MethodPost, "/v1/users", body, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_RECORD", got.Get("error").String())

	// Login.
	rec, got = call(t, api, http.MethodPost, "/v1/auth/login",
		`{"email":"ada@example.com","password":"Sup3rSecret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	token := got.Get("access_token").String()
	require.NotEmpty(t, token)
	assert.Equal(t, "bearer", got.Get("token_type").String())

	// Wrong password stays a 401 without detail.
	rec, got = call(t, api, http.MethodPost, "/v1/auth/login",
		`{"email":"ada@example.com","password":"WrongPass1"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", got.Get("error").String())

	// Authenticated identity.
	rec, got = call(t, api, http.MethodGet, "/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", got.Get("email").String())

	// Session list shows the current session.
	rec, got = call(t, api, http.MethodGet, "/v1/auth/sessions", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, got.Get("total").Int())
	assert.True(t, got.Get("items.0.current").Bool())

	// Logout kills the token.
	rec, _ = call(t, api, http.MethodPost, "/v1/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, got = call(t, api, http.MethodGet, "/v1/auth/me", "", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", got.Get("error").String())

	// Delete the account with a fresh session, then the login is gone.
	rec, got = call(t, api, http.MethodPost, "/v1/auth/login",
		`{"email":"ada@example.com","password":"Sup3rSecret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token = got.Get("access_token").String()

	rec, _ = call(t, api, http.MethodDelete, "/v1/users/"+userID, "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = call(t, api, http.MethodGet, "/v1/auth/me", "", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "deleted user's session must be dead")

	rec, got = call(t, api, http.MethodPost, "/v1/auth/login",
		`{"email":"ada@example.com","password":"Sup3rSecret"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", got.Get("error").String())
}
