package httpapi

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/zeedivx/web-starter/internal/model"
)

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
		rec := doRequest(t, api, http.MethodGet, "/v1/health", "")

		requireStatus(t, rec, http.StatusOK)
		got := gjson.Parse(rec.Body.String())
		assert.Equal(t, "healthy", got.Get("status").String())
		assert.Equal(t, "connected", got.Get("database").String())
		assert.Equal(t, "web-starter", got.Get("app_name").String())
	})

	t.Run("degraded", func(t *testing.T) {
		api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, unhealthyDB())
		rec := doRequest(t, api, http.MethodGet, "/v1/health", "")

		requireStatus(t, rec, http.StatusServiceUnavailable)
		got := gjson.Parse(rec.Body.String())
		assert.Equal(t, "degraded", got.Get("status").String())
		assert.Equal(t, "disconnected", got.Get("database").String())
	})
}

func TestRootEndpoint(t *testing.T) {
	api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
	rec := doRequest(t, api, http.MethodGet, "/v1/", "")

	requireStatus(t, rec, http.StatusOK)
	got := gjson.Parse(rec.Body.String())
	assert.Contains(t, got.Get("message").String(), "web-starter")
	assert.Equal(t, "/v1/health", got.Get("health").String())
	assert.True(t, got.Get("started").Exists())
}

func TestRequestIDHeader(t *testing.T) {
	api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())

	t.Run("generated", func(t *testing.T) {
		rec := doRequest(t, api, http.MethodGet, "/v1/health", "")

		id := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "generated request id should be a uuid, got %q", id)
	})

	t.Run("client id is kept", func(t *testing.T) {
		rec := doRequest(t, api, http.MethodGet, "/v1/health", "",
			withHeader("X-Request-ID", "client-chosen-id"))

		assert.Equal(t, "client-chosen-id", rec.Header().Get("X-Request-ID"))
	})
}

func TestProcessTimeHeader(t *testing.T) {
	api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
	rec := doRequest(t, api, http.MethodGet, "/v1/health", "")

	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
	rec := doRequest(t, api, http.MethodGet, "/v1/nope", "")

	requireStatus(t, rec, http.StatusNotFound)
	got := gjson.Parse(rec.Body.String())
	assert.Equal(t, "NOT_FOUND", got.Get("error").String())
	assert.Contains(t, got.Get("message").String(), "/v1/nope")
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
	rec := doRequest(t, api, http.MethodPut, "/v1/health", "")

	requireStatus(t, rec, http.StatusMethodNotAllowed)
	assert.Equal(t, "METHOD_NOT_ALLOWED", gjson.Get(rec.Body.String(), "error").String())
}

func TestPanicRecovery(t *testing.T) {
	users := &fakeUserService{
		get: func(uuid.UUID) (*model.User, error) { panic("boom") },
	}
	api := newTestAPI(users, &fakeSessionService{}, healthyDB())

	rec := doRequest(t, api, http.MethodGet, "/v1/users/"+uuid.NewString(), "")

	requireStatus(t, rec, http.StatusInternalServerError)
	got := gjson.Parse(rec.Body.String())
	assert.Equal(t, "INTERNAL_SERVER_ERROR", got.Get("error").String())
	assert.NotContains(t, got.Get("message").String(), "boom", "panic value must not leak")
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
		rec := doRequest(t, api, http.MethodOptions, "/v1/users", "",
			withHeader("Origin", "https://app.example.com"),
			withHeader("Access-Control-Request-Method", "POST"))

		requireStatus(t, rec, http.StatusNoContent)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("configured origin", func(t *testing.T) {
		api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
		api.cfg.HTTP.AllowedOrigins = []string{"https://app.example.com"}

		rec := doRequest(t, api, http.MethodGet, "/v1/health", "",
			withHeader("Origin", "https://app.example.com"))

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("denied origin gets no headers", func(t *testing.T) {
		api := newTestAPI(&fakeUserService{}, &fakeSessionService{}, healthyDB())
		api.cfg.HTTP.AllowedOrigins = []string{"https://app.example.com"}

		rec := doRequest(t, api, http.MethodGet, "/v1/health", "",
			withHeader("Origin", "https://evil.example.com"))

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestValidatorRules(t *testing.T) {
	v := newValidator()

	type usernameProbe struct {
		Username string `validate:"username"`
	}
	type passwordProbe struct {
		Password string `validate:"password"`
	}

	usernameCases := map[string]bool{
		"ada":          true,
		"ada_lovelace": true,
		"Ada-42":       true,
		"ab":           false,
		"_ada":         false,
		"ada_":         false,
		"-ada":         false,
		"ada-":         false,
		"ada!":         false,
	}
	for input, want := range usernameCases {
		err := v.Struct(usernameProbe{Username: input})
		assert.Equal(t, want, err == nil, "username %q", input)
	}

	passwordCases := map[string]bool{
		"Sup3rSecret":  true,
		"alllower1":    false,
		"ALLUPPER1":    false,
		"NoDigitsHere": false,
		"Ab1":          false,
	}
	for input, want := range passwordCases {
		err := v.Struct(passwordProbe{Password: input})
		assert.Equal(t, want, err == nil, "password %q", input)
	}
}
