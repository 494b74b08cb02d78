package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/model"
	"github.com/zeedivx/web-starter/internal/service"
)

// requireSession authenticates the request with a bearer token and puts
// the resolved user and token on the context. Deleted users land on
// INVALID_TOKEN like any dead session; inactive ones are forbidden.
func (a *API) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			a.writeError(w, r, apperr.Unauthorized("Missing or malformed Authorization header"))
			return
		}

		ctx := r.Context()
		sess, err := a.sessions.Validate(ctx, token)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		user, err := a.users.Get(ctx, sess.UserID)
		if err != nil {
			if apperr.IsCode(err, apperr.CodeRecordNotFound) {
				err = apperr.InvalidToken()
			}
			a.writeError(w, r, err)
			return
		}
		if !user.IsActive {
			a.writeError(w, r, apperr.Forbidden("Inactive user"))
			return
		}

		ctx = context.WithValue(ctx, ctxUserKey, user)
		ctx = context.WithValue(ctx, ctxTokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

func currentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxUserKey).(*model.User)
	return u
}

func currentToken(ctx context.Context) string {
	t, _ := ctx.Value(ctxTokenKey).(string)
	return t
}

// sessionMeta captures the client address and agent for the session row.
// X-Forwarded-For wins over the socket address so deployments behind a
// proxy record the real client.
func sessionMeta(r *http.Request) service.SessionMeta {
	meta := service.SessionMeta{}

	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ip = strings.TrimSpace(strings.SplitN(ip, ",", 2)[0])
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}
	if ip != "" {
		meta.IPAddress = &ip
	}

	if ua := r.UserAgent(); ua != "" {
		if len(ua) > 255 {
			ua = ua[:255]
		}
		meta.UserAgent = &ua
	}
	return meta
}
