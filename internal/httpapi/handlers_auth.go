package httpapi

import (
	"net/http"
)

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.checkValid(req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	user, err := a.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	sess, err := a.sessions.Create(ctx, user.ID, sessionMeta(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken: sess.Token,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        newUserResponse(user),
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Revoke(r.Context(), currentToken(r.Context())); err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "Successfully logged out",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, newUserResponse(currentUser(r.Context())))
}

func (a *API) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	sessions, err := a.sessions.ListForUser(ctx, user.ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	token := currentToken(ctx)
	for _, s := range sessions {
		out = append(out, newSessionResponse(s, token))
	}

	a.writeJSON(w, r, http.StatusOK, map[string]any{
		"items": out,
		"total": len(out),
	})
}

// handleRevokeSessions kills every live session of the caller, including
// the one making the request.
func (a *API) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := a.sessions.RevokeAll(ctx, currentUser(ctx).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "All sessions revoked",
		"revoked": count,
	})
}
