package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/auth"
	"github.com/zeedivx/web-starter/internal/model"
)

// SessionStore is the persistence surface SessionService needs.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeExpired, includeRevoked bool) ([]*model.Session, error)
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type SessionService struct {
	sessions SessionStore
	ttl      time.Duration
}

func NewSessionService(sessions SessionStore, ttl time.Duration) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl}
}

// SessionMeta is the client context captured at login.
type SessionMeta struct {
	IPAddress *string
	UserAgent *string
}

// Create mints a fresh token and stores a session expiring after the
// configured TTL.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, meta SessionMeta) (*model.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	created, err := s.sessions.Create(ctx, &model.Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Created session", "session_id", created.ID, "user_id", userID)
	return created, nil
}

// Validate resolves the token to a live session. Unknown and revoked
// tokens come back as INVALID_TOKEN, expired ones as TOKEN_EXPIRED.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, apperr.InvalidToken()
	}

	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.IsRevoked() {
		return nil, apperr.InvalidToken()
	}
	if sess.IsExpired() {
		return nil, apperr.TokenExpired()
	}
	return sess, nil
}

// Revoke invalidates the session behind token. Tokens that never existed
// or are already revoked report INVALID_TOKEN.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	revoked, err := s.sessions.Revoke(ctx, token)
	if err != nil {
		return err
	}
	if !revoked {
		return apperr.InvalidToken()
	}
	return nil
}

// RevokeAll invalidates every live session of the user and returns how
// many were revoked.
func (s *SessionService) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		slog.Info("Revoked user sessions", "user_id", userID, "count", count)
	}
	return count, nil
}

// ListForUser returns the user's live sessions.
func (s *SessionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Session, error) {
	return s.sessions.ListByUser(ctx, userID, false, false)
}

// Cleanup deletes expired and revoked sessions. The server runs this on a
// timer so the table does not grow without bound.
func (s *SessionService) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("Cleaned up dead sessions", "count", removed)
	}
	return removed, nil
}
