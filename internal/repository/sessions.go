package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeedivx/web-starter/internal/model"
)

const sessionColumns = `id, user_id, token, expires_at, revoked_at,
	ip_address, user_agent, created_at, updated_at`

// SessionRepository persists login sessions.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.RevokedAt,
		&s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sessionColumns,
		s.ID, s.UserID, s.Token, s.ExpiresAt, s.IPAddress, s.UserAgent,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, mapError("insert session", err)
	}
	return created, nil
}

// GetByToken returns (nil, nil) when the token is unknown. Revoked and
// expired sessions are still returned; validity is the caller's call.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1`, token)

	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select session by token", err)
	}
	return s, nil
}

// ListByUser returns the user's sessions newest first. Expired and revoked
// sessions are filtered out unless the matching flag is set.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeExpired, includeRevoked bool) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1`
	if !includeExpired {
		query += ` AND expires_at > now()`
	}
	if !includeRevoked {
		query += ` AND revoked_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list sessions", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, mapError("scan session row", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate session rows", err)
	}
	return sessions, nil
}

// Revoke marks the session revoked and reports whether a live session was
// actually hit. Revoking twice is a no-op that returns false.
func (r *SessionRepository) Revoke(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now(), updated_at = now() WHERE token = $1 AND revoked_at IS NULL`, token)
	if err != nil {
		return false, mapError("revoke session", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeAllForUser revokes every live session of the user and returns how
// many were hit.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now(), updated_at = now() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return 0, mapError("revoke user sessions", err)
	}
	return tag.RowsAffected(), nil
}

// CleanupExpired deletes sessions that can never validate again, meaning
// expired or revoked ones, and returns the number removed.
func (r *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at <= now() OR revoked_at IS NOT NULL`)
	if err != nil {
		return 0, mapError("cleanup sessions", err)
	}
	return tag.RowsAffected(), nil
}
