package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/model"
)

// In-memory stores backing the unit tests. They mimic the repository
// contract, including the (nil, nil) convention for missing rows.

func errNotFound(id uuid.UUID) error {
	return apperr.RecordNotFound("User", id)
}

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored := *u
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.users[u.ID] = &stored
	clone := stored
	return &clone, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, errNotFound(id)
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username != nil && *u.Username == username && u.DeletedAt == nil {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, err := f.GetByUsername(ctx, username)
	return u != nil, err
}

func (f *fakeUserStore) ListActive(_ context.Context, limit, offset int) ([]*model.User, error) {
	var active []*model.User
	for _, u := range f.users {
		if u.IsActive && u.DeletedAt == nil {
			clone := *u
			active = append(active, &clone)
		}
	}
	if offset >= len(active) {
		return nil, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], nil
}

func (f *fakeUserStore) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, u := range f.users {
		if u.IsActive && u.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserStore) Update(_ context.Context, u *model.User) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.users[u.ID]
	if !ok || stored.DeletedAt != nil {
		return nil, errNotFound(u.ID)
	}
	clone := *u
	clone.UpdatedAt = time.Now()
	f.users[u.ID] = &clone
	result := clone
	return &result, nil
}

func (f *fakeUserStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	stored, ok := f.users[id]
	if !ok || stored.DeletedAt != nil {
		return errNotFound(id)
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*model.Session
	err      error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored := *s
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.sessions[s.Token] = &stored
	clone := stored
	return &clone, nil
}

func (f *fakeSessionStore) GetByToken(_ context.Context, token string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) ListByUser(_ context.Context, userID uuid.UUID, includeExpired, includeRevoked bool) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range f.sessions {
		if s.UserID != userID {
			continue
		}
		if !includeExpired && s.IsExpired() {
			continue
		}
		if !includeRevoked && s.IsRevoked() {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, token string) (bool, error) {
	s, ok := f.sessions[token]
	if !ok || s.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	s.RevokedAt = &now
	return true, nil
}

func (f *fakeSessionStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionStore) CleanupExpired(_ context.Context) (int64, error) {
	var count int64
	for token, s := range f.sessions {
		if s.IsExpired() || s.IsRevoked() {
			delete(f.sessions, token)
			count++
		}
	}
	return count, nil
}
