// Package service holds the business rules between the HTTP layer and the
// repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/auth"
	"github.com/zeedivx/web-starter/internal/model"
)

// UserStore is the persistence surface UserService needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListActive(ctx context.Context, limit, offset int) ([]*model.User, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// SessionRevoker is the slice of the session store UserService needs to
// invalidate logins when an account goes away.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserService struct {
	users    UserStore
	sessions SessionRevoker
	hasher   *auth.PasswordHasher
}

func NewUserService(users UserStore, sessions SessionRevoker, hasher *auth.PasswordHasher) *UserService {
	return &UserService{users: users, sessions: sessions, hasher: hasher}
}

type CreateUserInput struct {
	Email       string
	Username    *string
	Password    string
	FirstName   *string
	LastName    *string
	IsActive    bool
	IsSuperuser bool
}

type UpdateUserInput struct {
	Email       *string
	Username    *string
	Password    *string
	FirstName   *string
	LastName    *string
	IsActive    *bool
	IsSuperuser *bool
}

// Create stores a new user after checking that email and username are
// free. The pre-checks give friendly messages; the unique constraints stay
// as the backstop against races.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.DuplicateRecord(fmt.Sprintf("Email %s already exists", in.Email))
	}

	if in.Username != nil {
		taken, err := s.users.UsernameExists(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.DuplicateRecord(fmt.Sprintf("Username %s already exists", *in.Username))
		}
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	created, err := s.users.Create(ctx, &model.User{
		ID:             id,
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hashed,
		IsActive:       in.IsActive,
		IsSuperuser:    in.IsSuperuser,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Created new user", "user_id", created.ID, "email", created.Email)
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Update applies the set fields. Changed email or username is re-checked
// for conflicts and a new password is rehashed.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != u.Email {
		exists, err := s.users.EmailExists(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.DuplicateRecord(fmt.Sprintf("Email %s already exists", *in.Email))
		}
		u.Email = *in.Email
	}

	if in.Username != nil && (u.Username == nil || *in.Username != *u.Username) {
		taken, err := s.users.UsernameExists(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.DuplicateRecord(fmt.Sprintf("Username %s already exists", *in.Username))
		}
		u.Username = in.Username
	}

	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		u.HashedPassword = hashed
	}

	if in.FirstName != nil {
		u.FirstName = in.FirstName
	}
	if in.LastName != nil {
		u.LastName = in.LastName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}

	return s.users.Update(ctx, u)
}

// Authenticate checks the credentials and returns the user. Unknown email,
// wrong password, and inactive account all collapse into the same
// INVALID_CREDENTIALS error so responses leak nothing.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.InvalidCredentials()
	}

	ok, err := s.hasher.Verify(password, u.HashedPassword)
	if err != nil || !ok {
		return nil, apperr.InvalidCredentials()
	}
	if !u.IsActive {
		return nil, apperr.InvalidCredentials()
	}

	if s.hasher.NeedsRehash(u.HashedPassword) {
		if err := s.rehash(ctx, u, password); err != nil {
			slog.Warn("Password rehash failed", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

// rehash upgrades the stored hash to the current cost parameters. Login
// already succeeded, so a failure here is logged and swallowed.
func (s *UserService) rehash(ctx context.Context, u *model.User, password string) error {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	_, err = s.users.Update(ctx, u)
	return err
}

func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setActive(ctx, id, false)
}

func (s *UserService) setActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsActive == active {
		return u, nil
	}
	u.IsActive = active
	return s.users.Update(ctx, u)
}

// Delete soft-deletes the user and revokes every live session, so a
// deleted account cannot keep an authenticated client around.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllForUser(ctx, id)
	if err != nil {
		return err
	}

	slog.Info("Deleted user", "user_id", id, "sessions_revoked", revoked)
	return nil
}

// UserPage is one page of active users plus the overall count.
type UserPage struct {
	Users []*model.User
	Total int64
}

func (s *UserService) List(ctx context.Context, page, pageSize int) (*UserPage, error) {
	offset := (page - 1) * pageSize

	users, err := s.users.ListActive(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total}, nil
}
