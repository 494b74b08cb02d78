package httpapi

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/model"
	"github.com/zeedivx/web-starter/internal/service"
)

type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Username    *string `json:"username,omitempty" validate:"omitempty,username"`
	Password    string  `json:"password" validate:"required,password"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Username    *string `json:"username,omitempty" validate:"omitempty,username"`
	Password    *string `json:"password,omitempty" validate:"omitempty,password"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    *string   `json:"username"`
	FullName    string    `json:"full_name,omitempty"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// SessionResponse never includes the token itself; Current marks the
// session the request authenticated with.
type SessionResponse struct {
	ID        uuid.UUID  `json:"id"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	IPAddress *string    `json:"ip_address"`
	UserAgent *string    `json:"user_agent"`
	Current   bool       `json:"current"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func newSessionResponse(s *model.Session, currentToken string) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		Current:   s.Token == currentToken,
		RevokedAt: s.RevokedAt,
	}
}

type PaginatedUsers struct {
	Items       []UserResponse `json:"items"`
	Total       int64          `json:"total"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func newPaginatedUsers(page *service.UserPage, pageNum, pageSize int) PaginatedUsers {
	items := make([]UserResponse, 0, len(page.Users))
	for _, u := range page.Users {
		items = append(items, newUserResponse(u))
	}

	totalPages := int((page.Total + int64(pageSize) - 1) / int64(pageSize))
	return PaginatedUsers{
		Items:       items,
		Total:       page.Total,
		Page:        pageNum,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     pageNum < totalPages,
		HasPrevious: pageNum > 1,
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page and page_size from the query string. Out-of-range
// values are a validation error, not a silent clamp.
func pageParams(r *http.Request) (page, pageSize int, err error) {
	page, err = queryInt(r, "page", 1, 1, 0)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = queryInt(r, "page_size", defaultPageSize, 1, maxPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < min || (max > 0 && n > max) {
		return 0, apperr.Validation("Request validation failed", map[string]any{
			name: fmt.Sprintf("must be an integer between %d and %s", min, maxLabel(max)),
		})
	}
	return n, nil
}

func maxLabel(max int) string {
	if max > 0 {
		return strconv.Itoa(max)
	}
	return "unbounded"
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// newValidator builds the request validator with the username and
// password rules, reporting struct fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", validUsername)
	_ = v.RegisterValidation("password", validPassword)
	return v
}

// validUsername allows 3 to 50 characters of letters, digits, underscore
// and hyphen, with neither underscore nor hyphen at the edges.
func validUsername(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 3 || len(s) > 50 {
		return false
	}
	if !usernameRe.MatchString(s) {
		return false
	}
	for _, edge := range []byte{s[0], s[len(s)-1]} {
		if edge == '_' || edge == '-' {
			return false
		}
	}
	return true
}

// validPassword requires 8 to 100 characters with at least one upper case
// letter, one lower case letter, and one digit.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 || len(s) > 100 {
		return false
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "username":
		return "Username must be 3-50 letters, digits, underscores or hyphens, and cannot start or end with an underscore or hyphen"
	case "password":
		return "Password must be 8-100 characters and contain an upper case letter, a lower case letter, and a digit"
	default:
		return "Invalid value"
	}
}
