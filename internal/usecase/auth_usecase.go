package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(hash string, plain string) bool
}

// アクセス／リフレッシュのJWT発行と、リフレッシュの検証
type TokenIssuer interface {
	IssueAccess(userID string, role model.Role, now time.Time) (string, time.Time, error)
	IssueRefresh(userID string, role model.Role, now time.Time) (string, time.Time, error)
	ParseRefresh(token string) (userID string, role model.Role, err error)
}

type IDGenerator interface {
	NewID() string
}

type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type AuthUsecase struct {
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   TokenIssuer
	idGen    IDGenerator
	now      func() time.Time
}

func NewAuthUsecase(
	users repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	now func() time.Time,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		idGen:    idGen,
		now:      now,
	}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthOutput struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         AuthUser  `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthUser struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (AuthOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, "email already registered")
	}
	if !errors.Is(err, repo.ErrUserNotFound) {
		return AuthOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := model.User{
		ID:           u.idGen.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}

	return u.issueTokens(user)
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, "missing credentials")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}

	if !u.verifier.Verify(user.PasswordHash, in.Password) {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return u.issueTokens(user)
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (u *AuthUsecase) Refresh(ctx context.Context, in RefreshInput) (RefreshOutput, error) {
	if in.RefreshToken == "" {
		return RefreshOutput{}, NewHTTPError(http.StatusBadRequest, "missing refresh token")
	}

	userID, role, err := u.issuer.ParseRefresh(in.RefreshToken)
	if err != nil {
		return RefreshOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	}

	token, expiresAt, err := u.issuer.IssueAccess(userID, role, u.now())
	if err != nil {
		return RefreshOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return RefreshOutput{Token: token, ExpiresAt: expiresAt}, nil
}

func (u *AuthUsecase) issueTokens(user model.User) (AuthOutput, error) {
	now := u.now()

	access, expiresAt, err := u.issuer.IssueAccess(user.ID, user.Role, now)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refresh, _, err := u.issuer.IssueRefresh(user.ID, user.Role, now)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return AuthOutput{
		Token:        access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User: AuthUser{
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}
