package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: TokenIssuer / IDGenerator
// =====================

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccess(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, now)
	exp, _ := args.Get(1).(time.Time)
	return args.String(0), exp, args.Error(2)
}

func (m *MockTokenIssuer) IssueRefresh(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, now)
	exp, _ := args.Get(1).(time.Time)
	return args.String(0), exp, args.Error(2)
}

func (m *MockTokenIssuer) ParseRefresh(token string) (string, model.Role, error) {
	args := m.Called(token)
	role, _ := args.Get(1).(model.Role)
	return args.String(0), role, args.Error(2)
}

type stubIDGen struct{}

func (g stubIDGen) NewID() string { return "user-1" }

// =====================
// Helper
// =====================

func fixedNow() time.Time {
	return time.Unix(1700000000, 0)
}

func newAuthUC(users *MockUserRepository, issuer *MockTokenIssuer) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(
		users,
		usecase.NewBcryptPasswordHasher(4), // テストは最小コストで十分
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		stubIDGen{},
		fixedNow,
	)
}

// =====================
// Signup
// =====================

func TestAuthUsecase_Signup_Success(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	issuer := new(MockTokenIssuer)

	users.On("FindByEmail", mock.Anything, "buyer@test.com").Return(model.User{}, repo.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.ID == "user-1" &&
			u.Email == "buyer@test.com" &&
			u.Role == model.RoleUser &&
			u.PasswordHash != "" &&
			u.PasswordHash != "CorrectPW"
	})).Return(nil)

	exp := fixedNow().Add(24 * time.Hour)
	issuer.On("IssueAccess", "user-1", model.RoleUser, fixedNow()).Return("access-token", exp, nil)
	issuer.On("IssueRefresh", "user-1", model.RoleUser, fixedNow()).Return("refresh-token", fixedNow().Add(720*time.Hour), nil)

	u := newAuthUC(users, issuer)

	out, err := u.Signup(ctx, usecase.SignupInput{Name: "Buyer", Email: "Buyer@Test.com", Password: "CorrectPW"})
	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.Token)
	assert.Equal(t, "refresh-token", out.RefreshToken)
	assert.Equal(t, "buyer@test.com", out.User.Email)
	assert.Equal(t, model.RoleUser, out.User.Role)

	users.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestAuthUsecase_Signup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	issuer := new(MockTokenIssuer)

	users.On("FindByEmail", mock.Anything, "buyer@test.com").Return(model.User{ID: "user-9"}, nil)

	u := newAuthUC(users, issuer)

	_, err := u.Signup(ctx, usecase.SignupInput{Name: "Buyer", Email: "buyer@test.com", Password: "pw"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_MissingFields(t *testing.T) {
	ctx := context.Background()
	u := newAuthUC(new(MockUserRepository), new(MockTokenIssuer))

	_, err := u.Signup(ctx, usecase.SignupInput{Email: "buyer@test.com"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	issuer := new(MockTokenIssuer)

	hash, err := usecase.NewBcryptPasswordHasher(4).Hash("CorrectPW")
	assert.NoError(t, err)

	users.On("FindByEmail", mock.Anything, "buyer@test.com").Return(model.User{
		ID:           "user-1",
		Name:         "Buyer",
		Email:        "buyer@test.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}, nil)

	exp := fixedNow().Add(24 * time.Hour)
	issuer.On("IssueAccess", "user-1", model.RoleUser, fixedNow()).Return("access-token", exp, nil)
	issuer.On("IssueRefresh", "user-1", model.RoleUser, fixedNow()).Return("refresh-token", fixedNow().Add(720*time.Hour), nil)

	u := newAuthUC(users, issuer)

	out, err := u.Login(ctx, usecase.LoginInput{Email: "buyer@test.com", Password: "CorrectPW"})
	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.Token)
	assert.Equal(t, exp, out.ExpiresAt)

	issuer.AssertExpectations(t)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	issuer := new(MockTokenIssuer)

	hash, err := usecase.NewBcryptPasswordHasher(4).Hash("CorrectPW")
	assert.NoError(t, err)

	users.On("FindByEmail", mock.Anything, "buyer@test.com").Return(model.User{
		ID:           "user-1",
		Email:        "buyer@test.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}, nil)

	u := newAuthUC(users, issuer)

	_, err = u.Login(ctx, usecase.LoginInput{Email: "buyer@test.com", Password: "WrongPW"})
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	issuer.AssertNotCalled(t, "IssueAccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	issuer := new(MockTokenIssuer)

	users.On("FindByEmail", mock.Anything, "ghost@test.com").Return(model.User{}, repo.ErrUserNotFound)

	u := newAuthUC(users, issuer)

	_, err := u.Login(ctx, usecase.LoginInput{Email: "ghost@test.com", Password: "pw"})
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

// =====================
// Refresh
// =====================

func TestAuthUsecase_Refresh_Success(t *testing.T) {
	ctx := context.Background()
	issuer := new(MockTokenIssuer)

	exp := fixedNow().Add(24 * time.Hour)
	issuer.On("ParseRefresh", "refresh-token").Return("user-1", model.RoleUser, nil)
	issuer.On("IssueAccess", "user-1", model.RoleUser, fixedNow()).Return("new-access", exp, nil)

	u := newAuthUC(new(MockUserRepository), issuer)

	out, err := u.Refresh(ctx, usecase.RefreshInput{RefreshToken: "refresh-token"})
	assert.NoError(t, err)
	assert.Equal(t, "new-access", out.Token)
	assert.Equal(t, exp, out.ExpiresAt)
}

func TestAuthUsecase_Refresh_InvalidToken(t *testing.T) {
	ctx := context.Background()
	issuer := new(MockTokenIssuer)

	issuer.On("ParseRefresh", "garbage").Return("", model.Role(""), errors.New("bad token"))

	u := newAuthUC(new(MockUserRepository), issuer)

	_, err := u.Refresh(ctx, usecase.RefreshInput{RefreshToken: "garbage"})
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	issuer.AssertNotCalled(t, "IssueAccess", mock.Anything, mock.Anything, mock.Anything)
}
