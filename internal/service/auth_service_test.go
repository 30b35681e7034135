package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linguaops/classtrack-api/internal/models"
)

type fakeAuthRepo struct {
	users  map[string]models.User
	tokens map[string]models.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:  make(map[string]models.User),
		tokens: make(map[string]models.RefreshToken),
	}
}

func (r *fakeAuthRepo) FindByEmail(_ context.Context, email string) *models.User {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied
		}
	}
	return nil
}

func (r *fakeAuthRepo) FindByID(_ context.Context, id string) *models.User {
	if u, ok := r.users[id]; ok {
		copied := u
		return &copied
	}
	return nil
}

func (r *fakeAuthRepo) Save(_ context.Context, user models.User) (models.User, error) {
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeAuthRepo) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLogin = &ts
		r.users[id] = u
	}
	return nil
}

func (r *fakeAuthRepo) CreateRefreshToken(_ context.Context, token models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeAuthRepo) FindRefreshToken(_ context.Context, token string) *models.RefreshToken {
	if t, ok := r.tokens[token]; ok {
		copied := t
		return &copied
	}
	return nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for key, t := range r.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			r.tokens[key] = t
		}
	}
	return nil
}

func (r *fakeAuthRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	now := time.Now().UTC()
	for key, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
			t.RevokedAt = &now
			r.tokens[key] = t
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAuthRepo) {
	t.Helper()
	repo := newFakeAuthRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["u1"] = models.User{
		ID:           "u1",
		Email:        "teacher@example.com",
		PasswordHash: string(hash),
		FullName:     "Test Teacher",
		Role:         models.RoleTeacher,
		Active:       true,
	}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "unit-test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "classtrack-test",
	})
	return svc, repo
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.ID)
	assert.NotNil(t, repo.users["u1"].LastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "classtrack-test", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.Error(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := repo.users["u1"]
	u.Active = false
	repo.users["u1"] = u

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	assert.Error(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, repo := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the old token is revoked on use and cannot be replayed
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	assert.Error(t, err)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Error(t, svc.Logout(context.Background(), login.RefreshToken, "someone-else"))
	assert.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "u1"))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, repo := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "brand-new-secret",
	})
	require.NoError(t, err)

	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "brand-new-secret",
	})
	assert.NoError(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc, _ := newAuthFixture(t)
	other := NewAuthService(newFakeAuthRepo(), nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Minute,
	})

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(login.AccessToken)
	assert.Error(t, err)
}
