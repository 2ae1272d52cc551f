package service

import (
	"testing"

	"brandlink/config"
	"brandlink/internal/domain"
	"brandlink/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(config.Load(), repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	u, access, refresh, err := svc.Register("b@test.io", "brandco", "supersecret1", domain.RoleBrand, "Brand Co")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, domain.RoleBrand, u.Role)
	assert.NotEqual(t, "supersecret1", u.PasswordHash, "password must be hashed")

	_, access, _, err = svc.Login("b@test.io", "supersecret1")
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login("b@test.io", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@test.io", "supersecret1")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newAuthService(t)
	_, _, _, err := svc.Register("b@test.io", "brandco", "supersecret1", domain.RoleBrand, "")
	require.NoError(t, err)

	_, _, _, err = svc.Register("b@test.io", "other", "supersecret1", domain.RoleBrand, "")
	assert.ErrorIs(t, err, ErrEmailExists)
	_, _, _, err = svc.Register("c@test.io", "brandco", "supersecret1", domain.RoleCreator, "")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newAuthService(t)
	_, _, _, err := svc.Register("a@test.io", "admin", "supersecret1", domain.RoleAdmin, "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRefreshToken(t *testing.T) {
	svc := newAuthService(t)
	_, _, refresh, err := svc.Register("b@test.io", "brandco", "supersecret1", domain.RoleBrand, "")
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = svc.Refresh("not-a-token")
	assert.Error(t, err)
}

func TestLoginWithGoogleCreatesAndLinks(t *testing.T) {
	svc := newAuthService(t)

	// fresh Google sign-in creates a creator by default
	u, _, _, isNew, err := svc.LoginWithGoogle("goog-1", "new@test.io", "New Person", "https://img/x.png", "")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, domain.RoleCreator, u.Role)

	// second sign-in finds the same account
	u2, _, _, isNew, err := svc.LoginWithGoogle("goog-1", "new@test.io", "New Person", "", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, u2.ID)

	// existing email account gets linked instead of duplicated
	_, _, _, err = svc.Register("b@test.io", "brandco", "supersecret1", domain.RoleBrand, "")
	require.NoError(t, err)
	linked, _, _, isNew, err := svc.LoginWithGoogle("goog-2", "b@test.io", "Brand Person", "", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, domain.RoleBrand, linked.Role)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "goog-2", *linked.GoogleID)
}
