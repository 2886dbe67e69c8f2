package services

import (
	"context"
	"testing"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{
		Email: "a@x.dev", Password: "secret123", DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash, "password must be hashed")

	res, err := svc.Login(ctx, models.LoginRequest{Email: "a@x.dev", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Email: "a@x.dev", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "a@x.dev", Password: "pw123456"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Email: "a@x.dev", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "a@x.dev", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@x.dev", Password: "pw123456"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "Alice")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "Alice", claims["display_name"])

	_, err = ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestConsumeForceLogoutClearsFlagFirst(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Email: "a@x.dev", Password: "pw123456"})
	require.NoError(t, err)

	requested, err := svc.ConsumeForceLogout(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, requested)

	require.NoError(t, svc.RequestForceLogout(ctx, user.ID))

	requested, err = svc.ConsumeForceLogout(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, requested)

	// The flag was cleared before the caller acts, so a second check must
	// not request again.
	requested, err = svc.ConsumeForceLogout(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, requested)
}

func TestUpdateProfile(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewUserService(mem)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Email: "a@x.dev", Password: "pw123456", DisplayName: "Alice"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		DisplayName: "Alice B", AvatarURL: "https://cdn.x.dev/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.DisplayName)
	assert.Equal(t, "https://cdn.x.dev/a.png", updated.AvatarURL)
}
