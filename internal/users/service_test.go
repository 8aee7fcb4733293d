package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdminAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	u, err := svc.CreateAdmin(ctx, "  Admin@Example.com ", "Admin", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.HasPassword())

	got, err := svc.Authenticate(ctx, "ADMIN@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin@example.com", "wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CreateAdmin(ctx, "admin@example.com", "Again", "another password")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateAdminValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.CreateAdmin(context.Background(), "not-an-email", "x", "long enough")
	require.Error(t, err)
	_, err = svc.CreateAdmin(context.Background(), "a@b.c", "x", "short")
	require.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	hash := HashPassword("secret", salt)
	assert.True(t, VerifyPassword("secret", salt, hash))
	assert.False(t, VerifyPassword("Secret", salt, hash))
}
