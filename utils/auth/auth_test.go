package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/r56149203/EduSphere/database/dbtest"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(expiry time.Duration) *auth.JWTManager {
	return auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Expiry: expiry, Issuer: "edusphere"})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := newManager(time.Hour)

	token, jti, expiresAt, err := m.GenerateSessionToken(7, "a@example.com", model.RoleAdmin, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	expired := newManager(-time.Minute)
	token, _, _, err := expired.GenerateSessionToken(1, "a@example.com", model.RoleStudent, 0)
	require.NoError(t, err)

	_, err = newManager(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	other := auth.NewJWTManager(auth.JWTConfig{Secret: "other", Expiry: time.Hour, Issuer: "edusphere"})
	foreign, _, _, err := other.GenerateSessionToken(1, "a@example.com", model.RoleStudent, 0)
	require.NoError(t, err)

	_, err = newManager(time.Hour).ValidateToken(foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = newManager(time.Hour).ValidateToken("garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	_, err := auth.HashPassword("short")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)
	assert.NoError(t, auth.VerifyPassword(hash, "Secret123"))
	assert.ErrorIs(t, auth.VerifyPassword(hash, "secret123"), auth.ErrPasswordMismatch)
}

func TestCheckStrength(t *testing.T) {
	assert.NoError(t, auth.CheckStrength("Abcdefg1"))
	assert.ErrorIs(t, auth.CheckStrength("Abc1"), auth.ErrPasswordTooShort)
	assert.ErrorIs(t, auth.CheckStrength("abcdefg1"), auth.ErrPasswordWeak)
	assert.ErrorIs(t, auth.CheckStrength("ABCDEFG1"), auth.ErrPasswordWeak)
	assert.ErrorIs(t, auth.CheckStrength("Abcdefgh"), auth.ErrPasswordWeak)
}

func TestBlacklist(t *testing.T) {
	db := dbtest.New(t).GetDB()
	svc := auth.NewBlacklistService(db)
	ctx := context.Background()

	require.NoError(t, svc.RevokeToken(ctx, "live", 1, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, svc.RevokeToken(ctx, "live", 1, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, svc.RevokeToken(ctx, "stale", 1, time.Now().Add(-time.Hour), "logout"))

	revoked, err := svc.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = svc.IsTokenRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	removed, err := svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestRevokeAllUserTokens(t *testing.T) {
	db := dbtest.New(t).GetDB()
	user := model.User{FullName: "A", Email: "a@example.com", PasswordHash: "x", Role: model.RoleStudent}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, auth.NewBlacklistService(db).RevokeAllUserTokens(context.Background(), user.ID))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 1, reloaded.TokenVersion)
}
