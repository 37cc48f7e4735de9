package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.Generate("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyAdmin(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "tgnotify", claims.Issuer)
}

func TestJWTService_RejectsNonAdmin(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.Generate("viewer", Role("viewer"), time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.NoError(t, err)

	_, err = svc.VerifyAdmin(token)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("test-secret")
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.Generate("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").Generate("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "tgnotify",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").Verify(token)
	assert.Error(t, err)
}

func TestJWTService_Disabled(t *testing.T) {
	svc := NewJWTService("")
	assert.False(t, svc.Enabled())

	_, err := svc.Generate("ops", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrAuthDisabled)

	_, err = svc.Verify("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}

func TestJWTService_InvalidTTL(t *testing.T) {
	_, err := NewJWTService("s").Generate("ops", RoleAdmin, 0)
	assert.Error(t, err)
}
