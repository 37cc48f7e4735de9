package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgnotify/internal/infrastructure/auth"
)

func TestMint(t *testing.T) {
	svc := auth.NewJWTService("secret")

	signed, err := Mint(svc, "ops", time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyAdmin(signed)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestMint_Errors(t *testing.T) {
	_, err := Mint(auth.NewJWTService(""), "ops", time.Hour)
	assert.Error(t, err)

	_, err = Mint(auth.NewJWTService("secret"), "", time.Hour)
	assert.Error(t, err)

	_, err = Mint(auth.NewJWTService("secret"), "ops", 0)
	assert.Error(t, err)
}
