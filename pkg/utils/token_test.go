package utils

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("farmer-1", "farmer", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", claims.Address)
	assert.Equal(t, "farmer", claims.Role)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("farmer-1", "farmer", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateToken("farmer-1", "farmer", time.Hour)
	require.NoError(t, err)

	SetSecret("another-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractClaims(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateToken("dist-1", "distributor", time.Hour)
	require.NoError(t, err)

	t.Run("from bearer header", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		claims, err := ExtractClaims(r)
		require.NoError(t, err)
		assert.Equal(t, "dist-1", claims.Address)
	})

	t.Run("from cookie", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: token})

		claims, err := ExtractClaims(r)
		require.NoError(t, err)
		assert.Equal(t, "distributor", claims.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		_, err := ExtractClaims(r)
		assert.Error(t, err)
	})
}
