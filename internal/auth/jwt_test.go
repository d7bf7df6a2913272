package auth_test

import (
	"testing"
	"time"

	"github.com/agrocampo/campo-api/internal/auth"
	"github.com/agrocampo/campo-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba-muy-largo"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func defaultClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"name":  "Juan Pérez",
		"email": "juan@agrocampo.mx",
		"roles": []string{auth.RoleOperator},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestValidateToken_HappyPath(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	token := signToken(t, testSecret, jwt.SigningMethodHS256, defaultClaims())

	userCtx, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userCtx.UserID)
	assert.Equal(t, "Juan Pérez", userCtx.DisplayName)
	assert.Equal(t, "juan@agrocampo.mx", userCtx.Email)
	assert.Equal(t, []string{auth.RoleOperator}, userCtx.Roles)
}

func TestValidateToken_SingleRoleStringClaim(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	claims := defaultClaims()
	delete(claims, "roles")
	claims["role"] = auth.RoleAdmin
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	userCtx, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, userCtx.IsAdmin())
}

func TestValidateToken_Expired(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	claims := defaultClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	token := signToken(t, "otro-secreto", jwt.SigningMethodHS256, defaultClaims())

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_RejectsOtherSigningMethods(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	token := signToken(t, testSecret, jwt.SigningMethodHS384, defaultClaims())

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_MissingSubject(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})
	claims := defaultClaims()
	delete(claims, "sub")
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_IssuerEnforcedWhenConfigured(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "agrocampo"})

	claims := defaultClaims()
	claims["iss"] = "agrocampo"
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)
	_, err := v.ValidateToken(token)
	assert.NoError(t, err)

	claims["iss"] = "otro-emisor"
	token = signToken(t, testSecret, jwt.SigningMethodHS256, claims)
	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
