package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Ventas-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "e1", "bodeguero", "ventas-api", 60)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(secret, "ventas-api", tok)

	require.NoError(t, err)
	assert.Equal(t, "e1", userID)
	assert.Equal(t, "bodeguero", role)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "e1", "admin", "", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, "", tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "e1", "admin", "", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", "", tok)
	assert.Error(t, err)
}

func TestParse_EmisorDistinto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "e1", "admin", "otro-emisor", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, "ventas-api", tok)
	assert.Error(t, err)
}

func TestParse_RechazaAlgoritmoNone(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, pkgjwt.Claims{UserID: "e1", Role: "admin"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, "", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "e1", "admin", "", 60)
	assert.Error(t, err)
}
