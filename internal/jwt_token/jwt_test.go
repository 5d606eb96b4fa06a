package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

func testCaller() id.Address {
	var a id.Address
	a[id.AddressSize-1] = 0x42
	return a
}

func TestGenerateAndValidateCallerToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(testCaller(), time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testCaller().String(), claims.Address)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestExtractCallerFromToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(testCaller(), time.Hour)
	require.NoError(t, err)

	caller, err := jwtService.ExtractCallerFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, testCaller(), caller)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(testCaller(), -time.Minute)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	token, err := other.GenerateCallerToken(testCaller(), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := jwtService.ValidateToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
