package jwt

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromContext(t *testing.T) {
	svc := NewJWTService("secret")

	token, tokenString, err := svc.JWTAuth().Encode(map[string]interface{}{"user_id": "u-1", "role": "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	got := UserIDFromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", *got)

	assert.Nil(t, UserIDFromContext(context.Background()))
}

func TestTokensVerifyAgainstSameSecret(t *testing.T) {
	_, tokenString, err := NewJWTService("secret").JWTAuth().Encode(map[string]interface{}{"user_id": "u-1"})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(NewJWTService("secret").JWTAuth(), tokenString)
	assert.NoError(t, err)

	_, err = jwtauth.VerifyToken(NewJWTService("other").JWTAuth(), tokenString)
	assert.Error(t, err)
}
