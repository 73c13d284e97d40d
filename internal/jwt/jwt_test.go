package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatter-dev/chatter/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := New("test-key", time.Hour)

	tokenStr, err := svc.NewToken(domain.User{Id: 42, Name: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := svc.DecodeToken(tokenStr)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwtlib.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["uid"])
	assert.Equal(t, "alice", claims["name"])
}

func TestDecodeWrongKey(t *testing.T) {
	tokenStr, err := New("key-one", time.Hour).NewToken(domain.User{Id: 1})
	require.NoError(t, err)

	_, err = New("key-two", time.Hour).DecodeToken(tokenStr)
	assert.Error(t, err)
}

func TestDecodeExpired(t *testing.T) {
	tokenStr, err := New("test-key", -time.Minute).NewToken(domain.User{Id: 1})
	require.NoError(t, err)

	_, err = New("test-key", -time.Minute).DecodeToken(tokenStr)
	assert.Error(t, err)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := New("test-key", time.Hour).DecodeToken("not-a-token")
	assert.Error(t, err)
}
