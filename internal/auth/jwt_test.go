package auth_test

import (
	"testing"
	"time"

	"boardengine/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(testSecret, userID, 24*time.Hour)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedUserID, err := auth.ParseToken(testSecret, token)

	assert.NoError(t, err)
	assert.Equal(t, userID.String(), parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken(testSecret, "invalid-token")

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("some-other-secret", uuid.New(), time.Hour)
	assert.NoError(t, err)

	_, err = auth.ParseToken(testSecret, token)

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_ExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(-1 * time.Hour).Unix(), // Expired an hour ago
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, _ := token.SignedString([]byte(testSecret))

	_, err := auth.ParseToken(testSecret, expiredToken)

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_MissingClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		// No "user_id"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutUserID, _ := token.SignedString([]byte(testSecret))

	_, err := auth.ParseToken(testSecret, tokenWithoutUserID)

	assert.Error(t, err)
	assert.Equal(t, "invalid claims", err.Error())
}
