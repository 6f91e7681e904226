package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miche-video-server/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("CorrectP@ss1")
	require.NoError(t, err)
	assert.NotEqual(t, "CorrectP@ss1", hash)

	assert.True(t, security.CheckPassword("CorrectP@ss1", hash))
	assert.False(t, security.CheckPassword("WrongP@ss1", hash))
}

func TestCheckDummyPassword_AlwaysFalse(t *testing.T) {
	assert.False(t, security.CheckDummyPassword("что угодно"))
	assert.False(t, security.CheckDummyPassword(""))
}
