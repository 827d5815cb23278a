package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStringToInt32(t *testing.T) {
	v, err := ConvertStringToInt32("42")
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	_, err = ConvertStringToInt32("4294967296")
	assert.Error(t, err)
	_, err = ConvertStringToInt32("abc")
	assert.Error(t, err)
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 16)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(GenUUID()))
	assert.False(t, IsUUID("not-a-uuid"))
	assert.False(t, IsUUID("123"))
}

func TestUIDMatcher(t *testing.T) {
	for _, name := range []string{"alice", "bob-the-builder", "j.doe"} {
		assert.True(t, UIDMatcher.MatchString(name), name)
	}
	for _, name := range []string{"", "a", "-alice", "has space"} {
		assert.False(t, UIDMatcher.MatchString(name), name)
	}
}
