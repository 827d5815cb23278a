package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokensRoundTrip(t *testing.T) {
	stored := &AccessTokensUserSetting{AccessTokens: []*AccessToken{
		{AccessToken: "first.jwt", Description: "laptop", CreatedTs: 1704844800},
		{AccessToken: "second.jwt"},
	}}

	// The store keeps String() as the setting value and decodes it on read.
	var loaded AccessTokensUserSetting
	require.NoError(t, json.Unmarshal([]byte(stored.String()), &loaded))
	if diff := cmp.Diff(stored, &loaded); diff != "" {
		t.Errorf("access tokens changed on the way through storage (-want +got):\n%s", diff)
	}

	// Empty optional fields stay out of the stored value.
	assert.Equal(t, `{"access_token":"second.jwt"}`, stored.AccessTokens[1].String())
}

func TestAccessTokensAfterLastSignOut(t *testing.T) {
	value := (&AccessTokensUserSetting{AccessTokens: []*AccessToken{}}).String()
	assert.Equal(t, `{"access_tokens":[]}`, value)

	var loaded AccessTokensUserSetting
	require.NoError(t, json.Unmarshal([]byte(value), &loaded))
	assert.Empty(t, loaded.AccessTokens)
}
