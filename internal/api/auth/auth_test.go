package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateAccessToken("reader", 42, time.Now().Add(time.Hour), secret)
	require.NoError(t, err)

	userID, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int32(42), userID)
}

func TestParseAccessTokenRejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, err := GenerateAccessToken("reader", 1, time.Now().Add(-time.Hour), secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, secret)
	assert.Error(t, err, "expired token")

	valid, err := GenerateAccessToken("reader", 1, time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(valid, []byte("other-secret"))
	assert.Error(t, err, "wrong secret")

	noKid := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, Audience: jwt.ClaimStrings{AccessTokenAudienceName}, Subject: "1"},
	})
	signed, err := noKid.SignedString(secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(signed, secret)
	assert.Error(t, err, "missing key id")

	_, err = ParseAccessToken("", secret)
	assert.Error(t, err)
}

func TestHasPermission(t *testing.T) {
	cases := []struct {
		user *model.User
		want bool
	}{
		{nil, false},
		{&model.User{Role: model.RoleMember, RowStatus: model.Normal}, false},
		{&model.User{Role: model.RoleLibrarian, RowStatus: model.Normal}, true},
		{&model.User{Role: model.RoleHost, RowStatus: model.Normal}, true},
		{&model.User{Role: model.RoleLibrarian, RowStatus: model.Archived}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.user, model.PermissionManageLoans), "%+v", c.user)
	}
}
