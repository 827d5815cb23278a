package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

const (
	// The key name used to store the access token in the cookie.
	AccessTokenCookieName = "e-library.access-token"
	// The key name used to store the session id in the cookie.
	SessionCookieName = "e-library.session"
	Issuer            = "e-library"
	// KeyID is the identifier of the signing key, checked on parse.
	KeyID                   = "v1"
	AccessTokenAudienceName = "user.access-token"
)

type ClaimsMessage struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates an access token.
// username is the email of the user.
func GenerateAccessToken(username string, userID int32, expirationTime time.Time, secret []byte) (string, error) {
	return generateToken(username, userID, AccessTokenAudienceName, expirationTime, secret)
}

// generateToken generates a jwt token.
func generateToken(username string, userID int32, audience string, expirationTime time.Time, secret []byte) (string, error) {
	registeredClaims := jwt.RegisteredClaims{
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{audience},
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Subject:  fmt.Sprint(userID),
	}
	if !expirationTime.IsZero() {
		registeredClaims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	}

	// Declare the token with the HS256 algorithm used for signing, and the claims.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClaimsMessage{
		Name:             username,
		RegisteredClaims: registeredClaims,
	})
	token.Header["kid"] = KeyID

	// Create the JWT string.
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAccessToken checks the signature and expiry and returns the user id
// the token was issued to.
func ParseAccessToken(accessToken string, secret []byte) (int32, error) {
	if accessToken == "" {
		return 0, errors.New("no access token provided")
	}
	claims := &ClaimsMessage{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Name {
			return nil, errors.New("unexpected signing method")
		}
		if kid, ok := t.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.New("unexpected key id")
		}
		return secret, nil
	}, jwt.WithAudience(AccessTokenAudienceName), jwt.WithIssuer(Issuer))
	if err != nil {
		return 0, errors.Wrap(err, "invalid or expired access token")
	}

	userID, err := util.ConvertStringToInt32(claims.Subject)
	if err != nil {
		return 0, errors.Wrap(err, "malformed ID in the token")
	}
	return userID, nil
}

// HasPermission reports whether the user's role grants permission. Anonymous
// and archived users hold no permissions.
func HasPermission(user *model.User, permission model.Permission) bool {
	if user == nil || user.RowStatus == model.Archived {
		return false
	}
	for _, granted := range model.RolePermissions[user.Role] {
		if granted == permission {
			return true
		}
	}
	return false
}
