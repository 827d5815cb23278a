package model //import "github.com/Xunop/e-library/internal/model"

import "encoding/json"

type UserSettingKey string

const (
	// Access tokens for the user.
	UserSettingKeyAccessTokens UserSettingKey = "USER_SETTING_ACCESS_TOKENS"
)

type UserSetting struct {
	UserID int32
	Key    UserSettingKey
	Value  string
}

// AccessToken is an issued token the user may still present.
type AccessToken struct {
	// The access token is a JWT token.
	// Including expiration time, issuer, etc.
	AccessToken string `json:"access_token,omitempty"`
	// A description for the access token.
	Description string `json:"description,omitempty"`
	CreatedTs   int64  `json:"created_ts,omitempty"`
}

func (t *AccessToken) String() string {
	b, _ := json.Marshal(t)
	return string(b)
}

type AccessTokensUserSetting struct {
	AccessTokens []*AccessToken `json:"access_tokens"`
}

func (s *AccessTokensUserSetting) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

type FindUserSetting struct {
	UserID *int32
	Key    UserSettingKey
}
