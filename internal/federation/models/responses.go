package models

// LoginResponse is rendered by the default success handler.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	Username    string   `json:"username"`
	Alias       string   `json:"alias,omitempty"`
	Authorities []string `json:"authorities"`
	Roles       []string `json:"roles,omitempty"`
	UserID      string   `json:"dingtalk_userid"`
	UnionID     string   `json:"dingtalk_unionid,omitempty"`
}
