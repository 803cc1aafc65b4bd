package client

import (
	"encoding/json"
	"time"
)

// AccessToken is an app-scoped token and its lifetime as reported by DingTalk.
type AccessToken struct {
	Value     string
	ExpiresIn time.Duration
}

// UserInfo is the result of exchanging a temporary authorization code.
type UserInfo struct {
	Nick    string `json:"nick"`
	OpenID  string `json:"openid"`
	UnionID string `json:"unionid"`
}

// User is the organization profile returned by /user/get.
type User struct {
	UserID  string `json:"userid"`
	UnionID string `json:"unionid"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	Active  bool   `json:"active"`
	// Raw is the full response body.
	Raw json.RawMessage `json:"-"`
}

type envelope interface {
	status() (int, string)
}

type baseResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (b baseResponse) status() (int, string) {
	return b.ErrCode, b.ErrMsg
}

type tokenResponse struct {
	baseResponse
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type codeRequest struct {
	TmpAuthCode string `json:"tmp_auth_code"`
}

type userInfoResponse struct {
	baseResponse
	UserInfo UserInfo `json:"user_info"`
}

type unionIDResponse struct {
	baseResponse
	ContactType int    `json:"contactType"`
	UserID      string `json:"userid"`
}

type userResponse struct {
	baseResponse
	User
}
