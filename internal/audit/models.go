package audit

import "time"

// Action names a login audit event.
type Action string

const (
	ActionLoginSucceeded Action = "dingtalk_login_succeeded"
	ActionLoginFailed    Action = "dingtalk_login_failed"
)

// Event records one login attempt. DingTalk user ids are hashed and client
// addresses truncated before an event leaves the process.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	RequestID    string    `json:"request_id,omitempty"`
	AppKey       string    `json:"app_key"`
	Flow         string    `json:"flow"`
	Username     string    `json:"username,omitempty"`
	UserIDHash   string    `json:"dingtalk_userid_hash,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	UpstreamCode int       `json:"errcode,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	Device       string    `json:"device,omitempty"`
}
