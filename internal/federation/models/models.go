package models

import (
	"encoding/json"
	"strings"
)

// Flow names which credential started an exchange.
type Flow string

const (
	FlowCode   Flow = "code"
	FlowUserID Flow = "userid"
)

// Credential is what the login endpoint extracted from the request. At least
// one of TmpAuthCode or UserID must be set for an exchange to start.
type Credential struct {
	TmpAuthCode string
	UserID      string
	AppKey      string
}

// HasIdentifier reports whether either the code or the user id is present.
func (c Credential) HasIdentifier() bool {
	return strings.TrimSpace(c.TmpAuthCode) != "" || strings.TrimSpace(c.UserID) != ""
}

// Flow is the user id flow when a user id is supplied, the code flow otherwise.
func (c Credential) Flow() Flow {
	if strings.TrimSpace(c.UserID) != "" {
		return FlowUserID
	}
	return FlowCode
}

// ExternalUserInfo is returned by the temporary code exchange.
type ExternalUserInfo struct {
	Nick    string
	OpenID  string
	UnionID string
}

// ExternalProfile is the organization profile, authoritative once present.
type ExternalProfile struct {
	UserID  string
	UnionID string
	Name    string
	Avatar  string
	Mobile  string
	Email   string
	Active  bool
	Raw     json.RawMessage
}

// ResolvedIdentity accumulates what the exchange learned about the user. It
// is complete once Profile is non-nil.
type ResolvedIdentity struct {
	AppKey   string
	UnionID  string
	OpenID   string
	UserID   string
	UserInfo *ExternalUserInfo
	Profile  *ExternalProfile
}

func (r *ResolvedIdentity) Resolved() bool {
	return r != nil && r.Profile != nil
}

// Nick is the display name from the code exchange, empty in the user id flow.
func (r *ResolvedIdentity) Nick() string {
	if r == nil || r.UserInfo == nil {
		return ""
	}
	return r.UserInfo.Nick
}

// RequestDetails describes the inbound request and is copied verbatim onto
// the outcome.
type RequestDetails struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Device    string
}

// Outcome is the terminal artifact of a successful login.
type Outcome struct {
	Identity  *ResolvedIdentity
	Principal *Principal
	Details   RequestDetails
}
