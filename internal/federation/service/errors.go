package service

import (
	"errors"
	"fmt"
)

// Kind classifies every login failure. The set is closed.
type Kind string

const (
	KindCredentialMissing  Kind = "credential_missing"
	KindUnknownApp         Kind = "unknown_app"
	KindProviderRejected   Kind = "provider_rejected"
	KindIdentityUnresolved Kind = "identity_unresolved"
	KindUserNotFound       Kind = "user_not_found"
	KindLookupFailed       Kind = "lookup_failed"
	KindAccountStatus      Kind = "account_status"
)

// Reason narrows KindAccountStatus.
type Reason string

const (
	ReasonLocked             Reason = "locked"
	ReasonDisabled           Reason = "disabled"
	ReasonExpired            Reason = "expired"
	ReasonCredentialsExpired Reason = "credentials_expired"
)

// Error is the failure artifact handed to failure handlers.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	// UpstreamCode is the provider errcode, 0 when the failure did not come
	// from a provider response.
	UpstreamCode int
	Err          error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += "(" + string(e.Reason) + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind, and on Reason when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// Targets for errors.Is.
var (
	ErrCredentialMissing  = &Error{Kind: KindCredentialMissing}
	ErrUnknownApp         = &Error{Kind: KindUnknownApp}
	ErrProviderRejected   = &Error{Kind: KindProviderRejected}
	ErrIdentityUnresolved = &Error{Kind: KindIdentityUnresolved}
	ErrLocalUserNotFound  = &Error{Kind: KindUserNotFound}
	ErrLookupFailed       = &Error{Kind: KindLookupFailed}
	ErrAccountStatus      = &Error{Kind: KindAccountStatus}

	ErrAccountLocked      = &Error{Kind: KindAccountStatus, Reason: ReasonLocked}
	ErrAccountDisabled    = &Error{Kind: KindAccountStatus, Reason: ReasonDisabled}
	ErrAccountExpired     = &Error{Kind: KindAccountStatus, Reason: ReasonExpired}
	ErrCredentialsExpired = &Error{Kind: KindAccountStatus, Reason: ReasonCredentialsExpired}
)

// ErrUserNotFound is returned by a UserDetailsService when no local account
// is linked to the identity.
var ErrUserNotFound = errors.New("user not found")

// UpstreamError is implemented by provider errors that carry the
// provider's errcode and errmsg.
type UpstreamError interface {
	error
	UpstreamCode() int
	UpstreamMessage() string
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func accountStatus(reason Reason, msg string) *Error {
	return &Error{Kind: KindAccountStatus, Reason: reason, Message: msg}
}

// providerRejected wraps a provider failure, lifting errcode and errmsg when
// the provider answered.
func providerRejected(err error) *Error {
	e := &Error{Kind: KindProviderRejected, Message: "identity provider rejected the request", Err: err}
	var up UpstreamError
	if errors.As(err, &up) {
		e.UpstreamCode = up.UpstreamCode()
		if m := up.UpstreamMessage(); m != "" {
			e.Message = m
		}
	}
	return e
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError extracts the *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
