package client

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes provider failures independent of the endpoint.
type ErrorCategory string

const (
	// ErrorTimeout means the call exceeded its deadline.
	ErrorTimeout ErrorCategory = "timeout"
	// ErrorOutage means DingTalk could not be reached or answered with 5xx.
	ErrorOutage ErrorCategory = "provider_outage"
	// ErrorRejected means DingTalk answered with a non-zero errcode.
	ErrorRejected ErrorCategory = "rejected"
	// ErrorBadData means the response could not be decoded.
	ErrorBadData ErrorCategory = "bad_data"
	// ErrorInternal covers request construction failures.
	ErrorInternal ErrorCategory = "internal"
)

// Access token error codes returned by the open platform.
const (
	ErrCodeInvalidToken  = 40001
	ErrCodeInvalidToken2 = 40014
	ErrCodeTokenExpired  = 42001
)

// ProviderError is returned by every HTTPClient call that fails.
type ProviderError struct {
	Category  ErrorCategory
	Operation string
	ErrCode   int
	ErrMsg    string
	Err       error
}

func (e *ProviderError) Error() string {
	switch {
	case e.ErrCode != 0:
		return fmt.Sprintf("dingtalk %s [%s]: errcode=%d errmsg=%s", e.Operation, e.Category, e.ErrCode, e.ErrMsg)
	case e.Err != nil:
		return fmt.Sprintf("dingtalk %s [%s]: %s: %v", e.Operation, e.Category, e.ErrMsg, e.Err)
	default:
		return fmt.Sprintf("dingtalk %s [%s]: %s", e.Operation, e.Category, e.ErrMsg)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UpstreamCode is the DingTalk errcode, 0 for transport failures.
func (e *ProviderError) UpstreamCode() int {
	return e.ErrCode
}

func (e *ProviderError) UpstreamMessage() string {
	return e.ErrMsg
}

func newError(category ErrorCategory, op, msg string, err error) *ProviderError {
	return &ProviderError{Category: category, Operation: op, ErrMsg: msg, Err: err}
}

func rejected(op string, code int, msg string) *ProviderError {
	return &ProviderError{Category: ErrorRejected, Operation: op, ErrCode: code, ErrMsg: msg}
}

// IsTokenError reports whether err carries an access token errcode, meaning
// any cached token for the app is no longer usable.
func IsTokenError(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.ErrCode {
	case ErrCodeInvalidToken, ErrCodeInvalidToken2, ErrCodeTokenExpired:
		return true
	}
	return false
}

// Category extracts the category, defaulting to ErrorInternal.
func Category(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
