package models

import (
	dErrors "dingauth/pkg/domain-errors"
	s "dingauth/pkg/string"
	"dingauth/pkg/validation"
)

// LoginRequest is the inbound credential before it reaches the exchange.
// Presence rules are enforced by the exchange so that the caller gets the
// typed credential_missing and unknown_app failures.
type LoginRequest struct {
	TmpAuthCode string `validate:"max=512"`
	UserID      string `validate:"max=128"`
	AppKey      string `validate:"max=128"`
}

func (r *LoginRequest) Normalize() {
	s.TrimStrings(&r.TmpAuthCode, &r.UserID, &r.AppKey)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *LoginRequest) Credential() Credential {
	return Credential{TmpAuthCode: r.TmpAuthCode, UserID: r.UserID, AppKey: r.AppKey}
}
