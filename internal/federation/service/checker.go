package service

import "dingauth/internal/federation/models"

// AccountStatusChecker checks locked, disabled, expired and credentials
// expired, in that order, and reports the first failure.
type AccountStatusChecker struct{}

func (AccountStatusChecker) Check(user models.UserDetails) error {
	switch {
	case !user.AccountNonLocked():
		return accountStatus(ReasonLocked, "user account is locked")
	case !user.Enabled():
		return accountStatus(ReasonDisabled, "user is disabled")
	case !user.AccountNonExpired():
		return accountStatus(ReasonExpired, "user account has expired")
	case !user.CredentialsNonExpired():
		return accountStatus(ReasonCredentialsExpired, "user credentials have expired")
	}
	return nil
}

var _ StatusChecker = AccountStatusChecker{}
