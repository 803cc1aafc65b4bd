package models

import (
	"slices"
	"strings"
	"time"
)

// UserDetails is the baseline contract every local user record satisfies.
type UserDetails interface {
	Username() string
	Password() string
	Authorities() []string
	Enabled() bool
	AccountNonLocked() bool
	AccountNonExpired() bool
	CredentialsNonExpired() bool
}

// SecurityPrincipal is the extended contract carrying a display alias and
// roles. Records that implement it produce a full principal.
type SecurityPrincipal interface {
	UserDetails
	Alias() string
	Roles() []string
}

// Principal is the authenticated local identity. Extended is true when it
// was built from a SecurityPrincipal; Alias and Roles are empty otherwise.
type Principal struct {
	Username    string
	Password    string `json:"-"`
	Authorities []string
	Alias       string
	Roles       []string
	Extended    bool
	Record      UserDetails `json:"-"`
}

// NewBasicPrincipal keeps only username, password and authorities, each as
// the record returns them.
func NewBasicPrincipal(u UserDetails) *Principal {
	return &Principal{
		Username:    u.Username(),
		Password:    u.Password(),
		Authorities: slices.Clone(u.Authorities()),
	}
}

// NewExtendedPrincipal builds from the full record. A blank record alias is
// replaced by fallbackAlias. Whitespace-only counts as blank.
func NewExtendedPrincipal(u SecurityPrincipal, fallbackAlias string) *Principal {
	alias := u.Alias()
	if strings.TrimSpace(alias) == "" {
		alias = fallbackAlias
	}
	return &Principal{
		Username:    u.Username(),
		Password:    u.Password(),
		Authorities: slices.Clone(u.Authorities()),
		Alias:       alias,
		Roles:       slices.Clone(u.Roles()),
		Extended:    true,
		Record:      u,
	}
}

// LocalUser is the application account linked to a DingTalk user.
type LocalUser struct {
	ID                  string
	DingTalkUserID      string
	UnionID             string
	Name                string
	PasswordHash        string
	DisplayAlias        string
	RoleNames           []string
	Grants              []string
	Disabled            bool
	Locked              bool
	ExpiresAt           *time.Time
	CredentialsExpireAt *time.Time
	CreatedAt           time.Time
}

func (u *LocalUser) Username() string      { return u.Name }
func (u *LocalUser) Password() string      { return u.PasswordHash }
func (u *LocalUser) Authorities() []string { return u.Grants }
func (u *LocalUser) Alias() string         { return u.DisplayAlias }
func (u *LocalUser) Roles() []string       { return u.RoleNames }
func (u *LocalUser) Enabled() bool         { return !u.Disabled }
func (u *LocalUser) AccountNonLocked() bool {
	return !u.Locked
}

func (u *LocalUser) AccountNonExpired() bool {
	return u.ExpiresAt == nil || time.Now().Before(*u.ExpiresAt)
}

func (u *LocalUser) CredentialsNonExpired() bool {
	return u.CredentialsExpireAt == nil || time.Now().Before(*u.CredentialsExpireAt)
}

// BasicUser only satisfies UserDetails.
type BasicUser struct {
	Name         string
	PasswordHash string
	Grants       []string
	Disabled     bool
	Locked       bool
}

func (u *BasicUser) Username() string            { return u.Name }
func (u *BasicUser) Password() string            { return u.PasswordHash }
func (u *BasicUser) Authorities() []string       { return u.Grants }
func (u *BasicUser) Enabled() bool               { return !u.Disabled }
func (u *BasicUser) AccountNonLocked() bool      { return !u.Locked }
func (u *BasicUser) AccountNonExpired() bool     { return true }
func (u *BasicUser) CredentialsNonExpired() bool { return true }

var (
	_ SecurityPrincipal = (*LocalUser)(nil)
	_ UserDetails       = (*BasicUser)(nil)
)
