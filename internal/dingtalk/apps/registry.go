// Package apps holds the DingTalk applications this service may log in with.
package apps

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownApp is returned for an app key with no configured secret.
var ErrUnknownApp = errors.New("unknown dingtalk app")

// Credentials pairs an app key with its secret.
type Credentials struct {
	AppKey    string
	AppSecret string
}

// Registry is an immutable appKey -> secret table, safe for concurrent reads.
type Registry struct {
	secrets map[string]string
}

// NewRegistry copies secrets. Entries with a blank key or secret are skipped.
func NewRegistry(secrets map[string]string) *Registry {
	r := &Registry{secrets: make(map[string]string, len(secrets))}
	for key, secret := range secrets {
		key = strings.TrimSpace(key)
		if key == "" || strings.TrimSpace(secret) == "" {
			continue
		}
		r.secrets[key] = secret
	}
	return r
}

// Lookup returns the credentials for appKey or ErrUnknownApp.
func (r *Registry) Lookup(appKey string) (Credentials, error) {
	secret, ok := r.secrets[strings.TrimSpace(appKey)]
	if !ok {
		return Credentials{}, ErrUnknownApp
	}
	return Credentials{AppKey: strings.TrimSpace(appKey), AppSecret: secret}, nil
}

// AppKeys lists the registered keys in sorted order.
func (r *Registry) AppKeys() []string {
	return slices.Sorted(maps.Keys(r.secrets))
}

func (r *Registry) Len() int {
	return len(r.secrets)
}
