package user

import (
	"context"
	"errors"
	"fmt"

	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
)

// Finder is the lookup contract shared by the stores. Both methods wrap
// service.ErrUserNotFound when nothing matches.
type Finder interface {
	FindByUserID(ctx context.Context, userID string) (*models.LocalUser, error)
	FindByUnionID(ctx context.Context, unionID string) (*models.LocalUser, error)
}

// loadUser matches by DingTalk user id first and falls back to union id.
func loadUser(ctx context.Context, f Finder, identity *models.ResolvedIdentity) (models.UserDetails, error) {
	if identity == nil {
		return nil, fmt.Errorf("identity is required")
	}
	if identity.UserID != "" {
		u, err := f.FindByUserID(ctx, identity.UserID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, service.ErrUserNotFound) {
			return nil, err
		}
	}
	if identity.UnionID != "" {
		u, err := f.FindByUnionID(ctx, identity.UnionID)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, fmt.Errorf("no local user for dingtalk user %q: %w", identity.UserID, service.ErrUserNotFound)
}
