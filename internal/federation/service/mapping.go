package service

import (
	"context"
	"errors"

	"dingauth/internal/federation/models"
	"dingauth/internal/platform/privacy"
	"dingauth/internal/platform/tracer"
)

// Map loads the local account for identity, checks its status and builds the
// principal. Records implementing models.SecurityPrincipal get the extended
// principal, with a blank alias taken from the DingTalk nick.
func (s *Service) Map(ctx context.Context, identity *models.ResolvedIdentity, details models.RequestDetails) (*models.Outcome, error) {
	if !identity.Resolved() {
		return nil, newError(KindIdentityUnresolved, "identity has no dingtalk profile", nil)
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanMap,
		tracer.String(tracer.AttrUserIDHash, privacy.HashIdentifier(identity.UserID)),
	)
	outcome, err := s.mapIdentity(ctx, identity, details)
	span.End(err)
	return outcome, err
}

func (s *Service) mapIdentity(ctx context.Context, identity *models.ResolvedIdentity, details models.RequestDetails) (*models.Outcome, error) {
	user, err := s.users.LoadUser(ctx, identity)
	if err != nil {
		return nil, lookupError(err)
	}
	if user == nil {
		return nil, newError(KindUserNotFound, "no local user is linked to this dingtalk account", nil)
	}

	if err := s.checker.Check(user); err != nil {
		if se, ok := AsError(err); ok {
			return nil, se
		}
		return nil, newError(KindAccountStatus, err.Error(), err)
	}

	var principal *models.Principal
	if extended, ok := user.(models.SecurityPrincipal); ok {
		principal = models.NewExtendedPrincipal(extended, identity.Nick())
	} else {
		principal = models.NewBasicPrincipal(user)
	}

	return &models.Outcome{
		Identity:  identity,
		Principal: principal,
		Details:   details,
	}, nil
}

func lookupError(err error) error {
	if se, ok := AsError(err); ok {
		return se
	}
	if errors.Is(err, ErrUserNotFound) {
		return newError(KindUserNotFound, "no local user is linked to this dingtalk account", err)
	}
	return newError(KindLookupFailed, "local user lookup failed", err)
}
