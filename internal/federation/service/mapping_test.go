package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/mock/gomock"

	"dingauth/internal/dingtalk/apps"
	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service/mocks"
)

var testDetails = models.RequestDetails{
	RequestID: "req-1",
	ClientIP:  "203.0.113.7",
	UserAgent: "Mozilla/5.0",
	Device:    "Chrome on macOS",
}

func (s *ServiceSuite) TestMapBasicUser() {
	identity := resolvedIdentity("Zhang")
	record := &models.BasicUser{Name: "alice", PasswordHash: "{bcrypt}hash", Grants: []string{"ROLE_USER", "ROLE_AUDIT"}}
	s.users.EXPECT().LoadUser(gomock.Any(), identity).Return(record, nil)

	outcome, err := s.service.Map(s.ctx, identity, testDetails)
	s.Require().NoError(err)
	s.Equal(&models.Principal{
		Username:    "alice",
		Password:    "{bcrypt}hash",
		Authorities: []string{"ROLE_USER", "ROLE_AUDIT"},
	}, outcome.Principal)
	s.Same(identity, outcome.Identity)
	s.Equal(testDetails, outcome.Details)
}

func (s *ServiceSuite) TestMapBasicUserKeepsGrantsVerbatim() {
	identity := resolvedIdentity("Zhang")
	grants := []string{"ROLE_USER", "ROLE_USER", " ROLE_A "}
	record := &models.BasicUser{Name: "alice", PasswordHash: "{bcrypt}hash", Grants: grants}
	s.users.EXPECT().LoadUser(gomock.Any(), identity).Return(record, nil)

	outcome, err := s.service.Map(s.ctx, identity, testDetails)
	s.Require().NoError(err)
	s.Equal(record.Username(), outcome.Principal.Username)
	s.Equal(record.Password(), outcome.Principal.Password)
	s.Equal(grants, outcome.Principal.Authorities)
	s.False(outcome.Principal.Extended)
}

func (s *ServiceSuite) TestMapExtendedUserAlias() {
	s.Run("blank alias is backfilled from the nick", func() {
		identity := resolvedIdentity("Zhang")
		s.users.EXPECT().LoadUser(gomock.Any(), identity).
			Return(&models.LocalUser{Name: "zhangsan", RoleNames: []string{"admin"}}, nil)

		outcome, err := s.service.Map(s.ctx, identity, testDetails)
		s.Require().NoError(err)
		s.True(outcome.Principal.Extended)
		s.Equal("Zhang", outcome.Principal.Alias)
		s.Equal([]string{"admin"}, outcome.Principal.Roles)
	})

	s.Run("whitespace alias is backfilled", func() {
		identity := resolvedIdentity("Zhang")
		s.users.EXPECT().LoadUser(gomock.Any(), identity).
			Return(&models.LocalUser{Name: "zhangsan", DisplayAlias: "   "}, nil)

		outcome, err := s.service.Map(s.ctx, identity, testDetails)
		s.Require().NoError(err)
		s.Equal("Zhang", outcome.Principal.Alias)
	})

	s.Run("existing alias is kept", func() {
		identity := resolvedIdentity("Zhang")
		s.users.EXPECT().LoadUser(gomock.Any(), identity).
			Return(&models.LocalUser{Name: "zhangsan", DisplayAlias: "Boss"}, nil)

		outcome, err := s.service.Map(s.ctx, identity, testDetails)
		s.Require().NoError(err)
		s.Equal("Boss", outcome.Principal.Alias)
	})

	s.Run("user id flow has no nick to backfill", func() {
		identity := resolvedIdentity("")
		s.users.EXPECT().LoadUser(gomock.Any(), identity).
			Return(&models.LocalUser{Name: "zhangsan"}, nil)

		outcome, err := s.service.Map(s.ctx, identity, testDetails)
		s.Require().NoError(err)
		s.Empty(outcome.Principal.Alias)
	})
}

func (s *ServiceSuite) TestMapLookupFailures() {
	s.Run("not found", func() {
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("find by userid: %w", ErrUserNotFound))

		_, err := s.service.Map(s.ctx, resolvedIdentity(""), testDetails)
		s.ErrorIs(err, ErrLocalUserNotFound)
		s.ErrorIs(err, ErrUserNotFound)
	})

	s.Run("nil record", func() {
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).Return(nil, nil)

		_, err := s.service.Map(s.ctx, resolvedIdentity(""), testDetails)
		s.ErrorIs(err, ErrLocalUserNotFound)
	})

	s.Run("store failure", func() {
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := s.service.Map(s.ctx, resolvedIdentity(""), testDetails)
		s.ErrorIs(err, ErrLookupFailed)
	})

	s.Run("typed error passes through", func() {
		custom := &Error{Kind: KindUserNotFound, Message: "account pending approval"}
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).Return(nil, custom)

		_, err := s.service.Map(s.ctx, resolvedIdentity(""), testDetails)
		s.Same(custom, err)
	})
}

func (s *ServiceSuite) TestMapAccountStatus() {
	past := time.Now().Add(-time.Hour)
	cases := []struct {
		name   string
		user   *models.LocalUser
		target error
	}{
		{"locked wins over disabled", &models.LocalUser{Name: "a", Locked: true, Disabled: true}, ErrAccountLocked},
		{"disabled", &models.LocalUser{Name: "a", Disabled: true}, ErrAccountDisabled},
		{"expired", &models.LocalUser{Name: "a", ExpiresAt: &past}, ErrAccountExpired},
		{"credentials expired", &models.LocalUser{Name: "a", CredentialsExpireAt: &past}, ErrCredentialsExpired},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).Return(tc.user, nil)

			outcome, err := s.service.Map(s.ctx, resolvedIdentity("Zhang"), testDetails)
			s.Nil(outcome)
			s.ErrorIs(err, tc.target)
			s.ErrorIs(err, ErrAccountStatus)
		})
	}
}

func (s *ServiceSuite) TestMapCustomStatusChecker() {
	checker := mocks.NewMockStatusChecker(s.ctrl)
	svc, err := New(s.provider, apps.NewRegistry(nil), s.users, WithStatusChecker(checker))
	s.Require().NoError(err)

	record := &models.BasicUser{Name: "alice"}
	s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).Return(record, nil)
	checker.EXPECT().Check(record).Return(errors.New("outside office hours"))

	_, err = svc.Map(s.ctx, resolvedIdentity(""), testDetails)
	s.ErrorIs(err, ErrAccountStatus)
	s.Contains(err.Error(), "outside office hours")
}

func (s *ServiceSuite) TestMapRequiresProfile() {
	_, err := s.service.Map(s.ctx, &models.ResolvedIdentity{UserID: "id1"}, testDetails)
	s.ErrorIs(err, ErrIdentityUnresolved)
}

func (s *ServiceSuite) TestAuthenticate() {
	s.Run("code flow end to end", func() {
		gomock.InOrder(
			s.expectToken(),
			s.provider.EXPECT().ResolveByCode(gomock.Any(), "code", testAppKey, testAppSecret).
				Return(&models.ExternalUserInfo{Nick: "Zhang", OpenID: "o1", UnionID: "u1"}, nil),
			s.provider.EXPECT().ResolveUserIDByUnionID(gomock.Any(), testAppKey, testToken, "u1").Return("id1", nil),
			s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").
				Return(&models.ExternalProfile{UserID: "id1", UnionID: "u1"}, nil),
			s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).
				Return(&models.LocalUser{Name: "zhangsan", Grants: []string{"ROLE_USER"}}, nil),
		)

		outcome, err := s.service.Authenticate(s.ctx, models.Credential{TmpAuthCode: "code", AppKey: testAppKey}, testDetails)
		s.Require().NoError(err)
		s.Equal("zhangsan", outcome.Principal.Username)
		s.Equal("Zhang", outcome.Principal.Alias)
		s.Equal("id1", outcome.Identity.UserID)
		s.Equal(testDetails, outcome.Details)
	})

	s.Run("exchange failure skips mapping", func() {
		_, err := s.service.Authenticate(s.ctx, models.Credential{AppKey: testAppKey}, testDetails)
		s.ErrorIs(err, ErrCredentialMissing)
	})
}
