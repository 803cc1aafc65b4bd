package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"dingauth/internal/federation/models"
)

func (s *ServiceSuite) TestExchangeCredentialMissing() {
	// No mock expectations: any provider call fails the test.
	for _, cred := range []models.Credential{
		{AppKey: testAppKey},
		{AppKey: testAppKey, TmpAuthCode: "  ", UserID: " "},
		{},
	} {
		identity, err := s.service.Exchange(s.ctx, cred)
		s.Nil(identity)
		s.ErrorIs(err, ErrCredentialMissing)
	}
}

func (s *ServiceSuite) TestExchangeUnknownApp() {
	identity, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "code", AppKey: "other"})
	s.Nil(identity)
	s.ErrorIs(err, ErrUnknownApp)
	s.Contains(err.Error(), `"other"`)
}

func (s *ServiceSuite) TestExchangeCodeFlow() {
	profile := &models.ExternalProfile{UserID: "id1", UnionID: "u1", Name: "Zhang San"}
	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveByCode(gomock.Any(), "code", testAppKey, testAppSecret).
			Return(&models.ExternalUserInfo{Nick: "Zhang", OpenID: "o1", UnionID: "u1"}, nil),
		s.provider.EXPECT().ResolveUserIDByUnionID(gomock.Any(), testAppKey, testToken, "u1").Return("id1", nil),
		s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").Return(profile, nil),
	)

	identity, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "code", AppKey: testAppKey})
	s.Require().NoError(err)
	s.Equal("u1", identity.UnionID)
	s.Equal("o1", identity.OpenID)
	s.Equal("id1", identity.UserID)
	s.Equal(testAppKey, identity.AppKey)
	s.Equal("Zhang", identity.Nick())
	s.Same(profile, identity.Profile)
}

func (s *ServiceSuite) TestExchangeUserIDFlowSkipsUnionLookup() {
	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").
			Return(&models.ExternalProfile{UserID: "id1", UnionID: "u1"}, nil),
	)

	identity, err := s.service.Exchange(s.ctx, models.Credential{UserID: "id1", AppKey: testAppKey})
	s.Require().NoError(err)
	s.Equal("id1", identity.UserID)
	s.Equal("u1", identity.UnionID, "union id is taken from the profile")
	s.Nil(identity.UserInfo)
}

func (s *ServiceSuite) TestExchangeUserIDTakesPriorityOverCode() {
	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").
			Return(&models.ExternalProfile{UserID: "id1"}, nil),
	)

	identity, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "code", UserID: "id1", AppKey: testAppKey})
	s.Require().NoError(err)
	s.Equal("id1", identity.UserID)
}

func (s *ServiceSuite) TestExchangeCodeRejected() {
	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveByCode(gomock.Any(), "bad", testAppKey, testAppSecret).
			Return(nil, upstreamErr{code: 4, msg: "invalid code"}),
	)

	identity, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "bad", AppKey: testAppKey})
	s.Nil(identity)
	s.Require().ErrorIs(err, ErrProviderRejected)

	se, ok := AsError(err)
	s.Require().True(ok)
	s.Equal("invalid code", se.Message)
	s.Equal(4, se.UpstreamCode)
}

func (s *ServiceSuite) TestExchangeProviderFailures() {
	s.Run("token refresh fails", func() {
		s.provider.EXPECT().GetOrRefreshToken(gomock.Any(), testAppKey, testAppSecret).
			Return("", errors.New("connection refused"))

		_, err := s.service.Exchange(s.ctx, models.Credential{UserID: "id1", AppKey: testAppKey})
		s.ErrorIs(err, ErrProviderRejected)
		s.Zero(mustError(err).UpstreamCode)
	})

	s.Run("union id lookup fails", func() {
		gomock.InOrder(
			s.expectToken(),
			s.provider.EXPECT().ResolveByCode(gomock.Any(), "code", testAppKey, testAppSecret).
				Return(&models.ExternalUserInfo{UnionID: "u1"}, nil),
			s.provider.EXPECT().ResolveUserIDByUnionID(gomock.Any(), testAppKey, testToken, "u1").
				Return("", upstreamErr{code: 60121, msg: "user not found"}),
		)

		_, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "code", AppKey: testAppKey})
		s.ErrorIs(err, ErrProviderRejected)
		s.Equal(60121, mustError(err).UpstreamCode)
	})

	s.Run("profile lookup fails", func() {
		gomock.InOrder(
			s.expectToken(),
			s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").
				Return(nil, upstreamErr{code: 40001, msg: "invalid access_token"}),
		)

		_, err := s.service.Exchange(s.ctx, models.Credential{UserID: "id1", AppKey: testAppKey})
		s.ErrorIs(err, ErrProviderRejected)
		s.Equal("invalid access_token", mustError(err).Message)
	})
}

func (s *ServiceSuite) TestExchangeIdentityUnresolved() {
	s.Run("code exchange returns no union id", func() {
		gomock.InOrder(
			s.expectToken(),
			s.provider.EXPECT().ResolveByCode(gomock.Any(), "code", testAppKey, testAppSecret).
				Return(&models.ExternalUserInfo{Nick: "Zhang"}, nil),
		)

		identity, err := s.service.Exchange(s.ctx, models.Credential{TmpAuthCode: "code", AppKey: testAppKey})
		s.Nil(identity)
		s.ErrorIs(err, ErrIdentityUnresolved)
	})

	s.Run("provider returns empty profile", func() {
		gomock.InOrder(
			s.expectToken(),
			s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").Return(nil, nil),
		)

		_, err := s.service.Exchange(s.ctx, models.Credential{UserID: "id1", AppKey: testAppKey})
		s.ErrorIs(err, ErrIdentityUnresolved)
	})
}

func mustError(err error) *Error {
	se, _ := AsError(err)
	if se == nil {
		return &Error{}
	}
	return se
}
