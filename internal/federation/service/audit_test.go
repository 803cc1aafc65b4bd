package service

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.uber.org/mock/gomock"

	"dingauth/internal/audit"
	"dingauth/internal/dingtalk/apps"
	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service/mocks"
	"dingauth/internal/platform/privacy"
)

func (s *ServiceSuite) auditedService(auditor AuditEmitter) *Service {
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc, err := New(s.provider, apps.NewRegistry(map[string]string{testAppKey: testAppSecret}), s.users,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditor(auditor),
	)
	s.Require().NoError(err)
	svc.now = func() time.Time { return fixed }
	return svc
}

func (s *ServiceSuite) TestAuditOnSuccess() {
	store := audit.NewInMemoryStore(10)
	svc := s.auditedService(audit.NewPublisher(store))

	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "id1").
			Return(&models.ExternalProfile{UserID: "id1", UnionID: "u1"}, nil),
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).
			Return(&models.LocalUser{Name: "zhangsan"}, nil),
	)

	_, err := svc.Authenticate(s.ctx, models.Credential{UserID: "id1", AppKey: testAppKey}, testDetails)
	s.Require().NoError(err)

	events := store.List()
	s.Require().Len(events, 1)
	e := events[0]
	s.Equal(audit.ActionLoginSucceeded, e.Action)
	s.Equal("zhangsan", e.Username)
	s.Equal(string(models.FlowUserID), e.Flow)
	s.Equal(privacy.HashIdentifier("id1"), e.UserIDHash)
	s.Equal(privacy.AnonymizeIP(testDetails.ClientIP), e.ClientIP)
	s.Equal(testDetails.RequestID, e.RequestID)
	s.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), e.Timestamp)
}

func (s *ServiceSuite) TestSuccessLogOmitsRawIdentifiers() {
	var buf bytes.Buffer
	svc, err := New(s.provider, apps.NewRegistry(map[string]string{testAppKey: testAppSecret}), s.users,
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
	)
	s.Require().NoError(err)

	gomock.InOrder(
		s.expectToken(),
		s.provider.EXPECT().ResolveProfileByUserID(gomock.Any(), testAppKey, testToken, "manager4921").
			Return(&models.ExternalProfile{UserID: "manager4921", UnionID: "u1"}, nil),
		s.users.EXPECT().LoadUser(gomock.Any(), gomock.Any()).
			Return(&models.LocalUser{Name: "zhangsan"}, nil),
	)

	_, err = svc.Authenticate(s.ctx, models.Credential{UserID: "manager4921", AppKey: testAppKey}, testDetails)
	s.Require().NoError(err)

	out := buf.String()
	s.Contains(out, "dingtalk_login_succeeded")
	s.Contains(out, privacy.HashIdentifier("manager4921"))
	s.Contains(out, privacy.AnonymizeIP(testDetails.ClientIP))
	s.NotContains(out, "manager4921")
	s.NotContains(out, testDetails.ClientIP)
}

func (s *ServiceSuite) TestAuditOnFailure() {
	store := audit.NewInMemoryStore(10)
	svc := s.auditedService(audit.NewPublisher(store))

	s.expectToken()
	s.provider.EXPECT().ResolveByCode(gomock.Any(), "bad", testAppKey, testAppSecret).
		Return(nil, upstreamErr{code: 40078, msg: "tmp auth code invalid"})

	_, err := svc.Authenticate(s.ctx, models.Credential{TmpAuthCode: "bad", AppKey: testAppKey}, testDetails)
	s.Require().ErrorIs(err, ErrProviderRejected)

	events := store.List()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionLoginFailed, events[0].Action)
	s.Equal(string(KindProviderRejected), events[0].Kind)
	s.Equal(40078, events[0].UpstreamCode)
	s.Empty(events[0].Username)
}

func (s *ServiceSuite) TestAuditSinkFailureDoesNotFailLogin() {
	auditor := mocks.NewMockAuditEmitter(s.ctrl)
	svc := s.auditedService(auditor)

	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("kafka down"))

	_, err := svc.Authenticate(s.ctx, models.Credential{AppKey: testAppKey}, testDetails)
	s.ErrorIs(err, ErrCredentialMissing)
}
