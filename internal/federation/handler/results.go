package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
	dErrors "dingauth/pkg/domain-errors"
	"dingauth/pkg/platform/httputil"
	"dingauth/pkg/requestcontext"
)

// SuccessHandler renders a successful login.
type SuccessHandler interface {
	OnSuccess(w http.ResponseWriter, r *http.Request, outcome *models.Outcome)
}

// FailureHandler renders a failed login. err is a *service.Error for
// failures raised by the exchange or the mapping.
type FailureHandler interface {
	OnFailure(w http.ResponseWriter, r *http.Request, err error)
}

// TokenIssuer signs the session token handed out on success.
type TokenIssuer interface {
	GenerateSessionToken(ctx context.Context, outcome *models.Outcome) (string, error)
	TTL() time.Duration
}

// TokenSuccessHandler issues a session token and renders models.LoginResponse.
type TokenSuccessHandler struct {
	issuer  TokenIssuer
	failure FailureHandler
	logger  *slog.Logger
}

func NewTokenSuccessHandler(issuer TokenIssuer, failure FailureHandler, logger *slog.Logger) *TokenSuccessHandler {
	return &TokenSuccessHandler{issuer: issuer, failure: failure, logger: logger}
}

func (h *TokenSuccessHandler) OnSuccess(w http.ResponseWriter, r *http.Request, outcome *models.Outcome) {
	ctx := r.Context()
	token, err := h.issuer.GenerateSessionToken(ctx, outcome)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session token",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		h.failure.OnFailure(w, r, err)
		return
	}

	principal := outcome.Principal
	res := &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.issuer.TTL().Seconds()),
		Username:    principal.Username,
		Alias:       principal.Alias,
		Authorities: principal.Authorities,
		Roles:       principal.Roles,
	}
	if outcome.Identity != nil {
		res.UserID = outcome.Identity.UserID
		res.UnionID = outcome.Identity.UnionID
	}
	if res.Authorities == nil {
		res.Authorities = []string{}
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, res)
}

// JSONFailureHandler renders failures as httputil.ErrorResponse.
type JSONFailureHandler struct{}

func (JSONFailureHandler) OnFailure(w http.ResponseWriter, _ *http.Request, err error) {
	e, ok := service.AsError(err)
	if !ok {
		httputil.WriteError(w, err)
		return
	}

	res := httputil.ErrorResponse{
		Error:       string(e.Kind),
		Description: failureDescription(e),
		Reason:      string(e.Reason),
		UpstreamErr: e.UpstreamCode,
	}
	httputil.WriteJSON(w, StatusForKind(e.Kind), res)
}

// StatusForKind maps a failure kind to its HTTP status.
func StatusForKind(kind service.Kind) int {
	switch kind {
	case service.KindCredentialMissing, service.KindUnknownApp:
		return http.StatusBadRequest
	case service.KindUserNotFound, service.KindAccountStatus, service.KindIdentityUnresolved:
		return http.StatusUnauthorized
	case service.KindProviderRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failureDescription hides store internals behind lookup_failed.
func failureDescription(e *service.Error) string {
	if e.Kind == service.KindLookupFailed {
		return "local user lookup failed"
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

var errMethodNotAllowed = dErrors.New(dErrors.CodeMethodNotAllow, "authentication method not supported")
