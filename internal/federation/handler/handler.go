package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dingauth/internal/federation/models"
	"dingauth/pkg/platform/httputil"
	"dingauth/pkg/platform/middleware/auth"
	"dingauth/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service runs a DingTalk login.
type Service interface {
	Authenticate(ctx context.Context, cred models.Credential, details models.RequestDetails) (*models.Outcome, error)
}

// Config controls where the login endpoint lives and how credentials are read.
type Config struct {
	Enabled         bool
	Path            string
	PostOnly        bool
	CodeParameter   string
	UserIDParameter string
	AppKeyParameter string
	MaxBodyBytes    int64
	SessionPath     string
}

func (c *Config) applyDefaults() {
	if c.Path == "" {
		c.Path = "/login/dingtalk"
	}
	if c.CodeParameter == "" {
		c.CodeParameter = "loginTmpCode"
	}
	if c.UserIDParameter == "" {
		c.UserIDParameter = "userid"
	}
	if c.AppKeyParameter == "" {
		c.AppKeyParameter = "key"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.SessionPath == "" {
		c.SessionPath = "/session"
	}
}

// Handler serves the DingTalk login endpoint.
type Handler struct {
	service   Service
	cfg       Config
	logger    *slog.Logger
	success   SuccessHandler
	failure   FailureHandler
	validator auth.TokenValidator
	loginMW   []func(http.Handler) http.Handler
}

type Option func(*Handler)

func WithSuccessHandler(sh SuccessHandler) Option {
	return func(h *Handler) {
		h.success = sh
	}
}

func WithFailureHandler(fh FailureHandler) Option {
	return func(h *Handler) {
		h.failure = fh
	}
}

// WithSessionValidator exposes GET {SessionPath} for holders of a session token.
func WithSessionValidator(v auth.TokenValidator) Option {
	return func(h *Handler) {
		h.validator = v
	}
}

// WithLoginMiddleware wraps only the login route, e.g. with a rate limiter.
func WithLoginMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.loginMW = append(h.loginMW, mw...)
	}
}

// New creates a login handler. Without WithSuccessHandler the outcome is
// rendered without a session token.
func New(svc Service, cfg Config, logger *slog.Logger, opts ...Option) *Handler {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		service: svc,
		cfg:     cfg,
		logger:  logger,
		failure: JSONFailureHandler{},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.success == nil {
		h.success = outcomeSuccessHandler{}
	}
	return h
}

// Register mounts the login routes. Nothing is mounted when the handler is
// disabled.
func (h *Handler) Register(r chi.Router) {
	if !h.cfg.Enabled {
		return
	}
	r.With(h.loginMW...).HandleFunc(h.cfg.Path, h.HandleLogin)
	if h.validator != nil {
		r.With(auth.RequireSession(h.validator, h.logger)).Get(h.cfg.SessionPath, h.HandleSession)
	}
}

// HandleLogin extracts the credential, runs the login and hands the result
// to the success or failure handler.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if h.cfg.PostOnly && r.Method != http.MethodPost {
		h.logger.WarnContext(ctx, "login method not supported",
			"method", r.Method,
			"request_id", requestID,
		)
		w.Header().Set("Allow", http.MethodPost)
		httputil.WriteError(w, errMethodNotAllowed)
		return
	}

	req, err := h.extractLogin(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid login request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Authenticate(ctx, req.Credential(), requestDetails(r))
	if err != nil {
		h.failure.OnFailure(w, r, err)
		return
	}
	h.success.OnSuccess(w, r, outcome)
}

// HandleSession returns the claims of the caller's session token.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claims)
}

// outcomeSuccessHandler renders the principal without issuing a token.
type outcomeSuccessHandler struct{}

func (outcomeSuccessHandler) OnSuccess(w http.ResponseWriter, _ *http.Request, outcome *models.Outcome) {
	res := &models.LoginResponse{
		Username:    outcome.Principal.Username,
		Alias:       outcome.Principal.Alias,
		Authorities: outcome.Principal.Authorities,
		Roles:       outcome.Principal.Roles,
	}
	if outcome.Identity != nil {
		res.UserID = outcome.Identity.UserID
		res.UnionID = outcome.Identity.UnionID
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
