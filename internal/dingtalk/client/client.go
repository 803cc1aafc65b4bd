// Package client calls the DingTalk open platform endpoints used for login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dingauth/internal/platform/privacy"
	"dingauth/internal/platform/tracer"
)

const (
	opGetToken   = "gettoken"
	opByCode     = "getuserinfo_bycode"
	opByUnionID  = "getUseridByUnionid"
	opGetUser    = "user.get"
	maxBodyBytes = 1 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to the DingTalk open platform over HTTPS.
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient HTTPDoer
	tracer     tracer.Tracer
	now        func() time.Time
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		c.httpClient = doer
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *HTTPClient) {
		c.tracer = t
	}
}

// WithClock overrides the time source used for request signatures.
func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) {
		c.now = now
	}
}

// New creates a client rooted at baseURL. Each call is bounded by timeout in
// addition to the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     tracer.NewNoop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAccessToken fetches an app access token with the app's key and secret.
func (c *HTTPClient) GetAccessToken(ctx context.Context, appKey, appSecret string) (*AccessToken, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanProviderGetToken, tracer.String(tracer.AttrAppKey, appKey))
	q := url.Values{}
	q.Set("appkey", appKey)
	q.Set("appsecret", appSecret)

	var resp tokenResponse
	err := c.do(ctx, opGetToken, http.MethodGet, "/gettoken", q, nil, &resp, nil)
	span.End(err)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, newError(ErrorBadData, opGetToken, "empty access_token", nil)
	}
	return &AccessToken{
		Value:     resp.AccessToken,
		ExpiresIn: time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

// GetUserInfoByTmpCode exchanges a one-time code from the QR scan flow. The
// request is signed with the app secret rather than an access token.
func (c *HTTPClient) GetUserInfoByTmpCode(ctx context.Context, code, appKey, appSecret string) (*UserInfo, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanProviderByCode, tracer.String(tracer.AttrAppKey, appKey))
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	q := url.Values{}
	q.Set("accessKey", appKey)
	q.Set("timestamp", timestamp)
	q.Set("signature", Sign(timestamp, appSecret))

	var resp userInfoResponse
	err := c.do(ctx, opByCode, http.MethodPost, "/sns/getuserinfo_bycode", q, codeRequest{TmpAuthCode: code}, &resp, nil)
	span.End(err)
	if err != nil {
		return nil, err
	}
	info := resp.UserInfo
	return &info, nil
}

// GetUserIDByUnionID maps a cross-app union id to the organization user id.
func (c *HTTPClient) GetUserIDByUnionID(ctx context.Context, accessToken, unionID string) (string, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanProviderByUnion)
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("unionid", unionID)

	var resp unionIDResponse
	err := c.do(ctx, opByUnionID, http.MethodGet, "/user/getUseridByUnionid", q, nil, &resp, nil)
	span.End(err)
	if err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", newError(ErrorBadData, opByUnionID, "empty userid", nil)
	}
	return resp.UserID, nil
}

// GetUser loads the organization profile for userID.
func (c *HTTPClient) GetUser(ctx context.Context, accessToken, userID string) (*User, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanProviderUserGet, tracer.String(tracer.AttrUserIDHash, privacy.HashIdentifier(userID)))
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("userid", userID)

	var (
		resp userResponse
		raw  []byte
	)
	err := c.do(ctx, opGetUser, http.MethodGet, "/user/get", q, nil, &resp, &raw)
	span.End(err)
	if err != nil {
		return nil, err
	}
	user := resp.User
	if user.UserID == "" {
		user.UserID = userID
	}
	user.Raw = json.RawMessage(raw)
	return &user, nil
}

// do executes one call and decodes the body into out. A non-zero errcode is
// returned as an ErrorRejected ProviderError. When raw is non-nil it receives
// the undecoded body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body any, out envelope, raw *[]byte) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return newError(ErrorInternal, op, "failed to marshal request", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return newError(ErrorInternal, op, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return newError(ErrorTimeout, op, "request timeout", err)
		}
		return newError(ErrorOutage, op, "failed to execute request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return newError(ErrorTimeout, op, "response timeout", err)
		}
		return newError(ErrorOutage, op, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return newError(ErrorOutage, op, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return newError(ErrorBadData, op, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return newError(ErrorBadData, op, "failed to parse response", err)
	}
	if code, msg := out.status(); code != 0 {
		return rejected(op, code, msg)
	}
	if raw != nil {
		*raw = data
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
