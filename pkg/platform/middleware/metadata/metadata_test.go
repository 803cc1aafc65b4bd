package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dingauth/pkg/requestcontext"
)

func serve(m *Middleware, req *http.Request) (ip, ua, device string) {
	m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		device = requestcontext.Device(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)
	return
}

func TestClientIP(t *testing.T) {
	trusted := NewMiddleware(&Config{TrustedProxies: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}})

	t.Run("ignores XFF from untrusted peers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		ip, _, _ := serve(trusted, req)
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("uses right-most untrusted XFF hop", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", "192.0.2.66, 198.51.100.1, 10.9.9.9")
		ip, _, _ := serve(trusted, req)
		assert.Equal(t, "198.51.100.1", ip)
	})

	t.Run("uses X-Real-IP without XFF", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Real-IP", "198.51.100.2")
		ip, _, _ := serve(trusted, req)
		assert.Equal(t, "198.51.100.2", ip)
	})

	t.Run("falls back when XFF is garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", "not-an-ip")
		ip, _, _ := serve(trusted, req)
		assert.Equal(t, "10.1.2.3", ip)
	})

	t.Run("strips IPv6 brackets", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "[::1]:8080"
		ip, _, _ := serve(NewMiddleware(nil), req)
		assert.Equal(t, "::1", ip)
	})
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", ""})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
	}, got)

	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "Unknown Device", DeviceName(""))

	chrome := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("User-Agent", chrome)
	_, ua, device := serve(NewMiddleware(nil), req)

	assert.Equal(t, chrome, ua)
	assert.Contains(t, device, "Chrome on Windows")

	ding := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 AliApp(DingTalk/7.5.0) DingTalk/7.5.0"
	assert.Contains(t, DeviceName(ding), "DingTalk on ")
}
