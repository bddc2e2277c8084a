package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func remoteAddrSeenBy(t *testing.T, trusted []string, remoteAddr string, headers map[string]string) string {
	t.Helper()
	var seen string
	h := TrustedRealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted client cannot spoof",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.9:4444",
			headers:    map[string]string{"X-Real-IP": "1.1.1.1"},
			want:       "203.0.113.9:4444",
		},
		{
			name:       "trusted proxy real ip honored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4444",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "trusted proxy forwarded-for first hop",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4444",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.1.2.3"},
			want:       "198.51.100.7",
		},
		{
			name:       "bare ip entry treated as /32",
			trusted:    []string{"10.1.2.3"},
			remoteAddr: "10.1.2.3:4444",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "no trusted proxies configured",
			trusted:    nil,
			remoteAddr: "10.1.2.3:4444",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "10.1.2.3:4444",
		},
		{
			name:       "garbage header ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4444",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:4444",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remoteAddrSeenBy(t, tt.trusted, tt.remoteAddr, tt.headers); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}
