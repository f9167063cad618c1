package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.10:54321",
			want:       "203.0.113.10",
		},
		{
			name:       "forwarded single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.10"},
			want:       "203.0.113.10",
		},
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.10, 10.0.0.2, 10.0.0.1"},
			want:       "203.0.113.10",
		},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.10",
				"X-Real-Ip":       "198.51.100.7",
			},
			want: "203.0.113.10",
		},
		{
			name:       "real ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-Ip": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "unparseable remote addr passed through",
			remoteAddr: "not-an-addr",
			want:       "not-an-addr",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInjectClientIP(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClientIP(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	InjectClientIP(next).ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.10" {
		t.Errorf("client ip in context = %q, want 203.0.113.10", got)
	}
}
