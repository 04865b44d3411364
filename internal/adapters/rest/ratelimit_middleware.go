package rest

import (
	"net"
	"net/http"

	"homiio/internal/core/domain"
	"homiio/internal/core/port"
)

// RateLimitMiddleware ограничивает частоту запросов с одного IP.
// Ставится после middleware.RealIP, чтобы RemoteAddr был адресом клиента.
func RateLimitMiddleware(limiter port.RateLimiterPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow("ip:" + clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				WriteJSONError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
