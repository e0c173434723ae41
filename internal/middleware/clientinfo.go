// internal/middleware/clientinfo.go
//
// HTTP middleware that enriches each request with client metadata.
//
/*
Context
--------
This handler sits right after chi's RequestID.  For every request it:

  1. Parses the User-Agent header into a ua.Client.
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Stores the client and a request-scoped logger in request.Context.
     The logger carries request_id, ip, and path, so every line the forms
     subsystem writes for this request can be correlated.

The store action later reads the client back out of the context and saves
it next to the submission.
*/
package middleware

import (
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/formguard/internal/logger"
	"github.com/yanizio/formguard/internal/ua"
)

// ClientInfo returns middleware that attaches ua.Client and a derived
// logger.  base nil means zap.S().
func ClientInfo(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.S()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ua.Parse(r.UserAgent())

			l := base.With(
				"request_id", chimw.GetReqID(r.Context()),
				"ip", ipString(clientIP(r)),
				"path", r.URL.Path,
			)
			l.Debugw("client info", "browser", client.Browser, "device", client.Device, "bot", client.IsBot)

			ctx := ua.WithClient(r.Context(), client)
			ctx = logger.WithContext(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
