// Package metadata records who is calling: the client address after proxy
// headers are resolved, and the User-Agent.
package metadata

import (
	"context"
	"net"
	"net/http"
)

// Client describes the caller of one request.
type Client struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

// ClientMetadata must run after chimw.RealIP, which folds X-Forwarded-For
// and X-Real-IP into RemoteAddr.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Client{IP: hostOnly(r.RemoteAddr), UserAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
	})
}

func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// FromContext returns the zero Client outside an HTTP request.
func FromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

func GetClientIP(ctx context.Context) string { return FromContext(ctx).IP }

func GetUserAgent(ctx context.Context) string { return FromContext(ctx).UserAgent }

// hostOnly strips the port. RealIP leaves bare addresses, which pass through.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
