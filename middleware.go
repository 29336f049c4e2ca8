package beacon

import (
	"context"
	"net/http"
)

type contextKey string

const contextKeyClient contextKey = "beacon_client"

// Middleware returns an HTTP middleware that makes the client available to
// handlers through FromContext and IsEnabledFromContext.
func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyClient, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFlag returns an HTTP middleware that answers 404 unless flagKey
// evaluates to true. fallback decides when the flag service is unavailable.
//
// Example:
//
//	mux.Handle("/beta", client.RequireFlag("beta-dashboard", false)(betaHandler))
func (c *Client) RequireFlag(flagKey string, fallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Evaluate(r.Context(), flagKey, fallback) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext extracts the client installed by Middleware
func FromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(contextKeyClient).(*Client)
	return c, ok
}

// IsEnabledFromContext is a convenience helper; it returns false when no
// client is installed.
func IsEnabledFromContext(ctx context.Context, flagKey string) bool {
	c, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return c.IsEnabled(ctx, flagKey)
}
