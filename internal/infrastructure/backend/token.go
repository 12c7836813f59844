package backend

import (
	"context"

	"golang.org/x/oauth2"
)

type tokenKey struct{}

// WithToken returns a context carrying the operator's bearer token for
// backend calls made on its behalf.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the operator token set by WithToken.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// NewStaticTokenSource wraps a configured service token. It returns nil when
// no token is configured.
func NewStaticTokenSource(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}
