package auth

import "context"

// Principal is the authenticated user for a request. A nil *Principal
// means the caller is anonymous.
type Principal struct {
	UserID   uint
	Username string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
