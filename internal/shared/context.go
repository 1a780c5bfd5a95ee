package shared

import "context"

// Principal describes the authenticated actor as resolved by the
// authentication middleware. Authorization gates only ever read Role and ID.
type Principal struct {
	ID        string
	Role      string
	SessionID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. Returns nil when
// the request was never authenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
