package shared

import "context"

// Principal identifies the authenticated staff member performing an operation.
type Principal struct {
	ID    string
	Email string
	Name  string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the staff principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the staff principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
