package auth

import "context"

type principalCtxKey struct{}

// Principal is the identity derived from a verified id token
type Principal struct {
	SubjectID string
	Email     string
	Claims    map[string]interface{}
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal stored by the auth middleware, if any
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
