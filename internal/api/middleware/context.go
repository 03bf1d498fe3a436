package middleware

import (
	"context"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

type principalKey struct{}

// WithPrincipal кладёт вызывающего в контекст
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext достаёт вызывающего, положенного Auth
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
