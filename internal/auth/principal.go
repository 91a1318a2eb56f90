// Package auth carries the authenticated caller through a request context.
package auth

import (
	"context"

	"storefront/internal/apperror"
)

const (
	RoleAdmin  = "ROLE_ADMIN"
	RoleClient = "ROLE_CLIENT"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   int64
	Username string
	Roles    []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Require returns the principal when it holds at least one of roles. With no
// roles given any authenticated caller passes.
func Require(ctx context.Context, roles ...string) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if len(roles) == 0 {
		return p, nil
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return p, nil
		}
	}
	return nil, apperror.Forbidden("Access denied")
}
