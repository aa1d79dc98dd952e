// Package auth identifies the caller of an operation and decides what it may do.
package auth

import (
	"context"
	"fmt"

	"github.com/chris/escrow-wallet/pkg/models"
)

// Role is the marketplace role a caller acts in.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
	// RoleSystem is used by background jobs and gateway callbacks.
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleFreelancer, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   Role
}

// System is the principal background jobs run as.
var System = Principal{UserID: "system", Role: RoleSystem}

// Privileged reports whether p may act on any user's behalf.
func (p Principal) Privileged() bool {
	switch p.Role {
	case RoleAdmin, RoleSystem:
		return true
	case RoleClient, RoleFreelancer:
		return false
	}
	return false
}

// CanActFor reports whether p may operate on userID's wallet.
func (p Principal) CanActFor(userID string) bool {
	return p.Privileged() || (p.UserID != "" && p.UserID == userID)
}

// RequireActFor returns ErrUnauthorized unless p may act for userID.
func (p Principal) RequireActFor(userID string) error {
	if !p.CanActFor(userID) {
		return fmt.Errorf("%w: %s cannot act for %s", models.ErrUnauthorized, p.UserID, userID)
	}
	return nil
}

// RequireAdmin returns ErrUnauthorized unless p is an admin or the system.
func (p Principal) RequireAdmin() error {
	if !p.Privileged() {
		return fmt.Errorf("%w: admin role required", models.ErrUnauthorized)
	}
	return nil
}

type (
	contextKey struct{}
	holderKey  struct{}
)

// PrincipalSetter is told about the principal once a request is
// authenticated. Request loggers sitting outside the auth middleware use it.
type PrincipalSetter interface {
	Set(p Principal)
}

// WithPrincipalHolder returns a copy of ctx whose later WithPrincipal calls
// also report to h.
func WithPrincipalHolder(ctx context.Context, h PrincipalSetter) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if h, ok := ctx.Value(holderKey{}).(PrincipalSetter); ok {
		h.Set(p)
	}
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
