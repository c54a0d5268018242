// Package identity models who is calling and what they may do.
package identity

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleMember     Role = "member"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type Capability string

const (
	CanTransact        Capability = "transact"
	CanConfirmKYC      Capability = "confirm_kyc"
	CanApproveLoans    Capability = "approve_loans"
	CanDisburseLoans   Capability = "disburse_loans"
	CanPostAdjustments Capability = "post_adjustments"
	CanViewAudit       Capability = "view_audit"
)

var staffGrants = map[Capability]bool{
	CanTransact:     true,
	CanConfirmKYC:   true,
	CanApproveLoans: true,
}

var adminGrants = map[Capability]bool{
	CanTransact:        true,
	CanConfirmKYC:      true,
	CanApproveLoans:    true,
	CanDisburseLoans:   true,
	CanPostAdjustments: true,
	CanViewAudit:       true,
}

var grants = map[Role]map[Capability]bool{
	RoleMember:     {CanTransact: true},
	RoleStaff:      staffGrants,
	RoleAdmin:      adminGrants,
	RoleSuperAdmin: adminGrants,
}

type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) Can(c Capability) bool { return grants[i.Role][c] }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
