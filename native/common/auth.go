package common

import (
	"bytes"
	"fmt"
)

const (
	// RoleOperator grants the trusted-operator capability (privileged
	// maintenance actions and token creation).
	RoleOperator = "operator"
	// RoleOracle grants the right to settle treasures.
	RoleOracle = "oracle"
)

// RoleView exposes role membership checks.
type RoleView interface {
	HasRole(role string, addr []byte) bool
}

// Authority is the set of accounts that signed the current action.
type Authority struct {
	signers [][20]byte
}

// NewAuthority returns an authority carrying the supplied signers.
func NewAuthority(signers ...[20]byte) Authority {
	out := Authority{signers: make([][20]byte, 0, len(signers))}
	for _, s := range signers {
		if s == ([20]byte{}) {
			continue
		}
		out.signers = append(out.signers, s)
	}
	return out
}

// Signers returns a copy of the signing accounts.
func (a Authority) Signers() [][20]byte {
	out := make([][20]byte, len(a.signers))
	copy(out, a.signers)
	return out
}

// Has reports whether addr signed the action.
func (a Authority) Has(addr [20]byte) bool {
	for _, s := range a.signers {
		if bytes.Equal(s[:], addr[:]) {
			return true
		}
	}
	return false
}

// Require fails unless addr signed the action.
func (a Authority) Require(addr [20]byte) error {
	if !a.Has(addr) {
		return fmt.Errorf("%w: missing signature of %x", ErrAuthorization, addr)
	}
	return nil
}

// HasRole reports whether any signer holds role.
func (a Authority) HasRole(view RoleView, role string) bool {
	if view == nil {
		return false
	}
	for _, s := range a.signers {
		if view.HasRole(role, s[:]) {
			return true
		}
	}
	return false
}

// RequireRole fails unless some signer holds role.
func (a Authority) RequireRole(view RoleView, role string) error {
	if !a.HasRole(view, role) {
		return fmt.Errorf("%w: %s capability required", ErrAuthorization, role)
	}
	return nil
}

// RequireSelfOrRole accepts either a signature from addr or a signer holding
// role.
func (a Authority) RequireSelfOrRole(addr [20]byte, view RoleView, role string) error {
	if a.Has(addr) || a.HasRole(view, role) {
		return nil
	}
	return fmt.Errorf("%w: requires %x or %s", ErrAuthorization, addr, role)
}
