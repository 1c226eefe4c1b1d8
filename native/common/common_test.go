package common

import (
	"errors"
	"fmt"
	"testing"
)

type roleSet map[string]map[[20]byte]bool

func (r roleSet) HasRole(role string, addr []byte) bool {
	var key [20]byte
	copy(key[:], addr)
	return r[role][key]
}

type pauses map[string]bool

func (p pauses) IsPaused(module string) bool { return p[module] }

func TestAuthorityRoles(t *testing.T) {
	alice := [20]byte{1}
	oracle := [20]byte{2}
	roles := roleSet{RoleOracle: {oracle: true}}

	auth := NewAuthority(alice, [20]byte{})
	if len(auth.Signers()) != 1 {
		t.Fatalf("zero signer should be dropped")
	}
	if err := auth.Require(alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := auth.Require(oracle); !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := auth.RequireRole(roles, RoleOracle); !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := NewAuthority(oracle).RequireRole(roles, RoleOracle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewAuthority(oracle).RequireSelfOrRole(alice, roles, RoleOperator); err == nil {
		t.Fatalf("expected failure without operator role")
	}
}

func TestGuard(t *testing.T) {
	view := pauses{ModuleSettlement: true}
	if err := Guard(view, ModuleToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Guard(view, ModuleSettlement)
	if !errors.Is(err, ErrModulePaused) || !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected paused error, got %v", err)
	}
	if err := Guard(nil, ModuleSettlement); err != nil {
		t.Fatalf("nil view should not pause: %v", err)
	}
}

func TestClassName(t *testing.T) {
	wrapped := fmt.Errorf("token: %w", fmt.Errorf("%w: overdrawn", ErrConservation))
	if got := ClassName(wrapped); got != "conservation" {
		t.Fatalf("unexpected class %q", got)
	}
	if got := ClassName(errors.New("boom")); got != "internal" {
		t.Fatalf("unexpected class %q", got)
	}
}
