package state

import (
	"errors"
	"fmt"
	"math"

	"treasurechain/storage/trie"
)

// StateVersion is the schema of the records written by this binary. Bump it
// when a stored record changes shape.
const StateVersion uint32 = 1

var (
	stateVersionKey = []byte("state/version")

	ErrStateVersionMismatch = errors.New("state: schema version mismatch")
)

// SetStateVersion stamps the schema version. Genesis calls it once.
func (m *Manager) SetStateVersion(version uint32) error {
	return m.KVPut(stateVersionKey, uint64(version))
}

// StateVersion reads the stamped schema version. ok is false on states built
// before versioning existed.
func (m *Manager) StateVersion() (version uint32, ok bool, err error) {
	var stored uint64
	found, err := m.KVGet(stateVersionKey, &stored)
	if err != nil || !found {
		return 0, false, err
	}
	if stored > math.MaxUint32 {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// EnsureStateVersion refuses to resume a state written with another schema
// unless allowMigrate is set.
func EnsureStateVersion(tr *trie.Trie, allowMigrate bool) error {
	if tr == nil {
		return fmt.Errorf("state: trie must not be nil")
	}
	version, _, err := NewManager(tr).StateVersion()
	if err != nil {
		return err
	}
	if version == StateVersion || allowMigrate {
		return nil
	}
	return fmt.Errorf("%w: on-disk=%d expected=%d", ErrStateVersionMismatch, version, StateVersion)
}
