package state

import (
	"fmt"

	"treasurechain/core/types"
)

// GetAccount returns the account record of addr. The boolean reports whether
// the account has been opened.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, bool, error) {
	account := new(types.Account)
	ok, err := m.KVGet(AccountKey(addr), account)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &types.Account{}, false, nil
	}
	return account, true, nil
}

// PutAccount persists the account record of addr.
func (m *Manager) PutAccount(addr [20]byte, account *types.Account) error {
	if addr == ([20]byte{}) {
		return fmt.Errorf("address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("nil account")
	}
	return m.KVPut(AccountKey(addr), account)
}

// OpenAccount registers addr when it is unknown and returns its record.
func (m *Manager) OpenAccount(addr [20]byte, now uint64) (*types.Account, error) {
	account, ok, err := m.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if ok {
		return account, nil
	}
	account = &types.Account{CreatedAt: now}
	if err := m.PutAccount(addr, account); err != nil {
		return nil, err
	}
	return account, nil
}

// AccountExists reports whether addr has been opened.
func (m *Manager) AccountExists(addr [20]byte) (bool, error) {
	_, ok, err := m.GetAccount(addr)
	return ok, err
}
