package state

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/holiman/uint256"

	"treasurechain/core/types"
	"treasurechain/native/token"
)

type tokenRecord struct {
	Code      string
	Precision uint8
	Supply    *big.Int
	MaxSupply *big.Int
	Issuer    [20]byte
}

// TokenStatsGet loads the stats record of a token code.
func (m *Manager) TokenStatsGet(code string) (*token.Stats, bool, error) {
	var rec tokenRecord
	ok, err := m.KVGet(TokenStatsKey(code), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	stats := &token.Stats{
		Symbol:    types.Symbol{Code: rec.Code, Precision: rec.Precision},
		Supply:    nonNil(rec.Supply),
		MaxSupply: nonNil(rec.MaxSupply),
		Issuer:    rec.Issuer,
	}
	return stats, true, nil
}

// TokenStatsPut stores the stats record and indexes the token code.
func (m *Manager) TokenStatsPut(stats *token.Stats) error {
	if stats == nil {
		return fmt.Errorf("nil token stats")
	}
	rec := tokenRecord{
		Code:      stats.Symbol.Code,
		Precision: stats.Symbol.Precision,
		Supply:    nonNil(stats.Supply),
		MaxSupply: nonNil(stats.MaxSupply),
		Issuer:    stats.Issuer,
	}
	if rec.Supply.Sign() < 0 || rec.MaxSupply.Sign() < 0 {
		return fmt.Errorf("token %s: negative supply", rec.Code)
	}
	if err := m.KVPut(TokenStatsKey(rec.Code), rec); err != nil {
		return err
	}
	return m.KVAppend(TokenListKey(), []byte(rec.Code))
}

// TokenList returns every created token code in sorted order.
func (m *Manager) TokenList() ([]string, error) {
	var list [][]byte
	if err := m.KVGetList(TokenListKey(), &list); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, code := range list {
		out = append(out, string(code))
	}
	sort.Strings(out)
	return out, nil
}

// TokenBalanceGet returns the balance of owner in code.
func (m *Manager) TokenBalanceGet(owner [20]byte, code string) (*big.Int, bool, error) {
	bal := new(uint256.Int)
	ok, err := m.KVGet(TokenBalanceKey(owner, code), bal)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return big.NewInt(0), false, nil
	}
	return bal.ToBig(), true, nil
}

// TokenBalancePut stores a balance. A zero balance removes the row.
func (m *Manager) TokenBalancePut(owner [20]byte, code string, amount *big.Int) error {
	amount = nonNil(amount)
	if amount.Sign() < 0 {
		return fmt.Errorf("negative balance not allowed")
	}
	if amount.Sign() == 0 {
		return m.KVDelete(TokenBalanceKey(owner, code))
	}
	bal, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("balance overflow")
	}
	return m.KVPut(TokenBalanceKey(owner, code), bal)
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
