package token

import (
	"math/big"

	"treasurechain/core/types"
)

// MaxMemoBytes bounds the memo carried by issue, transfer and retire.
const MaxMemoBytes = 256

// Stats is the supply record of a token. Only the issuer may change the
// supply and it always stays within [0, MaxSupply].
type Stats struct {
	Symbol    types.Symbol
	Supply    *big.Int
	MaxSupply *big.Int
	Issuer    [20]byte
}

// Clone returns a deep copy of the stats record.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return nil
	}
	return &Stats{
		Symbol:    s.Symbol,
		Supply:    cloneInt(s.Supply),
		MaxSupply: cloneInt(s.MaxSupply),
		Issuer:    s.Issuer,
	}
}

// SupplyAsset renders the circulating supply as an asset.
func (s *Stats) SupplyAsset() types.Asset {
	return types.Asset{Amount: cloneInt(s.Supply), Symbol: s.Symbol}
}

// MaxSupplyAsset renders the maximum supply as an asset.
func (s *Stats) MaxSupplyAsset() types.Asset {
	return types.Asset{Amount: cloneInt(s.MaxSupply), Symbol: s.Symbol}
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
