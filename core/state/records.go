package state

import (
	"fmt"
	"math"
	"math/big"

	"treasurechain/core/types"
)

// assetRecord is the storage form of an asset. Stored amounts are never
// negative.
type assetRecord struct {
	Amount    *big.Int
	Code      string
	Precision uint8
}

func newAssetRecord(a types.Asset) (assetRecord, error) {
	amount := big.NewInt(0)
	if a.Amount != nil {
		amount = new(big.Int).Set(a.Amount)
	}
	if amount.Sign() < 0 {
		return assetRecord{}, fmt.Errorf("state: negative %s amount not storable", a.Symbol.Code)
	}
	return assetRecord{Amount: amount, Code: a.Symbol.Code, Precision: a.Symbol.Precision}, nil
}

func (r assetRecord) asset() types.Asset {
	amount := big.NewInt(0)
	if r.Amount != nil {
		amount = new(big.Int).Set(r.Amount)
	}
	return types.Asset{Amount: amount, Symbol: types.Symbol{Code: r.Code, Precision: r.Precision}}
}

func floatBits(f float64) uint64 { return math.Float64bits(f) }

func bitsFloat(b uint64) float64 { return math.Float64frombits(b) }

func unixToUint(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}
