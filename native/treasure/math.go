package treasure

import (
	"math"
	"math/big"

	"treasurechain/core/types"
	"treasurechain/native/params"
)

const (
	rankingTurnoverExponent = 0.8
	rankingViewsExponent    = 0.3
	creatorBonusExponent    = 1.2
	bpsDenominator          = 10_000
)

func pow10(p uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p)), nil)
}

// rescale converts an amount between decimal precisions, truncating.
func rescale(amount *big.Int, from, to uint8) *big.Int {
	out := new(big.Int).Set(amount)
	switch {
	case to > from:
		out.Mul(out, pow10(to-from))
	case from > to:
		out.Quo(out, pow10(from-to))
	}
	return out
}

// priceInUSD values a base currency amount at the supplied price feed.
func priceInUSD(amount types.Asset, eosusd types.Asset) types.Asset {
	usd := new(big.Int).Mul(amount.Amount, eosusd.Amount)
	usd.Quo(usd, pow10(amount.Symbol.Precision))
	return types.Asset{Amount: rescale(usd, eosusd.Symbol.Precision, params.USDSymbol().Precision), Symbol: params.USDSymbol()}
}

// baseFromUSD converts a USD price into base currency at the price feed.
func baseFromUSD(usd types.Asset, eosusd types.Asset, base types.Symbol) (types.Asset, error) {
	if eosusd.Amount == nil || eosusd.Amount.Sign() <= 0 {
		return types.Asset{}, ErrPriceFeedMissing
	}
	out := new(big.Int).Mul(usd.Amount, pow10(base.Precision))
	out.Mul(out, pow10(eosusd.Symbol.Precision))
	out.Quo(out, pow10(usd.Symbol.Precision))
	out.Quo(out, eosusd.Amount)
	return types.Asset{Amount: out, Symbol: base}, nil
}

// usdToReward converts a USD value into the same number of reward tokens.
func usdToReward(usd types.Asset, reward types.Symbol) types.Asset {
	return types.Asset{Amount: rescale(usd.Amount, usd.Symbol.Precision, reward.Precision), Symbol: reward}
}

// wholeTokens returns n whole units of sym.
func wholeTokens(n uint32, sym types.Symbol) types.Asset {
	amount := new(big.Int).Mul(big.NewInt(int64(n)), pow10(sym.Precision))
	return types.Asset{Amount: amount, Symbol: sym}
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

func floorToUint(f float64) uint64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Floor(f))
}

// rankingPoints scores a treasure from its USD turnover and video views:
// floor(dollars^0.8), multiplied by views^0.3 when views are known.
func rankingPoints(turnoverUSD types.Asset, views uint64) uint64 {
	dollars := new(big.Int).Quo(turnoverUSD.Amount, pow10(turnoverUSD.Symbol.Precision))
	rp := floorToUint(math.Pow(toFloat(dollars), rankingTurnoverExponent))
	if views > 0 {
		rp = floorToUint(float64(rp) * math.Pow(float64(views), rankingViewsExponent))
	}
	return rp
}

// creatorBonus computes usd(delta)^1.2 * rp in reward units, clamped to cap.
func creatorBonus(deltaUSD types.Asset, rp uint64, capAmount types.Asset) types.Asset {
	raw := math.Pow(toFloat(deltaUSD.Amount), creatorBonusExponent) * float64(rp)
	capF := toFloat(capAmount.Amount)
	if math.IsNaN(raw) || raw <= 0 {
		return types.ZeroAsset(capAmount.Symbol)
	}
	if raw >= capF {
		return capAmount.Clone()
	}
	return types.Asset{Amount: new(big.Int).SetUint64(floorToUint(raw)), Symbol: capAmount.Symbol}
}

// tier selects the fallback creator bonus by ranking point thresholds.
func tier(rp uint64, high, mid, low uint32, sym types.Symbol) types.Asset {
	switch {
	case rp > 1000:
		return wholeTokens(high, sym)
	case rp > 100:
		return wholeTokens(mid, sym)
	default:
		return wholeTokens(low, sym)
	}
}
