package treasure

import (
	"errors"
	"testing"

	"treasurechain/core/types"
	"treasurechain/native/params"
)

var eosusd = types.NewAsset(27_600, params.USDSymbol())

func TestPriceInUSD(t *testing.T) {
	got := priceInUSD(types.NewAsset(10_000, base), eosusd)
	if got.Symbol != params.USDSymbol() || got.Amount.Int64() != 27_600 {
		t.Fatalf("1 EOS should be worth 2.7600 USD, got %s", got)
	}
	got = priceInUSD(types.NewAsset(50, base), eosusd)
	if got.Amount.Int64() != 138 {
		t.Fatalf("unexpected usd value %s", got)
	}
}

func TestBaseFromUSD(t *testing.T) {
	got, err := baseFromUSD(types.NewAsset(20_000, params.USDSymbol()), eosusd, base)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Symbol != base || got.Amount.Int64() != 7_246 {
		t.Fatalf("unexpected base price %s", got)
	}
	if _, err := baseFromUSD(types.NewAsset(20_000, params.USDSymbol()), types.ZeroAsset(params.USDSymbol()), base); !errors.Is(err, ErrPriceFeedMissing) {
		t.Fatalf("expected missing price feed, got %v", err)
	}
}

func TestUSDToReward(t *testing.T) {
	got := usdToReward(types.NewAsset(60_720, params.USDSymbol()), types.NewSymbol("BLKBILL", 6))
	if got.Amount.Int64() != 6_072_000 || got.Symbol.Code != "BLKBILL" {
		t.Fatalf("unexpected reward %s", got)
	}
}

func TestRankingPoints(t *testing.T) {
	usd := params.USDSymbol()
	if rp := rankingPoints(types.NewAsset(9_999, usd), 0); rp != 0 {
		t.Fatalf("below one dollar should score 0, got %d", rp)
	}
	if rp := rankingPoints(types.NewAsset(10_000, usd), 0); rp != 1 {
		t.Fatalf("one dollar should score 1, got %d", rp)
	}
	if rp := rankingPoints(types.NewAsset(10_000, usd), 1); rp != 1 {
		t.Fatalf("a single view keeps the score, got %d", rp)
	}
	plain := rankingPoints(types.NewAsset(1_000_000, usd), 0)
	viewed := rankingPoints(types.NewAsset(1_000_000, usd), 1_000)
	if plain < 39 || plain > 40 {
		t.Fatalf("100 dollars should score about 39.8, got %d", plain)
	}
	if viewed <= plain*7 {
		t.Fatalf("views should multiply the score by about 7.9, got %d vs %d", viewed, plain)
	}
}

func TestCreatorBonusCap(t *testing.T) {
	capAmount := wholeTokens(10_000, reward)
	got := creatorBonus(types.NewAsset(1_000_000_000, params.USDSymbol()), 1_000, capAmount)
	if got.Amount.Cmp(capAmount.Amount) != 0 {
		t.Fatalf("bonus should be capped, got %s", got)
	}
	if got := creatorBonus(types.NewAsset(1_000, params.USDSymbol()), 0, capAmount); !got.IsZero() {
		t.Fatalf("zero ranking yields no bonus, got %s", got)
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		rp   uint64
		want uint32
	}{
		{0, 10},
		{100, 10},
		{101, 100},
		{1_000, 100},
		{1_001, 1_000},
	}
	for _, tc := range cases {
		got := tier(tc.rp, 1_000, 100, 10, reward)
		if got.Amount.Cmp(wholeTokens(tc.want, reward).Amount) != 0 {
			t.Fatalf("rp %d: want %d tokens, got %s", tc.rp, tc.want, got)
		}
	}
}
