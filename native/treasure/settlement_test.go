package treasure

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
)

// escrowed sets the stored escrow and funds the contract with extra base
// currency for payouts beyond the escrow.
func (f *fixture) escrowed(key uint64, escrow, extra int64) {
	f.state.treasures[key].PreChestTransfer = types.NewAsset(escrow, base)
	f.ledger.credit(contract, types.NewAsset(escrow+extra, base))
}

func (f *fixture) settle(key uint64, turnover int64) (*SettleOutcome, error) {
	return f.engine.Settle(common.NewAuthority(oracle), SettleRequest{
		TreasureKey:   key,
		Secret:        "enc:rotated",
		TotalTurnover: types.NewAsset(turnover, base),
		Finder:        finder,
	})
}

func TestSettlePaysFinderAndCreator(t *testing.T) {
	f := newFixture()
	buf := &events.Buffer{}
	f.engine.SetEmitter(buf)
	key := f.addTreasure()
	f.escrowed(key, 100, 200)

	out, err := f.settle(key, 50)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got := f.ledger.amount(finder, base.Code); got != 50 {
		t.Fatalf("finder payout %d", got)
	}
	if got := f.ledger.amount(owner, base.Code); got != 50 {
		t.Fatalf("creator payout %d", got)
	}
	if got := f.ledger.amount(payout, base.Code); got != 5 {
		t.Fatalf("payout share %d", got)
	}
	if got := f.ledger.amount(contract, base.Code); got != 195 {
		t.Fatalf("contract balance %d", got)
	}
	if out.PayoutShare.Amount.Int64() != 5 || out.Delta.Amount.Int64() != 50 || out.EscrowCleared.Amount.Int64() != 100 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	tr, _ := f.engine.Treasure(key)
	if !tr.PreChestTransfer.IsZero() {
		t.Fatalf("escrow must be cleared, got %s", tr.PreChestTransfer)
	}
	if tr.TotalTurnover.Amount.Int64() != 50 || tr.Secret != "enc:rotated" {
		t.Fatalf("treasure not updated: %+v", tr)
	}

	results, err := f.engine.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	result := results[0]
	if result.Finder != finder || result.Creator != owner || result.Payout.Amount.Int64() != 50 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := uuid.Parse(result.ID); err != nil {
		t.Fatalf("result id should be a uuid: %v", err)
	}

	// Participation bonus to both, solve bonus to the finder and the
	// lowest tier to the creator since the reward pool is empty.
	if got := f.ledger.issued[finder].Int64(); got != 110_000 {
		t.Fatalf("finder rewards %d", got)
	}
	if got := f.ledger.issued[owner].Int64(); got != 110_000 {
		t.Fatalf("creator rewards %d", got)
	}
	if out.BonusFromPool {
		t.Fatalf("empty pool must fall back to tiers")
	}

	var settled bool
	for _, evt := range buf.Events() {
		if evt.EventType() == EventTypeTreasureSettled {
			settled = true
		}
	}
	if !settled {
		t.Fatalf("expected settled event")
	}
}

func TestSettleWithoutDeltaOnlyClearsEscrow(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.escrowed(key, 100, 0)

	out, err := f.settle(key, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.Result != nil {
		t.Fatalf("no result expected without turnover")
	}
	if got := f.ledger.amount(payout, base.Code); got != 5 {
		t.Fatalf("payout share %d", got)
	}
	if got := f.ledger.amount(finder, base.Code); got != 0 {
		t.Fatalf("finder must not be paid, got %d", got)
	}
	tr, _ := f.engine.Treasure(key)
	if !tr.PreChestTransfer.IsZero() {
		t.Fatalf("escrow must be cleared")
	}
}

func TestSettleRejectsRegressedTurnover(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.state.treasures[key].TotalTurnover = types.NewAsset(100, base)
	f.escrowed(key, 100, 0)

	_, err := f.settle(key, 50)
	if !errors.Is(err, ErrTurnoverRegressed) || !errors.Is(err, common.ErrStateConflict) {
		t.Fatalf("expected regressed turnover, got %v", err)
	}
	tr, _ := f.engine.Treasure(key)
	if tr.PreChestTransfer.Amount.Int64() != 100 {
		t.Fatalf("rejected settlement must not touch the escrow")
	}
}

func TestSettleAuthorizationAndInput(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()

	_, err := f.engine.Settle(common.NewAuthority(operator), SettleRequest{
		TreasureKey: key, TotalTurnover: types.ZeroAsset(base), Finder: finder,
	})
	if !errors.Is(err, common.ErrAuthorization) {
		t.Fatalf("operator is not the oracle, got %v", err)
	}
	_, err = f.engine.Settle(common.NewAuthority(oracle), SettleRequest{
		TreasureKey: key, TotalTurnover: types.ZeroAsset(base), Finder: [20]byte{0x99},
	})
	if !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected unknown finder, got %v", err)
	}
	_, err = f.engine.Settle(common.NewAuthority(oracle), SettleRequest{
		TreasureKey: key, TotalTurnover: types.ZeroAsset(reward), Finder: finder,
	})
	if !errors.Is(err, ErrWrongCurrency) {
		t.Fatalf("expected wrong currency, got %v", err)
	}
	_, err = f.engine.Settle(common.NewAuthority(oracle), SettleRequest{
		TreasureKey: 404, TotalTurnover: types.ZeroAsset(base), Finder: finder,
	})
	if !errors.Is(err, ErrTreasureNotFound) {
		t.Fatalf("expected treasure not found, got %v", err)
	}
	f.engine.SetPauses(pauseAll{})
	if _, err := f.settle(key, 0); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("expected paused, got %v", err)
	}
}

func TestRankingPointNeverDropsBelowStored(t *testing.T) {
	f := newFixture()
	inactive := f.addTreasure()
	out, err := f.settle(inactive, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.RankingPoint != 0 {
		t.Fatalf("inactive treasure should stay unranked, got %d", out.RankingPoint)
	}

	key := f.addTreasure()
	f.state.treasures[key].RankingPoint = 50
	out, err = f.settle(key, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.RankingPoint != 50 {
		t.Fatalf("ranking point dropped to %d", out.RankingPoint)
	}

	// 1000 EOS at 2.76 USD is 2760 USD, about 565 points.
	f.ledger.credit(contract, types.NewAsset(20_000_000, base))
	out, err = f.settle(key, 10_000_000)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.RankingPoint < 560 || out.RankingPoint > 570 {
		t.Fatalf("unexpected ranking point %d", out.RankingPoint)
	}
	tr, _ := f.engine.Treasure(key)
	if tr.RankingPoint != out.RankingPoint {
		t.Fatalf("ranking point not stored")
	}
}

func TestCreatorBonusFromPool(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.state.treasures[key].RankingPoint = 1
	f.ledger.credit(contract, types.NewAsset(100, base))
	f.ledger.credit(contract, wholeTokens(10_000, reward))
	f.ledger.credit(contract, types.NewAsset(1_000, reward))

	out, err := f.settle(key, 50)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !out.BonusFromPool {
		t.Fatalf("expected pool payment, got tier %s", out.CreatorBonus)
	}
	// usd(50) = 138 units; 138^1.2 is about 369.
	if got := out.CreatorBonus.Amount.Int64(); got < 360 || got > 380 {
		t.Fatalf("unexpected creator bonus %d", got)
	}
	if got := f.ledger.amount(owner, reward.Code); got != out.CreatorBonus.Amount.Int64() {
		t.Fatalf("owner reward balance %d", got)
	}
	if f.ledger.issued[owner] != nil {
		t.Fatalf("pool payment must not mint")
	}
}

func TestCreatorBonusTierFallback(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.state.treasures[key].RankingPoint = 200
	f.ledger.credit(contract, types.NewAsset(100, base))

	out, err := f.settle(key, 50)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.BonusFromPool {
		t.Fatalf("pool is below its buffer")
	}
	if out.CreatorBonus.Amount.Cmp(wholeTokens(100, reward).Amount) != 0 {
		t.Fatalf("expected mid tier bonus, got %s", out.CreatorBonus)
	}
}

func TestLotteryActivatesAndSolveConsumesAward(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	first := f.addPaidAward(key, 200, 20)
	second := f.addPaidAward(key, 300, 30)
	f.engine.SetRandomSource(fixedRandom{v: 0})
	f.engine.SetTxHash([]byte{0xab})
	f.escrowed(key, 100, 0)

	out, err := f.settle(key, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !out.AwardActivated {
		t.Fatalf("award should be activated")
	}
	tr, _ := f.engine.Treasure(key)
	if tr.Award == nil || !tr.Award.Active || tr.Award.QueueKey != first {
		t.Fatalf("unexpected linked award %+v", tr.Award)
	}

	f.ledger.credit(contract, types.NewAsset(100, base))
	out, err = f.settle(key, 50)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !out.AwardConsumed {
		t.Fatalf("active award should be consumed by the solve")
	}
	tr, _ = f.engine.Treasure(key)
	if tr.Award == nil || tr.Award.QueueKey != second || tr.Award.Active {
		t.Fatalf("next queued award should be linked inactive, got %+v", tr.Award)
	}
}

func TestLotteryMissKeepsAwardInactive(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.addPaidAward(key, 200, 20)
	f.engine.SetRandomSource(fixedRandom{v: int64(99) << 32})
	f.escrowed(key, 100, 0)

	out, err := f.settle(key, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.AwardActivated || out.AwardConsumed || out.AwardLapsed {
		t.Fatalf("award should neither activate nor be consumed: %+v", out)
	}
	tr, _ := f.engine.Treasure(key)
	if tr.Award == nil || tr.Award.Active {
		t.Fatalf("inactive award must stay linked")
	}
}

func TestSolveRetiresInactiveAwardAndLinksNext(t *testing.T) {
	f := newFixture()
	buf := &events.Buffer{}
	f.engine.SetEmitter(buf)
	key := f.addTreasure()
	first := f.addPaidAward(key, 200, 20)
	second := f.addPaidAward(key, 300, 30)
	f.engine.SetRandomSource(fixedRandom{v: int64(99) << 32})
	f.ledger.credit(contract, types.NewAsset(100, base))

	out, err := f.settle(key, 50)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if out.Result == nil {
		t.Fatalf("solve should append a result")
	}
	if out.AwardConsumed || !out.AwardLapsed {
		t.Fatalf("inactive award should lapse, got %+v", out)
	}
	tr, _ := f.engine.Treasure(key)
	if tr.Award == nil || tr.Award.QueueKey != second || tr.Award.Active {
		t.Fatalf("next paid award should be linked inactive, got %+v", tr.Award)
	}
	if _, err := f.engine.Award(first); !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("lapsed award must not return to the queue, got %v", err)
	}
	queue, err := f.engine.Queue(key)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 0 {
		t.Fatalf("queue should be empty, got %d entries", len(queue))
	}

	var lapsed bool
	for _, evt := range buf.Events() {
		if evt.EventType() == EventTypeAwardLapsed {
			lapsed = true
		}
	}
	if !lapsed {
		t.Fatalf("expected lapsed event")
	}
}

func TestLotteryOddsOfOneAlwaysActivate(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.addPaidAward(key, 200, 20)
	f.params.uints[params.KeySponsorOdds] = 1
	f.engine.SetRandomSource(fixedRandom{v: int64(99) << 32})
	f.escrowed(key, 100, 0)

	out, err := f.settle(key, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !out.AwardActivated {
		t.Fatalf("odds of one must always activate")
	}
}
