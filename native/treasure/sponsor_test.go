package treasure

import (
	"errors"
	"strconv"
	"testing"

	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
)

func itoa(v uint64) string { return strconv.FormatUint(v, 10) }

func lowMinimum(f *fixture) {
	f.params.assets[params.KeyMinSponsorAward] = types.NewAsset(1, base)
}

func TestAddAwardRequiresTreasure(t *testing.T) {
	f := newFixture()
	_, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner:       sponsor,
		TreasureKey: 7,
		Title:       "Award",
		ValueX2:     types.NewAsset(200, base),
		Fee:         types.NewAsset(20, base),
	})
	if !errors.Is(err, ErrTreasureNotFound) {
		t.Fatalf("expected treasure not found, got %v", err)
	}
}

func TestAddAwardRejectsForeignCurrency(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	_, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner:       sponsor,
		TreasureKey: key,
		Title:       "Award",
		ValueX2:     types.NewAsset(200, reward),
		Fee:         types.NewAsset(20, base),
	})
	if !errors.Is(err, ErrWrongCurrency) {
		t.Fatalf("expected wrong currency, got %v", err)
	}
}

func TestAddAwardRejectsUnpayableOwner(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	cases := []struct {
		name  string
		owner [20]byte
		want  error
	}{
		{"unopened account", [20]byte{0x77}, ErrUnknownAccount},
		{"contract account", contract, common.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
				Owner:       tc.owner,
				TreasureKey: key,
				Title:       "Award",
				ValueX2:     types.NewAsset(200, base),
				Fee:         types.NewAsset(20, base),
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(f.state.awards) != 0 {
				t.Fatalf("rejected award must not be queued")
			}
		})
	}
}

func TestPaidAwardLinksToTreasure(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()

	awardKey, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner:       sponsor,
		TreasureKey: key,
		Title:       "Dinner for two",
		ValueX2:     types.NewAsset(200, base),
		Fee:         types.NewAsset(20, base),
	})
	if err != nil {
		t.Fatalf("add award: %v", err)
	}
	if awardKey != 1 {
		t.Fatalf("expected award key 1, got %d", awardKey)
	}
	tr, _ := f.engine.Treasure(key)
	if tr.HasAward() {
		t.Fatalf("unpaid award must not be linked")
	}

	if err := f.deposit(sponsor, 220, MemoActivateAward+"1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	tr, _ = f.engine.Treasure(key)
	if !tr.HasAward() {
		t.Fatalf("paid award should be linked")
	}
	if tr.Award.QueueKey != awardKey || tr.Award.Title != "Dinner for two" || tr.Award.Active {
		t.Fatalf("unexpected linked award %+v", tr.Award)
	}
	if tr.Award.ValueX2.Amount.Int64() != 200 || tr.Award.Fee.Amount.Int64() != 20 {
		t.Fatalf("linked values not copied: %+v", tr.Award)
	}
	if _, err := f.engine.Award(awardKey); !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("linked award must leave the queue, got %v", err)
	}
	if got := f.ledger.amount(payout, base.Code); got != 20 {
		t.Fatalf("fee should go to payout account, got %d", got)
	}
	if got := f.ledger.amount(contract, base.Code); got != 200 {
		t.Fatalf("contract should keep value x2, got %d", got)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()
	first := f.addPaidAward(key, 200, 20)
	second := f.addPaidAward(key, 300, 30)

	for i := 0; i < 3; i++ {
		if err := f.engine.Link(key); err != nil {
			t.Fatalf("link: %v", err)
		}
	}
	tr, _ := f.engine.Treasure(key)
	if tr.Award.QueueKey != first {
		t.Fatalf("first paid award should stay linked, got %d", tr.Award.QueueKey)
	}
	queue, err := f.engine.Queue(key)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 1 || queue[0].Key != second {
		t.Fatalf("second award should stay queued, got %+v", queue)
	}
}

func TestLinkSkipsUnpaidEntries(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()
	unpaid, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner: sponsor, TreasureKey: key, Title: "Unpaid",
		ValueX2: types.NewAsset(100, base), Fee: types.NewAsset(0, base),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	paid := f.addPaidAward(key, 200, 20)

	tr, _ := f.engine.Treasure(key)
	if tr.Award == nil || tr.Award.QueueKey != paid {
		t.Fatalf("expected paid award %d linked, got %+v", paid, tr.Award)
	}
	if _, err := f.engine.Award(unpaid); err != nil {
		t.Fatalf("unpaid award should stay queued: %v", err)
	}
}

func TestActivateAwardPaymentChecks(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	awardKey, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner: sponsor, TreasureKey: key, Title: "Award",
		ValueX2: types.NewAsset(20_000, base), Fee: types.NewAsset(2_000, base),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	memo := MemoActivateAward + itoa(awardKey)

	if err := f.deposit(sponsor, 5_000, memo); !errors.Is(err, ErrBelowMinimumAward) {
		t.Fatalf("expected below minimum, got %v", err)
	}
	if err := f.deposit(sponsor, 21_000, memo); !errors.Is(err, ErrAwardCostMismatch) {
		t.Fatalf("expected cost mismatch, got %v", err)
	}
	if err := f.deposit(sponsor, 22_000, MemoActivateAward+"99"); !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("expected award not found, got %v", err)
	}
	if err := f.deposit(sponsor, 22_000, memo); err != nil {
		t.Fatalf("activate: %v", err)
	}
	// 2.2 EOS at 2.76 USD is 6.072 USD, rewarded as 6.0720 reward tokens.
	if got := f.ledger.issued[sponsor]; got == nil || got.Int64() != 60_720 {
		t.Fatalf("unexpected activation reward %v", got)
	}
}

func TestActivateAwardRejectsForeignMinimum(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	f.params.assets[params.KeyMinSponsorAward] = types.NewAsset(1, reward)
	awardKey, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner: sponsor, TreasureKey: key, Title: "Award",
		ValueX2: types.NewAsset(200, base), Fee: types.NewAsset(20, base),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.deposit(sponsor, 220, MemoActivateAward+itoa(awardKey)); !errors.Is(err, ErrWrongCurrency) {
		t.Fatalf("expected wrong currency, got %v", err)
	}
	award, err := f.engine.Award(awardKey)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if award.Paid {
		t.Fatalf("award must stay unpaid")
	}
}

func TestActivateAwardTwiceFails(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()
	awardKey, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner: sponsor, TreasureKey: key, Title: "Award",
		ValueX2: types.NewAsset(200, base), Fee: types.NewAsset(20, base),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// An occupied link slot keeps the paid award in the queue.
	f.state.treasures[key].Award = &LinkedAward{QueueKey: 999, ValueX2: types.NewAsset(1, base), Fee: types.ZeroAsset(base)}
	memo := MemoActivateAward + itoa(awardKey)
	if err := f.deposit(sponsor, 220, memo); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := f.deposit(sponsor, 220, memo); !errors.Is(err, ErrAwardAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}
}

func TestEraseAwardRules(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()
	f.state.treasures[key].Award = &LinkedAward{QueueKey: 999, ValueX2: types.NewAsset(1, base), Fee: types.ZeroAsset(base)}

	unpaid, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
		Owner: sponsor, TreasureKey: key, Title: "Unpaid",
		ValueX2: types.NewAsset(100, base), Fee: types.ZeroAsset(base),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.engine.EraseAward(common.NewAuthority(finder), finder, unpaid); !errors.Is(err, common.ErrAuthorization) {
		t.Fatalf("stranger must not erase, got %v", err)
	}
	if err := f.engine.EraseAward(common.NewAuthority(sponsor), sponsor, unpaid); err != nil {
		t.Fatalf("owner erase unpaid: %v", err)
	}

	paid := f.addPaidAward(key, 200, 20)
	if err := f.engine.EraseAward(common.NewAuthority(sponsor), sponsor, paid); !errors.Is(err, common.ErrStateConflict) {
		t.Fatalf("paid award waiting for its treasure must stay, got %v", err)
	}
	before := f.ledger.amount(sponsor, base.Code)
	if err := f.engine.EraseAward(common.NewAuthority(operator), operator, paid); err != nil {
		t.Fatalf("operator erase paid: %v", err)
	}
	if got := f.ledger.amount(sponsor, base.Code) - before; got != 200 {
		t.Fatalf("expected refund of 200, got %d", got)
	}
	if _, err := f.engine.Award(paid); !errors.Is(err, ErrAwardNotFound) {
		t.Fatalf("erased award must be gone, got %v", err)
	}
}

func TestEraseAwardOwnerRefundAfterTreasureGone(t *testing.T) {
	f := newFixture()
	lowMinimum(f)
	key := f.addTreasure()
	awardKey := f.addPaidAward(key, 200, 20)
	if err := f.engine.EraseTreasure(common.NewAuthority(owner), owner, key); err != nil {
		t.Fatalf("erase treasure: %v", err)
	}
	if err := f.engine.EraseAward(common.NewAuthority(sponsor), sponsor, awardKey); err != nil {
		t.Fatalf("owner withdraw: %v", err)
	}
	if got := f.ledger.amount(sponsor, base.Code); got != 200 {
		t.Fatalf("expected refund of 200, got %d", got)
	}
}

func TestQueueOrdersByCreation(t *testing.T) {
	f := newFixture()
	key := f.addTreasure()
	var want []uint64
	for i := int64(0); i < 5; i++ {
		at := testNow + 10 - i
		f.engine.SetNowFunc(func() int64 { return at })
		k, err := f.engine.AddAward(common.NewAuthority(sponsor), sponsor, AddAwardRequest{
			Owner: sponsor, TreasureKey: key, Title: "A",
			ValueX2: types.NewAsset(10, base), Fee: types.ZeroAsset(base),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		want = append([]uint64{k}, want...)
	}
	queue, err := f.engine.Queue(key)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	for i, award := range queue {
		if award.Key != want[i] {
			t.Fatalf("position %d: want %d got %d", i, want[i], award.Key)
		}
	}
}
