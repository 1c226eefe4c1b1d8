package treasure

import (
	"fmt"
	"strconv"
	"strings"

	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
)

// Memo prefixes understood by the deposit hook.
const (
	MemoActivateAward = "Activate Sponsor Award No."
	MemoCheckTreasure = "Check Treasure No."
	MemoUnlock        = "Unlock Treasure No."
)

// OnTransfer is the deposit hook. It reacts to base currency transfers into
// the contract account and dispatches on the memo prefix. Other memos leave
// the deposit as a plain credit.
func (e *Engine) OnTransfer(from, to [20]byte, quantity types.Asset, memo string) error {
	if e == nil || to != e.contract || isZeroAddress(e.contract) {
		return nil
	}
	if quantity.Symbol != e.base {
		return nil
	}
	if err := e.ready(); err != nil {
		return err
	}
	if quantity.Sign() <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", common.ErrValidation)
	}
	switch {
	case strings.HasPrefix(memo, MemoActivateAward):
		key, err := parseKey(strings.TrimPrefix(memo, MemoActivateAward))
		if err != nil {
			return err
		}
		return e.activateAward(from, quantity, key)
	case strings.HasPrefix(memo, MemoCheckTreasure):
		key, err := parseKey(strings.TrimPrefix(memo, MemoCheckTreasure))
		if err != nil {
			return err
		}
		return e.checkTreasure(from, quantity, key)
	case strings.HasPrefix(memo, MemoUnlock):
		rest := strings.TrimPrefix(memo, MemoUnlock)
		rawKey, secret, found := strings.Cut(rest, "-")
		if !found || secret == "" {
			return fmt.Errorf("%w: expected %s<id>-<secret>", ErrInvalidMemo, MemoUnlock)
		}
		key, err := parseKey(rawKey)
		if err != nil {
			return err
		}
		return e.unlockAttempt(from, quantity, key, secret)
	default:
		return nil
	}
}

func parseKey(raw string) (uint64, error) {
	key, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", ErrInvalidMemo, raw)
	}
	return key, nil
}

func (e *Engine) activateAward(from [20]byte, paid types.Asset, key uint64) error {
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	if err := e.ledgerReady(); err != nil {
		return err
	}
	if e.params == nil {
		return errNilParams
	}
	award, ok, err := e.state.SponsorAwardGet(key)
	if err != nil {
		return err
	}
	if !ok || award == nil {
		return ErrAwardNotFound
	}
	minimum, err := e.params.Asset(params.KeyMinSponsorAward)
	if err != nil {
		return err
	}
	if minimum.Symbol != paid.Symbol {
		return fmt.Errorf("%w: minimum sponsor award is set in %s", ErrWrongCurrency, minimum.Symbol.Code)
	}
	if paid.Amount.Cmp(minimum.Amount) < 0 {
		return ErrBelowMinimumAward
	}
	cost, err := award.ValueX2.Add(award.Fee)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if cmp, err := paid.Cmp(cost); err != nil || cmp != 0 {
		return ErrAwardCostMismatch
	}
	if award.Paid {
		return ErrAwardAlreadyPaid
	}
	award.Paid = true
	if err := e.state.SponsorAwardPut(award); err != nil {
		return err
	}
	if award.Fee.Sign() > 0 {
		if err := e.ledger.Transfer(e.contractAuth(), e.contract, e.payout, award.Fee.Clone(),
			"Fee for adding sponsor award goes to token holders."); err != nil {
			return err
		}
	}
	eosusd, err := e.params.Asset(params.KeyEosUSD)
	if err != nil {
		return err
	}
	reward := usdToReward(priceInUSD(paid, eosusd), e.reward)
	if reward.Sign() > 0 {
		if err := e.ledger.Issue(e.contractAuth(), from, reward, "Reward tokens for activating sponsor award."); err != nil {
			return err
		}
	}
	e.emit(AwardEvent(EventTypeAwardPaid, award))
	return e.Link(award.TreasureKey)
}

func (e *Engine) checkPrice() (types.Asset, error) {
	return e.priceInBase(params.KeyCheckPrice)
}

func (e *Engine) unlockPrice() (types.Asset, error) {
	return e.priceInBase(params.KeyUnlockPrice)
}

func (e *Engine) priceInBase(key string) (types.Asset, error) {
	if e.params == nil {
		return types.Asset{}, errNilParams
	}
	eosusd, err := e.params.Asset(params.KeyEosUSD)
	if err != nil {
		return types.Asset{}, err
	}
	usd, err := e.params.Asset(key)
	if err != nil {
		return types.Asset{}, err
	}
	return baseFromUSD(usd, eosusd, e.base)
}

// CheckPrice returns the current value-check price in base currency.
func (e *Engine) CheckPrice() (types.Asset, error) { return e.checkPrice() }

// UnlockPrice returns the current unlock attempt price in base currency.
func (e *Engine) UnlockPrice() (types.Asset, error) { return e.unlockPrice() }

func (e *Engine) checkTreasure(from [20]byte, paid types.Asset, key uint64) error {
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	price, err := e.checkPrice()
	if err != nil {
		return err
	}
	if paid.Amount.Cmp(price.Amount) < 0 {
		return ErrBelowCheckPrice
	}
	t, err := e.loadTreasure(key)
	if err != nil {
		return err
	}
	ticket, err := e.appendTicket(TicketCheck, key, from, paid, "")
	if err != nil {
		return err
	}
	escrow, err := t.PreChestTransfer.Add(paid)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	t.PreChestTransfer = escrow
	if t.RankingPoint == 0 && t.Owner == from {
		t.RankingPoint = 1
	}
	if err := e.state.TreasurePut(t); err != nil {
		return err
	}
	e.emit(TicketEvent(EventTypeTicketAdded, ticket))
	return nil
}

func (e *Engine) unlockAttempt(from [20]byte, paid types.Asset, key uint64, secret string) error {
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	price, err := e.unlockPrice()
	if err != nil {
		return err
	}
	if paid.Amount.Cmp(price.Amount) < 0 {
		return ErrBelowUnlockPrice
	}
	if len(secret) > MaxSecretLength {
		return fmt.Errorf("%w: secret code too long", common.ErrValidation)
	}
	if _, err := e.loadTreasure(key); err != nil {
		return err
	}
	if err := e.consumeUnlockQuota(from); err != nil {
		return err
	}
	ticket, err := e.appendTicket(TicketUnlock, key, from, paid, secret)
	if err != nil {
		return err
	}
	e.emit(TicketEvent(EventTypeTicketAdded, ticket))
	return nil
}

func (e *Engine) consumeUnlockQuota(addr [20]byte) error {
	if e.unlockQuota.MaxPerEpoch == 0 {
		return nil
	}
	prev, _, err := e.state.QuotaGet(QuotaUnlock, addr)
	if err != nil {
		return err
	}
	next, err := common.CheckQuota(e.unlockQuota, e.unlockQuota.Epoch(e.now()), prev, 1)
	if err != nil {
		return err
	}
	return e.state.QuotaPut(QuotaUnlock, addr, next)
}
