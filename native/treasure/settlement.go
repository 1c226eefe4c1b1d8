package treasure

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
)

var resultNamespace = uuid.MustParse("6f1c3a52-58a4-4c1e-9d0b-2b7f4de0a9c1")

type economics struct {
	eosusd      types.Asset
	odds        uint32
	partBonus   uint32
	solveBonus  uint32
	bonusCap    uint32
	bonusBuffer uint32
	tierHigh    uint32
	tierMid     uint32
	tierLow     uint32
	payoutBps   uint32
}

func (e *Engine) loadEconomics() (economics, error) {
	var out economics
	if e.params == nil {
		return out, errNilParams
	}
	var err error
	if out.eosusd, err = e.params.Asset(params.KeyEosUSD); err != nil {
		return out, err
	}
	uints := []struct {
		key string
		dst *uint32
	}{
		{params.KeySponsorOdds, &out.odds},
		{params.KeyPartBonus, &out.partBonus},
		{params.KeySolveBonus, &out.solveBonus},
		{params.KeyBonusCap, &out.bonusCap},
		{params.KeyBonusBuffer, &out.bonusBuffer},
		{params.KeyTierHigh, &out.tierHigh},
		{params.KeyTierMid, &out.tierMid},
		{params.KeyTierLow, &out.tierLow},
		{params.KeyPayoutBps, &out.payoutBps},
	}
	for _, u := range uints {
		if *u.dst, err = e.params.Uint(u.key); err != nil {
			return out, err
		}
	}
	if out.payoutBps > bpsDenominator {
		return out, fmt.Errorf("%w: payout share above 100%%", common.ErrValidation)
	}
	return out, nil
}

// Settle applies an oracle report to a treasure: it recomputes the ranking,
// distributes the escrowed value-check fees, pays out a newly realised
// turnover to finder and creator, mints bonuses and finally links the next
// queued sponsor award.
func (e *Engine) Settle(auth common.Authority, req SettleRequest) (*SettleOutcome, error) {
	if err := e.ledgerReady(); err != nil {
		return nil, err
	}
	if err := auth.RequireRole(e.state, common.RoleOracle); err != nil {
		return nil, err
	}
	if err := common.Guard(e.pauses, common.ModuleSettlement); err != nil {
		return nil, err
	}
	if isZeroAddress(req.Finder) || req.Finder == e.contract {
		return nil, fmt.Errorf("%w: invalid finder", common.ErrValidation)
	}
	if req.TotalTurnover.Symbol != e.base {
		return nil, ErrWrongCurrency
	}
	if !req.TotalTurnover.Valid() || req.TotalTurnover.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid total turnover", common.ErrValidation)
	}
	if len(req.Secret) > MaxSecretLength {
		return nil, fmt.Errorf("%w: treasure chest secret too long", common.ErrValidation)
	}
	t, err := e.loadTreasure(req.TreasureKey)
	if err != nil {
		return nil, err
	}
	exists, err := e.state.AccountExists(req.Finder)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownAccount
	}
	econ, err := e.loadEconomics()
	if err != nil {
		return nil, err
	}

	delta, err := req.TotalTurnover.Sub(t.TotalTurnover)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if delta.Sign() < 0 {
		return nil, ErrTurnoverRegressed
	}

	rp := rankingPoints(priceInUSD(req.TotalTurnover, econ.eosusd), req.VideoViews)
	if t.RankingPoint > 0 && rp < t.RankingPoint {
		rp = t.RankingPoint
	}

	out := &SettleOutcome{
		RankingPoint:  rp,
		Delta:         delta.Clone(),
		EscrowCleared: t.PreChestTransfer.Clone(),
		PayoutShare:   types.ZeroAsset(e.base),
	}
	owner := t.Owner
	now := e.now()

	if t.PreChestTransfer.Sign() > 0 {
		share := t.PreChestTransfer.MulDiv(int64(econ.payoutBps), bpsDenominator)
		if share.Sign() > 0 {
			if err := e.ledger.Transfer(e.contractAuth(), e.contract, e.payout, share,
				"Five percent cut to token holders payout account"); err != nil {
				return nil, err
			}
		}
		out.PayoutShare = share
		if econ.partBonus > 0 {
			bonus := wholeTokens(econ.partBonus, e.reward)
			if err := e.issueBonus(owner, bonus, "Someone paid to check your treasure!"); err != nil {
				return nil, err
			}
			if err := e.issueBonus(req.Finder, bonus.Clone(), "Reward for using the treasure hunt."); err != nil {
				return nil, err
			}
		}
		if t.HasAward() && !t.Award.Active {
			seed := lotterySeed(e.txHash, t.Key, req.Finder, now)
			activated, err := drawActivation(e.random, econ.odds, seed)
			if err != nil {
				return nil, err
			}
			if activated {
				t.Award.Active = true
				out.AwardActivated = true
				e.emit(LinkedAwardEvent(EventTypeAwardActivated, t.Key, t.Award))
			}
		}
	}

	if delta.Sign() > 0 {
		if err := e.ledger.Transfer(e.contractAuth(), e.contract, req.Finder, delta.Clone(),
			fmt.Sprintf("Congrats for solving Treasure No.%d!", t.Key)); err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(e.contractAuth(), e.contract, owner, delta.Clone(),
			fmt.Sprintf("Your Treasure No.%d has been solved. This is your equal share of the treasure chest.", t.Key)); err != nil {
			return nil, err
		}
		if econ.solveBonus > 0 {
			if err := e.issueBonus(req.Finder, wholeTokens(econ.solveBonus, e.reward), "Bonus tokens for unlocking a treasure!"); err != nil {
				return nil, err
			}
		}
		bonus, fromPool, err := e.payCreatorBonus(owner, priceInUSD(delta, econ.eosusd), rp, econ)
		if err != nil {
			return nil, err
		}
		out.CreatorBonus = bonus
		out.BonusFromPool = fromPool

		// A solve retires the linked award whether or not it won the draw.
		if t.HasAward() {
			if t.Award.Active {
				e.emit(LinkedAwardEvent(EventTypeAwardConsumed, t.Key, t.Award))
				out.AwardConsumed = true
			} else {
				e.emit(LinkedAwardEvent(EventTypeAwardLapsed, t.Key, t.Award))
				out.AwardLapsed = true
			}
			t.Award = nil
		}

		result, err := e.appendResult(t, req.Finder, delta, econ.eosusd, bonus, now)
		if err != nil {
			return nil, err
		}
		out.Result = result
	}

	t.Secret = req.Secret
	t.VideoViews = req.VideoViews
	t.TotalTurnover = req.TotalTurnover.Clone()
	t.RankingPoint = rp
	t.PreChestTransfer = types.ZeroAsset(e.base)
	if err := e.state.TreasurePut(t); err != nil {
		return nil, err
	}
	e.emit(SettledEvent(t, req.Finder, out))

	if err := e.Link(t.Key); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) issueBonus(to [20]byte, amount types.Asset, message string) error {
	if amount.Sign() <= 0 {
		return nil
	}
	if err := e.ledger.Issue(e.contractAuth(), to, amount, message); err != nil {
		return err
	}
	e.emit(SummaryEvent(to, fmt.Sprintf("%s %s", amount.String(), message)))
	return nil
}

// payCreatorBonus pays the ranking-weighted bonus out of the contract's reward
// pool when the pool keeps its reserve buffer, otherwise issues a tiered
// fixed bonus.
func (e *Engine) payCreatorBonus(owner [20]byte, deltaUSD types.Asset, rp uint64, econ economics) (types.Asset, bool, error) {
	capAmount := wholeTokens(econ.bonusCap, e.reward)
	bonus := creatorBonus(deltaUSD, rp, capAmount)
	pool, err := e.ledger.Balance(e.contract, e.reward)
	if err != nil {
		return types.Asset{}, false, err
	}
	spare := new(big.Int).Sub(pool.Amount, wholeTokens(econ.bonusBuffer, e.reward).Amount)
	if bonus.Sign() > 0 && spare.Cmp(bonus.Amount) > 0 {
		if err := e.ledger.Transfer(e.contractAuth(), e.contract, owner, bonus.Clone(),
			"Bonus tokens for creating great content!"); err != nil {
			return types.Asset{}, false, err
		}
		e.emit(SummaryEvent(owner, "Bonus tokens for creating great content!"))
		return bonus, true, nil
	}
	fallback := tier(rp, econ.tierHigh, econ.tierMid, econ.tierLow, e.reward)
	if err := e.issueBonus(owner, fallback, "Bonus tokens for someone solving your treasure."); err != nil {
		return types.Asset{}, false, err
	}
	return fallback, false, nil
}

func (e *Engine) appendResult(t *Treasure, finder [20]byte, payout, eosusd, mined types.Asset, now int64) (*Result, error) {
	key, err := e.state.NextSequence(SeqResult)
	if err != nil {
		return nil, err
	}
	material := make([]byte, 0, len(e.txHash)+16)
	material = append(material, e.txHash...)
	material = binary.BigEndian.AppendUint64(material, t.Key)
	material = binary.BigEndian.AppendUint64(material, key)
	result := &Result{
		Key:         key,
		ID:          uuid.NewSHA1(resultNamespace, material).String(),
		TreasureKey: t.Key,
		Finder:      finder,
		Creator:     t.Owner,
		Payout:      payout.Clone(),
		PriceFeed:   eosusd.Clone(),
		MinedBonus:  mined.Clone(),
		CreatedAt:   now,
	}
	if err := e.state.ResultPut(result); err != nil {
		return nil, err
	}
	e.emit(ResultEvent(EventTypeResultAdded, result))
	return result, nil
}
