package treasure

import (
	"fmt"
	"sort"

	"treasurechain/native/common"
)

// AddAward queues an unpaid sponsor award against an existing treasure. The
// award becomes eligible for linking once the sponsor pays value×2 + fee.
func (e *Engine) AddAward(auth common.Authority, user [20]byte, req AddAwardRequest) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := auth.Require(user); err != nil {
		return 0, err
	}
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return 0, err
	}
	if isZeroAddress(req.Owner) {
		return 0, fmt.Errorf("%w: award owner required", common.ErrValidation)
	}
	if err := e.checkPayee("award owner", req.Owner); err != nil {
		return 0, err
	}
	title, err := normalizeText("title", req.Title, MaxTitleLength)
	if err != nil {
		return 0, err
	}
	imageURL, err := normalizeText("image url", req.ImageURL, MaxURLLength)
	if err != nil {
		return 0, err
	}
	orderURL, err := normalizeText("order page url", req.OrderURL, MaxURLLength)
	if err != nil {
		return 0, err
	}
	if req.ValueX2.Symbol != e.base || req.Fee.Symbol != e.base {
		return 0, ErrWrongCurrency
	}
	if !req.ValueX2.Valid() || req.ValueX2.Sign() <= 0 {
		return 0, fmt.Errorf("%w: award value must be positive", common.ErrValidation)
	}
	if !req.Fee.Valid() || req.Fee.Sign() < 0 {
		return 0, fmt.Errorf("%w: award fee must not be negative", common.ErrValidation)
	}
	if _, err := e.loadTreasure(req.TreasureKey); err != nil {
		return 0, err
	}
	key, err := e.state.NextSequence(SeqAward)
	if err != nil {
		return 0, err
	}
	award := &SponsorAward{
		Key:         key,
		TreasureKey: req.TreasureKey,
		Owner:       req.Owner,
		Title:       title,
		ImageURL:    imageURL,
		OrderURL:    orderURL,
		ValueX2:     req.ValueX2.Clone(),
		Fee:         req.Fee.Clone(),
		CreatedAt:   e.now(),
	}
	if err := e.state.SponsorAwardPut(award); err != nil {
		return 0, err
	}
	e.emit(AwardEvent(EventTypeAwardAdded, award))
	return key, nil
}

// EraseAward removes a queue entry. Unpaid entries may be erased by their
// owner. A paid entry is refunded its value×2 from the contract account; the
// owner may only withdraw it once its treasure is gone, operators at any time.
func (e *Engine) EraseAward(auth common.Authority, user [20]byte, key uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := auth.Require(user); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	award, ok, err := e.state.SponsorAwardGet(key)
	if err != nil {
		return err
	}
	if !ok || award == nil {
		return ErrAwardNotFound
	}
	operator := e.isOperator(auth)
	if user != award.Owner && !operator {
		return fmt.Errorf("%w: no access to remove this sponsor award", common.ErrAuthorization)
	}
	if award.Paid {
		if !operator {
			_, exists, err := e.state.TreasureGet(award.TreasureKey)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: paid sponsor award is waiting for its treasure", common.ErrStateConflict)
			}
		}
		if err := e.ledgerReady(); err != nil {
			return err
		}
		memo := fmt.Sprintf("Refund of Sponsor Award No.%d", award.Key)
		if err := e.ledger.Transfer(e.contractAuth(), e.contract, award.Owner, award.ValueX2.Clone(), memo); err != nil {
			return err
		}
	}
	if err := e.state.SponsorAwardDelete(key); err != nil {
		return err
	}
	e.emit(AwardEvent(EventTypeAwardErased, award))
	return nil
}

// Queue returns the queue entries of a treasure in FIFO order.
func (e *Engine) Queue(treasureKey uint64) ([]*SponsorAward, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	keys, err := e.state.SponsorQueueKeys(treasureKey)
	if err != nil {
		return nil, err
	}
	out := make([]*SponsorAward, 0, len(keys))
	for _, key := range keys {
		award, ok, err := e.state.SponsorAwardGet(key)
		if err != nil {
			return nil, err
		}
		if !ok || award.TreasureKey != treasureKey {
			continue
		}
		out = append(out, award)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// Award returns the queue entry stored under key.
func (e *Engine) Award(key uint64) (*SponsorAward, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	award, ok, err := e.state.SponsorAwardGet(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAwardNotFound
	}
	return award, nil
}

// Link moves the first paid queue entry of a treasure onto the treasure. It
// does nothing when the treasure is missing or already holds an award, so
// repeated calls are safe.
func (e *Engine) Link(treasureKey uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	t, ok, err := e.state.TreasureGet(treasureKey)
	if err != nil {
		return err
	}
	if !ok || t == nil || t.HasAward() {
		return nil
	}
	queue, err := e.Queue(treasureKey)
	if err != nil {
		return err
	}
	var next *SponsorAward
	for _, award := range queue {
		if award.Paid {
			next = award
			break
		}
	}
	if next == nil {
		return nil
	}
	t.Award = &LinkedAward{
		QueueKey:  next.Key,
		Owner:     next.Owner,
		Title:     next.Title,
		ImageURL:  next.ImageURL,
		OrderURL:  next.OrderURL,
		ValueX2:   next.ValueX2.Clone(),
		Fee:       next.Fee.Clone(),
		Active:    false,
		CreatedAt: next.CreatedAt,
		LinkedAt:  e.now(),
	}
	if err := e.state.TreasurePut(t); err != nil {
		return err
	}
	if err := e.state.SponsorAwardDelete(next.Key); err != nil {
		return err
	}
	e.emit(LinkedAwardEvent(EventTypeAwardLinked, t.Key, t.Award))
	return nil
}
