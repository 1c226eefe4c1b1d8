package treasure

import (
	"fmt"
	"sort"

	"treasurechain/core/types"
	"treasurechain/native/common"
)

// AddTreasure creates a treasure owned by req.Owner. The signer pays for the
// record and need not be the owner.
func (e *Engine) AddTreasure(auth common.Authority, user [20]byte, req AddTreasureRequest) (uint64, error) {
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
		return 0, fmt.Errorf("%w: owner required", common.ErrValidation)
	}
	if err := e.checkPayee("owner", req.Owner); err != nil {
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
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return 0, err
	}
	if len(req.Secret) > MaxSecretLength {
		return 0, fmt.Errorf("%w: treasure chest secret too long", common.ErrValidation)
	}
	key, err := e.state.NextSequence(SeqTreasure)
	if err != nil {
		return 0, err
	}
	now := e.now()
	t := &Treasure{
		Key:              key,
		Owner:            req.Owner,
		Title:            title,
		ImageURL:         imageURL,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Secret:           req.Secret,
		TotalTurnover:    types.ZeroAsset(e.base),
		PreChestTransfer: types.ZeroAsset(e.base),
		CreatedAt:        now,
		ExpirationDate:   now + ExpirationPeriod,
	}
	if err := e.state.TreasurePut(t); err != nil {
		return 0, err
	}
	e.emit(TreasureEvent(EventTypeTreasureAdded, t))
	return key, nil
}

// ModTreasure replaces the display fields. Only the owner or an operator may
// modify a treasure.
func (e *Engine) ModTreasure(auth common.Authority, user [20]byte, key uint64, update TreasureUpdate) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := auth.Require(user); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	t, err := e.loadTreasure(key)
	if err != nil {
		return err
	}
	if user != t.Owner && !e.isOperator(auth) {
		return fmt.Errorf("%w: no access to modify this treasure", common.ErrAuthorization)
	}
	normalized, err := normalizeUpdate(update)
	if err != nil {
		return err
	}
	t.Title = normalized.Title
	t.Description = normalized.Description
	t.ImageURL = normalized.ImageURL
	t.VideoURL = normalized.VideoURL
	t.MapURL = normalized.MapURL
	t.Category = normalized.Category
	t.Level = normalized.Level
	if err := e.state.TreasurePut(t); err != nil {
		return err
	}
	e.emit(TreasureEvent(EventTypeTreasureModified, t))
	return nil
}

// EraseTreasure deletes a treasure. A linked award that has not been consumed
// goes back to the queue as a paid entry keeping its original position.
func (e *Engine) EraseTreasure(auth common.Authority, user [20]byte, key uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := auth.Require(user); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	t, err := e.loadTreasure(key)
	if err != nil {
		return err
	}
	if user != t.Owner && !e.isOperator(auth) {
		return fmt.Errorf("%w: no access to remove this treasure", common.ErrAuthorization)
	}
	if t.HasAward() {
		award := t.Award
		entry := &SponsorAward{
			Key:         award.QueueKey,
			TreasureKey: t.Key,
			Owner:       award.Owner,
			Title:       award.Title,
			ImageURL:    award.ImageURL,
			OrderURL:    award.OrderURL,
			ValueX2:     award.ValueX2.Clone(),
			Fee:         award.Fee.Clone(),
			Paid:        true,
			CreatedAt:   award.CreatedAt,
		}
		if err := e.state.SponsorAwardPut(entry); err != nil {
			return err
		}
		e.emit(AwardEvent(EventTypeAwardRequeued, entry))
	}
	if err := e.state.TreasureDelete(key); err != nil {
		return err
	}
	e.emit(TreasureEvent(EventTypeTreasureErased, t))
	return nil
}

// RenewExpiration extends the ownership window by three years. Operators
// renew after verifying the owner visited the location.
func (e *Engine) RenewExpiration(auth common.Authority, key uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireOperator(auth); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleTreasure); err != nil {
		return err
	}
	t, err := e.loadTreasure(key)
	if err != nil {
		return err
	}
	t.ExpirationDate = e.now() + ExpirationPeriod
	if err := e.state.TreasurePut(t); err != nil {
		return err
	}
	e.emit(TreasureEvent(EventTypeTreasureRenewed, t))
	return nil
}

// Treasure returns the treasure stored under key.
func (e *Engine) Treasure(key uint64) (*Treasure, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.loadTreasure(key)
}

// Treasures returns every treasure ordered by key.
func (e *Engine) Treasures() ([]*Treasure, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	keys, err := e.state.TreasureKeys()
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*Treasure, 0, len(keys))
	for _, key := range keys {
		t, ok, err := e.state.TreasureGet(key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Expired lists the keys of treasures whose ownership lapsed before now. An
// external sweeper decides what to do with them.
func (e *Engine) Expired(now int64) ([]uint64, error) {
	all, err := e.Treasures()
	if err != nil {
		return nil, err
	}
	var out []uint64
	for _, t := range all {
		if t.ExpirationDate < now {
			out = append(out, t.Key)
		}
	}
	return out, nil
}
