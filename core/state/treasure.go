package state

import (
	"fmt"
	"sort"

	"treasurechain/native/treasure"
)

type linkedAwardRecord struct {
	QueueKey  uint64
	Owner     [20]byte
	Title     string
	ImageURL  string
	OrderURL  string
	ValueX2   assetRecord
	Fee       assetRecord
	Active    bool
	CreatedAt uint64
	LinkedAt  uint64
}

type treasureRecord struct {
	Key              uint64
	Owner            [20]byte
	Title            string
	Description      string
	ImageURL         string
	MapURL           string
	VideoURL         string
	Category         string
	Latitude         uint64
	Longitude        uint64
	Level            uint8
	VideoViews       uint64
	Secret           string
	TotalTurnover    assetRecord
	PreChestTransfer assetRecord
	RankingPoint     uint64
	CreatedAt        uint64
	ExpirationDate   uint64
	HasAward         bool
	Award            linkedAwardRecord
}

type sponsorAwardRecord struct {
	Key         uint64
	TreasureKey uint64
	Owner       [20]byte
	Title       string
	ImageURL    string
	OrderURL    string
	ValueX2     assetRecord
	Fee         assetRecord
	Paid        bool
	CreatedAt   uint64
}

type ticketRecord struct {
	Key         uint64
	Kind        uint8
	TreasureKey uint64
	Account     [20]byte
	Paid        assetRecord
	Secret      string
	CreatedAt   uint64
}

type resultRecord struct {
	Key         uint64
	ID          string
	TreasureKey uint64
	Finder      [20]byte
	Creator     [20]byte
	Payout      assetRecord
	PriceFeed   assetRecord
	MinedBonus  assetRecord
	CreatedAt   uint64
}

type crewRecord struct {
	User      [20]byte
	ImageHash string
	Quote     string
	UpdatedAt uint64
}

func newTreasureRecord(t *treasure.Treasure) (treasureRecord, error) {
	turnover, err := newAssetRecord(t.TotalTurnover)
	if err != nil {
		return treasureRecord{}, err
	}
	escrow, err := newAssetRecord(t.PreChestTransfer)
	if err != nil {
		return treasureRecord{}, err
	}
	rec := treasureRecord{
		Key:              t.Key,
		Owner:            t.Owner,
		Title:            t.Title,
		Description:      t.Description,
		ImageURL:         t.ImageURL,
		MapURL:           t.MapURL,
		VideoURL:         t.VideoURL,
		Category:         t.Category,
		Latitude:         floatBits(t.Latitude),
		Longitude:        floatBits(t.Longitude),
		Level:            t.Level,
		VideoViews:       t.VideoViews,
		Secret:           t.Secret,
		TotalTurnover:    turnover,
		PreChestTransfer: escrow,
		RankingPoint:     t.RankingPoint,
		CreatedAt:        unixToUint(t.CreatedAt),
		ExpirationDate:   unixToUint(t.ExpirationDate),
		Award: linkedAwardRecord{
			ValueX2: assetRecord{Amount: nonNil(nil)},
			Fee:     assetRecord{Amount: nonNil(nil)},
		},
	}
	if a := t.Award; a != nil {
		value, err := newAssetRecord(a.ValueX2)
		if err != nil {
			return treasureRecord{}, err
		}
		fee, err := newAssetRecord(a.Fee)
		if err != nil {
			return treasureRecord{}, err
		}
		rec.HasAward = true
		rec.Award = linkedAwardRecord{
			QueueKey:  a.QueueKey,
			Owner:     a.Owner,
			Title:     a.Title,
			ImageURL:  a.ImageURL,
			OrderURL:  a.OrderURL,
			ValueX2:   value,
			Fee:       fee,
			Active:    a.Active,
			CreatedAt: unixToUint(a.CreatedAt),
			LinkedAt:  unixToUint(a.LinkedAt),
		}
	}
	return rec, nil
}

func (r treasureRecord) treasure() *treasure.Treasure {
	t := &treasure.Treasure{
		Key:              r.Key,
		Owner:            r.Owner,
		Title:            r.Title,
		Description:      r.Description,
		ImageURL:         r.ImageURL,
		MapURL:           r.MapURL,
		VideoURL:         r.VideoURL,
		Category:         r.Category,
		Latitude:         bitsFloat(r.Latitude),
		Longitude:        bitsFloat(r.Longitude),
		Level:            r.Level,
		VideoViews:       r.VideoViews,
		Secret:           r.Secret,
		TotalTurnover:    r.TotalTurnover.asset(),
		PreChestTransfer: r.PreChestTransfer.asset(),
		RankingPoint:     r.RankingPoint,
		CreatedAt:        int64(r.CreatedAt),
		ExpirationDate:   int64(r.ExpirationDate),
	}
	if r.HasAward {
		a := r.Award
		t.Award = &treasure.LinkedAward{
			QueueKey:  a.QueueKey,
			Owner:     a.Owner,
			Title:     a.Title,
			ImageURL:  a.ImageURL,
			OrderURL:  a.OrderURL,
			ValueX2:   a.ValueX2.asset(),
			Fee:       a.Fee.asset(),
			Active:    a.Active,
			CreatedAt: int64(a.CreatedAt),
			LinkedAt:  int64(a.LinkedAt),
		}
	}
	return t
}

// TreasureGet loads a treasure.
func (m *Manager) TreasureGet(key uint64) (*treasure.Treasure, bool, error) {
	var rec treasureRecord
	ok, err := m.KVGet(TreasureKey(key), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return rec.treasure(), true, nil
}

// TreasurePut stores a treasure and indexes its key.
func (m *Manager) TreasurePut(t *treasure.Treasure) error {
	if t == nil {
		return fmt.Errorf("nil treasure")
	}
	rec, err := newTreasureRecord(t)
	if err != nil {
		return err
	}
	if err := m.KVPut(TreasureKey(t.Key), rec); err != nil {
		return err
	}
	return m.KVAppend(TreasureIndexKey(), encodeIndex(t.Key))
}

// TreasureDelete removes a treasure.
func (m *Manager) TreasureDelete(key uint64) error {
	if err := m.KVDelete(TreasureKey(key)); err != nil {
		return err
	}
	return m.KVRemove(TreasureIndexKey(), encodeIndex(key))
}

// TreasureKeys lists stored treasure keys in ascending order.
func (m *Manager) TreasureKeys() ([]uint64, error) {
	return m.indexKeys(TreasureIndexKey())
}

func (m *Manager) indexKeys(indexKey []byte) ([]uint64, error) {
	var list [][]byte
	if err := m.KVGetList(indexKey, &list); err != nil {
		return nil, err
	}
	keys := decodeIndex(list)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func newSponsorAwardRecord(a *treasure.SponsorAward) (sponsorAwardRecord, error) {
	value, err := newAssetRecord(a.ValueX2)
	if err != nil {
		return sponsorAwardRecord{}, err
	}
	fee, err := newAssetRecord(a.Fee)
	if err != nil {
		return sponsorAwardRecord{}, err
	}
	return sponsorAwardRecord{
		Key:         a.Key,
		TreasureKey: a.TreasureKey,
		Owner:       a.Owner,
		Title:       a.Title,
		ImageURL:    a.ImageURL,
		OrderURL:    a.OrderURL,
		ValueX2:     value,
		Fee:         fee,
		Paid:        a.Paid,
		CreatedAt:   unixToUint(a.CreatedAt),
	}, nil
}

// SponsorAwardGet loads a queued sponsor award.
func (m *Manager) SponsorAwardGet(key uint64) (*treasure.SponsorAward, bool, error) {
	var rec sponsorAwardRecord
	ok, err := m.KVGet(SponsorAwardKey(key), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &treasure.SponsorAward{
		Key:         rec.Key,
		TreasureKey: rec.TreasureKey,
		Owner:       rec.Owner,
		Title:       rec.Title,
		ImageURL:    rec.ImageURL,
		OrderURL:    rec.OrderURL,
		ValueX2:     rec.ValueX2.asset(),
		Fee:         rec.Fee.asset(),
		Paid:        rec.Paid,
		CreatedAt:   int64(rec.CreatedAt),
	}, true, nil
}

// SponsorAwardPut stores a sponsor award and adds it to its treasure's queue.
func (m *Manager) SponsorAwardPut(a *treasure.SponsorAward) error {
	if a == nil {
		return fmt.Errorf("nil sponsor award")
	}
	prev, ok, err := m.SponsorAwardGet(a.Key)
	if err != nil {
		return err
	}
	if ok && prev.TreasureKey != a.TreasureKey {
		if err := m.KVRemove(SponsorQueueKey(prev.TreasureKey), encodeIndex(a.Key)); err != nil {
			return err
		}
	}
	rec, err := newSponsorAwardRecord(a)
	if err != nil {
		return err
	}
	if err := m.KVPut(SponsorAwardKey(a.Key), rec); err != nil {
		return err
	}
	return m.KVAppend(SponsorQueueKey(a.TreasureKey), encodeIndex(a.Key))
}

// SponsorAwardDelete removes a sponsor award and its queue entry.
func (m *Manager) SponsorAwardDelete(key uint64) error {
	prev, ok, err := m.SponsorAwardGet(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := m.KVDelete(SponsorAwardKey(key)); err != nil {
		return err
	}
	return m.KVRemove(SponsorQueueKey(prev.TreasureKey), encodeIndex(key))
}

// SponsorQueueKeys lists the award keys queued for a treasure in ascending
// key order.
func (m *Manager) SponsorQueueKeys(treasureKey uint64) ([]uint64, error) {
	return m.indexKeys(SponsorQueueKey(treasureKey))
}

// TicketGet loads a check or unlock ticket.
func (m *Manager) TicketGet(kind treasure.TicketKind, key uint64) (*treasure.Ticket, bool, error) {
	var rec ticketRecord
	ok, err := m.KVGet(TicketKey(uint8(kind), key), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &treasure.Ticket{
		Key:         rec.Key,
		Kind:        treasure.TicketKind(rec.Kind),
		TreasureKey: rec.TreasureKey,
		Account:     rec.Account,
		Paid:        rec.Paid.asset(),
		Secret:      rec.Secret,
		CreatedAt:   int64(rec.CreatedAt),
	}, true, nil
}

// TicketPut stores a ticket and indexes it under its kind.
func (m *Manager) TicketPut(t *treasure.Ticket) error {
	if t == nil {
		return fmt.Errorf("nil ticket")
	}
	paid, err := newAssetRecord(t.Paid)
	if err != nil {
		return err
	}
	rec := ticketRecord{
		Key:         t.Key,
		Kind:        uint8(t.Kind),
		TreasureKey: t.TreasureKey,
		Account:     t.Account,
		Paid:        paid,
		Secret:      t.Secret,
		CreatedAt:   unixToUint(t.CreatedAt),
	}
	if err := m.KVPut(TicketKey(rec.Kind, t.Key), rec); err != nil {
		return err
	}
	return m.KVAppend(TicketIndexKey(rec.Kind), encodeIndex(t.Key))
}

// TicketDelete removes a ticket.
func (m *Manager) TicketDelete(kind treasure.TicketKind, key uint64) error {
	if err := m.KVDelete(TicketKey(uint8(kind), key)); err != nil {
		return err
	}
	return m.KVRemove(TicketIndexKey(uint8(kind)), encodeIndex(key))
}

// TicketKeys lists ticket keys of one kind in ascending order.
func (m *Manager) TicketKeys(kind treasure.TicketKind) ([]uint64, error) {
	return m.indexKeys(TicketIndexKey(uint8(kind)))
}

// ResultGet loads a settlement result.
func (m *Manager) ResultGet(key uint64) (*treasure.Result, bool, error) {
	var rec resultRecord
	ok, err := m.KVGet(ResultKey(key), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &treasure.Result{
		Key:         rec.Key,
		ID:          rec.ID,
		TreasureKey: rec.TreasureKey,
		Finder:      rec.Finder,
		Creator:     rec.Creator,
		Payout:      rec.Payout.asset(),
		PriceFeed:   rec.PriceFeed.asset(),
		MinedBonus:  rec.MinedBonus.asset(),
		CreatedAt:   int64(rec.CreatedAt),
	}, true, nil
}

// ResultPut stores a settlement result and indexes it.
func (m *Manager) ResultPut(r *treasure.Result) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	rec := resultRecord{
		Key:         r.Key,
		ID:          r.ID,
		TreasureKey: r.TreasureKey,
		Finder:      r.Finder,
		Creator:     r.Creator,
		CreatedAt:   unixToUint(r.CreatedAt),
	}
	var err error
	if rec.Payout, err = newAssetRecord(r.Payout); err != nil {
		return err
	}
	if rec.PriceFeed, err = newAssetRecord(r.PriceFeed); err != nil {
		return err
	}
	if rec.MinedBonus, err = newAssetRecord(r.MinedBonus); err != nil {
		return err
	}
	if err := m.KVPut(ResultKey(r.Key), rec); err != nil {
		return err
	}
	return m.KVAppend(ResultIndexKey(), encodeIndex(r.Key))
}

// ResultDelete removes a settlement result.
func (m *Manager) ResultDelete(key uint64) error {
	if err := m.KVDelete(ResultKey(key)); err != nil {
		return err
	}
	return m.KVRemove(ResultIndexKey(), encodeIndex(key))
}

// ResultKeys lists result keys in ascending order.
func (m *Manager) ResultKeys() ([]uint64, error) {
	return m.indexKeys(ResultIndexKey())
}

// CrewGet loads a crew profile.
func (m *Manager) CrewGet(user [20]byte) (*treasure.Crew, bool, error) {
	var rec crewRecord
	ok, err := m.KVGet(CrewKey(user), &rec)
	if err != nil || !ok {
		return nil, false, err
	}
	return &treasure.Crew{
		User:      rec.User,
		ImageHash: rec.ImageHash,
		Quote:     rec.Quote,
		UpdatedAt: int64(rec.UpdatedAt),
	}, true, nil
}

// CrewPut stores a crew profile.
func (m *Manager) CrewPut(c *treasure.Crew) error {
	if c == nil {
		return fmt.Errorf("nil crew")
	}
	return m.KVPut(CrewKey(c.User), crewRecord{
		User:      c.User,
		ImageHash: c.ImageHash,
		Quote:     c.Quote,
		UpdatedAt: unixToUint(c.UpdatedAt),
	})
}

// CrewDelete removes a crew profile.
func (m *Manager) CrewDelete(user [20]byte) error {
	return m.KVDelete(CrewKey(user))
}
