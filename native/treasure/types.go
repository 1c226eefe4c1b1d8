package treasure

import (
	"treasurechain/core/types"
)

// ExpirationPeriod is the ownership window granted on creation and renewal
// (three years).
const ExpirationPeriod int64 = 94_608_000

// Treasure is a hidden location with an escrowed value-check balance, a
// ranking score and an optional linked sponsor award.
type Treasure struct {
	Key         uint64
	Owner       [20]byte
	Title       string
	Description string
	ImageURL    string
	MapURL      string
	VideoURL    string
	Category    string
	Latitude    float64
	Longitude   float64
	Level       uint8
	VideoViews  uint64
	Secret      string

	TotalTurnover    types.Asset
	PreChestTransfer types.Asset
	RankingPoint     uint64

	CreatedAt      int64
	ExpirationDate int64

	Award *LinkedAward
}

// HasAward reports whether a sponsor award is currently linked.
func (t *Treasure) HasAward() bool {
	return t != nil && t.Award != nil && t.Award.ValueX2.Sign() > 0
}

// Clone returns a deep copy of the treasure.
func (t *Treasure) Clone() *Treasure {
	if t == nil {
		return nil
	}
	out := *t
	out.TotalTurnover = t.TotalTurnover.Clone()
	out.PreChestTransfer = t.PreChestTransfer.Clone()
	if t.Award != nil {
		award := *t.Award
		award.ValueX2 = t.Award.ValueX2.Clone()
		out.Award = &award
	}
	return &out
}

// LinkedAward mirrors a sponsor award once it leaves the queue. An award is
// linked inactive and only pays out after the activation lottery flips it.
type LinkedAward struct {
	QueueKey  uint64
	Owner     [20]byte
	Title     string
	ImageURL  string
	OrderURL  string
	ValueX2   types.Asset
	Fee       types.Asset
	Active    bool
	CreatedAt int64
	LinkedAt  int64
}

// SponsorAward is a queue entry waiting to be linked to its treasure.
type SponsorAward struct {
	Key         uint64
	TreasureKey uint64
	Owner       [20]byte
	Title       string
	ImageURL    string
	OrderURL    string
	ValueX2     types.Asset
	Fee         types.Asset
	Paid        bool
	CreatedAt   int64
}

// Clone returns a deep copy of the award.
func (a *SponsorAward) Clone() *SponsorAward {
	if a == nil {
		return nil
	}
	out := *a
	out.ValueX2 = a.ValueX2.Clone()
	out.Fee = a.Fee.Clone()
	return &out
}

// TicketKind distinguishes value-check and unlock requests.
type TicketKind uint8

const (
	TicketCheck  TicketKind = 1
	TicketUnlock TicketKind = 2
)

func (k TicketKind) String() string {
	switch k {
	case TicketCheck:
		return "check"
	case TicketUnlock:
		return "unlock"
	default:
		return "unknown"
	}
}

// Ticket is an append-only record of a request awaiting oracle settlement.
type Ticket struct {
	Key         uint64
	Kind        TicketKind
	TreasureKey uint64
	Account     [20]byte
	Paid        types.Asset
	Secret      string
	CreatedAt   int64
}

// Result records one successful unlock settlement.
type Result struct {
	Key         uint64
	ID          string
	TreasureKey uint64
	Finder      [20]byte
	Creator     [20]byte
	Payout      types.Asset
	PriceFeed   types.Asset
	MinedBonus  types.Asset
	CreatedAt   int64
}

// Crew is the public profile of a player.
type Crew struct {
	User      [20]byte
	ImageHash string
	Quote     string
	UpdatedAt int64
}

// AddTreasureRequest carries the fields of a new treasure.
type AddTreasureRequest struct {
	Owner     [20]byte
	Title     string
	ImageURL  string
	Latitude  float64
	Longitude float64
	Secret    string
}

// TreasureUpdate carries the owner-editable display fields.
type TreasureUpdate struct {
	Title       string
	Description string
	ImageURL    string
	VideoURL    string
	MapURL      string
	Category    string
	Level       uint8
}

// AddAwardRequest carries the fields of a new sponsor award.
type AddAwardRequest struct {
	Owner       [20]byte
	TreasureKey uint64
	Title       string
	ImageURL    string
	OrderURL    string
	ValueX2     types.Asset
	Fee         types.Asset
}

// SettleRequest is the oracle report for one treasure.
type SettleRequest struct {
	TreasureKey   uint64
	Secret        string
	VideoViews    uint64
	TotalTurnover types.Asset
	Finder        [20]byte
}

// SettleOutcome summarises what a settlement paid out.
type SettleOutcome struct {
	RankingPoint   uint64
	Delta          types.Asset
	EscrowCleared  types.Asset
	PayoutShare    types.Asset
	CreatorBonus   types.Asset
	BonusFromPool  bool
	AwardActivated bool
	AwardConsumed  bool
	AwardLapsed    bool
	Result         *Result
}
