package rpc

import (
	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
)

type linkedAwardView struct {
	QueueKey  uint64      `json:"queueKey"`
	Owner     string      `json:"owner"`
	Title     string      `json:"title"`
	ImageURL  string      `json:"imageUrl"`
	OrderURL  string      `json:"orderUrl"`
	ValueX2   types.Asset `json:"valueX2"`
	Fee       types.Asset `json:"fee"`
	Active    bool        `json:"active"`
	CreatedAt int64       `json:"createdAt"`
	LinkedAt  int64       `json:"linkedAt"`
}

// treasureView omits the stored secret.
type treasureView struct {
	Key              uint64           `json:"key"`
	Owner            string           `json:"owner"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	ImageURL         string           `json:"imageUrl"`
	MapURL           string           `json:"mapUrl,omitempty"`
	VideoURL         string           `json:"videoUrl,omitempty"`
	Category         string           `json:"category,omitempty"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	Level            uint8            `json:"level"`
	VideoViews       uint64           `json:"videoViews"`
	TotalTurnover    types.Asset      `json:"totalTurnover"`
	PreChestTransfer types.Asset      `json:"preChestTransfer"`
	RankingPoint     uint64           `json:"rankingPoint"`
	CreatedAt        int64            `json:"createdAt"`
	ExpirationDate   int64            `json:"expirationDate"`
	Award            *linkedAwardView `json:"award,omitempty"`
}

func newTreasureView(t *treasure.Treasure) treasureView {
	view := treasureView{
		Key:              t.Key,
		Owner:            crypto.FormatAddress(t.Owner),
		Title:            t.Title,
		Description:      t.Description,
		ImageURL:         t.ImageURL,
		MapURL:           t.MapURL,
		VideoURL:         t.VideoURL,
		Category:         t.Category,
		Latitude:         t.Latitude,
		Longitude:        t.Longitude,
		Level:            t.Level,
		VideoViews:       t.VideoViews,
		TotalTurnover:    t.TotalTurnover,
		PreChestTransfer: t.PreChestTransfer,
		RankingPoint:     t.RankingPoint,
		CreatedAt:        t.CreatedAt,
		ExpirationDate:   t.ExpirationDate,
	}
	if t.HasAward() {
		a := t.Award
		view.Award = &linkedAwardView{
			QueueKey:  a.QueueKey,
			Owner:     crypto.FormatAddress(a.Owner),
			Title:     a.Title,
			ImageURL:  a.ImageURL,
			OrderURL:  a.OrderURL,
			ValueX2:   a.ValueX2,
			Fee:       a.Fee,
			Active:    a.Active,
			CreatedAt: a.CreatedAt,
			LinkedAt:  a.LinkedAt,
		}
	}
	return view
}

type awardView struct {
	Key         uint64      `json:"key"`
	TreasureKey uint64      `json:"treasureKey"`
	Owner       string      `json:"owner"`
	Title       string      `json:"title"`
	ImageURL    string      `json:"imageUrl"`
	OrderURL    string      `json:"orderUrl"`
	ValueX2     types.Asset `json:"valueX2"`
	Fee         types.Asset `json:"fee"`
	Paid        bool        `json:"paid"`
	CreatedAt   int64       `json:"createdAt"`
}

func newAwardView(a *treasure.SponsorAward) awardView {
	return awardView{
		Key:         a.Key,
		TreasureKey: a.TreasureKey,
		Owner:       crypto.FormatAddress(a.Owner),
		Title:       a.Title,
		ImageURL:    a.ImageURL,
		OrderURL:    a.OrderURL,
		ValueX2:     a.ValueX2,
		Fee:         a.Fee,
		Paid:        a.Paid,
		CreatedAt:   a.CreatedAt,
	}
}

type ticketView struct {
	Key         uint64      `json:"key"`
	Kind        string      `json:"kind"`
	TreasureKey uint64      `json:"treasureKey"`
	Account     string      `json:"account"`
	Paid        types.Asset `json:"paid"`
	Secret      string      `json:"secret,omitempty"`
	CreatedAt   int64       `json:"createdAt"`
}

func newTicketView(t *treasure.Ticket) ticketView {
	return ticketView{
		Key:         t.Key,
		Kind:        t.Kind.String(),
		TreasureKey: t.TreasureKey,
		Account:     crypto.FormatAddress(t.Account),
		Paid:        t.Paid,
		Secret:      t.Secret,
		CreatedAt:   t.CreatedAt,
	}
}

type resultView struct {
	Key         uint64      `json:"key"`
	ID          string      `json:"id"`
	TreasureKey uint64      `json:"treasureKey"`
	Finder      string      `json:"finder"`
	Creator     string      `json:"creator"`
	Payout      types.Asset `json:"payout"`
	PriceFeed   types.Asset `json:"priceFeed"`
	MinedBonus  types.Asset `json:"minedBonus"`
	CreatedAt   int64       `json:"createdAt"`
}

func newResultView(r *treasure.Result) resultView {
	return resultView{
		Key:         r.Key,
		ID:          r.ID,
		TreasureKey: r.TreasureKey,
		Finder:      crypto.FormatAddress(r.Finder),
		Creator:     crypto.FormatAddress(r.Creator),
		Payout:      r.Payout,
		PriceFeed:   r.PriceFeed,
		MinedBonus:  r.MinedBonus,
		CreatedAt:   r.CreatedAt,
	}
}

type statsView struct {
	Symbol    types.Symbol `json:"symbol"`
	Supply    types.Asset  `json:"supply"`
	MaxSupply types.Asset  `json:"maxSupply"`
	Issuer    string       `json:"issuer"`
}

func newStatsView(s *token.Stats) statsView {
	return statsView{
		Symbol:    s.Symbol,
		Supply:    s.SupplyAsset(),
		MaxSupply: s.MaxSupplyAsset(),
		Issuer:    crypto.FormatAddress(s.Issuer),
	}
}

type settingView struct {
	Key         string       `json:"key"`
	StringValue string       `json:"stringValue,omitempty"`
	AssetValue  *types.Asset `json:"assetValue,omitempty"`
	UintValue   uint32       `json:"uintValue"`
	UpdatedAt   int64        `json:"updatedAt,omitempty"`
}

func newSettingView(s params.Setting) settingView {
	return settingView{
		Key:         s.Key,
		StringValue: s.StringValue,
		AssetValue:  s.AssetValue,
		UintValue:   s.UintValue,
		UpdatedAt:   s.UpdatedAt,
	}
}

type crewView struct {
	User      string `json:"user"`
	ImageHash string `json:"imageHash"`
	Quote     string `json:"quote"`
	UpdatedAt int64  `json:"updatedAt"`
}

type pricesView struct {
	Check  types.Asset `json:"check"`
	Unlock types.Asset `json:"unlock"`
}
