package treasure

import (
	"strconv"

	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/crypto"
)

const (
	EventTypeTreasureAdded    = "treasure.added"
	EventTypeTreasureModified = "treasure.modified"
	EventTypeTreasureErased   = "treasure.erased"
	EventTypeTreasureRenewed  = "treasure.renewed"
	EventTypeTreasureSettled  = "treasure.settled"
	EventTypeAwardAdded       = "sponsor.award.added"
	EventTypeAwardPaid        = "sponsor.award.paid"
	EventTypeAwardErased      = "sponsor.award.erased"
	EventTypeAwardLinked      = "sponsor.award.linked"
	EventTypeAwardRequeued    = "sponsor.award.requeued"
	EventTypeAwardActivated   = "sponsor.award.activated"
	EventTypeAwardConsumed    = "sponsor.award.consumed"
	EventTypeAwardLapsed      = "sponsor.award.lapsed"
	EventTypeTicketAdded      = "ticket.added"
	EventTypeTicketErased     = "ticket.erased"
	EventTypeResultAdded      = "result.added"
	EventTypeResultErased     = "result.erased"
	EventTypeCrewUpdated      = "crew.updated"
	EventTypeCrewErased       = "crew.erased"
	// EventTypeSummary carries a human-readable notice addressed to a user.
	EventTypeSummary = "treasure.summary"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func keyString(key uint64) string { return strconv.FormatUint(key, 10) }

func TreasureEvent(kind string, t *Treasure) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"treasure":       keyString(t.Key),
			"owner":          crypto.FormatAddress(t.Owner),
			"expirationDate": strconv.FormatInt(t.ExpirationDate, 10),
		},
	}
}

func SettledEvent(t *Treasure, finder [20]byte, out *SettleOutcome) *types.Event {
	attrs := map[string]string{
		"treasure":      keyString(t.Key),
		"finder":        crypto.FormatAddress(finder),
		"rankingPoint":  strconv.FormatUint(out.RankingPoint, 10),
		"totalTurnover": t.TotalTurnover.String(),
		"delta":         out.Delta.String(),
		"escrow":        out.EscrowCleared.String(),
	}
	if out.CreatorBonus.Amount != nil {
		attrs["creatorBonus"] = out.CreatorBonus.String()
		attrs["bonusFromPool"] = strconv.FormatBool(out.BonusFromPool)
	}
	return &types.Event{Type: EventTypeTreasureSettled, Attributes: attrs}
}

func AwardEvent(kind string, a *SponsorAward) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"award":    keyString(a.Key),
			"treasure": keyString(a.TreasureKey),
			"owner":    crypto.FormatAddress(a.Owner),
			"valueX2":  a.ValueX2.String(),
			"fee":      a.Fee.String(),
			"paid":     strconv.FormatBool(a.Paid),
		},
	}
}

func LinkedAwardEvent(kind string, treasureKey uint64, a *LinkedAward) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"award":    keyString(a.QueueKey),
			"treasure": keyString(treasureKey),
			"owner":    crypto.FormatAddress(a.Owner),
			"valueX2":  a.ValueX2.String(),
			"active":   strconv.FormatBool(a.Active),
		},
	}
}

func TicketEvent(kind string, t *Ticket) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"ticket":   keyString(t.Key),
			"kind":     t.Kind.String(),
			"treasure": keyString(t.TreasureKey),
			"account":  crypto.FormatAddress(t.Account),
			"paid":     t.Paid.String(),
		},
	}
}

func ResultEvent(kind string, r *Result) *types.Event {
	return &types.Event{
		Type: kind,
		Attributes: map[string]string{
			"result":     keyString(r.Key),
			"id":         r.ID,
			"treasure":   keyString(r.TreasureKey),
			"finder":     crypto.FormatAddress(r.Finder),
			"creator":    crypto.FormatAddress(r.Creator),
			"payout":     r.Payout.String(),
			"priceFeed":  r.PriceFeed.String(),
			"minedBonus": r.MinedBonus.String(),
			"timestamp":  strconv.FormatInt(r.CreatedAt, 10),
		},
	}
}

func CrewEvent(kind string, user [20]byte) *types.Event {
	return &types.Event{
		Type:       kind,
		Attributes: map[string]string{"user": crypto.FormatAddress(user)},
	}
}

// SummaryEvent is a notice addressed to user, e.g. about a bonus payment.
func SummaryEvent(user [20]byte, message string) *types.Event {
	return &types.Event{
		Type: EventTypeSummary,
		Attributes: map[string]string{
			"user":    crypto.FormatAddress(user),
			"message": message,
		},
	}
}
