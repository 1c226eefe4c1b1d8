package token

import (
	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/crypto"
)

const (
	// EventTypeTokenCreated is emitted when a new token symbol is registered.
	EventTypeTokenCreated = "token.created"
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

// TokenCreatedEvent describes a freshly created token.
func TokenCreatedEvent(stats *Stats) *types.Event {
	return &types.Event{
		Type: EventTypeTokenCreated,
		Attributes: map[string]string{
			"symbol":    stats.Symbol.String(),
			"issuer":    crypto.FormatAddress(stats.Issuer),
			"maxSupply": stats.MaxSupplyAsset().String(),
		},
	}
}
