package events

import (
	"strings"

	"treasurechain/core/types"
	"treasurechain/crypto"
)

const (
	// TypeTokenSupply is emitted whenever issue or retire changes a supply.
	TypeTokenSupply = "token.supply"

	SupplyReasonIssue  = "issue"
	SupplyReasonRetire = "retire"
)

// TokenSupply records the new circulating supply of a token and the signed
// change that produced it.
type TokenSupply struct {
	Issuer [20]byte
	Supply types.Asset
	Delta  types.Asset
	Reason string
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

func (e TokenSupply) Event() *types.Event {
	code := normalizeAsset(e.Supply.Symbol.Code)
	if code == "" {
		code = "UNKNOWN"
	}
	attrs := map[string]string{
		"symbol": code,
		"issuer": crypto.FormatAddress(e.Issuer),
		"supply": e.Supply.String(),
	}
	if e.Delta.Amount != nil {
		attrs["delta"] = e.Delta.String()
	}
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		attrs["reason"] = reason
	}
	return &types.Event{Type: TypeTokenSupply, Attributes: attrs}
}
