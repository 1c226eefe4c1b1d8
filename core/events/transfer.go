package events

import (
	"strings"

	"treasurechain/core/types"
	"treasurechain/crypto"
)

const (
	// TypeTransfer is emitted for every ledger balance movement.
	TypeTransfer = "token.transfer"
)

type Transfer struct {
	From     [20]byte
	To       [20]byte
	Quantity types.Asset
	Memo     string
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{
		"from":     crypto.FormatAddress(e.From),
		"to":       crypto.FormatAddress(e.To),
		"quantity": e.Quantity.String(),
		"symbol":   e.Quantity.Symbol.Code,
	}
	if memo := strings.TrimSpace(e.Memo); memo != "" {
		attrs["memo"] = memo
	}
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}
