package treasure

import (
	"sort"

	"treasurechain/core/types"
	"treasurechain/native/common"
)

func ticketSequence(kind TicketKind) string {
	if kind == TicketUnlock {
		return SeqUnlockTicket
	}
	return SeqCheckTicket
}

func (e *Engine) appendTicket(kind TicketKind, treasureKey uint64, account [20]byte, paid types.Asset, secret string) (*Ticket, error) {
	key, err := e.state.NextSequence(ticketSequence(kind))
	if err != nil {
		return nil, err
	}
	ticket := &Ticket{
		Key:         key,
		Kind:        kind,
		TreasureKey: treasureKey,
		Account:     account,
		Paid:        paid.Clone(),
		Secret:      secret,
		CreatedAt:   e.now(),
	}
	if err := e.state.TicketPut(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// EraseTicket removes a settled ticket from the log. Operators and the
// oracle may clean up.
func (e *Engine) EraseTicket(auth common.Authority, kind TicketKind, key uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !auth.HasRole(e.state, common.RoleOperator) && !auth.HasRole(e.state, common.RoleOracle) {
		return auth.RequireRole(e.state, common.RoleOracle)
	}
	ticket, ok, err := e.state.TicketGet(kind, key)
	if err != nil {
		return err
	}
	if !ok || ticket == nil {
		return ErrTicketNotFound
	}
	if err := e.state.TicketDelete(kind, key); err != nil {
		return err
	}
	e.emit(TicketEvent(EventTypeTicketErased, ticket))
	return nil
}

// Tickets lists pending tickets of one kind in key order.
func (e *Engine) Tickets(kind TicketKind) ([]*Ticket, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	keys, err := e.state.TicketKeys(kind)
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*Ticket, 0, len(keys))
	for _, key := range keys {
		ticket, ok, err := e.state.TicketGet(kind, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ticket)
		}
	}
	return out, nil
}

// EraseResult removes a settlement result. Operator only.
func (e *Engine) EraseResult(auth common.Authority, key uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireOperator(auth); err != nil {
		return err
	}
	result, ok, err := e.state.ResultGet(key)
	if err != nil {
		return err
	}
	if !ok || result == nil {
		return ErrResultNotFound
	}
	if err := e.state.ResultDelete(key); err != nil {
		return err
	}
	e.emit(ResultEvent(EventTypeResultErased, result))
	return nil
}

// Results lists settlement results in key order.
func (e *Engine) Results() ([]*Result, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	keys, err := e.state.ResultKeys()
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*Result, 0, len(keys))
	for _, key := range keys {
		result, ok, err := e.state.ResultGet(key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, result)
		}
	}
	return out, nil
}
