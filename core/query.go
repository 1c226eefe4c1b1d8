package core

import (
	"fmt"

	"treasurechain/core/types"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
)

// Read accessors take the processor lock: the trie caches resolved nodes and
// is not safe for concurrent readers while an action is applied.

func (p *Processor) Treasure(key uint64) (*treasure.Treasure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Treasure(key)
}

func (p *Processor) Treasures() ([]*treasure.Treasure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Treasures()
}

// Expired lists the treasures whose ownership window has passed at now.
func (p *Processor) Expired(now int64) ([]uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Expired(now)
}

// Queue returns the sponsor awards waiting for treasureKey in link order.
func (p *Processor) Queue(treasureKey uint64) ([]*treasure.SponsorAward, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.treasure.Treasure(treasureKey); err != nil {
		return nil, err
	}
	return p.treasure.Queue(treasureKey)
}

func (p *Processor) Award(key uint64) (*treasure.SponsorAward, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Award(key)
}

func (p *Processor) Tickets(kind treasure.TicketKind) ([]*treasure.Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Tickets(kind)
}

func (p *Processor) Results() ([]*treasure.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Results()
}

func (p *Processor) Crew(user [20]byte) (*treasure.Crew, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.treasure.Crew(user)
}

// Prices returns the current value-check and unlock prices in base currency.
func (p *Processor) Prices() (check, unlock types.Asset, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if check, err = p.treasure.CheckPrice(); err != nil {
		return
	}
	unlock, err = p.treasure.UnlockPrice()
	return
}

// Balance resolves the balance of owner in the token identified by code.
func (p *Processor) Balance(owner [20]byte, code string) (types.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats, err := p.tokens.Stats(code)
	if err != nil {
		return types.Asset{}, err
	}
	return p.tokens.Balance(owner, stats.Symbol)
}

func (p *Processor) TokenStats(code string) (*token.Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens.Stats(code)
}

// Param returns the stored setting or its built-in default.
func (p *Processor) Param(key string) (params.Setting, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params.Param(key)
}

func (p *Processor) Params() ([]params.Setting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params.List()
}

// Account returns the nonce record of addr.
func (p *Processor) Account(addr [20]byte) (*types.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok, err := p.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %x", treasure.ErrUnknownAccount, addr)
	}
	return account, nil
}

// Height returns the number of committed actions.
func (p *Processor) Height() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Sequence(heightSequence)
}
