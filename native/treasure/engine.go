package treasure

import (
	"time"

	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/native/common"
)

// Sequence names used to allocate primary keys.
const (
	SeqTreasure     = "treasure"
	SeqAward        = "award"
	SeqCheckTicket  = "ticket.check"
	SeqUnlockTicket = "ticket.unlock"
	SeqResult       = "result"
)

// QuotaUnlock names the per-account unlock quota bucket.
const QuotaUnlock = "unlock"

type engineState interface {
	TreasureGet(key uint64) (*Treasure, bool, error)
	TreasurePut(t *Treasure) error
	TreasureDelete(key uint64) error
	TreasureKeys() ([]uint64, error)

	SponsorAwardGet(key uint64) (*SponsorAward, bool, error)
	SponsorAwardPut(a *SponsorAward) error
	SponsorAwardDelete(key uint64) error
	SponsorQueueKeys(treasureKey uint64) ([]uint64, error)

	TicketGet(kind TicketKind, key uint64) (*Ticket, bool, error)
	TicketPut(t *Ticket) error
	TicketDelete(kind TicketKind, key uint64) error
	TicketKeys(kind TicketKind) ([]uint64, error)

	ResultGet(key uint64) (*Result, bool, error)
	ResultPut(r *Result) error
	ResultDelete(key uint64) error
	ResultKeys() ([]uint64, error)

	CrewGet(user [20]byte) (*Crew, bool, error)
	CrewPut(c *Crew) error
	CrewDelete(user [20]byte) error

	NextSequence(name string) (uint64, error)
	QuotaGet(bucket string, addr [20]byte) (common.QuotaNow, bool, error)
	QuotaPut(bucket string, addr [20]byte, q common.QuotaNow) error

	AccountExists(addr [20]byte) (bool, error)
	HasRole(role string, addr []byte) bool
}

// Ledger moves and mints tokens on behalf of the engine.
type Ledger interface {
	Transfer(auth common.Authority, from, to [20]byte, quantity types.Asset, memo string) error
	Issue(auth common.Authority, to [20]byte, quantity types.Asset, memo string) error
	Balance(owner [20]byte, sym types.Symbol) (types.Asset, error)
}

// ParamReader exposes economic parameters with built-in defaults.
type ParamReader interface {
	Asset(key string) (types.Asset, error)
	Uint(key string) (uint32, error)
}

// Engine wires the treasure hunt business logic with persistence, the token
// ledger and event emission.
type Engine struct {
	state       engineState
	ledger      Ledger
	params      ParamReader
	pauses      common.PauseView
	random      RandomSource
	emitter     events.Emitter
	nowFn       func() int64
	contract    [20]byte
	payout      [20]byte
	base        types.Symbol
	reward      types.Symbol
	unlockQuota common.Quota
	txHash      []byte
}

// NewEngine constructs a treasure engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		random:  HashSource{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the token ledger used for payouts and bonuses.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetParams configures the economic parameter source.
func (e *Engine) SetParams(params ParamReader) { e.params = params }

// SetPauses wires the pause view consulted before mutations.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetRandomSource overrides the randomness used by the sponsor lottery.
func (e *Engine) SetRandomSource(src RandomSource) {
	if src == nil {
		e.random = HashSource{}
		return
	}
	e.random = src
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetAccounts configures the contract account holding escrow and the
// token-holder payout account.
func (e *Engine) SetAccounts(contract, payout [20]byte) {
	e.contract = contract
	e.payout = payout
}

// SetSymbols configures the base currency and the reward token.
func (e *Engine) SetSymbols(base, reward types.Symbol) {
	e.base = base
	e.reward = reward
}

// SetUnlockQuota configures the per-account unlock attempt limit.
func (e *Engine) SetUnlockQuota(q common.Quota) { e.unlockQuota = q }

// SetTxHash records the hash of the action being executed. It seeds result
// identifiers and the sponsor lottery.
func (e *Engine) SetTxHash(hash []byte) { e.txHash = append([]byte(nil), hash...) }

// Contract returns the configured contract account.
func (e *Engine) Contract() [20]byte { return e.contract }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) ledgerReady() error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

// contractAuth is the authority used for payouts out of the contract account.
func (e *Engine) contractAuth() common.Authority {
	return common.NewAuthority(e.contract)
}

func (e *Engine) requireOperator(auth common.Authority) error {
	return auth.RequireRole(e.state, common.RoleOperator)
}

func (e *Engine) isOperator(auth common.Authority) bool {
	return auth.HasRole(e.state, common.RoleOperator)
}

func (e *Engine) loadTreasure(key uint64) (*Treasure, error) {
	t, ok, err := e.state.TreasureGet(key)
	if err != nil {
		return nil, err
	}
	if !ok || t == nil {
		return nil, ErrTreasureNotFound
	}
	return t, nil
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}
