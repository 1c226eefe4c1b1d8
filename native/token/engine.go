package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/native/common"
)

var (
	errNilState          = errors.New("token engine: state not configured")
	ErrTokenExists       = fmt.Errorf("%w: token with symbol already exists", common.ErrStateConflict)
	ErrTokenNotFound     = fmt.Errorf("%w: token with symbol does not exist", common.ErrNotFound)
	ErrInvalidSymbol     = fmt.Errorf("%w: invalid symbol name", common.ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: invalid quantity", common.ErrValidation)
	ErrNonPositive       = fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
	ErrPrecisionMismatch = fmt.Errorf("%w: symbol precision mismatch", common.ErrValidation)
	ErrMemoTooLong       = fmt.Errorf("%w: memo has more than 256 bytes", common.ErrValidation)
	ErrSelfTransfer      = fmt.Errorf("%w: cannot transfer to self", common.ErrValidation)
	ErrUnknownAccount    = fmt.Errorf("%w: to account does not exist", common.ErrNotFound)
	ErrExceedsMaxSupply  = fmt.Errorf("%w: quantity exceeds available supply", common.ErrConservation)
	ErrOverdrawn         = fmt.Errorf("%w: overdrawn balance", common.ErrConservation)
	ErrSupplyUnderflow   = fmt.Errorf("%w: retire exceeds supply", common.ErrConservation)
)

type engineState interface {
	TokenStatsGet(code string) (*Stats, bool, error)
	TokenStatsPut(stats *Stats) error
	TokenBalanceGet(owner [20]byte, code string) (*big.Int, bool, error)
	TokenBalancePut(owner [20]byte, code string, amount *big.Int) error
	AccountExists(addr [20]byte) (bool, error)
	HasRole(role string, addr []byte) bool
}

// TransferObserver is notified after every successful transfer. An error
// aborts the enclosing action.
type TransferObserver interface {
	OnTransfer(from, to [20]byte, quantity types.Asset, memo string) error
}

// TransferObserverFunc adapts a function to TransferObserver.
type TransferObserverFunc func(from, to [20]byte, quantity types.Asset, memo string) error

// OnTransfer implements TransferObserver.
func (f TransferObserverFunc) OnTransfer(from, to [20]byte, quantity types.Asset, memo string) error {
	return f(from, to, quantity, memo)
}

// Engine implements the fungible token ledger.
type Engine struct {
	state     engineState
	emitter   events.Emitter
	pauses    common.PauseView
	observers []TransferObserver
}

// NewEngine constructs a ledger engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the pause view consulted before mutations.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// AddObserver registers a transfer observer. Observers run in registration
// order.
func (e *Engine) AddObserver(o TransferObserver) {
	if o == nil {
		return
	}
	e.observers = append(e.observers, o)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Create registers a new token with zero supply.
func (e *Engine) Create(auth common.Authority, issuer [20]byte, maxSupply types.Asset) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := auth.RequireRole(e.state, common.RoleOperator); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleToken); err != nil {
		return err
	}
	if !maxSupply.Symbol.Valid() {
		return ErrInvalidSymbol
	}
	if !maxSupply.Valid() {
		return ErrInvalidQuantity
	}
	if maxSupply.Sign() <= 0 {
		return fmt.Errorf("%w: max-supply must be positive", common.ErrValidation)
	}
	if issuer == ([20]byte{}) {
		return fmt.Errorf("%w: issuer required", common.ErrValidation)
	}
	_, exists, err := e.state.TokenStatsGet(maxSupply.Symbol.Code)
	if err != nil {
		return err
	}
	if exists {
		return ErrTokenExists
	}
	stats := &Stats{
		Symbol:    maxSupply.Symbol,
		Supply:    big.NewInt(0),
		MaxSupply: new(big.Int).Set(maxSupply.Amount),
		Issuer:    issuer,
	}
	if err := e.state.TokenStatsPut(stats); err != nil {
		return err
	}
	e.emit(WrapEvent(TokenCreatedEvent(stats)))
	return nil
}

// Issue mints quantity to the issuer and forwards it to `to` when the
// recipient differs from the issuer.
func (e *Engine) Issue(auth common.Authority, to [20]byte, quantity types.Asset, memo string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := common.Guard(e.pauses, common.ModuleToken); err != nil {
		return err
	}
	if err := validateMemo(memo); err != nil {
		return err
	}
	stats, err := e.loadStats(quantity)
	if err != nil {
		return err
	}
	if err := auth.Require(stats.Issuer); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	available := new(big.Int).Sub(stats.MaxSupply, stats.Supply)
	if quantity.Amount.Cmp(available) > 0 {
		return ErrExceedsMaxSupply
	}
	stats.Supply = new(big.Int).Add(stats.Supply, quantity.Amount)
	if err := e.state.TokenStatsPut(stats); err != nil {
		return err
	}
	if err := e.addBalance(stats.Issuer, quantity); err != nil {
		return err
	}
	e.emit(events.TokenSupply{
		Issuer: stats.Issuer,
		Supply: stats.SupplyAsset(),
		Delta:  quantity.Clone(),
		Reason: events.SupplyReasonIssue,
	})
	if to != stats.Issuer {
		return e.transfer(stats, stats.Issuer, to, quantity, memo)
	}
	return nil
}

// Transfer moves quantity from `from` to `to` and notifies observers.
func (e *Engine) Transfer(auth common.Authority, from, to [20]byte, quantity types.Asset, memo string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := auth.Require(from); err != nil {
		return err
	}
	if err := common.Guard(e.pauses, common.ModuleToken); err != nil {
		return err
	}
	if from == to {
		return ErrSelfTransfer
	}
	if err := validateMemo(memo); err != nil {
		return err
	}
	stats, err := e.loadStats(quantity)
	if err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	return e.transfer(stats, from, to, quantity, memo)
}

func (e *Engine) transfer(stats *Stats, from, to [20]byte, quantity types.Asset, memo string) error {
	exists, err := e.state.AccountExists(to)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownAccount
	}
	if err := e.subBalance(from, quantity); err != nil {
		return err
	}
	if err := e.addBalance(to, quantity); err != nil {
		return err
	}
	e.emit(events.Transfer{From: from, To: to, Quantity: quantity.Clone(), Memo: memo})
	for _, o := range e.observers {
		if err := o.OnTransfer(from, to, quantity.Clone(), memo); err != nil {
			return err
		}
	}
	return nil
}

// Retire burns quantity from the issuer's balance.
func (e *Engine) Retire(auth common.Authority, quantity types.Asset, memo string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := common.Guard(e.pauses, common.ModuleToken); err != nil {
		return err
	}
	if err := validateMemo(memo); err != nil {
		return err
	}
	stats, err := e.loadStats(quantity)
	if err != nil {
		return err
	}
	if err := auth.Require(stats.Issuer); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if stats.Supply.Cmp(quantity.Amount) < 0 {
		return ErrSupplyUnderflow
	}
	if err := e.subBalance(stats.Issuer, quantity); err != nil {
		return err
	}
	stats.Supply = new(big.Int).Sub(stats.Supply, quantity.Amount)
	if err := e.state.TokenStatsPut(stats); err != nil {
		return err
	}
	e.emit(events.TokenSupply{
		Issuer: stats.Issuer,
		Supply: stats.SupplyAsset(),
		Delta:  types.Asset{Amount: new(big.Int).Neg(quantity.Amount), Symbol: quantity.Symbol},
		Reason: events.SupplyReasonRetire,
	})
	return nil
}

// Balance returns the balance of owner in the supplied symbol. Missing
// records read as zero.
func (e *Engine) Balance(owner [20]byte, sym types.Symbol) (types.Asset, error) {
	if e == nil || e.state == nil {
		return types.Asset{}, errNilState
	}
	amount, ok, err := e.state.TokenBalanceGet(owner, sym.Code)
	if err != nil {
		return types.Asset{}, err
	}
	if !ok || amount == nil {
		return types.ZeroAsset(sym), nil
	}
	return types.Asset{Amount: new(big.Int).Set(amount), Symbol: sym}, nil
}

// Stats returns the supply record for the symbol code.
func (e *Engine) Stats(code string) (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	stats, ok, err := e.state.TokenStatsGet(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return stats, nil
}

func (e *Engine) loadStats(quantity types.Asset) (*Stats, error) {
	if !quantity.Symbol.Valid() {
		return nil, ErrInvalidSymbol
	}
	stats, ok, err := e.state.TokenStatsGet(quantity.Symbol.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	if stats.Symbol != quantity.Symbol {
		return nil, ErrPrecisionMismatch
	}
	if stats.Supply == nil {
		stats.Supply = big.NewInt(0)
	}
	if stats.MaxSupply == nil {
		stats.MaxSupply = big.NewInt(0)
	}
	return stats, nil
}

func (e *Engine) subBalance(owner [20]byte, value types.Asset) error {
	current, ok, err := e.state.TokenBalanceGet(owner, value.Symbol.Code)
	if err != nil {
		return err
	}
	if !ok || current == nil || current.Cmp(value.Amount) < 0 {
		return ErrOverdrawn
	}
	return e.state.TokenBalancePut(owner, value.Symbol.Code, new(big.Int).Sub(current, value.Amount))
}

func (e *Engine) addBalance(owner [20]byte, value types.Asset) error {
	current, ok, err := e.state.TokenBalanceGet(owner, value.Symbol.Code)
	if err != nil {
		return err
	}
	next := new(big.Int).Set(value.Amount)
	if ok && current != nil {
		next.Add(next, current)
	}
	return e.state.TokenBalancePut(owner, value.Symbol.Code, next)
}

func validateQuantity(quantity types.Asset) error {
	if !quantity.Valid() {
		return ErrInvalidQuantity
	}
	if quantity.Sign() <= 0 {
		return ErrNonPositive
	}
	return nil
}

func validateMemo(memo string) error {
	if len(memo) > MaxMemoBytes {
		return ErrMemoTooLong
	}
	return nil
}
