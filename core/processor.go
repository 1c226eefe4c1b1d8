package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"treasurechain/config"
	"treasurechain/core/events"
	"treasurechain/core/state"
	"treasurechain/core/types"
	"treasurechain/crypto"
	nativecommon "treasurechain/native/common"
	"treasurechain/native/params"
	"treasurechain/native/token"
	"treasurechain/native/treasure"
	"treasurechain/observability"
	"treasurechain/observability/logging"
	"treasurechain/storage/trie"
)

const heightSequence = "height"

var (
	ErrInvalidNonce  = fmt.Errorf("%w: invalid nonce", nativecommon.ErrStateConflict)
	ErrBadSignature  = fmt.Errorf("%w: invalid signature", nativecommon.ErrAuthorization)
	ErrUnknownAction = fmt.Errorf("%w: unknown action type", nativecommon.ErrValidation)
	ErrBadPayload    = fmt.Errorf("%w: malformed action payload", nativecommon.ErrValidation)
)

// Options configures the engines driven by the processor.
type Options struct {
	Contract     [20]byte
	Payout       [20]byte
	BaseSymbol   types.Symbol
	RewardSymbol types.Symbol
	UnlockQuota  nativecommon.Quota
	Random       treasure.RandomSource
	Logger       *slog.Logger
}

// Processor applies signed actions one at a time against the state trie. An
// action either commits every write it made or none: on failure the trie is
// reset to the last committed root and buffered events are dropped.
type Processor struct {
	mu sync.Mutex

	trie          *trie.Trie
	state         *state.Manager
	committedRoot common.Hash

	tokens   *token.Engine
	params   *params.Store
	treasure *treasure.Engine

	buffer  *events.Buffer
	emitter events.Emitter
	logger  *slog.Logger
	nowFn   func() int64
}

// NewProcessor wires the engines over tr. The trie must already hold a
// genesis state of the supported schema version.
func NewProcessor(tr *trie.Trie, opts Options) (*Processor, error) {
	if tr == nil {
		return nil, fmt.Errorf("core: trie must not be nil")
	}
	if !opts.BaseSymbol.Valid() || !opts.RewardSymbol.Valid() {
		return nil, fmt.Errorf("core: base and reward symbols must be valid")
	}
	if opts.Contract == ([20]byte{}) {
		return nil, fmt.Errorf("core: contract account required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	manager := state.NewManager(tr)
	buffer := &events.Buffer{}

	tokens := token.NewEngine()
	tokens.SetState(manager)
	tokens.SetEmitter(buffer)

	store := params.NewStore(manager, opts.BaseSymbol)
	store.SetEmitter(buffer)
	tokens.SetPauses(store)

	engine := treasure.NewEngine()
	engine.SetState(manager)
	engine.SetLedger(tokens)
	engine.SetParams(store)
	engine.SetPauses(store)
	engine.SetEmitter(buffer)
	engine.SetAccounts(opts.Contract, opts.Payout)
	engine.SetSymbols(opts.BaseSymbol, opts.RewardSymbol)
	engine.SetUnlockQuota(opts.UnlockQuota)
	engine.SetRandomSource(opts.Random)
	tokens.AddObserver(engine)

	p := &Processor{
		trie:          tr,
		state:         manager,
		committedRoot: tr.Root(),
		tokens:        tokens,
		params:        store,
		treasure:      engine,
		buffer:        buffer,
		emitter:       events.NoopEmitter{},
		logger:        logger,
	}
	p.SetNowFunc(nil)
	return p, nil
}

// SetEmitter configures where committed events are forwarded.
func (p *Processor) SetEmitter(emitter events.Emitter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if emitter == nil {
		p.emitter = events.NoopEmitter{}
		return
	}
	p.emitter = emitter
}

// SetNowFunc overrides the clock shared by every engine.
func (p *Processor) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	p.nowFn = now
	p.params.SetNowFunc(now)
	p.treasure.SetNowFunc(now)
}

// CurrentRoot returns the last committed state root.
func (p *Processor) CurrentRoot() common.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committedRoot
}

// Bootstrap seeds parameters and pauses into a freshly built genesis state
// and commits them. It must run before the first action.
func (p *Processor) Bootstrap(seed *params.Seed, pauses config.Pauses) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	height, err := p.state.Sequence(heightSequence)
	if err != nil {
		return err
	}
	if height != 0 {
		return fmt.Errorf("core: bootstrap after %d actions", height)
	}
	if seed != nil {
		if err := p.params.ApplySeed(seed); err != nil {
			p.rollback()
			return fmt.Errorf("core: apply params seed: %w", err)
		}
	}
	if err := p.params.SetPauses(pauses); err != nil {
		p.rollback()
		return err
	}
	root, err := p.trie.Commit(p.committedRoot, 0)
	if err != nil {
		p.rollback()
		return err
	}
	if err := writeHead(p.trie.Store(), root); err != nil {
		p.rollback()
		return err
	}
	p.committedRoot = root
	p.buffer.Reset()
	return nil
}

// Apply verifies and executes a signed action. On success the state is
// committed and a receipt listing the emitted events is returned.
func (p *Processor) Apply(tx *types.Transaction) (*types.Receipt, error) {
	if tx == nil {
		return nil, ErrBadPayload
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	started := time.Now()
	action := tx.Type.String()
	receipt, err := p.apply(tx)
	if err != nil {
		p.rollback()
		observability.Chain().RecordAction(action, nativecommon.ClassName(err), time.Since(started))
		p.logger.Warn("action rejected",
			slog.String("action", action),
			slog.Uint64("nonce", tx.Nonce),
			slog.String("class", nativecommon.ClassName(err)),
			logging.MaskField("payload", string(tx.Data)),
			slog.Any("error", err))
		return nil, err
	}

	committed := p.buffer.Events()
	p.buffer.FlushTo(p.emitter)
	for _, evt := range committed {
		observability.Events().RecordEvent(evt.EventType())
		if transfer, ok := evt.(events.Transfer); ok {
			observability.Events().RecordTransfer(transfer.Quantity.Symbol.Code)
		}
		recordSettlement(evt.EventType())
	}
	observability.Chain().RecordAction(action, "", time.Since(started))
	observability.Chain().SetHeight(receipt.Height)
	p.logger.Info("action applied",
		slog.String("action", action),
		slog.String("signer", receipt.Signer),
		slog.Uint64("height", receipt.Height),
		slog.Int("events", len(receipt.Events)),
		slog.String("root", fmt.Sprintf("%x", receipt.StateRoot)))
	return receipt, nil
}

func (p *Processor) apply(tx *types.Transaction) (*types.Receipt, error) {
	signer, err := tx.From()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	account, _, err := p.state.GetAccount(signer)
	if err != nil {
		return nil, err
	}
	expected := uint64(0)
	if account != nil {
		expected = account.Nonce
	}
	if tx.Nonce != expected {
		return nil, fmt.Errorf("%w: expected %d got %d", ErrInvalidNonce, expected, tx.Nonce)
	}
	now := p.nowFn()
	account, err = p.state.OpenAccount(signer, uint64(now))
	if err != nil {
		return nil, err
	}
	account.Nonce++
	if err := p.state.PutAccount(signer, account); err != nil {
		return nil, err
	}

	p.treasure.SetTxHash(hash)
	if err := p.dispatch(tx.Type, signer, tx.Data); err != nil {
		return nil, err
	}

	height, err := p.state.NextSequence(heightSequence)
	if err != nil {
		return nil, err
	}
	root, err := p.trie.Commit(p.committedRoot, height)
	if err != nil {
		return nil, err
	}
	if err := writeHead(p.trie.Store(), root); err != nil {
		return nil, err
	}
	p.committedRoot = root

	buffered := p.buffer.Events()
	receipt := &types.Receipt{
		Height:    height,
		TxHash:    hash,
		Type:      tx.Type.String(),
		Signer:    crypto.FormatAddress(signer),
		StateRoot: root.Bytes(),
		Timestamp: now,
		Events:    make([]types.Event, 0, len(buffered)),
	}
	for _, evt := range buffered {
		if payload, ok := evt.(events.Payload); ok && payload.Event() != nil {
			receipt.Events = append(receipt.Events, *payload.Event())
		}
	}
	return receipt, nil
}

func (p *Processor) rollback() {
	p.buffer.Reset()
	if err := p.trie.Reset(p.committedRoot); err != nil {
		p.logger.Error("reset state to committed root", slog.Any("error", err))
	}
}

func recordSettlement(eventType string) {
	switch eventType {
	case treasure.EventTypeTreasureSettled:
		observability.Chain().RecordSettlement("settled")
	case treasure.EventTypeAwardActivated:
		observability.Chain().RecordSettlement("award_activated")
	case treasure.EventTypeAwardConsumed:
		observability.Chain().RecordSettlement("award_consumed")
	case treasure.EventTypeAwardLapsed:
		observability.Chain().RecordSettlement("award_lapsed")
	case treasure.EventTypeResultAdded:
		observability.Chain().RecordSettlement("result")
	}
}
