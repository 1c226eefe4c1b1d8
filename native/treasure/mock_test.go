package treasure

import (
	"fmt"
	"math/big"
	"math/rand"

	"treasurechain/core/types"
	"treasurechain/native/common"
	"treasurechain/native/params"
)

type mockState struct {
	treasures map[uint64]*Treasure
	awards    map[uint64]*SponsorAward
	tickets   map[TicketKind]map[uint64]*Ticket
	results   map[uint64]*Result
	crew      map[[20]byte]*Crew
	seqs      map[string]uint64
	quotas    map[string]common.QuotaNow
	accounts  map[[20]byte]bool
	roles     map[string]map[[20]byte]bool
}

func newMockState() *mockState {
	return &mockState{
		treasures: make(map[uint64]*Treasure),
		awards:    make(map[uint64]*SponsorAward),
		tickets:   map[TicketKind]map[uint64]*Ticket{TicketCheck: {}, TicketUnlock: {}},
		results:   make(map[uint64]*Result),
		crew:      make(map[[20]byte]*Crew),
		seqs:      make(map[string]uint64),
		quotas:    make(map[string]common.QuotaNow),
		accounts:  make(map[[20]byte]bool),
		roles:     make(map[string]map[[20]byte]bool),
	}
}

func (m *mockState) TreasureGet(key uint64) (*Treasure, bool, error) {
	t, ok := m.treasures[key]
	if !ok {
		return nil, false, nil
	}
	return t.Clone(), true, nil
}

func (m *mockState) TreasurePut(t *Treasure) error {
	m.treasures[t.Key] = t.Clone()
	return nil
}

func (m *mockState) TreasureDelete(key uint64) error {
	delete(m.treasures, key)
	return nil
}

func (m *mockState) TreasureKeys() ([]uint64, error) {
	keys := make([]uint64, 0, len(m.treasures))
	for k := range m.treasures {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mockState) SponsorAwardGet(key uint64) (*SponsorAward, bool, error) {
	a, ok := m.awards[key]
	if !ok {
		return nil, false, nil
	}
	return a.Clone(), true, nil
}

func (m *mockState) SponsorAwardPut(a *SponsorAward) error {
	m.awards[a.Key] = a.Clone()
	return nil
}

func (m *mockState) SponsorAwardDelete(key uint64) error {
	delete(m.awards, key)
	return nil
}

func (m *mockState) SponsorQueueKeys(treasureKey uint64) ([]uint64, error) {
	var keys []uint64
	for k, a := range m.awards {
		if a.TreasureKey == treasureKey {
			keys = append(keys, k)
		}
	}
	// Map iteration order is random; the engine must order the queue itself.
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys, nil
}

func (m *mockState) TicketGet(kind TicketKind, key uint64) (*Ticket, bool, error) {
	t, ok := m.tickets[kind][key]
	if !ok {
		return nil, false, nil
	}
	clone := *t
	return &clone, true, nil
}

func (m *mockState) TicketPut(t *Ticket) error {
	clone := *t
	m.tickets[t.Kind][t.Key] = &clone
	return nil
}

func (m *mockState) TicketDelete(kind TicketKind, key uint64) error {
	delete(m.tickets[kind], key)
	return nil
}

func (m *mockState) TicketKeys(kind TicketKind) ([]uint64, error) {
	var keys []uint64
	for k := range m.tickets[kind] {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mockState) ResultGet(key uint64) (*Result, bool, error) {
	r, ok := m.results[key]
	if !ok {
		return nil, false, nil
	}
	clone := *r
	return &clone, true, nil
}

func (m *mockState) ResultPut(r *Result) error {
	clone := *r
	m.results[r.Key] = &clone
	return nil
}

func (m *mockState) ResultDelete(key uint64) error {
	delete(m.results, key)
	return nil
}

func (m *mockState) ResultKeys() ([]uint64, error) {
	var keys []uint64
	for k := range m.results {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mockState) CrewGet(user [20]byte) (*Crew, bool, error) {
	c, ok := m.crew[user]
	if !ok {
		return nil, false, nil
	}
	clone := *c
	return &clone, true, nil
}

func (m *mockState) CrewPut(c *Crew) error {
	clone := *c
	m.crew[c.User] = &clone
	return nil
}

func (m *mockState) CrewDelete(user [20]byte) error {
	delete(m.crew, user)
	return nil
}

func (m *mockState) NextSequence(name string) (uint64, error) {
	m.seqs[name]++
	return m.seqs[name], nil
}

func (m *mockState) QuotaGet(bucket string, addr [20]byte) (common.QuotaNow, bool, error) {
	q, ok := m.quotas[bucket+string(addr[:])]
	return q, ok, nil
}

func (m *mockState) QuotaPut(bucket string, addr [20]byte, q common.QuotaNow) error {
	m.quotas[bucket+string(addr[:])] = q
	return nil
}

func (m *mockState) AccountExists(addr [20]byte) (bool, error) { return m.accounts[addr], nil }

func (m *mockState) HasRole(role string, addr []byte) bool {
	var key [20]byte
	copy(key[:], addr)
	return m.roles[role][key]
}

// fakeLedger is a minimal balance book. Transfers into the contract run the
// registered hook the way the token engine notifies observers.
type fakeLedger struct {
	balances map[string]*big.Int
	hook     func(from, to [20]byte, q types.Asset, memo string) error
	issuer   [20]byte
	issued   map[[20]byte]*big.Int
	memos    []string
}

func newFakeLedger(issuer [20]byte) *fakeLedger {
	return &fakeLedger{
		balances: make(map[string]*big.Int),
		issued:   make(map[[20]byte]*big.Int),
		issuer:   issuer,
	}
}

func ledgerKey(owner [20]byte, code string) string { return fmt.Sprintf("%x/%s", owner, code) }

func (l *fakeLedger) credit(owner [20]byte, q types.Asset) {
	key := ledgerKey(owner, q.Symbol.Code)
	if l.balances[key] == nil {
		l.balances[key] = big.NewInt(0)
	}
	l.balances[key].Add(l.balances[key], q.Amount)
}

func (l *fakeLedger) amount(owner [20]byte, code string) int64 {
	if bal := l.balances[ledgerKey(owner, code)]; bal != nil {
		return bal.Int64()
	}
	return 0
}

func (l *fakeLedger) Transfer(auth common.Authority, from, to [20]byte, q types.Asset, memo string) error {
	if err := auth.Require(from); err != nil {
		return err
	}
	key := ledgerKey(from, q.Symbol.Code)
	if l.balances[key] == nil || l.balances[key].Cmp(q.Amount) < 0 {
		return fmt.Errorf("%w: overdrawn balance", common.ErrConservation)
	}
	l.balances[key].Sub(l.balances[key], q.Amount)
	l.credit(to, q)
	l.memos = append(l.memos, memo)
	if l.hook != nil {
		return l.hook(from, to, q, memo)
	}
	return nil
}

func (l *fakeLedger) Issue(auth common.Authority, to [20]byte, q types.Asset, memo string) error {
	if err := auth.Require(l.issuer); err != nil {
		return err
	}
	if l.issued[to] == nil {
		l.issued[to] = big.NewInt(0)
	}
	l.issued[to].Add(l.issued[to], q.Amount)
	l.credit(to, q)
	return nil
}

func (l *fakeLedger) Balance(owner [20]byte, sym types.Symbol) (types.Asset, error) {
	return types.Asset{Amount: big.NewInt(l.amount(owner, sym.Code)), Symbol: sym}, nil
}

// fakeParams overrides the built-in defaults per key.
type fakeParams struct {
	assets map[string]types.Asset
	uints  map[string]uint32
}

func newFakeParams() *fakeParams {
	defaults := params.Defaults(base)
	p := &fakeParams{assets: map[string]types.Asset{}, uints: map[string]uint32{}}
	for key, setting := range defaults {
		if setting.AssetValue != nil {
			p.assets[key] = setting.AssetValue.Clone()
		} else {
			p.uints[key] = setting.UintValue
		}
	}
	return p
}

func (p *fakeParams) Asset(key string) (types.Asset, error) {
	a, ok := p.assets[key]
	if !ok {
		return types.Asset{}, fmt.Errorf("%w: %s", common.ErrNotFound, key)
	}
	return a.Clone(), nil
}

func (p *fakeParams) Uint(key string) (uint32, error) { return p.uints[key], nil }

// constSource always yields the same Int63, making draws predictable.
type constSource int64

func (c constSource) Int63() int64 { return int64(c) }
func (c constSource) Seed(int64)   {}

type fixedRandom struct{ v int64 }

func (f fixedRandom) Rand([]byte) *rand.Rand { return rand.New(constSource(f.v)) }

var (
	base     = types.NewSymbol("EOS", 4)
	reward   = types.NewSymbol("BLKBILL", 4)
	contract = [20]byte{0xc0}
	payout   = [20]byte{0xc1}
	operator = [20]byte{0xee}
	oracle   = [20]byte{0xef}
	owner    = [20]byte{0x01}
	finder   = [20]byte{0x02}
	sponsor  = [20]byte{0x03}
)

const testNow int64 = 1_700_000_000

type fixture struct {
	engine *Engine
	state  *mockState
	ledger *fakeLedger
	params *fakeParams
}

func newFixture() *fixture {
	state := newMockState()
	for _, a := range [][20]byte{contract, payout, operator, oracle, owner, finder, sponsor} {
		state.accounts[a] = true
	}
	state.roles[common.RoleOperator] = map[[20]byte]bool{operator: true}
	state.roles[common.RoleOracle] = map[[20]byte]bool{oracle: true}

	ledger := newFakeLedger(contract)
	p := newFakeParams()
	engine := NewEngine()
	engine.SetState(state)
	engine.SetLedger(ledger)
	engine.SetParams(p)
	engine.SetAccounts(contract, payout)
	engine.SetSymbols(base, reward)
	engine.SetNowFunc(func() int64 { return testNow })
	ledger.hook = engine.OnTransfer
	return &fixture{engine: engine, state: state, ledger: ledger, params: p}
}

func (f *fixture) addTreasure() uint64 {
	key, err := f.engine.AddTreasure(common.NewAuthority(owner), owner, AddTreasureRequest{
		Owner:     owner,
		Title:     "Old oak",
		ImageURL:  "https://img.example/oak.jpg",
		Latitude:  59.91,
		Longitude: 10.75,
		Secret:    "enc:abc",
	})
	if err != nil {
		panic(err)
	}
	return key
}

// deposit credits `from` and transfers into the contract, triggering the hook.
func (f *fixture) deposit(from [20]byte, amount int64, memo string) error {
	q := types.NewAsset(amount, base)
	f.ledger.credit(from, q)
	return f.ledger.Transfer(common.NewAuthority(from), from, contract, q, memo)
}
