package genesis

import (
	"fmt"
	"math/big"
	"sort"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"treasurechain/core/state"
	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/native/token"
	"treasurechain/storage"
	"treasurechain/storage/trie"
)

// Options names the accounts the treasure engine operates with. Both are
// opened at genesis. When the reward token is part of the spec its issuer
// must be the contract account, since settlement mints through it.
type Options struct {
	Contract     [20]byte
	Payout       [20]byte
	RewardSymbol types.Symbol
}

// BuildGenesis writes the initial state described by spec into a fresh trie
// and returns the committed root.
func BuildGenesis(spec *GenesisSpec, db storage.Database, opts Options) (ethcommon.Hash, error) {
	if spec == nil {
		return ethcommon.Hash{}, fmt.Errorf("genesis spec must not be nil")
	}
	if db == nil {
		return ethcommon.Hash{}, fmt.Errorf("database must not be nil")
	}
	ts := spec.GenesisTimestamp()
	if ts.IsZero() {
		if err := spec.validate(); err != nil {
			return ethcommon.Hash{}, err
		}
		ts = spec.GenesisTimestamp()
	}
	now := uint64(ts.Unix())

	stateTrie, err := trie.NewTrie(db, nil)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("init state trie: %w", err)
	}
	manager := state.NewManager(stateTrie)
	parentRoot := stateTrie.Root()

	// 1) Accounts: engine accounts first, then the listed ones.
	for _, addr := range [][20]byte{opts.Contract, opts.Payout} {
		if addr == ([20]byte{}) {
			continue
		}
		if _, err := manager.OpenAccount(addr, now); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("open engine account: %w", err)
		}
	}
	for _, raw := range spec.Accounts {
		addr, err := crypto.ParseAccount(raw)
		if err != nil {
			return ethcommon.Hash{}, fmt.Errorf("accounts[%q]: %w", raw, err)
		}
		if _, err := manager.OpenAccount(addr, now); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("open account %q: %w", raw, err)
		}
	}

	// 2) Tokens (sorted by code)
	tokens := append([]TokenSpec(nil), spec.Tokens...)
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].maxSupply.Symbol.Code < tokens[j].maxSupply.Symbol.Code
	})
	stats := make(map[string]*token.Stats, len(tokens))
	for i := range tokens {
		t := &tokens[i]
		sym := t.maxSupply.Symbol
		if opts.RewardSymbol.Code != "" && sym.Code == opts.RewardSymbol.Code {
			if sym != opts.RewardSymbol {
				return ethcommon.Hash{}, fmt.Errorf("token %q: precision differs from reward symbol %s", sym.Code, opts.RewardSymbol)
			}
			if t.issuer != opts.Contract {
				return ethcommon.Hash{}, fmt.Errorf("token %q: issuer must be the contract account", sym.Code)
			}
		}
		if _, err := manager.OpenAccount(t.issuer, now); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("token %q issuer: %w", sym.Code, err)
		}
		stats[sym.Code] = &token.Stats{
			Symbol:    sym,
			Supply:    big.NewInt(0),
			MaxSupply: new(big.Int).Set(t.maxSupply.Amount),
			Issuer:    t.issuer,
		}
	}

	// 3) Allocations (addresses sorted). Supply grows with every balance.
	allocAddresses := make([]string, 0, len(spec.Alloc))
	for addr := range spec.Alloc {
		allocAddresses = append(allocAddresses, addr)
	}
	sort.Strings(allocAddresses)
	for _, addrStr := range allocAddresses {
		addr, err := crypto.ParseAccount(addrStr)
		if err != nil {
			return ethcommon.Hash{}, fmt.Errorf("alloc[%q]: %w", addrStr, err)
		}
		if _, err := manager.OpenAccount(addr, now); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("alloc[%q]: %w", addrStr, err)
		}
		for _, raw := range spec.Alloc[addrStr] {
			amount, err := types.ParseAsset(raw)
			if err != nil {
				return ethcommon.Hash{}, fmt.Errorf("alloc[%q]: %w", addrStr, err)
			}
			st, ok := stats[amount.Symbol.Code]
			if !ok {
				return ethcommon.Hash{}, fmt.Errorf("alloc[%q][%q]: undefined token", addrStr, raw)
			}
			st.Supply.Add(st.Supply, amount.Amount)
			if st.Supply.Cmp(st.MaxSupply) > 0 {
				return ethcommon.Hash{}, fmt.Errorf("alloc[%q][%q]: exceeds max supply of %s", addrStr, raw, st.MaxSupplyAsset())
			}
			if err := manager.TokenBalancePut(addr, amount.Symbol.Code, amount.Amount); err != nil {
				return ethcommon.Hash{}, fmt.Errorf("alloc[%q][%q]: %w", addrStr, raw, err)
			}
		}
	}
	for _, t := range tokens {
		if err := manager.TokenStatsPut(stats[t.maxSupply.Symbol.Code]); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("token %q: %w", t.maxSupply.Symbol.Code, err)
		}
	}

	// 4) Roles (role name sorted; addresses sorted by SetRole)
	roleNames := make([]string, 0, len(spec.Roles))
	for role := range spec.Roles {
		roleNames = append(roleNames, role)
	}
	sort.Strings(roleNames)
	for _, role := range roleNames {
		for _, addrStr := range spec.Roles[role] {
			addr, err := crypto.ParseAccount(addrStr)
			if err != nil {
				return ethcommon.Hash{}, fmt.Errorf("roles[%q]: %w", role, err)
			}
			if _, err := manager.OpenAccount(addr, now); err != nil {
				return ethcommon.Hash{}, fmt.Errorf("roles[%q]: %w", role, err)
			}
			if err := manager.SetRole(role, addr[:]); err != nil {
				return ethcommon.Hash{}, fmt.Errorf("roles[%q]: %w", role, err)
			}
		}
	}

	if err := manager.SetStateVersion(state.StateVersion); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("state version: %w", err)
	}

	// 5) Commit
	newRoot, err := stateTrie.Commit(parentRoot, 0)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("commit state: %w", err)
	}
	return newRoot, nil
}
