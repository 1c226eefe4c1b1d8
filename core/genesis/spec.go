package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"treasurechain/core/types"
	"treasurechain/crypto"
	"treasurechain/native/common"
)

// GenesisSpec describes the initial ledger: tokens, balances, capability
// roles and the accounts that exist before the first action.
type GenesisSpec struct {
	GenesisTime string              `json:"genesisTime"`
	Tokens      []TokenSpec         `json:"tokens"`
	Alloc       map[string][]string `json:"alloc"` // addr -> ["1.0000 EOS", ...]
	Roles       map[string][]string `json:"roles"` // role -> []addr
	Accounts    []string            `json:"accounts,omitempty"`

	genesisTimestamp time.Time
}

// TokenSpec registers a token. MaxSupply carries both the symbol and the cap,
// e.g. "1000000000.0000 EOS".
type TokenSpec struct {
	MaxSupply string `json:"maxSupply"`
	Issuer    string `json:"issuer"`

	maxSupply types.Asset
	issuer    [20]byte
}

var knownRoles = map[string]struct{}{
	common.RoleOperator: {},
	common.RoleOracle:   {},
}

func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	spec, err := ParseGenesisSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("genesis spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseGenesisSpec decodes and validates a JSON genesis document. Unknown
// fields are rejected.
func ParseGenesisSpec(raw []byte) (*GenesisSpec, error) {
	var spec GenesisSpec
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &spec, nil
}

func (s *GenesisSpec) GenesisTimestamp() time.Time { return s.genesisTimestamp }

func (s *GenesisSpec) validate() error {
	parsedTime, err := parseGenesisTime(s.GenesisTime)
	if err != nil {
		return err
	}
	s.genesisTimestamp = parsedTime

	tokens := make(map[string]types.Symbol, len(s.Tokens))
	for i := range s.Tokens {
		if err := s.Tokens[i].validate(); err != nil {
			return fmt.Errorf("tokens[%d]: %w", i, err)
		}
		sym := s.Tokens[i].maxSupply.Symbol
		if _, exists := tokens[sym.Code]; exists {
			return fmt.Errorf("tokens[%d]: duplicate symbol %q", i, sym.Code)
		}
		tokens[sym.Code] = sym
	}

	accounts := make([]string, 0, len(s.Alloc))
	for account := range s.Alloc {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	for _, account := range accounts {
		if _, err := crypto.ParseAccount(account); err != nil {
			return fmt.Errorf("alloc[%q]: %w", account, err)
		}
		seen := make(map[string]struct{}, len(s.Alloc[account]))
		for _, raw := range s.Alloc[account] {
			amount, err := types.ParseAsset(raw)
			if err != nil {
				return fmt.Errorf("alloc[%q]: %w", account, err)
			}
			if amount.Sign() <= 0 {
				return fmt.Errorf("alloc[%q][%q]: amount must be positive", account, raw)
			}
			sym, ok := tokens[amount.Symbol.Code]
			if !ok {
				return fmt.Errorf("alloc[%q][%q]: undefined token", account, raw)
			}
			if sym != amount.Symbol {
				return fmt.Errorf("alloc[%q][%q]: precision mismatch, token is %s", account, raw, sym)
			}
			if _, dup := seen[sym.Code]; dup {
				return fmt.Errorf("alloc[%q]: duplicate token %q", account, sym.Code)
			}
			seen[sym.Code] = struct{}{}
		}
	}

	roleNames := make([]string, 0, len(s.Roles))
	for role := range s.Roles {
		roleNames = append(roleNames, role)
	}
	sort.Strings(roleNames)
	for _, role := range roleNames {
		if _, ok := knownRoles[role]; !ok {
			return fmt.Errorf("roles: unknown role %q", role)
		}
		for i, account := range s.Roles[role] {
			if _, err := crypto.ParseAccount(account); err != nil {
				return fmt.Errorf("roles[%q][%d]: %w", role, i, err)
			}
		}
	}

	for i, account := range s.Accounts {
		if _, err := crypto.ParseAccount(account); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}
	return nil
}

func (t *TokenSpec) validate() error {
	if strings.TrimSpace(t.MaxSupply) == "" {
		return fmt.Errorf("maxSupply must be provided")
	}
	maxSupply, err := types.ParseAsset(t.MaxSupply)
	if err != nil {
		return fmt.Errorf("maxSupply: %w", err)
	}
	if maxSupply.Sign() <= 0 {
		return fmt.Errorf("maxSupply must be positive")
	}
	if strings.TrimSpace(t.Issuer) == "" {
		return fmt.Errorf("issuer must be provided")
	}
	issuer, err := crypto.ParseAccount(t.Issuer)
	if err != nil {
		return fmt.Errorf("issuer: %w", err)
	}
	t.maxSupply = maxSupply
	t.issuer = issuer
	return nil
}

func parseGenesisTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("genesisTime must be provided")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid genesisTime %q", value)
}
