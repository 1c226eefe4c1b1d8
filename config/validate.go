package config

import (
	"fmt"
	"strings"

	"treasurechain/core/types"
	"treasurechain/crypto"
)

func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	base, err := types.ParseSymbol(cfg.BaseSymbol)
	if err != nil {
		return fmt.Errorf("BaseSymbol: %w", err)
	}
	reward, err := types.ParseSymbol(cfg.RewardSymbol)
	if err != nil {
		return fmt.Errorf("RewardSymbol: %w", err)
	}
	if base.Code == reward.Code {
		return fmt.Errorf("BaseSymbol and RewardSymbol must differ")
	}
	if strings.TrimSpace(cfg.ContractAccount) != "" {
		if _, err := crypto.ParseAccount(cfg.ContractAccount); err != nil {
			return fmt.Errorf("ContractAccount: %w", err)
		}
	}
	if strings.TrimSpace(cfg.PayoutAccount) != "" {
		if _, err := crypto.ParseAccount(cfg.PayoutAccount); err != nil {
			return fmt.Errorf("PayoutAccount: %w", err)
		}
	}
	if cfg.ContractAccount != "" && cfg.ContractAccount == cfg.PayoutAccount {
		return fmt.Errorf("PayoutAccount must differ from ContractAccount")
	}
	if cfg.RateLimit.RequestsPerSecond < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: negative values")
	}
	return nil
}

// Symbols returns the parsed base and reward symbols.
func (cfg *Config) Symbols() (types.Symbol, types.Symbol, error) {
	base, err := types.ParseSymbol(cfg.BaseSymbol)
	if err != nil {
		return types.Symbol{}, types.Symbol{}, err
	}
	reward, err := types.ParseSymbol(cfg.RewardSymbol)
	if err != nil {
		return types.Symbol{}, types.Symbol{}, err
	}
	return base, reward, nil
}

// Accounts returns the parsed contract and payout accounts.
func (cfg *Config) Accounts() ([20]byte, [20]byte, error) {
	contract, err := crypto.ParseAccount(cfg.ContractAccount)
	if err != nil {
		return [20]byte{}, [20]byte{}, fmt.Errorf("ContractAccount: %w", err)
	}
	payout, err := crypto.ParseAccount(cfg.PayoutAccount)
	if err != nil {
		return [20]byte{}, [20]byte{}, fmt.Errorf("PayoutAccount: %w", err)
	}
	return contract, payout, nil
}
