package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress      string    `toml:"RPCAddress"`
	DataDir         string    `toml:"DataDir"`
	GenesisFile     string    `toml:"GenesisFile"`
	ParamsSeedFile  string    `toml:"ParamsSeedFile"`
	Environment     string    `toml:"Environment"`
	LogFile         string    `toml:"LogFile"`
	ContractAccount string    `toml:"ContractAccount"`
	PayoutAccount   string    `toml:"PayoutAccount"`
	BaseSymbol      string    `toml:"BaseSymbol"`
	RewardSymbol    string    `toml:"RewardSymbol"`
	ScoreboardDSN   string    `toml:"ScoreboardDSN"`
	RateLimit       RateLimit `toml:"rate_limit"`
	Pauses          Pauses    `toml:"pauses"`
	Quotas          Quotas    `toml:"quotas"`
}

const (
	DefaultRPCAddress   = ":8080"
	DefaultDataDir      = "./treasure-data"
	DefaultEnvironment  = "dev"
	DefaultBaseSymbol   = "4,EOS"
	DefaultRewardSymbol = "4,BLKBILL"
)

// Load loads the configuration from the given path. A default configuration
// is written when the file does not exist yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = DefaultRPCAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = DefaultDataDir
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = DefaultEnvironment
	}
	if strings.TrimSpace(cfg.BaseSymbol) == "" {
		cfg.BaseSymbol = DefaultBaseSymbol
	}
	if strings.TrimSpace(cfg.RewardSymbol) == "" {
		cfg.RewardSymbol = DefaultRewardSymbol
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 20
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 40
	}
	if cfg.Quotas.Unlock.EpochSeconds == 0 {
		cfg.Quotas.Unlock.EpochSeconds = 86400
	}
}

// createDefault creates and saves a default configuration file. The contract
// and payout accounts are left empty and must be filled in by the operator.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:  DefaultRPCAddress,
		DataDir:     DefaultDataDir,
		GenesisFile: "genesis.json",
	}
	cfg.applyDefaults()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
