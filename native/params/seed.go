package params

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"treasurechain/config"
	"treasurechain/core/types"
)

// Seed is the YAML document used to bootstrap settings at genesis.
//
//	settings:
//	  - key: eosusd
//	    asset: "2.7600 USD"
//	  - key: rndsponsorac
//	    uint: 50
//	pauses:
//	  settlement: false
type Seed struct {
	Settings []SeedSetting `yaml:"settings"`
	Pauses   config.Pauses `yaml:"pauses"`
}

type SeedSetting struct {
	Key    string `yaml:"key"`
	String string `yaml:"string,omitempty"`
	Asset  string `yaml:"asset,omitempty"`
	Uint   uint32 `yaml:"uint,omitempty"`
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: read seed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes a YAML seed document. Unknown fields are rejected.
func ParseSeed(raw []byte) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("params: decode seed: %w", err)
	}
	seen := make(map[string]struct{}, len(seed.Settings))
	for _, entry := range seed.Settings {
		if _, dup := seen[entry.Key]; dup {
			return nil, fmt.Errorf("params: duplicate seed key %q", entry.Key)
		}
		seen[entry.Key] = struct{}{}
		if _, err := entry.Setting(); err != nil {
			return nil, err
		}
	}
	return &seed, nil
}

// Setting converts the YAML entry into a setting record.
func (e SeedSetting) Setting() (Setting, error) {
	out := Setting{Key: e.Key, StringValue: e.String, UintValue: e.Uint}
	if e.Asset != "" {
		asset, err := types.ParseAsset(e.Asset)
		if err != nil {
			return Setting{}, fmt.Errorf("params: seed %s: %w", e.Key, err)
		}
		out.AssetValue = &asset
	}
	if err := validateSetting(&out); err != nil {
		return Setting{}, fmt.Errorf("params: seed %s: %w", e.Key, err)
	}
	return out, nil
}

// ApplySeed writes every seeded setting and the pause configuration without
// an authorization check. Only genesis bootstrap calls it.
func (s *Store) ApplySeed(seed *Seed) error {
	if seed == nil {
		return nil
	}
	state, err := s.withState()
	if err != nil {
		return err
	}
	now := s.nowFn()
	for _, entry := range seed.Settings {
		setting, err := entry.Setting()
		if err != nil {
			return err
		}
		setting.UpdatedAt = now
		if err := state.SettingPut(&setting); err != nil {
			return err
		}
	}
	return s.SetPauses(seed.Pauses)
}
