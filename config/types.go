package config

// Pauses toggles individual modules off. Paused modules reject every
// mutating action.
type Pauses struct {
	Token      bool `toml:"Token" json:"token" yaml:"token"`
	Treasure   bool `toml:"Treasure" json:"treasure" yaml:"treasure"`
	Settlement bool `toml:"Settlement" json:"settlement" yaml:"settlement"`
}

// IsPaused reports whether the named module is paused.
func (p Pauses) IsPaused(module string) bool {
	switch module {
	case "token":
		return p.Token
	case "treasure":
		return p.Treasure
	case "settlement":
		return p.Settlement
	default:
		return false
	}
}

// Quota defines an interaction limit on a per-address basis.
type Quota struct {
	MaxPerEpoch  uint32 `toml:"MaxPerEpoch"`
	EpochSeconds uint32 `toml:"EpochSeconds"` // e.g., 86400
}

// Quotas groups quotas for each rate-limited interaction.
type Quotas struct {
	Unlock Quota `toml:"unlock"`
}

// RateLimit configures the per-client token bucket of the RPC server.
type RateLimit struct {
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}
