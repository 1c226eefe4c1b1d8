package params

import (
	"fmt"
	"strings"

	"treasurechain/core/types"
	"treasurechain/native/common"
)

const maxStringValue = 256

var usdSymbol = types.NewSymbol("USD", 4)

// USDSymbol is the denomination of price feed settings.
func USDSymbol() types.Symbol { return usdSymbol }

// Setting is a keyed economic parameter. Only the value kinds relevant to the
// key are populated.
type Setting struct {
	Key         string
	StringValue string
	AssetValue  *types.Asset
	UintValue   uint32
	UpdatedAt   int64
}

// Clone returns a deep copy of the setting.
func (s *Setting) Clone() *Setting {
	if s == nil {
		return nil
	}
	out := *s
	if s.AssetValue != nil {
		asset := s.AssetValue.Clone()
		out.AssetValue = &asset
	}
	return &out
}

// ValidateKey enforces the account-name alphabet for setting keys: 1-12
// characters from a-z, 1-5 and '.'.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > 12 {
		return fmt.Errorf("%w: setting key must be 1-12 characters", common.ErrValidation)
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '1' && r <= '5':
		case r == '.':
		default:
			return fmt.Errorf("%w: invalid character %q in setting key", common.ErrValidation, r)
		}
	}
	return nil
}

func validateSetting(s *Setting) error {
	if s == nil {
		return fmt.Errorf("%w: nil setting", common.ErrValidation)
	}
	s.Key = strings.TrimSpace(s.Key)
	if err := ValidateKey(s.Key); err != nil {
		return err
	}
	if len(s.StringValue) > maxStringValue {
		return fmt.Errorf("%w: string value too long", common.ErrValidation)
	}
	if s.AssetValue != nil && (!s.AssetValue.Valid() || s.AssetValue.Sign() < 0) {
		return fmt.Errorf("%w: invalid asset value", common.ErrValidation)
	}
	return nil
}

// Defaults returns the built-in value of every known setting. Base currency
// amounts are expressed in base.
func Defaults(base types.Symbol) map[string]Setting {
	baseUnit := pow10(base.Precision)
	asset := func(amount int64, sym types.Symbol) *types.Asset {
		a := types.NewAsset(amount, sym)
		return &a
	}
	return map[string]Setting{
		KeyEosUSD:          {Key: KeyEosUSD, AssetValue: asset(27600, usdSymbol)},
		KeyCheckPrice:      {Key: KeyCheckPrice, AssetValue: asset(20000, usdSymbol)},
		KeyUnlockPrice:     {Key: KeyUnlockPrice, AssetValue: asset(20000, usdSymbol)},
		KeyMinSponsorAward: {Key: KeyMinSponsorAward, AssetValue: asset(baseUnit, base)},
		KeySponsorOdds:     {Key: KeySponsorOdds, UintValue: 100},
		KeyPartBonus:       {Key: KeyPartBonus, UintValue: 1},
		KeySolveBonus:      {Key: KeySolveBonus, UintValue: 10},
		KeyBonusCap:        {Key: KeyBonusCap, UintValue: 10000},
		KeyBonusBuffer:     {Key: KeyBonusBuffer, UintValue: 10000},
		KeyTierHigh:        {Key: KeyTierHigh, UintValue: 1000},
		KeyTierMid:         {Key: KeyTierMid, UintValue: 100},
		KeyTierLow:         {Key: KeyTierLow, UintValue: 10},
		KeyPayoutBps:       {Key: KeyPayoutBps, UintValue: 500},
	}
}

func pow10(p uint8) int64 {
	out := int64(1)
	for i := uint8(0); i < p; i++ {
		out *= 10
	}
	return out
}
