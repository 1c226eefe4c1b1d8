package types

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	// MaxSymbolLength bounds the symbol code to seven characters.
	MaxSymbolLength = 7
	// MaxPrecision bounds the number of decimal places a symbol may declare.
	MaxPrecision = 18
)

var (
	// MaxAssetAmount is the largest magnitude an asset amount may carry.
	MaxAssetAmount = new(big.Int).SetUint64(1<<62 - 1)

	ErrSymbolMismatch = errors.New("asset: symbol mismatch")
	ErrInvalidSymbol  = errors.New("asset: invalid symbol")
	ErrInvalidAsset   = errors.New("asset: invalid asset")
)

// Symbol identifies a token denomination by code and decimal precision.
type Symbol struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
}

// NewSymbol normalises the code to upper case.
func NewSymbol(code string, precision uint8) Symbol {
	return Symbol{Code: strings.ToUpper(strings.TrimSpace(code)), Precision: precision}
}

// Valid reports whether the code is 1-7 upper case letters and the precision
// is within bounds.
func (s Symbol) Valid() bool {
	if len(s.Code) == 0 || len(s.Code) > MaxSymbolLength {
		return false
	}
	for _, r := range s.Code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return s.Precision <= MaxPrecision
}

// String renders the symbol as "<precision>,<code>".
func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// ParseSymbol parses the "<precision>,<code>" form.
func ParseSymbol(raw string) (Symbol, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ",", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	precision, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 8)
	if err != nil {
		return Symbol{}, fmt.Errorf("%w: precision %q", ErrInvalidSymbol, parts[0])
	}
	sym := NewSymbol(parts[1], uint8(precision))
	if !sym.Valid() {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	return sym, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	parsed, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Asset is an amount denominated in a symbol. Amount is expressed in the
// smallest unit (10^-precision).
type Asset struct {
	Amount *big.Int
	Symbol Symbol
}

// NewAsset constructs an asset from a raw amount in smallest units.
func NewAsset(amount int64, sym Symbol) Asset {
	return Asset{Amount: big.NewInt(amount), Symbol: sym}
}

// ZeroAsset returns a zero amount of the supplied symbol.
func ZeroAsset(sym Symbol) Asset {
	return Asset{Amount: big.NewInt(0), Symbol: sym}
}

func (a Asset) amount() *big.Int {
	if a.Amount == nil {
		return big.NewInt(0)
	}
	return a.Amount
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	return Asset{Amount: new(big.Int).Set(a.amount()), Symbol: a.Symbol}
}

// Valid reports whether the symbol is valid and the magnitude fits the
// supported range.
func (a Asset) Valid() bool {
	if !a.Symbol.Valid() {
		return false
	}
	return new(big.Int).Abs(a.amount()).Cmp(MaxAssetAmount) <= 0
}

// Sign returns -1, 0 or +1.
func (a Asset) Sign() int { return a.amount().Sign() }

// IsZero reports whether the amount is zero.
func (a Asset) IsZero() bool { return a.amount().Sign() == 0 }

// Add returns a+b. Both operands must share the symbol.
func (a Asset) Add(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	return Asset{Amount: new(big.Int).Add(a.amount(), b.amount()), Symbol: a.Symbol}, nil
}

// Sub returns a-b. Both operands must share the symbol.
func (a Asset) Sub(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	return Asset{Amount: new(big.Int).Sub(a.amount(), b.amount()), Symbol: a.Symbol}, nil
}

// Cmp compares a and b. Both operands must share the symbol.
func (a Asset) Cmp(b Asset) (int, error) {
	if a.Symbol != b.Symbol {
		return 0, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	return a.amount().Cmp(b.amount()), nil
}

// MulDiv returns a*num/den truncated toward zero, keeping the symbol.
func (a Asset) MulDiv(num, den int64) Asset {
	if den == 0 {
		return ZeroAsset(a.Symbol)
	}
	out := new(big.Int).Mul(a.amount(), big.NewInt(num))
	out.Quo(out, big.NewInt(den))
	return Asset{Amount: out, Symbol: a.Symbol}
}

// String renders the asset as "1.0000 EOS".
func (a Asset) String() string {
	amount := a.amount()
	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()
	precision := int(a.Symbol.Precision)
	if precision > 0 {
		if len(digits) <= precision {
			digits = strings.Repeat("0", precision-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-precision] + "." + digits[len(digits)-precision:]
	}
	if neg {
		digits = "-" + digits
	}
	return digits + " " + a.Symbol.Code
}

// ParseAsset parses the "1.0000 EOS" form. The number of decimals defines the
// precision of the resulting symbol.
func ParseAsset(raw string) (Asset, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, raw)
	}
	number := fields[0]
	neg := strings.HasPrefix(number, "-")
	number = strings.TrimPrefix(number, "-")
	whole, frac, hasDot := strings.Cut(number, ".")
	if whole == "" || (hasDot && frac == "") {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, raw)
	}
	if len(frac) > MaxPrecision {
		return Asset{}, fmt.Errorf("%w: precision too large in %q", ErrInvalidAsset, raw)
	}
	amount, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, raw)
	}
	if neg {
		amount.Neg(amount)
	}
	asset := Asset{Amount: amount, Symbol: NewSymbol(fields[1], uint8(len(frac)))}
	if !asset.Valid() {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, raw)
	}
	return asset, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Asset) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
