package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Minor is a monetary amount in minor units (e.g. centavos). It is an
// arbitrary-precision integer: monetary math never touches floating point.
// On the wire and in the database it is a decimal string.
type Minor struct {
	i big.Int
}

// NewMinor creates a Minor amount from an int64 of minor units.
func NewMinor(v int64) Minor {
	var m Minor
	m.i.SetInt64(v)
	return m
}

// MinorFromString parses a decimal-string-encoded amount of minor units.
func MinorFromString(s string) (Minor, error) {
	var m Minor
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return m, fmt.Errorf("minor amount is empty")
	}
	if _, ok := m.i.SetString(trimmed, 10); !ok {
		return Minor{}, fmt.Errorf("invalid minor amount %q", s)
	}
	return m, nil
}

// MinorFromMajor converts a catalog price in major units (e.g. pesos) to
// minor units, rounding half away from zero. Catalog prices may carry
// fractions; stored amounts never do.
func MinorFromMajor(price decimal.Decimal) (Minor, error) {
	cents := price.Mul(decimal.NewFromInt(100)).Round(0)
	return MinorFromString(cents.String())
}

// Add returns m + o.
func (m Minor) Add(o Minor) Minor {
	var r Minor
	r.i.Add(&m.i, &o.i)
	return r
}

// Sub returns m - o.
func (m Minor) Sub(o Minor) Minor {
	var r Minor
	r.i.Sub(&m.i, &o.i)
	return r
}

// MulInt returns m multiplied by a quantity.
func (m Minor) MulInt(n int) Minor {
	var r Minor
	r.i.Mul(&m.i, big.NewInt(int64(n)))
	return r
}

// MulDivInt64 returns m * num / den, truncated toward zero. Used for
// basis-point commission math.
func (m Minor) MulDivInt64(num, den int64) Minor {
	var r Minor
	r.i.Mul(&m.i, big.NewInt(num))
	r.i.Quo(&r.i, big.NewInt(den))
	return r
}

// Cmp compares m and o, returning -1, 0 or 1.
func (m Minor) Cmp(o Minor) int {
	return m.i.Cmp(&o.i)
}

// Equal reports whether m and o are the same amount.
func (m Minor) Equal(o Minor) bool {
	return m.i.Cmp(&o.i) == 0
}

// Sign returns -1, 0 or 1 depending on the sign of the amount.
func (m Minor) Sign() int {
	return m.i.Sign()
}

// String renders the amount as a decimal string of minor units.
func (m Minor) String() string {
	return m.i.String()
}

// MarshalJSON encodes the amount as a quoted decimal string, never a JSON
// number, so precision survives every client.
func (m Minor) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.i.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string. Bare JSON numbers are
// rejected: callers must not round-trip money through floats.
func (m *Minor) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("minor amount must be a decimal string, got %s", s)
	}
	parsed, err := MinorFromString(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as text.
func (m Minor) Value() (driver.Value, error) {
	return m.i.String(), nil
}

// Scan implements sql.Scanner.
func (m *Minor) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Minor{}
		return nil
	case string:
		parsed, err := MinorFromString(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := MinorFromString(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = NewMinor(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Minor", src)
	}
}

// GormDataType tells GORM to create text columns for Minor fields.
func (Minor) GormDataType() string {
	return "text"
}
