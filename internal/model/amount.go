package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is one numeric form value. Input that does not parse as a number is
// kept verbatim in Raw so the form can show it back unchanged.
type Amount struct {
	value   decimal.Decimal
	raw     any
	numeric bool
}

// NewAmount returns a numeric Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d, numeric: true}
}

// AmountFromFloat returns a numeric Amount from a float64.
func AmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// ParseAmount coerces v to a number when it can. Strings are trimmed and an
// empty string is zero; 0x/0o/0b prefixes are accepted; booleans are 0 or 1.
// Anything else (NaN, infinities, words, composite values) is kept as-is.
func ParseAmount(v any) Amount {
	switch t := v.(type) {
	case Amount:
		return t
	case *Amount:
		if t == nil {
			return Amount{}
		}
		return *t
	case decimal.Decimal:
		return NewAmount(t)
	case json.Number:
		return parseNumericString(string(t))
	case string:
		return parseNumericString(t)
	case float64:
		return amountFromFloat(t)
	case float32:
		return amountFromFloat(float64(t))
	case int:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int8:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int16:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int32:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int64:
		return NewAmount(decimal.NewFromInt(t))
	case uint:
		return parseNumericString(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case uint16:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case uint32:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case uint64:
		return parseNumericString(strconv.FormatUint(t, 10))
	case bool:
		if t {
			return NewAmount(decimal.NewFromInt(1))
		}
		return NewAmount(decimal.Zero)
	}
	return Amount{raw: v}
}

func amountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{raw: f}
	}
	return NewAmount(decimal.NewFromFloat(f))
}

func parseNumericString(s string) Amount {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return NewAmount(decimal.Zero)
	}
	if strings.Contains(trimmed, "_") {
		return Amount{raw: s}
	}

	if len(trimmed) > 2 && trimmed[0] == '0' {
		base := 0
		switch trimmed[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(trimmed[2:], base, 64)
			if err != nil {
				return Amount{raw: s}
			}
			return parseNumericString(strconv.FormatUint(n, 10))
		}
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{raw: s}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		d = decimal.NewFromFloat(f)
	}
	return NewAmount(d)
}

// IsNumeric reports whether the amount holds a parsed number.
func (a Amount) IsNumeric() bool {
	return a.numeric
}

// Decimal returns the parsed value and true, or zero and false for raw input.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	if !a.numeric {
		return decimal.Zero, false
	}
	return a.value, true
}

// Float64 returns the parsed value as a float64.
func (a Amount) Float64() (float64, bool) {
	if !a.numeric {
		return 0, false
	}
	return a.value.InexactFloat64(), true
}

// OrZero returns the parsed value, or zero for raw input.
func (a Amount) OrZero() decimal.Decimal {
	if !a.numeric {
		return decimal.Zero
	}
	return a.value
}

// Raw returns the unconverted input for non-numeric amounts.
func (a Amount) Raw() any {
	return a.raw
}

// Equal reports whether two amounts hold the same number or the same raw input.
func (a Amount) Equal(b Amount) bool {
	if a.numeric != b.numeric {
		return false
	}
	if a.numeric {
		return a.value.Equal(b.value)
	}
	return reflect.DeepEqual(a.raw, b.raw)
}

func (a Amount) String() string {
	if a.numeric {
		return a.value.String()
	}
	if a.raw == nil {
		return ""
	}
	return fmt.Sprint(a.raw)
}

// MarshalJSON encodes numbers as JSON numbers and raw input as it was given.
// Raw input JSON cannot represent, such as NaN, is written as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.numeric {
		return []byte(a.value.String()), nil
	}
	return json.Marshal(jsonSafe(a.raw))
}

// UnmarshalJSON accepts a JSON number, or any other value kept as raw input.
func (a *Amount) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}

	if n, ok := v.(json.Number); ok {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("decode amount %q: %w", n, err)
		}
		*a = NewAmount(d)
		return nil
	}

	*a = Amount{raw: v}
	return nil
}
