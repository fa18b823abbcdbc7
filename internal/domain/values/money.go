package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in a single currency. Auction pricing
// arithmetic (floors, increments, ceilings) goes through this type so that
// comparisons are exact rather than float-approximate.
type Money struct {
	amount   decimal.Decimal
	currency string
}

const USD = "USD"

// NewMoney creates a Money value from a decimal amount.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("currency cannot be empty")
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("currency code must be 3 characters: %q", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal string such as "50.05".
func NewMoneyFromString(amount, currency string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(dec, currency)
}

// NewMoneyFromFloat converts a float64 amount. Prefer the string or decimal
// constructors where the caller controls the representation.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// MustMoney creates Money and panics on error (for constants and tests).
func MustMoney(amount string, currency string) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }

// String returns the amount with two decimal places and the currency code,
// e.g. "50.05 USD".
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Compare returns -1, 0 or 1. Panics on currency mismatch; amounts of
// different currencies are never comparable in this system.
func (m Money) Compare(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare %s with %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

// GreaterThanOrEqual reports m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.Compare(other) >= 0
}

// LessThan reports m < other.
func (m Money) LessThan(other Money) bool {
	return m.Compare(other) < 0
}

// Max returns the larger of m and other.
func (m Money) Max(other Money) Money {
	if m.Compare(other) >= 0 {
		return m
	}
	return other
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MulRatio scales the amount by ratio and rounds to the nearest cent. Used
// for the percentage floors applied to catalog list prices.
func (m Money) MulRatio(ratio decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(ratio).Round(2), currency: m.currency}
}

// MarshalJSON encodes as {"amount":"50.05","currency":"USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(2),
		Currency: m.currency,
	})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	money, err := NewMoneyFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = money
	return nil
}

// Scan implements sql.Scanner. Amounts are stored as NUMERIC columns; the
// currency is fixed per deployment and restored as USD.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = Money{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	case float64:
		money, err := NewMoneyFromFloat(v, USD)
		if err != nil {
			return err
		}
		*m = money
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

// Value implements driver.Valuer, storing the bare decimal string.
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(2), nil
}

func (m *Money) scanString(s string) error {
	money, err := NewMoneyFromString(s, USD)
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", s, err)
	}
	*m = money
	return nil
}
