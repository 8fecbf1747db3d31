package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in minor currency units, e.g. 5500 for KRW 5500 or 499 for USD 4.99.
// The zero value carries no currency and acts as a neutral element for Add and Sub.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func NewMoney(amount int64, unit currency.Unit) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("amount[%d]: %w", amount, ErrNegativeAmount)
	}

	return Money{Amount: amount, Currency: unit}, nil
}

func Zero(unit currency.Unit) Money {
	return Money{Currency: unit}
}

func (m Money) IsZero() bool {
	return m == Money{}
}

func (m Money) Add(other Money) (Money, error) {
	unit, err := m.matchCurrency(other)
	if err != nil {
		return Money{}, fmt.Errorf("add: %w", err)
	}

	return Money{Amount: m.Amount + other.Amount, Currency: unit}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	unit, err := m.matchCurrency(other)
	if err != nil {
		return Money{}, fmt.Errorf("sub: %w", err)
	}

	if other.Amount > m.Amount {
		return Money{}, fmt.Errorf("sub %d from %d: %w", other.Amount, m.Amount, ErrNegativeAmount)
	}

	return Money{Amount: m.Amount - other.Amount, Currency: unit}, nil
}

// Mul scales the amount by k, rounding half to even to the nearest minor unit.
func (m Money) Mul(k float64) (Money, error) {
	if k < 0 {
		return Money{}, fmt.Errorf("multiplier[%v]: %w", k, ErrNegativeAmount)
	}

	scaled := decimal.NewFromInt(m.Amount).Mul(decimal.NewFromFloat(k)).RoundBank(0)

	return Money{Amount: scaled.IntPart(), Currency: m.Currency}, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

func (m Money) matchCurrency(other Money) (currency.Unit, error) {
	switch {
	case m.IsZero():
		return other.Currency, nil
	case other.IsZero():
		return m.Currency, nil
	case m.Currency != other.Currency:
		return currency.Unit{}, fmt.Errorf("%s vs %s: %w", m.Currency, other.Currency, ErrCurrencyMismatch)
	}

	return m.Currency, nil
}
