package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
)

// Amount — денежная сумма вознаграждения. Все расчёты ведутся в точной
// десятичной арифметике с двумя знаками, float в ledger не допускается.
type Amount struct {
	value decimal.Decimal
}

// NewAmount создаёт сумму из decimal, нормализуя до двух знаков.
func NewAmount(value decimal.Decimal) (Amount, error) {
	if value.IsNegative() {
		return Amount{}, apperror.ErrInvalidAmount
	}
	return Amount{value: value.Round(2)}, nil
}

// NewAmountFromString парсит сумму из строки запроса ("50.00").
func NewAmountFromString(raw string) (Amount, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, apperror.ErrInvalidAmount
	}
	return NewAmount(value)
}

// ZeroAmount — нулевая сумма (баунти "за честь").
func ZeroAmount() Amount {
	return Amount{value: decimal.Zero}
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

func (a Amount) String() string {
	return a.value.StringFixed(2)
}
