package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewAmount(t *testing.T) {
	amount, err := NewAmount(decimal.NewFromFloat(50.005))
	assert.NoError(t, err)
	assert.Equal(t, "50.01", amount.String())

	_, err = NewAmount(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestNewAmountFromString(t *testing.T) {
	amount, err := NewAmountFromString("199.90")
	assert.NoError(t, err)
	assert.True(t, amount.IsPositive())
	assert.Equal(t, "199.90", amount.String())

	_, err = NewAmountFromString("не число")
	assert.Error(t, err)

	_, err = NewAmountFromString("-5")
	assert.Error(t, err)
}

func TestAmount_ZeroAndAdd(t *testing.T) {
	zero := ZeroAmount()
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())

	fifty, _ := NewAmountFromString("50")
	sum := zero.Add(fifty)
	assert.True(t, sum.Equal(fifty))
	assert.Equal(t, "50.00", sum.String())
}
