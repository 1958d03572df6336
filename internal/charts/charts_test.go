package charts

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensesbot/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCategoryBreakdown(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.CategoryBreakdown([]model.CategoryTotal{
		{Category: model.Food, Total: decimal.RequireFromString("120.50")},
		{Category: model.Transit, Total: decimal.RequireFromString("30")},
	})
	require.NoError(t, err)
	require.NotNil(t, png)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output is a PNG")
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.CategoryBreakdown(nil)
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestCategoryBreakdownSkipsNonPositive(t *testing.T) {
	g := NewChartGenerator()

	png, err := g.CategoryBreakdown([]model.CategoryTotal{
		{Category: model.Food, Total: decimal.Zero},
	})
	require.NoError(t, err)
	assert.Nil(t, png, "nothing drawable")
}
