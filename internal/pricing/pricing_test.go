package pricing

import (
	"testing"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var inclusive = Settings{TaxRate: d("0.18"), PricesIncludeTax: true}

func TestPriceInclusiveScenario(t *testing.T) {
	items := []model.LineItem{
		{ProductID: "1", UnitPrice: d("15.50"), Quantity: 2},
		{ProductID: "3", UnitPrice: d("5.00"), Quantity: 1, Discount: d("1.00")},
	}

	b, err := Price(items, inclusive)
	require.NoError(t, err)

	assert.Equal(t, "36", b.GrossSubtotal.String())
	assert.Equal(t, "1", b.Discount.String())
	assert.Equal(t, "35", b.Total.String())
	assert.Equal(t, "5.34", b.Tax.StringFixed(2))
	assert.Equal(t, "29.66", b.Subtotal.StringFixed(2))
	assert.True(t, b.Subtotal.Add(b.Tax).Equal(b.Total))
}

func TestPriceExclusiveKeepsTotal(t *testing.T) {
	items := []model.LineItem{{ProductID: "5", UnitPrice: d("22.00"), Quantity: 1}}

	b, err := Price(items, Settings{TaxRate: d("0.18")})
	require.NoError(t, err)

	assert.Equal(t, "22", b.Total.String())
	assert.Equal(t, "22", b.Subtotal.String())
	assert.Equal(t, "3.96", b.Tax.StringFixed(2))
}

func TestPriceEmptyCart(t *testing.T) {
	b, err := Price(nil, inclusive)
	require.NoError(t, err)
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.Tax.IsZero())
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Discount.IsZero())
}

func TestPriceDiscountNeverBelowZero(t *testing.T) {
	items := []model.LineItem{{ProductID: "6", UnitPrice: d("3.50"), Quantity: 2, Discount: d("5.00")}}

	b, err := Price(items, inclusive)
	require.NoError(t, err)
	assert.True(t, b.Total.IsZero())
	assert.Equal(t, "10", b.Discount.String())
}

func TestPriceRejectsNegativeInput(t *testing.T) {
	cases := map[string]model.LineItem{
		"precio":    {UnitPrice: d("-1"), Quantity: 1},
		"cantidad":  {UnitPrice: d("1"), Quantity: -1},
		"descuento": {UnitPrice: d("1"), Quantity: 1, Discount: d("-0.5")},
	}
	for name, it := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Price([]model.LineItem{it}, inclusive)
			require.Error(t, err)
			assert.True(t, apierror.IsKind(err, apierror.KindValidation))
			assert.ErrorContains(t, err, name)
		})
	}
}

func TestPriceTotalMatchesLineSums(t *testing.T) {
	// Property: total == max(0, Σ price·qty − Σ discount·qty) and subtotal+tax == total.
	carts := [][]model.LineItem{
		{{UnitPrice: d("0.99"), Quantity: 7}, {UnitPrice: d("14.50"), Quantity: 3, Discount: d("0.50")}},
		{{UnitPrice: d("6.00"), Quantity: 1, Discount: d("0.33")}},
		{{UnitPrice: d("0"), Quantity: 4}},
		{{UnitPrice: d("1234.56"), Quantity: 10, Discount: d("34.56")}},
	}
	for _, items := range carts {
		b, err := Price(items, inclusive)
		require.NoError(t, err)

		want := decimal.Zero
		for _, it := range items {
			q := decimal.NewFromInt(int64(it.Quantity))
			want = want.Add(it.UnitPrice.Mul(q)).Sub(it.Discount.Mul(q))
		}
		want = decimal.Max(decimal.Zero, want)

		assert.True(t, b.Total.Equal(want), "total %s want %s", b.Total, want)
		assert.True(t, b.Subtotal.Add(b.Tax).Equal(b.Total))
	}
}
