package tender

import (
	"testing"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paid(a Allocation) map[model.Tender]string {
	out := make(map[model.Tender]string, len(a.Payments))
	for _, p := range a.Payments {
		out[p.Tender] = p.Amount.StringFixed(2)
	}
	return out
}

func TestAllocateSplitExact(t *testing.T) {
	entered := Entered{model.TenderCash: d("20.00"), model.TenderYape: d("15.00")}

	sum := Summarize(d("35.00"), entered)
	assert.True(t, sum.Remaining.IsZero())
	assert.True(t, sum.Change.IsZero())

	a, err := Allocate(d("35.00"), entered)
	require.NoError(t, err)
	assert.Equal(t, map[model.Tender]string{model.TenderCash: "20.00", model.TenderYape: "15.00"}, paid(a))
}

func TestAllocateCashChangeIsReturned(t *testing.T) {
	a, err := Allocate(d("35.00"), Entered{model.TenderCash: d("40.00")})
	require.NoError(t, err)

	assert.Equal(t, "5.00", a.Change.StringFixed(2))
	assert.Equal(t, map[model.Tender]string{model.TenderCash: "35.00"}, paid(a))
	assert.True(t, a.Sum().Equal(d("35.00")))
}

func TestAllocateInsufficient(t *testing.T) {
	_, err := Allocate(d("35.00"), Entered{model.TenderCard: d("34.98")})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientFunds))
}

func TestAllocateWithinEpsilon(t *testing.T) {
	a, err := Allocate(d("35.00"), Entered{model.TenderCard: d("34.99")})
	require.NoError(t, err)
	assert.Equal(t, map[model.Tender]string{model.TenderCard: "34.99"}, paid(a))
}

func TestAllocateDropsCashConsumedByChange(t *testing.T) {
	// Card overpays; the change comes out of cash and wipes the cash entry.
	a, err := Allocate(d("35.00"), Entered{model.TenderCash: d("5.00"), model.TenderCard: d("40.00")})
	require.NoError(t, err)

	assert.Equal(t, map[model.Tender]string{model.TenderCard: "40.00"}, paid(a))
	assert.Equal(t, "10.00", a.Change.StringFixed(2))
}

func TestAllocateDropsZeroEntries(t *testing.T) {
	a, err := Allocate(d("10.00"), Entered{model.TenderCash: d("10.00"), model.TenderPlin: d("0")})
	require.NoError(t, err)
	assert.Len(t, a.Payments, 1)
	assert.Equal(t, model.TenderCash, a.Payments[0].Tender)
}

func TestAllocateZeroTotalRecordsCashEntry(t *testing.T) {
	a, err := Allocate(decimal.Zero, Entered{})
	require.NoError(t, err)
	assert.Equal(t, map[model.Tender]string{model.TenderCash: "0.00"}, paid(a))
	assert.True(t, a.Change.IsZero())

	// Cash handed over for a free cart comes straight back as change.
	a, err = Allocate(decimal.Zero, Entered{model.TenderCash: d("5.00")})
	require.NoError(t, err)
	assert.Equal(t, map[model.Tender]string{model.TenderCash: "0.00"}, paid(a))
	assert.Equal(t, "5.00", a.Change.StringFixed(2))
}

func TestAllocateRejectsBadEntries(t *testing.T) {
	_, err := Allocate(d("10"), Entered{model.TenderCash: d("-1")})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = Allocate(d("10"), Entered{model.Tender("bitcoin"): d("10")})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestAllocateCommitsIffWithinEpsilon(t *testing.T) {
	total := d("35.00")
	for _, s := range []string{"0", "10", "34.98", "34.99", "35", "35.01", "100"} {
		entered := Entered{model.TenderCard: d(s)}
		_, err := Allocate(total, entered)
		want := d(s).GreaterThanOrEqual(total.Sub(Epsilon))
		assert.Equal(t, want, err == nil, "entered %s", s)
	}
}

func TestFillRemaining(t *testing.T) {
	total := d("35.00")
	entered := Entered{model.TenderCash: d("12.40"), model.TenderCard: d("3.00")}

	fill := FillRemaining(total, entered, model.TenderYape)
	assert.Equal(t, "19.60", fill.StringFixed(2))

	entered[model.TenderYape] = fill
	assert.True(t, Summarize(total, entered).Remaining.IsZero())

	// Replacing an existing entry ignores its current value.
	fill = FillRemaining(total, entered, model.TenderCash)
	assert.Equal(t, "12.40", fill.StringFixed(2))

	// Other entries already cover the total.
	assert.True(t, FillRemaining(d("5"), Entered{model.TenderCard: d("9")}, model.TenderCash).IsZero())
}
