package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PricingTestSuite struct {
	suite.Suite
	items  []LineItem
	policy DepositPolicy
}

func (suite *PricingTestSuite) SetupTest() {
	suite.items = []LineItem{
		{LineTotal: 100, IsOptional: false, IsTaxable: true},
		{LineTotal: 50, IsOptional: true, IsSelected: false, IsTaxable: true},
	}
	suite.policy = DepositPolicy{Type: DepositPercentage, Value: 20}
}

func TestPricingTestSuite(t *testing.T) {
	suite.Run(t, new(PricingTestSuite))
}

func amount(v float64) *float64 {
	return &v
}

func (suite *PricingTestSuite) TestCompute_UnselectedOptionalExcluded() {
	b, err := Compute(suite.items, suite.policy, 0.08, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 100.0, b.Subtotal)
	assert.Equal(suite.T(), 8.0, b.Tax)
	assert.Equal(suite.T(), 108.0, b.Total)
	assert.Equal(suite.T(), 21.6, b.MinimumPayment)
	assert.Equal(suite.T(), 21.6, b.PaymentAmount)
	assert.False(suite.T(), b.IsFullPayment)
	assert.Equal(suite.T(), int64(2160), b.AmountMinorUnits())
}

func (suite *PricingTestSuite) TestCompute_FullTotalWhenRequested() {
	b, err := Compute(suite.items, suite.policy, 0.08, amount(108))
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 108.0, b.PaymentAmount)
	assert.True(suite.T(), b.IsFullPayment)
}

func (suite *PricingTestSuite) TestCompute_SelectedOptionalIncluded() {
	suite.items[1].IsSelected = true

	b, err := Compute(suite.items, suite.policy, 0.08, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 150.0, b.Subtotal)
	assert.Equal(suite.T(), 12.0, b.Tax)
	assert.Equal(suite.T(), 162.0, b.Total)
	assert.Equal(suite.T(), 32.4, b.MinimumPayment)
}

func (suite *PricingTestSuite) TestCompute_RecomputeIsStable() {
	first, err := Compute(suite.items, suite.policy, 0.08, nil)
	require.NoError(suite.T(), err)
	second, err := Compute(suite.items, suite.policy, 0.08, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first, second)
}

func (suite *PricingTestSuite) TestCompute_TaxOnlyFromTaxableItems() {
	items := []LineItem{
		{LineTotal: 100, IsTaxable: true},
		{LineTotal: 40, IsTaxable: false},
	}

	b, err := Compute(items, suite.policy, 0.1, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 140.0, b.Subtotal)
	assert.Equal(suite.T(), 100.0, b.TaxableSubtotal)
	assert.Equal(suite.T(), 10.0, b.Tax)
	assert.Equal(suite.T(), 150.0, b.Total)
}

func (suite *PricingTestSuite) TestCompute_PercentageMinimumScalesWithTotal() {
	small, err := Compute([]LineItem{{LineTotal: 100}}, suite.policy, 0, nil)
	require.NoError(suite.T(), err)
	large, err := Compute([]LineItem{{LineTotal: 300}}, suite.policy, 0, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 20.0, small.MinimumPayment)
	assert.Equal(suite.T(), 60.0, large.MinimumPayment)
}

func (suite *PricingTestSuite) TestCompute_FixedMinimumIsConstant() {
	policy := DepositPolicy{Type: DepositFixed, Value: 250}

	small, err := Compute([]LineItem{{LineTotal: 1000}}, policy, 0, nil)
	require.NoError(suite.T(), err)
	large, err := Compute([]LineItem{{LineTotal: 5000}}, policy, 0, nil)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 250.0, small.MinimumPayment)
	assert.Equal(suite.T(), 250.0, large.MinimumPayment)
}

func (suite *PricingTestSuite) TestCompute_OneCentBelowMinimumAccepted() {
	b, err := Compute(suite.items, suite.policy, 0.08, amount(21.59))
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 21.59, b.PaymentAmount)
	assert.False(suite.T(), b.IsFullPayment)
	assert.Equal(suite.T(), int64(2159), b.AmountMinorUnits())
}

func (suite *PricingTestSuite) TestCompute_TwoCentsBelowMinimumRejected() {
	_, err := Compute(suite.items, suite.policy, 0.08, amount(21.58))

	var minErr *MinimumPaymentError
	require.ErrorAs(suite.T(), err, &minErr)
	assert.Equal(suite.T(), 21.6, minErr.Minimum)
	assert.Equal(suite.T(), "Payment amount must be at least $21.60", err.Error())
}

func (suite *PricingTestSuite) TestCompute_RequestedAmountRoundedToCents() {
	b, err := Compute(suite.items, suite.policy, 0.08, amount(50.005))
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 50.01, b.PaymentAmount)
}

func (suite *PricingTestSuite) TestCompute_FloorAtMinimumCharge() {
	policy := DepositPolicy{Type: DepositFixed, Value: 0}

	b, err := Compute([]LineItem{{LineTotal: 0.2}}, policy, 0, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.5, b.PaymentAmount)
	assert.True(suite.T(), b.IsFullPayment)

	b, err = Compute([]LineItem{{LineTotal: 100}}, policy, 0, amount(0.1))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.5, b.PaymentAmount)
	assert.Equal(suite.T(), int64(50), b.AmountMinorUnits())
}

func (suite *PricingTestSuite) TestCompute_FullPaymentBoundary() {
	b, err := Compute(suite.items, suite.policy, 0.08, amount(107.99))
	require.NoError(suite.T(), err)
	assert.True(suite.T(), b.IsFullPayment)

	b, err = Compute(suite.items, suite.policy, 0.08, amount(107.98))
	require.NoError(suite.T(), err)
	assert.False(suite.T(), b.IsFullPayment)
}

func (suite *PricingTestSuite) TestCompute_NegativeAmountRejected() {
	_, err := Compute(suite.items, suite.policy, 0.08, amount(-5))

	var invalid *InvalidAmountError
	assert.ErrorAs(suite.T(), err, &invalid)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(10800), ToMinorUnits(108))
	assert.Equal(t, int64(2160), ToMinorUnits(21.6))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(50), ToMinorUnits(0.5))
	assert.Equal(t, 21.6, FromMinorUnits(2160))
	assert.Equal(t, 0.5, FromMinorUnits(50))
}
