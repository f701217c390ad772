package service_test

import (
	"context"
	"testing"

	"yardpos/internal/model"
	"yardpos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settleOrder builds and settles a one-line order, returning its ID.
func (e *testEnv) settleOrder(t *testing.T, operator uuid.UUID, orderType string, material uuid.UUID, weight, price, payment string) uuid.UUID {
	t.Helper()
	orderID := e.createOrder(t, operator, orderType, "Silva")
	e.addItem(t, operator, orderID, material, weight, "0", price)
	_, err := e.settlement.Settle(context.Background(), operator, orderID, payment)
	require.NoError(t, err)
	return orderID
}

func TestClosingReportPartitionsByPaymentMethod(t *testing.T) {
	env := newTestEnv()
	operator := uuid.New()
	copper := env.addMaterial(t, "copper", "10.00")
	iron := env.addMaterial(t, "iron", "2.00")
	env.stock.levels["copper"] = dec("1000.000")
	regID := env.openRegister(t, operator, "100.00")

	env.settleOrder(t, operator, model.OrderPurchase, iron, "20.000", "2.00", model.PayCash) // 40.00
	env.settleOrder(t, operator, model.OrderPurchase, iron, "5.000", "2.00", model.PayPix)   // 10.00
	env.settleOrder(t, operator, model.OrderSale, copper, "5.000", "10.00", model.PayDebit)  // 50.00
	legacy := env.settleOrder(t, operator, model.OrderSale, copper, "3.000", "10.00", model.PayCredit)
	odd := env.settleOrder(t, operator, model.OrderSale, copper, "2.000", "10.00", model.PayCredit)

	// Orders whose payment method cannot be resolved default to cash: one
	// with no payment record at all, one with a method nobody recognizes.
	delete(env.orders.payments, legacy)
	env.orders.setPayment(odd, "voucher")

	report, err := env.reports.ClosingReport(context.Background(), regID)
	require.NoError(t, err)

	assert.True(t, report.Purchases.Cash.Equal(dec("40.00")))
	assert.True(t, report.Purchases.Pix.Equal(dec("10.00")))
	assert.True(t, report.Purchases.Total.Equal(dec("50.00")))

	assert.True(t, report.Sales.Debit.Equal(dec("50.00")))
	assert.True(t, report.Sales.Cash.Equal(dec("50.00")), "unresolvable payment methods count as cash")
	assert.True(t, report.Sales.Credit.IsZero())
	assert.True(t, report.Sales.Total.Equal(dec("100.00")))
}

func TestClosingReportWeightTotalsByOrderType(t *testing.T) {
	env := newTestEnv()
	operator := uuid.New()
	copper := env.addMaterial(t, "copper", "10.00")
	iron := env.addMaterial(t, "iron", "2.00")
	env.stock.levels["copper"] = dec("1000.000")
	regID := env.openRegister(t, operator, "500.00")

	env.settleOrder(t, operator, model.OrderPurchase, iron, "20.000", "2.00", model.PayCash)
	env.settleOrder(t, operator, model.OrderPurchase, iron, "15.500", "2.00", model.PayCash)
	env.settleOrder(t, operator, model.OrderSale, copper, "7.250", "10.00", model.PayCash)

	report, err := env.reports.ClosingReport(context.Background(), regID)
	require.NoError(t, err)

	assert.True(t, report.WeightPurchased.Equal(dec("35.500")))
	assert.True(t, report.WeightSold.Equal(dec("7.250")))
}

func TestClosingReportExpectedMatchesLedgerFold(t *testing.T) {
	env := newTestEnv()
	operator := uuid.New()
	copper := env.addMaterial(t, "copper", "10.00")
	env.stock.levels["copper"] = dec("1000.000")
	regID := env.openRegister(t, operator, "100.00")

	env.settleOrder(t, operator, model.OrderSale, copper, "5.000", "10.00", model.PayCash) // +50
	require.NoError(t, env.register.RecordExpense(context.Background(), operator, dec("20.00"), "fuel"))
	require.NoError(t, env.register.AddFunds(context.Background(), operator, dec("5.00"), "float"))

	report, err := env.reports.ClosingReport(context.Background(), regID)
	require.NoError(t, err)

	assert.True(t, report.ExpectedAmount.Equal(dec("135.00")))

	reg, err := env.registers.FindByID(context.Background(), regID)
	require.NoError(t, err)
	assert.True(t, report.ExpectedAmount.Equal(reg.CurrentAmount),
		"reconstructed expected amount must agree with the running balance")
}

func TestClosingReportVariance(t *testing.T) {
	cases := []struct {
		name       string
		counted    string
		variance   string
		difference string
	}{
		{"exact count", "150.00", service.VarianceMatch, "0"},
		{"surplus", "160.00", service.VarianceSurplus, "10.00"},
		{"shortage", "140.00", service.VarianceShortage, "10.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			operator := uuid.New()
			copper := env.addMaterial(t, "copper", "10.00")
			env.stock.levels["copper"] = dec("1000.000")
			regID := env.openRegister(t, operator, "100.00")
			env.settleOrder(t, operator, model.OrderSale, copper, "5.000", "10.00", model.PayCash)

			_, err := env.register.Close(context.Background(), operator, dec(tc.counted))
			require.NoError(t, err)

			report, err := env.reports.ClosingReport(context.Background(), regID)
			require.NoError(t, err)

			assert.True(t, report.ExpectedAmount.Equal(dec("150.00")))
			require.NotNil(t, report.FinalAmount)
			assert.True(t, report.FinalAmount.Equal(dec(tc.counted)))
			assert.Equal(t, tc.variance, report.Variance)
			assert.True(t, report.Difference.Equal(dec(tc.difference)))
		})
	}
}

func TestClosingReportOpenRegisterHasNoVariance(t *testing.T) {
	env := newTestEnv()
	operator := uuid.New()
	regID := env.openRegister(t, operator, "100.00")

	report, err := env.reports.ClosingReport(context.Background(), regID)
	require.NoError(t, err)

	assert.Nil(t, report.FinalAmount)
	assert.Empty(t, report.Variance)
	assert.True(t, report.Difference.IsZero())
}

func TestClosingReportExcludesCancelledOrders(t *testing.T) {
	env := newTestEnv()
	operator := uuid.New()
	iron := env.addMaterial(t, "iron", "2.00")
	regID := env.openRegister(t, operator, "100.00")

	env.settleOrder(t, operator, model.OrderPurchase, iron, "10.000", "2.00", model.PayCash)             // 20.00
	cancelled := env.settleOrder(t, operator, model.OrderPurchase, iron, "5.000", "2.00", model.PayCash) // 10.00
	require.NoError(t, env.settlement.CancelOrder(context.Background(), operator, cancelled, "wrong material"))

	report, err := env.reports.ClosingReport(context.Background(), regID)
	require.NoError(t, err)

	// Aggregates see only the surviving order; the ledger still balances
	// because the cancellation left a reversal entry behind.
	assert.True(t, report.Purchases.Total.Equal(dec("20.00")))
	assert.True(t, report.WeightPurchased.Equal(dec("10.000")))
	assert.True(t, report.ExpectedAmount.Equal(dec("80.00")))
}

func TestClosingReportUnknownRegister(t *testing.T) {
	env := newTestEnv()
	_, err := env.reports.ClosingReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrRegisterNotFound)
}
