package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func order(qty int, pay PaymentState, stage Stage) Order {
	return Order{
		Quantity:  qty,
		UnitPrice: DefaultPriceTable.UnitPriceFor(qty).String(),
		Total:     DefaultPriceTable.TotalFor(qty).String(),
		Payment:   pay,
		Stage:     stage,
	}
}

func expense(amount string, category string) Expense {
	return Expense{Amount: amount, Category: category}
}

func TestSummarize_PaidUnpaidScenario(t *testing.T) {
	orders := []Order{
		order(2, PaymentPaid, StagePending),
		order(12, PaymentUnpaid, StagePrinting),
	}
	sum := Summarize(orders, nil)
	assert.Equal(t, "2400", sum.CashOnHand.String())
	assert.Equal(t, "14400", sum.Receivables.String())
	assert.Equal(t, "16800", sum.GrossRevenue.String())
	assert.Equal(t, 12, sum.ProducedQuantity)
	assert.Equal(t, "11200", sum.NetProfit.String()) // 14 units x 800
}

func TestSummarize_PartitionCompleteness(t *testing.T) {
	// cash + receivables must equal gross revenue for any payment mix
	orders := []Order{
		order(1, PaymentPaid, StagePending),
		order(5, PaymentUnpaid, StageReady),
		order(7, PaymentPartial, StageDelivered),
		order(3, PaymentPaid, StageHold),
	}
	sum := Summarize(orders, nil)
	assert.True(t, sum.CashOnHand.Add(sum.Receivables).Equal(sum.GrossRevenue),
		"cash %s + receivables %s != revenue %s", sum.CashOnHand, sum.Receivables, sum.GrossRevenue)
}

func TestSummarize_EmptyLedgers(t *testing.T) {
	sum := Summarize(nil, nil)
	assert.True(t, sum.CashOnHand.IsZero())
	assert.True(t, sum.Receivables.IsZero())
	assert.True(t, sum.NetProfit.IsZero())
	assert.True(t, sum.SupplierDebt.IsZero())
	assert.Equal(t, 0, sum.TotalOrders)
	assert.Equal(t, 0, sum.ProducedQuantity)
}

func TestSupplierDebt_Reconciliation(t *testing.T) {
	expenses := []Expense{
		expense("1000", "Supplier"),
		expense("500", "Rent"), // non-supplier payouts do not reduce debt
	}
	debt := SupplierDebt(5, expenses) // 5 x 400 - 1000
	assert.Equal(t, "1000", debt.String())
}

func TestSupplierDebt_Monotonicity(t *testing.T) {
	expenses := []Expense{expense("300", "Supplier")}

	base := SupplierDebt(3, expenses)
	moreProduced := SupplierDebt(4, expenses)
	assert.True(t, moreProduced.GreaterThanOrEqual(base),
		"debt must not decrease when production grows")

	morePaid := SupplierDebt(3, append(expenses, expense("200", "Supplier")))
	assert.True(t, morePaid.LessThanOrEqual(base),
		"debt must not increase when payouts grow")
}

func TestSupplierDebt_ClampedAtDisplayOnly(t *testing.T) {
	debt := SupplierDebt(1, []Expense{expense("1000", "Supplier")})
	assert.Equal(t, "-600", debt.String(), "stored value keeps its sign")
	assert.True(t, DisplaySupplierDebt(debt).IsZero())
	assert.Equal(t, "400", DisplaySupplierDebt(SupplierDebt(1, nil)).String())
}

func TestProducedQuantity_StageBoundary(t *testing.T) {
	orders := []Order{
		order(1, PaymentUnpaid, StagePending),  // not yet in production
		order(2, PaymentUnpaid, StageHold),     // not in production
		order(4, PaymentUnpaid, StagePrinting), // counted
		order(8, PaymentUnpaid, StageQualityCheck),
		order(16, PaymentUnpaid, StageReady),
		order(32, PaymentUnpaid, StageDelivered),
	}
	sum := Summarize(orders, nil)
	assert.Equal(t, 4+8+16+32, sum.ProducedQuantity)
}

func TestLoyaltyTier(t *testing.T) {
	assert.Equal(t, "", LoyaltyTier(0))
	assert.Equal(t, "", LoyaltyTier(2))
	assert.Equal(t, "Returning", LoyaltyTier(3))
	assert.Equal(t, "Returning", LoyaltyTier(4))
	assert.Equal(t, "Loyal", LoyaltyTier(5))
	assert.Equal(t, "Loyal", LoyaltyTier(50))
}

func TestOrderCountByContact(t *testing.T) {
	orders := []Order{
		{Name: "Abel", Contact: "+251911"},
		{Name: "Abel T.", Contact: "+251911"},
		{Name: "Bete", Contact: ""},
		{Name: "bete", Contact: ""},
		{Name: "", Contact: ""}, // unidentifiable rows are skipped
	}
	counts := OrderCountByContact(orders)
	assert.Equal(t, 2, counts["+251911"])
	assert.Equal(t, 2, counts["bete"])
	assert.Len(t, counts, 2)
}

func TestPriceTable_Tiers(t *testing.T) {
	assert.Equal(t, "1200", BulkPriceTable.UnitPriceFor(9).String())
	assert.Equal(t, "1000", BulkPriceTable.UnitPriceFor(10).String())
	assert.Equal(t, "12000", BulkPriceTable.TotalFor(12).String())
	// quantities below every tier still price off the last tier
	assert.Equal(t, "0", BulkPriceTable.TotalFor(0).String())
	assert.True(t, PriceTable{}.UnitPriceFor(5).IsZero())
}
