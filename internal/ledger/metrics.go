package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Summary is the executive-suite number block, computed in one pass over an
// immutable snapshot. All functions here are pure; empty snapshots yield
// zeroes, never errors.
type Summary struct {
	CashOnHand   decimal.Decimal `json:"cash_on_hand"`
	Receivables  decimal.Decimal `json:"receivables"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	// NetProfit is the shop's flat per-unit estimate, not a real P&L.
	NetProfit        decimal.Decimal `json:"net_profit"`
	SupplierDebt     decimal.Decimal `json:"supplier_debt"`
	ProducedQuantity int             `json:"produced_quantity"`
	TotalQuantity    int             `json:"total_quantity"`
	TotalOrders      int             `json:"total_orders"`
	PendingCount     int             `json:"pending_count"`
	DeliveredCount   int             `json:"delivered_count"`
}

// Summarize computes the dashboard aggregates from the two ledgers.
func Summarize(orders []Order, expenses []Expense) Summary {
	var s Summary
	s.CashOnHand = decimal.Zero
	s.Receivables = decimal.Zero
	for i := range orders {
		o := &orders[i]
		total := o.TotalDecimal()
		s.GrossRevenue = s.GrossRevenue.Add(total)
		if o.Payment == PaymentPaid {
			s.CashOnHand = s.CashOnHand.Add(total)
		} else {
			s.Receivables = s.Receivables.Add(total)
		}
		s.TotalQuantity += o.Quantity
		if o.Stage.Produced() {
			s.ProducedQuantity += o.Quantity
		}
		switch o.Stage {
		case StagePending:
			s.PendingCount++
		case StageDelivered:
			s.DeliveredCount++
		}
	}
	s.TotalOrders = len(orders)
	s.NetProfit = ProfitPerUnit.Mul(decimal.NewFromInt(int64(s.TotalQuantity)))
	s.SupplierDebt = SupplierDebt(s.ProducedQuantity, expenses)
	return s
}

// SupplierDebt reconciles produced quantity against recorded supplier payouts.
// The raw value may go negative when payouts run ahead of production; it is
// clamped at display time only, so the sign stays visible to reconciliation.
func SupplierDebt(producedQty int, expenses []Expense) decimal.Decimal {
	debt := CostPerUnit.Mul(decimal.NewFromInt(int64(producedQty)))
	for i := range expenses {
		e := &expenses[i]
		if !strings.EqualFold(e.Category, DefaultExpenseCategory) {
			continue
		}
		debt = debt.Sub(e.AmountDecimal())
	}
	return debt
}

// DisplaySupplierDebt clamps negative debt to zero for reporting.
func DisplaySupplierDebt(debt decimal.Decimal) decimal.Decimal {
	if debt.IsNegative() {
		return decimal.Zero
	}
	return debt
}

// LoyaltyTier classifies a customer by historical order count.
func LoyaltyTier(orderCount int) string {
	switch {
	case orderCount >= 5:
		return "Loyal"
	case orderCount >= 3:
		return "Returning"
	default:
		return ""
	}
}

// OrderCountByContact tallies orders per customer, keyed by contact when
// present and name otherwise, for loyalty classification.
func OrderCountByContact(orders []Order) map[string]int {
	counts := make(map[string]int, len(orders))
	for i := range orders {
		key := orders[i].Contact
		if key == "" {
			key = orders[i].Name
		}
		if key == "" {
			continue
		}
		counts[strings.ToLower(key)]++
	}
	return counts
}
