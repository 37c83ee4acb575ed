// Package ledger holds the order ledger domain: row models, the closed
// stage/payment enums, field coercion, derived metrics and the audit diff.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Business constants carried over from the shop's pricing sheet (ETB).
var (
	CostPerUnit   = decimal.NewFromInt(400)
	ProfitPerUnit = decimal.NewFromInt(800)
)

// SLA offsets in days from order creation.
const (
	ProductionSLADays = 4
	DeliverySLADays   = 7
)

// Stage is the pipeline position of a production order. The set is closed;
// unknown labels are quarantined at the boundary, never stored as-is.
type Stage string

const (
	StagePending      Stage = "Pending"
	StagePrinting     Stage = "Printing"
	StageQualityCheck Stage = "Quality Check"
	StageReady        Stage = "Ready"
	StageDelivered    Stage = "Delivered"
	StageHold         Stage = "Hold"
)

// stageAliases maps labels used by older revisions of the dashboard onto the
// canonical set, so historical rows survive reconciliation.
var stageAliases = map[string]Stage{
	"pending":          StagePending,
	"verified":         StagePending,
	"printing":         StagePrinting,
	"processing":       StagePrinting,
	"quality check":    StageQualityCheck,
	"quality-check":    StageQualityCheck,
	"design proof":     StageQualityCheck,
	"ready":            StageReady,
	"out for delivery": StageReady,
	"delivered":        StageDelivered,
	"hold":             StageHold,
}

// ParseStage resolves a stage label, accepting historical aliases.
func ParseStage(s string) (Stage, bool) {
	st, ok := stageAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Produced reports whether production work has begun for this stage.
func (s Stage) Produced() bool {
	switch s {
	case StagePrinting, StageQualityCheck, StageReady, StageDelivered:
		return true
	}
	return false
}

// PaymentState is the payment status of an order.
type PaymentState string

const (
	PaymentUnpaid  PaymentState = "Unpaid"
	PaymentPaid    PaymentState = "Paid"
	PaymentPartial PaymentState = "Partial"
)

var paymentAliases = map[string]PaymentState{
	"unpaid":  PaymentUnpaid,
	"no":      PaymentUnpaid,
	"false":   PaymentUnpaid,
	"paid":    PaymentPaid,
	"yes":     PaymentPaid,
	"true":    PaymentPaid,
	"partial": PaymentPartial,
}

// ParsePaymentState resolves a payment label, accepting the checkbox-style
// yes/no values older sheets stored.
func ParsePaymentState(s string) (PaymentState, bool) {
	p, ok := paymentAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// Order is one row of the primary ledger.
type Order struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Contact   string       `json:"contact"`
	Quantity  int          `json:"quantity"`
	UnitPrice string       `json:"unit_price"` // NUMERIC -> string
	Total     string       `json:"total"`      // NUMERIC -> string
	Payment   PaymentState `json:"payment"`
	Stage     Stage        `json:"stage"`
	CreatedAt time.Time    `json:"created_at"`
	// StatusUpdatedAt moves whenever Stage or Payment changes.
	StatusUpdatedAt time.Time `json:"status_updated_at"`
	// AuditLog is append-only, "; "-delimited. Never truncated.
	AuditLog    string `json:"audit_log"`
	Exported    bool   `json:"exported"`
	Called      bool   `json:"called"`
	DesignFront string `json:"design_front,omitempty"`
	DesignBack  string `json:"design_back,omitempty"`

	// Quarantine fields filled by coercion; not part of the stored row.
	TotalDrift bool   `json:"total_drift,omitempty"`
	RawStage   string `json:"raw_stage,omitempty"`
	RawPayment string `json:"raw_payment,omitempty"`
}

// TotalDecimal returns the stored total as a decimal, zero when malformed.
func (o *Order) TotalDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(o.Total)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Expense is one row of the secondary ledger. Append-only, never edited.
type Expense struct {
	Date      time.Time `json:"date"`
	Amount    string    `json:"amount"` // NUMERIC -> string
	Recipient string    `json:"recipient"`
	Note      string    `json:"note,omitempty"`
	Category  string    `json:"category"`
}

// DefaultExpenseCategory is assumed when the sheet left the column blank.
const DefaultExpenseCategory = "Supplier"

// AmountDecimal returns the expense amount as a decimal, zero when malformed.
func (e *Expense) AmountDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(e.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PriceTier maps a minimum quantity to a per-unit price.
type PriceTier struct {
	MinQuantity int
	UnitPrice   decimal.Decimal
}

// PriceTable resolves the per-unit price for a quantity. Tiers are ordered by
// descending MinQuantity; the first tier at or below the quantity wins.
type PriceTable []PriceTier

// DefaultPriceTable is the flat 1200/unit pricing the current dashboard uses.
var DefaultPriceTable = PriceTable{
	{MinQuantity: 1, UnitPrice: decimal.NewFromInt(1200)},
}

// BulkPriceTable is the tiered pricing some revisions ran with.
var BulkPriceTable = PriceTable{
	{MinQuantity: 10, UnitPrice: decimal.NewFromInt(1000)},
	{MinQuantity: 1, UnitPrice: decimal.NewFromInt(1200)},
}

// UnitPriceFor returns the per-unit price for qty. Quantities below every
// tier fall through to the last tier so the result is always defined.
func (t PriceTable) UnitPriceFor(qty int) decimal.Decimal {
	if len(t) == 0 {
		return decimal.Zero
	}
	for _, tier := range t {
		if qty >= tier.MinQuantity {
			return tier.UnitPrice
		}
	}
	return t[len(t)-1].UnitPrice
}

// TotalFor is qty x tier price, the authoritative total for a row.
func (t PriceTable) TotalFor(qty int) decimal.Decimal {
	return t.UnitPriceFor(qty).Mul(decimal.NewFromInt(int64(qty)))
}
