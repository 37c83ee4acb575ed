package ledger

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finedata/printledger/internal/store"
)

// Canonical column sets. Every write must carry all of these; reads synthesize
// the ones the sheet is missing. Order matters for CSV-style rendering.
var (
	OrderColumns = []string{
		"Order ID", "Name", "Contact", "Qty", "Unit Price", "Total",
		"Payment", "Status", "Created At", "Status Updated At", "Audit Log",
		"Exported", "Called", "Design Front", "Design Back",
	}
	ExpenseColumns = []string{"Date", "Amount", "Recipient", "Note", "Category"}
)

// TimeLayout is how timestamps are written back to the sheet.
const TimeLayout = "2006-01-02 15:04:05"

// parse layouts seen across sheet revisions, most specific first
var timeLayouts = []string{
	TimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// CoerceInt parses an integer cell. Malformed or empty -> 0, never an error.
func CoerceInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// sheets sometimes store ints as "12.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		// ParseFloat accepts "NaN"/"Inf" and huge exponents; converting
		// those to int is platform garbage, not a quantity
		// MaxInt64 rounds up to 2^63 as a float64, so >= is the safe bound
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0
		}
		return int(f)
	}
	return 0
}

// CoerceDecimal parses a money cell. Malformed or empty -> 0.
func CoerceDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CoerceTime parses a timestamp cell. Malformed or empty -> zero time, so
// callers exclude the row from date math instead of defaulting to now.
func CoerceTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CoerceBool parses the sheet's Yes/No flag cells. Anything unrecognized is No.
func CoerceBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// cell reads a column with a typed default for the columns the sheet lacks.
func cell(r store.Row, col string) string {
	if v, ok := r[col]; ok {
		return v
	}
	switch col {
	case "Qty", "Unit Price", "Total", "Amount":
		return "0"
	case "Exported", "Called", "Payment":
		return "No"
	case "Design Front", "Design Back":
		return "None"
	default:
		return ""
	}
}

func linkCell(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return ""
	}
	return strings.TrimSpace(s)
}

// CoerceOrder normalizes one raw row into a typed Order. It never fails:
// malformed cells get safe defaults, unknown stage/payment labels are
// quarantined onto RawStage/RawPayment, and a stored total that disagrees
// with the recomputed one sets TotalDrift (recomputed value wins).
func CoerceOrder(r store.Row, prices PriceTable) Order {
	o := Order{
		ID:              strings.TrimSpace(cell(r, "Order ID")),
		Name:            strings.TrimSpace(cell(r, "Name")),
		Contact:         strings.TrimSpace(cell(r, "Contact")),
		Quantity:        CoerceInt(cell(r, "Qty")),
		CreatedAt:       CoerceTime(cell(r, "Created At")),
		StatusUpdatedAt: CoerceTime(cell(r, "Status Updated At")),
		AuditLog:        cell(r, "Audit Log"),
		Exported:        CoerceBool(cell(r, "Exported")),
		Called:          CoerceBool(cell(r, "Called")),
		DesignFront:     linkCell(cell(r, "Design Front")),
		DesignBack:      linkCell(cell(r, "Design Back")),
	}

	if st, ok := ParseStage(cell(r, "Status")); ok {
		o.Stage = st
	} else {
		o.Stage = StageHold
		o.RawStage = strings.TrimSpace(cell(r, "Status"))
	}
	if p, ok := ParsePaymentState(cell(r, "Payment")); ok {
		o.Payment = p
	} else {
		o.Payment = PaymentUnpaid
		o.RawPayment = strings.TrimSpace(cell(r, "Payment"))
	}

	unit := prices.UnitPriceFor(o.Quantity)
	total := prices.TotalFor(o.Quantity)
	o.UnitPrice = unit.String()
	if stored := CoerceDecimal(cell(r, "Total")); !stored.IsZero() && !stored.Equal(total) {
		o.TotalDrift = true
	}
	o.Total = total.String()

	if o.StatusUpdatedAt.Before(o.CreatedAt) {
		o.StatusUpdatedAt = o.CreatedAt
	}
	return o
}

// CoerceOrders normalizes a whole snapshot. Empty input yields an empty slice.
func CoerceOrders(snap *store.Snapshot, prices PriceTable) []Order {
	if snap == nil {
		return nil
	}
	out := make([]Order, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		out = append(out, CoerceOrder(r, prices))
	}
	return out
}

// CoerceExpense normalizes one raw expense row.
func CoerceExpense(r store.Row) Expense {
	e := Expense{
		Date:      CoerceTime(cell(r, "Date")),
		Amount:    CoerceDecimal(cell(r, "Amount")).String(),
		Recipient: strings.TrimSpace(cell(r, "Recipient")),
		Note:      strings.TrimSpace(cell(r, "Note")),
		Category:  strings.TrimSpace(cell(r, "Category")),
	}
	if e.Category == "" {
		e.Category = DefaultExpenseCategory
	}
	return e
}

// CoerceExpenses normalizes the expense snapshot.
func CoerceExpenses(snap *store.Snapshot) []Expense {
	if snap == nil {
		return nil
	}
	out := make([]Expense, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		out = append(out, CoerceExpense(r))
	}
	return out
}

// RowID extracts the order identity from a raw row.
func RowID(r store.Row) string {
	return strings.TrimSpace(cell(r, "Order ID"))
}

// FillMissingColumns copies a raw row with every canonical column present,
// synthesizing typed defaults only for cells the sheet lacks. Wholesale
// writes must carry the full column set, but rows an operation did not touch
// keep their raw text: quarantined stage labels and drifted totals stay in
// the store until an edit to that row goes through the audit detector.
func FillMissingColumns(r store.Row, columns []string) store.Row {
	out := make(store.Row, len(columns))
	for _, col := range columns {
		out[col] = cell(r, col)
	}
	return out
}

// FillRows applies FillMissingColumns to every row.
func FillRows(rows []store.Row, columns []string) []store.Row {
	out := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, FillMissingColumns(r, columns))
	}
	return out
}

func boolCell(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func linkOut(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// OrderRow renders an Order back into a full-width raw row. Quarantine fields
// are helper columns and are deliberately not written back.
func OrderRow(o Order) store.Row {
	return store.Row{
		"Order ID":          o.ID,
		"Name":              o.Name,
		"Contact":           o.Contact,
		"Qty":               strconv.Itoa(o.Quantity),
		"Unit Price":        o.UnitPrice,
		"Total":             o.Total,
		"Payment":           string(o.Payment),
		"Status":            string(o.Stage),
		"Created At":        timeCell(o.CreatedAt),
		"Status Updated At": timeCell(o.StatusUpdatedAt),
		"Audit Log":         o.AuditLog,
		"Exported":          boolCell(o.Exported),
		"Called":            boolCell(o.Called),
		"Design Front":      linkOut(o.DesignFront),
		"Design Back":       linkOut(o.DesignBack),
	}
}

// OrdersSnapshot renders the ledger for a wholesale write, carrying the
// version observed at read time.
func OrdersSnapshot(table string, orders []Order, version int64) *store.Snapshot {
	rows := make([]store.Row, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, OrderRow(o))
	}
	return &store.Snapshot{Table: table, Columns: OrderColumns, Rows: rows, Version: version}
}

// ExpenseRow renders an Expense back into a raw row.
func ExpenseRow(e Expense) store.Row {
	return store.Row{
		"Date":      timeCell(e.Date),
		"Amount":    e.Amount,
		"Recipient": e.Recipient,
		"Note":      e.Note,
		"Category":  e.Category,
	}
}

// ExpensesSnapshot renders the expense ledger for a wholesale write.
func ExpensesSnapshot(table string, expenses []Expense, version int64) *store.Snapshot {
	rows := make([]store.Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, ExpenseRow(e))
	}
	return &store.Snapshot{Table: table, Columns: ExpenseColumns, Rows: rows, Version: version}
}
