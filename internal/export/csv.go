// Package export serializes ledger subsets for hand-off to the supplier.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/finedata/printledger/internal/ledger"
)

// Header is the column order the supplier's intake sheet expects.
var Header = []string{
	"Order ID", "Name", "Contact", "Qty", "Status", "Created At",
	"Design Front", "Design Back",
}

// Filter selects which orders go into a supplier batch.
type Filter struct {
	// From/To bound CreatedAt inclusively; zero values mean unbounded.
	From, To time.Time
	// IncludeExported keeps rows already sent in a prior batch.
	IncludeExported bool
}

func (f Filter) matches(o *ledger.Order) bool {
	if o.Exported && !f.IncludeExported {
		return false
	}
	if o.Stage == ledger.StageDelivered {
		return false
	}
	// rows with an unparseable creation date are excluded from ranged
	// batches instead of matching everything
	if !f.From.IsZero() && (o.CreatedAt.IsZero() || o.CreatedAt.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (o.CreatedAt.IsZero() || o.CreatedAt.After(f.To)) {
		return false
	}
	return true
}

// SupplierCSV renders the matching orders as comma-separated text and returns
// the IDs included, so the caller can flip their Exported flags after a
// successful write. An empty match still yields the header line.
func SupplierCSV(orders []ledger.Order, f Filter) ([]byte, []string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, nil, err
	}

	var ids []string
	for i := range orders {
		o := &orders[i]
		if !f.matches(o) {
			continue
		}
		created := ""
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Format(ledger.TimeLayout)
		}
		rec := []string{
			o.ID, o.Name, o.Contact, strconv.Itoa(o.Quantity),
			string(o.Stage), created, o.DesignFront, o.DesignBack,
		}
		if err := w.Write(rec); err != nil {
			return nil, nil, err
		}
		ids = append(ids, o.ID)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), ids, nil
}
