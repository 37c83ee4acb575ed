package ledger

import (
	"fmt"
	"strings"
	"time"
)

// AuditDelimiter joins entries inside one row's audit log.
const AuditDelimiter = "; "

// trackedField is a diffable field: a name for the log plus accessors.
type trackedField struct {
	name string
	get  func(*Order) string
	// refreshesStatus marks fields whose change moves StatusUpdatedAt
	refreshesStatus bool
}

// TrackedFields is the diff set. Extending the audit to more fields means
// adding an entry here, nothing else.
var TrackedFields = []trackedField{
	{name: "Status", get: func(o *Order) string { return string(o.Stage) }, refreshesStatus: true},
	{name: "Payment", get: func(o *Order) string { return string(o.Payment) }, refreshesStatus: true},
}

// ChangeRecord reports what one edit batch did to one row.
type ChangeRecord struct {
	OrderID string   `json:"order_id"`
	Created bool     `json:"created,omitempty"`
	Entries []string `json:"entries"`
}

func auditEntry(field, old, new string, now time.Time) string {
	return fmt.Sprintf("%s: '%s' → '%s' at %s", field, old, new, now.Format(TimeLayout))
}

func appendAudit(log string, entries []string) string {
	joined := strings.Join(entries, AuditDelimiter)
	if log == "" {
		return joined
	}
	return log + AuditDelimiter + joined
}

// InitNewOrder stamps a freshly created row: both timestamps set to now and a
// creation entry opening the audit log.
func InitNewOrder(o *Order, now time.Time) {
	o.CreatedAt = now
	o.StatusUpdatedAt = now
	o.AuditLog = appendAudit(o.AuditLog, []string{
		fmt.Sprintf("Created at %s", now.Format(TimeLayout)),
	})
}

// ApplyEdits merges an edited snapshot into the previous one and appends
// audit history for every observed field transition.
//
// Matching is by order ID. Edited rows without a previous counterpart (or
// whose previous row lost its identity) are treated as creations. Previous
// rows the edit did not touch pass through unchanged; the caller deletes rows
// through a separate, unaudited operation. A no-op edit leaves the row
// byte-identical: no entries, no timestamp movement.
func ApplyEdits(prev, edited []Order, now time.Time) ([]Order, []ChangeRecord) {
	prevByID := make(map[string]int, len(prev))
	for i := range prev {
		if id := prev[i].ID; id != "" {
			prevByID[id] = i
		}
	}

	merged := make([]Order, len(prev))
	copy(merged, prev)
	var records []ChangeRecord

	for i := range edited {
		next := edited[i]
		idx, known := -1, false
		if next.ID != "" {
			idx, known = prevByID[next.ID]
		}
		if !known {
			InitNewOrder(&next, now)
			merged = append(merged, next)
			records = append(records, ChangeRecord{
				OrderID: next.ID,
				Created: true,
				Entries: []string{fmt.Sprintf("Created at %s", now.Format(TimeLayout))},
			})
			continue
		}

		old := merged[idx]
		var entries []string
		refresh := false
		for _, f := range TrackedFields {
			was, is := f.get(&old), f.get(&next)
			if was == is {
				continue
			}
			entries = append(entries, auditEntry(f.name, was, is, now))
			if f.refreshesStatus {
				refresh = true
			}
		}

		// carry immutable and server-owned fields forward
		next.CreatedAt = old.CreatedAt
		next.StatusUpdatedAt = old.StatusUpdatedAt
		next.AuditLog = old.AuditLog
		next.Exported = old.Exported

		if len(entries) > 0 {
			next.AuditLog = appendAudit(next.AuditLog, entries)
			if refresh {
				next.StatusUpdatedAt = now
			}
			records = append(records, ChangeRecord{OrderID: next.ID, Entries: entries})
		}
		merged[idx] = next
	}
	return merged, records
}
