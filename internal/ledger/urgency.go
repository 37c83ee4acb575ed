package ledger

import (
	"fmt"
	"time"
)

// UrgencyKind classifies an order against one SLA deadline.
type UrgencyKind string

const (
	// UrgencyNoDate means the creation timestamp failed to parse; the row is
	// excluded from deadline math rather than treated as due now.
	UrgencyNoDate   UrgencyKind = "NoDate"
	UrgencyLate     UrgencyKind = "Late"
	UrgencyUrgent   UrgencyKind = "Urgent"
	UrgencyOnTrack  UrgencyKind = "OnTrack"
	UrgencyComplete UrgencyKind = "Complete"
)

// Urgency is the classification for one axis. Days is days overdue for Late
// and days remaining for OnTrack; zero otherwise.
type Urgency struct {
	Kind UrgencyKind `json:"kind"`
	Days int         `json:"days,omitempty"`
}

func (u Urgency) String() string {
	switch u.Kind {
	case UrgencyLate:
		return fmt.Sprintf("Late (%dd overdue)", u.Days)
	case UrgencyOnTrack:
		return fmt.Sprintf("On Track (%dd left)", u.Days)
	default:
		return string(u.Kind)
	}
}

// classify scores one deadline. Whole days; a deadline hit exactly (zero or
// one day remaining) is Urgent, past it is Late.
func classify(createdAt, now time.Time, slaDays int) Urgency {
	if createdAt.IsZero() {
		return Urgency{Kind: UrgencyNoDate}
	}
	deadline := createdAt.Add(time.Duration(slaDays) * 24 * time.Hour)
	remaining := int(deadline.Sub(now).Hours() / 24)
	if deadline.Before(now) && remaining <= 0 {
		if overdue := int(now.Sub(deadline).Hours() / 24); overdue >= 1 {
			return Urgency{Kind: UrgencyLate, Days: overdue}
		}
	}
	if remaining <= 1 {
		return Urgency{Kind: UrgencyUrgent}
	}
	return Urgency{Kind: UrgencyOnTrack, Days: remaining}
}

// OrderUrgency classifies one order against the production and delivery SLAs
// independently. Delivered orders are terminal on both axes no matter how
// long they took.
func OrderUrgency(o Order, now time.Time) (production, delivery Urgency) {
	if o.Stage == StageDelivered {
		u := Urgency{Kind: UrgencyComplete}
		return u, u
	}
	return classify(o.CreatedAt, now, ProductionSLADays),
		classify(o.CreatedAt, now, DeliverySLADays)
}

// UrgencyCounts tallies Late/Urgent orders across the ledger for the metrics
// endpoint, on the production axis.
func UrgencyCounts(orders []Order, now time.Time) (late, urgent int) {
	for i := range orders {
		prod, _ := OrderUrgency(orders[i], now)
		switch prod.Kind {
		case UrgencyLate:
			late++
		case UrgencyUrgent:
			urgent++
		}
	}
	return late, urgent
}
