package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
)

func baseOrder() Order {
	o := Order{
		ID:       "ord-1",
		Name:     "Abel",
		Contact:  "+251911",
		Quantity: 2,
		Payment:  PaymentUnpaid,
		Stage:    StagePending,
	}
	InitNewOrder(&o, t0)
	return o
}

func TestInitNewOrder(t *testing.T) {
	o := baseOrder()
	assert.Equal(t, t0, o.CreatedAt)
	assert.Equal(t, t0, o.StatusUpdatedAt)
	assert.Equal(t, "Created at 2026-03-01 09:00:00", o.AuditLog)
}

func TestApplyEdits_StageTransitionLoggedAndTimestamped(t *testing.T) {
	prev := []Order{baseOrder()}
	edit := prev[0]
	edit.Stage = StagePrinting

	merged, changes := ApplyEdits(prev, []Order{edit}, t1)
	require.Len(t, merged, 1)
	require.Len(t, changes, 1)

	got := merged[0]
	assert.Equal(t, StagePrinting, got.Stage)
	assert.Equal(t, t1, got.StatusUpdatedAt)
	assert.Equal(t, t0, got.CreatedAt, "created_at is immutable")
	assert.Contains(t, got.AuditLog, "Status: 'Pending' → 'Printing' at 2026-03-02 14:30:00")
	assert.Equal(t, []string{"Status: 'Pending' → 'Printing' at 2026-03-02 14:30:00"}, changes[0].Entries)
}

func TestApplyEdits_BothFieldsInOneBatch(t *testing.T) {
	prev := []Order{baseOrder()}
	edit := prev[0]
	edit.Stage = StageReady
	edit.Payment = PaymentPaid

	merged, changes := ApplyEdits(prev, []Order{edit}, t1)
	require.Len(t, changes, 1)
	assert.Len(t, changes[0].Entries, 2)
	// both entries land on the same row, joined by the fixed delimiter
	assert.Equal(t, 2, strings.Count(merged[0].AuditLog, AuditDelimiter))
}

func TestApplyEdits_IdempotentOnNoOp(t *testing.T) {
	prev := []Order{baseOrder()}

	merged, changes := ApplyEdits(prev, []Order{prev[0]}, t1)
	assert.Empty(t, changes)
	if diff := cmp.Diff(prev, merged); diff != "" {
		t.Fatalf("no-op edit mutated the row (-want +got):\n%s", diff)
	}

	// and a second identical pass changes nothing either
	again, changes := ApplyEdits(merged, merged, t1.Add(time.Hour))
	assert.Empty(t, changes)
	if diff := cmp.Diff(merged, again); diff != "" {
		t.Fatalf("second pass mutated the row (-want +got):\n%s", diff)
	}
}

func TestApplyEdits_AuditLogIsAppendOnly(t *testing.T) {
	prev := []Order{baseOrder()}
	oldLog := prev[0].AuditLog

	edit := prev[0]
	edit.Stage = StagePrinting
	merged, _ := ApplyEdits(prev, []Order{edit}, t1)

	newLog := merged[0].AuditLog
	assert.GreaterOrEqual(t, len(newLog), len(oldLog))
	assert.True(t, strings.HasPrefix(newLog, oldLog), "history must be preserved as a prefix")
}

func TestApplyEdits_NewRowGetsCreationEntry(t *testing.T) {
	fresh := Order{ID: "ord-2", Name: "Bete", Quantity: 1, Payment: PaymentUnpaid, Stage: StagePending}

	merged, changes := ApplyEdits(nil, []Order{fresh}, t1)
	require.Len(t, merged, 1)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Created)
	assert.Equal(t, t1, merged[0].CreatedAt)
	assert.Equal(t, t1, merged[0].StatusUpdatedAt)
	assert.Equal(t, "Created at 2026-03-02 14:30:00", merged[0].AuditLog)
}

func TestApplyEdits_MissingIdentityTreatedAsCreation(t *testing.T) {
	// previous snapshot row lost its ID; the edit cannot be matched to it
	prev := []Order{{Name: "orphan", Quantity: 1}}
	edit := Order{ID: "ord-9", Name: "orphan", Quantity: 1, Payment: PaymentUnpaid, Stage: StagePending}

	merged, changes := ApplyEdits(prev, []Order{edit}, t1)
	require.Len(t, merged, 2, "orphan row passes through, edit lands as a creation")
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Created)
}

func TestApplyEdits_UntouchedRowsPassThrough(t *testing.T) {
	a, b := baseOrder(), baseOrder()
	b.ID = "ord-2"
	prev := []Order{a, b}

	edit := a
	edit.Payment = PaymentPaid
	merged, changes := ApplyEdits(prev, []Order{edit}, t1)

	require.Len(t, merged, 2)
	require.Len(t, changes, 1)
	if diff := cmp.Diff(b, merged[1]); diff != "" {
		t.Fatalf("untouched row changed (-want +got):\n%s", diff)
	}
}

func TestApplyEdits_ServerOwnedFieldsNotEditable(t *testing.T) {
	prev := []Order{baseOrder()}
	prev[0].Exported = true

	edit := prev[0]
	edit.Exported = false // clients cannot un-export through a batch edit
	edit.AuditLog = "forged history"
	edit.CreatedAt = t1

	merged, _ := ApplyEdits(prev, []Order{edit}, t1)
	assert.True(t, merged[0].Exported)
	assert.Equal(t, prev[0].AuditLog, merged[0].AuditLog)
	assert.Equal(t, t0, merged[0].CreatedAt)
}
