package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finedata/printledger/internal/ledger"
)

func day(d int) time.Time { return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC) }

func sample() []ledger.Order {
	return []ledger.Order{
		{ID: "a", Name: "Abel", Quantity: 2, Stage: ledger.StagePending, CreatedAt: day(1)},
		{ID: "b", Name: "Bete", Quantity: 5, Stage: ledger.StagePrinting, CreatedAt: day(3)},
		{ID: "c", Name: "Chala", Quantity: 1, Stage: ledger.StageDelivered, CreatedAt: day(2)},
		{ID: "d", Name: "Dawit", Quantity: 3, Stage: ledger.StagePending, CreatedAt: day(5), Exported: true},
		{ID: "e", Name: "Elias", Quantity: 4, Stage: ledger.StageReady}, // no creation date
	}
}

func parse(t *testing.T, data []byte) [][]string {
	t.Helper()
	recs, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestSupplierCSV_SkipsExportedAndDelivered(t *testing.T) {
	data, ids, err := SupplierCSV(sample(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "e"}, ids)

	recs := parse(t, data)
	require.Len(t, recs, 4) // header + 3 rows
	assert.Equal(t, Header, recs[0])
	assert.Equal(t, "Abel", recs[1][1])
}

func TestSupplierCSV_DateRange(t *testing.T) {
	f := Filter{From: day(2), To: day(4)}
	_, ids, err := SupplierCSV(sample(), f)
	require.NoError(t, err)
	// only "b" is un-exported, undelivered and inside the range; the dateless
	// row "e" must not leak into a ranged batch
	assert.Equal(t, []string{"b"}, ids)
}

func TestSupplierCSV_IncludeExported(t *testing.T) {
	_, ids, err := SupplierCSV(sample(), Filter{IncludeExported: true})
	require.NoError(t, err)
	assert.Contains(t, ids, "d")
}

func TestSupplierCSV_EmptyLedgerStillHasHeader(t *testing.T) {
	data, ids, err := SupplierCSV(nil, Filter{})
	require.NoError(t, err)
	assert.Empty(t, ids)
	recs := parse(t, data)
	require.Len(t, recs, 1)
	assert.Equal(t, Header, recs[0])
}
