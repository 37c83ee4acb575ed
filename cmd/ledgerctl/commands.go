package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/finedata/printledger/internal/config"
	"github.com/finedata/printledger/internal/export"
	"github.com/finedata/printledger/internal/ledger"
	"github.com/finedata/printledger/internal/store"
)

var prices = ledger.DefaultPriceTable

// openStore wires a PGStore from the same env config the service uses.
func openStore(ctx context.Context) (*store.PGStore, config.Config, func(), error) {
	cfg := config.Load()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("connect: %w", err)
	}
	st := store.NewPGStore(pool, map[string][]string{
		cfg.OrdersTable:   ledger.OrderColumns,
		cfg.ExpensesTable: ledger.ExpenseColumns,
	})
	return st, cfg, pool.Close, nil
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the executive-suite numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, cfg, done, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer done()

		osnap, err := st.ReadTable(ctx, cfg.OrdersTable)
		if err != nil {
			return fmt.Errorf("read orders: %w", err)
		}
		esnap, err := st.ReadTable(ctx, cfg.ExpensesTable)
		if err != nil {
			return fmt.Errorf("read expenses: %w", err)
		}
		orders := ledger.CoerceOrders(osnap, prices)
		expenses := ledger.CoerceExpenses(esnap)
		sum := ledger.Summarize(orders, expenses)
		late, urgent := ledger.UrgencyCounts(orders, time.Now())

		t := tablewriter.NewTable(os.Stdout)
		t.Header("Metric", "Value")
		t.Append([]string{"Gross Revenue", sum.GrossRevenue.String() + " ETB"})
		t.Append([]string{"Cash On Hand", sum.CashOnHand.String() + " ETB"})
		t.Append([]string{"Receivables", sum.Receivables.String() + " ETB"})
		t.Append([]string{"Net Profit (est.)", sum.NetProfit.String() + " ETB"})
		t.Append([]string{"Supplier Debt", ledger.DisplaySupplierDebt(sum.SupplierDebt).String() + " ETB"})
		t.Append([]string{"Orders", strconv.Itoa(sum.TotalOrders)})
		t.Append([]string{"Produced Qty", strconv.Itoa(sum.ProducedQuantity)})
		t.Append([]string{"Late", strconv.Itoa(late)})
		t.Append([]string{"Urgent", strconv.Itoa(urgent)})
		return t.Render()
	},
}

var ordersStage string
var ordersWorkQueue bool

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List ledger rows with urgency flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, cfg, done, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer done()

		osnap, err := st.ReadTable(ctx, cfg.OrdersTable)
		if err != nil {
			return fmt.Errorf("read orders: %w", err)
		}
		orders := ledger.CoerceOrders(osnap, prices)

		var stageFilter ledger.Stage
		if ordersStage != "" {
			parsed, ok := ledger.ParseStage(ordersStage)
			if !ok {
				return fmt.Errorf("unknown stage %q", ordersStage)
			}
			stageFilter = parsed
		}

		now := time.Now()
		t := tablewriter.NewTable(os.Stdout)
		t.Header("ID", "Name", "Qty", "Stage", "Payment", "Production", "Delivery")
		for _, o := range orders {
			if stageFilter != "" && o.Stage != stageFilter {
				continue
			}
			if ordersWorkQueue && o.Stage != ledger.StagePending && o.Stage != ledger.StagePrinting {
				continue
			}
			prod, del := ledger.OrderUrgency(o, now)
			t.Append([]string{
				o.ID, o.Name, strconv.Itoa(o.Quantity),
				string(o.Stage), string(o.Payment),
				colorUrgency(prod), colorUrgency(del),
			})
		}
		return t.Render()
	},
}

func colorUrgency(u ledger.Urgency) string {
	switch u.Kind {
	case ledger.UrgencyLate:
		return color.New(color.FgRed).Sprint(u.String())
	case ledger.UrgencyUrgent:
		return color.New(color.FgYellow).Sprint(u.String())
	case ledger.UrgencyComplete:
		return color.New(color.FgGreen).Sprint(u.String())
	default:
		return u.String()
	}
}

var exportMark bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the supplier CSV batch to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, cfg, done, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer done()

		osnap, err := st.ReadTable(ctx, cfg.OrdersTable)
		if err != nil {
			return fmt.Errorf("read orders: %w", err)
		}
		orders := ledger.CoerceOrders(osnap, prices)

		csvBytes, ids, err := export.SupplierCSV(orders, export.Filter{})
		if err != nil {
			return err
		}
		if exportMark && len(ids) > 0 {
			// flip only the Exported cell; raw text of every row survives
			want := make(map[string]bool, len(ids))
			for _, id := range ids {
				want[id] = true
			}
			rows := ledger.FillRows(osnap.Rows, ledger.OrderColumns)
			for _, r := range rows {
				if want[ledger.RowID(r)] {
					r["Exported"] = "Yes"
				}
			}
			snap := &store.Snapshot{Table: cfg.OrdersTable, Columns: ledger.OrderColumns, Rows: rows, Version: osnap.Version}
			if err := st.WriteTable(ctx, snap); err != nil {
				return fmt.Errorf("mark exported: %w", err)
			}
			fmt.Fprintf(os.Stderr, "marked %d orders exported\n", len(ids))
		}
		_, err = os.Stdout.Write(csvBytes)
		return err
	},
}

func init() {
	ordersCmd.Flags().StringVar(&ordersStage, "stage", "", "filter by stage label")
	ordersCmd.Flags().BoolVar(&ordersWorkQueue, "workqueue", false, "only rows still needing production work")
	exportCmd.Flags().BoolVar(&exportMark, "mark", false, "flip the Exported flag after printing")
}
