package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finedata/printledger/internal/export"
	"github.com/finedata/printledger/internal/ledger"
	"github.com/finedata/printledger/internal/session"
	"github.com/finedata/printledger/internal/store"
)

// prices is the active price table. The current sheet runs flat pricing.
var prices = ledger.DefaultPriceTable

func loginHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "password is required"})
			return
		}
		s, err := sessions.Login(req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, HTTPError{Error: "password incorrect"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func logoutHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		sessions.Logout(token)
		c.Status(http.StatusNoContent)
	}
}

// readOrders loads and coerces the order ledger. The store contract already
// degrades an absent table to an empty snapshot, so an error here is a real
// store failure.
func readOrders(c *gin.Context, st store.Store, table string) (*store.Snapshot, []ledger.Order, bool) {
	snap, err := st.ReadTable(c.Request.Context(), table)
	if err != nil {
		c.JSON(http.StatusBadGateway, HTTPError{Error: "ledger store unavailable"})
		return nil, nil, false
	}
	return snap, ledger.CoerceOrders(snap, prices), true
}

func writeFailure(c *gin.Context, err error) {
	if errors.Is(err, store.ErrStaleSnapshot) {
		c.JSON(http.StatusConflict, HTTPError{Error: "ledger changed since it was read, reload and retry"})
		return
	}
	c.JSON(http.StatusBadGateway, HTTPError{Error: "ledger store write failed, nothing was saved"})
}

func metricsHandler(st store.Store, ordersTable, expensesTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, orders, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		esnap, err := st.ReadTable(c.Request.Context(), expensesTable)
		if err != nil {
			c.JSON(http.StatusBadGateway, HTTPError{Error: "expense store unavailable"})
			return
		}
		expenses := ledger.CoerceExpenses(esnap)

		sum := ledger.Summarize(orders, expenses)
		late, urgent := ledger.UrgencyCounts(orders, time.Now())
		c.JSON(http.StatusOK, MetricsResponse{
			Summary:             sum,
			SupplierDebtDisplay: ledger.DisplaySupplierDebt(sum.SupplierDebt).String(),
			LateCount:           late,
			UrgentCount:         urgent,
		})
	}
}

func listOrdersHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, orders, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}

		workQueue := c.Query("workqueue") == "1"
		readyOnly := c.Query("ready") == "1"

		var stageFilter ledger.Stage
		if q := c.Query("stage"); q != "" {
			stg, ok := ledger.ParseStage(q)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("unknown stage %q", q)})
				return
			}
			stageFilter = stg
		}
		var paymentFilter ledger.PaymentState
		if q := c.Query("payment"); q != "" {
			p, ok := ledger.ParsePaymentState(q)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("unknown payment state %q", q)})
				return
			}
			paymentFilter = p
		}

		now := time.Now()
		counts := ledger.OrderCountByContact(orders)
		items := make([]OrderView, 0, len(orders))
		for _, o := range orders {
			if stageFilter != "" && o.Stage != stageFilter {
				continue
			}
			if paymentFilter != "" && o.Payment != paymentFilter {
				continue
			}
			// production floor: only rows that still need work
			if workQueue && o.Stage != ledger.StagePending && o.Stage != ledger.StagePrinting {
				continue
			}
			if readyOnly && o.Stage != ledger.StageReady {
				continue
			}

			prod, del := ledger.OrderUrgency(o, now)
			key := strings.ToLower(o.Contact)
			if key == "" {
				key = strings.ToLower(o.Name)
			}
			items = append(items, OrderView{
				Order:             o,
				ProductionUrgency: prod,
				DeliveryUrgency:   del,
				Loyalty:           ledger.LoyaltyTier(counts[key]),
			})
		}
		c.JSON(http.StatusOK, LedgerResponse{Version: snap.Version, Items: items})
	}
}

func createOrderHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid json"})
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Contact) == "" {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "name and contact are required"})
			return
		}
		if req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "quantity must be at least 1"})
			return
		}
		o := ledger.Order{
			ID:          strings.TrimSpace(req.ID),
			Name:        strings.TrimSpace(req.Name),
			Contact:     strings.TrimSpace(req.Contact),
			Quantity:    req.Quantity,
			Payment:     ledger.PaymentUnpaid,
			Stage:       ledger.StagePending,
			DesignFront: strings.TrimSpace(req.DesignFront),
			DesignBack:  strings.TrimSpace(req.DesignBack),
		}
		if req.Payment != "" {
			p, ok := ledger.ParsePaymentState(req.Payment)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("unknown payment state %q", req.Payment)})
				return
			}
			o.Payment = p
		}
		if req.Stage != "" {
			stg, ok := ledger.ParseStage(req.Stage)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("unknown stage %q", req.Stage)})
				return
			}
			o.Stage = stg
		}
		o.UnitPrice = prices.UnitPriceFor(o.Quantity).String()
		o.Total = prices.TotalFor(o.Quantity).String()

		snap, orders, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		} else {
			for i := range orders {
				if orders[i].ID == o.ID {
					c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("order id %s already exists", o.ID)})
					return
				}
			}
		}
		ledger.InitNewOrder(&o, time.Now())

		// existing rows keep their raw cells; only the new row is rendered
		rows := append(ledger.FillRows(snap.Rows, ledger.OrderColumns), ledger.OrderRow(o))
		write := &store.Snapshot{Table: ordersTable, Columns: ledger.OrderColumns, Rows: rows, Version: snap.Version}
		if err := st.WriteTable(c.Request.Context(), write); err != nil {
			writeFailure(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func updateOrdersHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid json"})
			return
		}

		edited := make([]ledger.Order, 0, len(req.Orders))
		for _, row := range req.Orders {
			if row.Quantity < 1 {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("order %s: quantity must be at least 1", row.ID)})
				return
			}
			stg, ok := ledger.ParseStage(row.Stage)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("order %s: unknown stage %q", row.ID, row.Stage)})
				return
			}
			pay, ok := ledger.ParsePaymentState(row.Payment)
			if !ok {
				c.JSON(http.StatusBadRequest, HTTPError{Error: fmt.Sprintf("order %s: unknown payment state %q", row.ID, row.Payment)})
				return
			}
			o := ledger.Order{
				ID:          strings.TrimSpace(row.ID),
				Name:        strings.TrimSpace(row.Name),
				Contact:     strings.TrimSpace(row.Contact),
				Quantity:    row.Quantity,
				Payment:     pay,
				Stage:       stg,
				Called:      row.Called,
				DesignFront: strings.TrimSpace(row.DesignFront),
				DesignBack:  strings.TrimSpace(row.DesignBack),
			}
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			o.UnitPrice = prices.UnitPriceFor(o.Quantity).String()
			o.Total = prices.TotalFor(o.Quantity).String()
			edited = append(edited, o)
		}

		snap, orders, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		if req.Version != snap.Version {
			c.JSON(http.StatusConflict, HTTPError{Error: "ledger changed since it was read, reload and retry"})
			return
		}

		merged, changes := ledger.ApplyEdits(orders, edited, time.Now())

		// only rows the batch actually edited are re-rendered; pass-through
		// rows keep their raw cells (quarantined labels, drifted totals)
		editedIDs := make(map[string]bool, len(edited))
		for i := range edited {
			editedIDs[edited[i].ID] = true
		}
		rows := make([]store.Row, 0, len(merged))
		for i := range merged {
			if i < len(snap.Rows) && !editedIDs[merged[i].ID] {
				rows = append(rows, ledger.FillMissingColumns(snap.Rows[i], ledger.OrderColumns))
				continue
			}
			rows = append(rows, ledger.OrderRow(merged[i]))
		}
		write := &store.Snapshot{Table: ordersTable, Columns: ledger.OrderColumns, Rows: rows, Version: snap.Version}
		if err := st.WriteTable(c.Request.Context(), write); err != nil {
			writeFailure(c, err)
			return
		}
		if changes == nil {
			changes = []ledger.ChangeRecord{}
		}
		c.JSON(http.StatusOK, UpdateOrdersResponse{Version: snap.Version + 1, Changes: changes})
	}
}

// deleteOrderHandler removes a row outright. Deletion predates the audit
// trail and stays unaudited.
func deleteOrderHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		snap, _, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		// surviving rows keep their raw cells
		kept := make([]store.Row, 0, len(snap.Rows))
		found := false
		for _, r := range snap.Rows {
			if ledger.RowID(r) == id {
				found = true
				continue
			}
			kept = append(kept, ledger.FillMissingColumns(r, ledger.OrderColumns))
		}
		if !found {
			c.JSON(http.StatusNotFound, HTTPError{Error: "order not found"})
			return
		}
		write := &store.Snapshot{Table: ordersTable, Columns: ledger.OrderColumns, Rows: kept, Version: snap.Version}
		if err := st.WriteTable(c.Request.Context(), write); err != nil {
			writeFailure(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func markCalledHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		req := CalledRequest{Called: true}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid json"})
				return
			}
		}
		snap, _, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		// flip the one cell; every other row keeps its raw text
		rows := ledger.FillRows(snap.Rows, ledger.OrderColumns)
		found := false
		for _, r := range rows {
			if ledger.RowID(r) == id {
				if req.Called {
					r["Called"] = "Yes"
				} else {
					r["Called"] = "No"
				}
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, HTTPError{Error: "order not found"})
			return
		}
		write := &store.Snapshot{Table: ordersTable, Columns: ledger.OrderColumns, Rows: rows, Version: snap.Version}
		if err := st.WriteTable(c.Request.Context(), write); err != nil {
			writeFailure(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func exportOrdersHandler(st store.Store, ordersTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f export.Filter
		if v := c.Query("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, HTTPError{Error: "from must be YYYY-MM-DD"})
				return
			}
			f.From = t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusBadRequest, HTTPError{Error: "to must be YYYY-MM-DD"})
				return
			}
			// inclusive day bound
			f.To = t.Add(24*time.Hour - time.Second)
		}

		snap, orders, ok := readOrders(c, st, ordersTable)
		if !ok {
			return
		}
		csvBytes, ids, err := export.SupplierCSV(orders, f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, HTTPError{Error: "export failed"})
			return
		}
		if len(ids) > 0 {
			// flip only the Exported cell; raw text of every row survives
			want := make(map[string]bool, len(ids))
			for _, id := range ids {
				want[id] = true
			}
			rows := ledger.FillRows(snap.Rows, ledger.OrderColumns)
			for _, r := range rows {
				if want[ledger.RowID(r)] {
					r["Exported"] = "Yes"
				}
			}
			write := &store.Snapshot{Table: ordersTable, Columns: ledger.OrderColumns, Rows: rows, Version: snap.Version}
			if err := st.WriteTable(c.Request.Context(), write); err != nil {
				// the batch is not handed off unless the flags stick
				writeFailure(c, err)
				return
			}
		}
		c.Header("Content-Disposition", `attachment; filename="supplier-batch.csv"`)
		c.Data(http.StatusOK, "text/csv", csvBytes)
	}
}

func listExpensesHandler(st store.Store, expensesTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := st.ReadTable(c.Request.Context(), expensesTable)
		if err != nil {
			c.JSON(http.StatusBadGateway, HTTPError{Error: "expense store unavailable"})
			return
		}
		expenses := ledger.CoerceExpenses(snap)
		c.JSON(http.StatusOK, gin.H{"version": snap.Version, "items": expenses})
	}
}

func createExpenseHandler(st store.Store, expensesTable string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "invalid json"})
			return
		}
		amount := ledger.CoerceDecimal(req.Amount)
		if strings.TrimSpace(req.Recipient) == "" || !amount.IsPositive() {
			c.JSON(http.StatusBadRequest, HTTPError{Error: "recipient and a positive amount are required"})
			return
		}
		e := ledger.Expense{
			Date:      time.Now(),
			Amount:    amount.String(),
			Recipient: strings.TrimSpace(req.Recipient),
			Note:      strings.TrimSpace(req.Note),
			Category:  strings.TrimSpace(req.Category),
		}
		if req.Date != "" {
			t, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, HTTPError{Error: "date must be YYYY-MM-DD"})
				return
			}
			e.Date = t
		}
		if e.Category == "" {
			e.Category = ledger.DefaultExpenseCategory
		}

		snap, err := st.ReadTable(c.Request.Context(), expensesTable)
		if err != nil {
			c.JSON(http.StatusBadGateway, HTTPError{Error: "expense store unavailable"})
			return
		}
		expenses := append(ledger.CoerceExpenses(snap), e)
		if err := st.WriteTable(c.Request.Context(), ledger.ExpensesSnapshot(expensesTable, expenses, snap.Version)); err != nil {
			writeFailure(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}
