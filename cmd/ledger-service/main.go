package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finedata/printledger/internal/config"
	"github.com/finedata/printledger/internal/httpx"
	"github.com/finedata/printledger/internal/ledger"
	"github.com/finedata/printledger/internal/session"
	"github.com/finedata/printledger/internal/store"
)

func newRouter(st store.Store, sessions *session.Manager, ordersTable, expensesTable string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/login", loginHandler(sessions))

	auth := r.Group("/", httpx.RequireSession(sessions))
	auth.POST("/logout", logoutHandler(sessions))
	auth.GET("/metrics", metricsHandler(st, ordersTable, expensesTable))
	auth.GET("/orders", listOrdersHandler(st, ordersTable))
	auth.POST("/orders", createOrderHandler(st, ordersTable))
	auth.PUT("/orders", updateOrdersHandler(st, ordersTable))
	auth.GET("/orders/export", exportOrdersHandler(st, ordersTable))
	auth.DELETE("/orders/:id", deleteOrderHandler(st, ordersTable))
	auth.POST("/orders/:id/called", markCalledHandler(st, ordersTable))
	auth.GET("/expenses", listExpensesHandler(st, expensesTable))
	auth.POST("/expenses", createExpenseHandler(st, expensesTable))
	return r
}

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[store] connect: %v", err)
	}
	defer pool.Close()

	st := store.NewPGStore(pool, map[string][]string{
		cfg.OrdersTable:   ledger.OrderColumns,
		cfg.ExpensesTable: ledger.ExpenseColumns,
	})
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("[store] schema: %v", err)
	}

	sessions := session.NewManager(cfg.AdminPasswordHash)
	r := newRouter(st, sessions, cfg.OrdersTable, cfg.ExpensesTable)

	log.Printf("ledger-service listening on %s", cfg.LedgerSvcAddr)
	log.Fatal(r.Run(cfg.LedgerSvcAddr))
}
