package main

import (
	"github.com/finedata/printledger/internal/ledger"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: login required
	Error string `json:"error"`
}

// LoginRequest carries the operator's shared secret.
// swagger:model LoginRequest
type LoginRequest struct {
	Password string `json:"password"`
}

// CreateOrderRequest payload for a new ledger row. ID is optional; the server
// generates one when it is empty.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"        example:"Abel T."`
	Contact     string `json:"contact"     example:"+251911000000"`
	Quantity    int    `json:"quantity"    example:"2"`
	Payment     string `json:"payment"     example:"Unpaid"`
	Stage       string `json:"stage"       example:"Pending"`
	DesignFront string `json:"design_front,omitempty"`
	DesignBack  string `json:"design_back,omitempty"`
}

// EditOrderRow is one edited row in a batch save.
// swagger:model EditOrderRow
type EditOrderRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Quantity    int    `json:"quantity"`
	Payment     string `json:"payment"`
	Stage       string `json:"stage"`
	Called      bool   `json:"called"`
	DesignFront string `json:"design_front,omitempty"`
	DesignBack  string `json:"design_back,omitempty"`
}

// UpdateOrdersRequest is a batch edit plus the snapshot version it was based
// on; a stale version is rejected instead of clobbering.
// swagger:model UpdateOrdersRequest
type UpdateOrdersRequest struct {
	Version int64          `json:"version"`
	Orders  []EditOrderRow `json:"orders"`
}

// CreateExpenseRequest payload for an expense row. Expenses are append-only.
// swagger:model CreateExpenseRequest
type CreateExpenseRequest struct {
	Date      string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Amount    string `json:"amount"    example:"2000"`
	Recipient string `json:"recipient" example:"Card supplier"`
	Note      string `json:"note,omitempty"`
	Category  string `json:"category,omitempty"`
}

// CalledRequest flips the phoned flag on one order.
// swagger:model CalledRequest
type CalledRequest struct {
	Called bool `json:"called"`
}

// OrderView is a ledger row plus its derived per-row classifications.
// swagger:model OrderView
type OrderView struct {
	ledger.Order
	ProductionUrgency ledger.Urgency `json:"production_urgency"`
	DeliveryUrgency   ledger.Urgency `json:"delivery_urgency"`
	Loyalty           string         `json:"loyalty,omitempty"`
}

// LedgerResponse is the list payload: rows plus the version a later batch
// edit must present.
// swagger:model LedgerResponse
type LedgerResponse struct {
	Version int64       `json:"version"`
	Items   []OrderView `json:"items"`
}

// MetricsResponse is the executive-suite number block.
// swagger:model MetricsResponse
type MetricsResponse struct {
	ledger.Summary
	// SupplierDebtDisplay is the debt clamped at zero for reporting.
	SupplierDebtDisplay string `json:"supplier_debt_display"`
	LateCount           int    `json:"late_count"`
	UrgentCount         int    `json:"urgent_count"`
}

// UpdateOrdersResponse reports what a batch save changed.
// swagger:model UpdateOrdersResponse
type UpdateOrdersResponse struct {
	Version int64                 `json:"version"`
	Changes []ledger.ChangeRecord `json:"changes"`
}
