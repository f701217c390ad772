package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Date   string `form:"date"`                  // YYYY-MM-DD; empty = any
	Status string `form:"status,default=open"`   // open | completed | all
	Type   string `form:"type"`                  // purchase | sale | empty = both
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateOrderRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=2"`
	Type         string `json:"type"          validate:"required,oneof=purchase sale"`
}

type AddItemRequest struct {
	MaterialID  string          `json:"material_id"  validate:"required,uuid"`
	GrossWeight decimal.Decimal `json:"gross_weight" validate:"required,gt=0"`
	Tare        decimal.Decimal `json:"tare"         validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required,gt=0"`
}

type SettleOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash pix debit credit"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	Material  string          `json:"material"`
	Quantity  decimal.Decimal `json:"quantity"`
	Tare      decimal.Decimal `json:"tare"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Number        int                 `json:"number"`
	Customer      string              `json:"customer"`
	Type          string              `json:"type"`
	Status        string              `json:"status"`
	Cancelled     bool                `json:"cancelled"`
	Total         decimal.Decimal     `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	CreatedAt     string              `json:"created_at"`
	CompletedAt   *string             `json:"completed_at,omitempty"`
}

// InsufficientFundsResponse is the distinguished payload for the recoverable
// funds condition — the UI drives an add-funds flow from it and retries.
type InsufficientFundsResponse struct {
	Detail   string          `json:"detail"`
	Required decimal.Decimal `json:"required"`
	Current  decimal.Decimal `json:"current"`
	Missing  decimal.Decimal `json:"missing"`
}

// InsufficientStockResponse names the first violating material and shortfall.
type InsufficientStockResponse struct {
	Detail   string          `json:"detail"`
	Material string          `json:"material"`
	Have     decimal.Decimal `json:"have"`
	Need     decimal.Decimal `json:"need"`
}
