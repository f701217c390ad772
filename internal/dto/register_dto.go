package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"min=0"`
	// PriorCountedAmount must be supplied to close a register that is still
	// open; without it the open is rejected instead of silently auto-closing
	// the previous drawer with no count.
	PriorCountedAmount *decimal.Decimal `json:"prior_counted_amount"`
}

type CloseRegisterRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount" validate:"min=0"`
	// SupervisorPassword feeds the authorization gate.
	SupervisorPassword string `json:"supervisor_password" validate:"required"`
}

type AddFundsRequest struct {
	Amount             decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description        string          `json:"description" validate:"required,min=3"`
	SupervisorPassword string          `json:"supervisor_password" validate:"required"`
}

type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Signed      decimal.Decimal `json:"signed_amount"`
	Description string          `json:"description"`
	OrderID     *string         `json:"order_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type RegisterResponse struct {
	ID            string           `json:"id"`
	InitialAmount decimal.Decimal  `json:"initial_amount"`
	CurrentAmount decimal.Decimal  `json:"current_amount"`
	FinalAmount   *decimal.Decimal `json:"final_amount,omitempty"`
	Status        string           `json:"status"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at,omitempty"`

	Transactions []TransactionResponse `json:"transactions,omitempty"`
}
