package dto

import "github.com/shopspring/decimal"

// PaymentBreakdown partitions order totals by payment method. Purchases and
// sales are never merged into one breakdown — their signs differ.
type PaymentBreakdown struct {
	Cash   decimal.Decimal `json:"cash"`
	Pix    decimal.Decimal `json:"pix"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Total  decimal.Decimal `json:"total"`
}

// ClosingReport is the persisted-state contract for any downstream
// printing/export consumer: opening amount, per-method purchase/sale
// totals, weights, expected vs counted, variance, entry count.
type ClosingReport struct {
	RegisterID    string          `json:"register_id"`
	OpenedAt      string          `json:"opened_at"`
	ClosedAt      *string         `json:"closed_at,omitempty"`
	InitialAmount decimal.Decimal `json:"initial_amount"`

	Purchases PaymentBreakdown `json:"purchases"`
	Sales     PaymentBreakdown `json:"sales"`

	WeightPurchased decimal.Decimal `json:"weight_purchased"`
	WeightSold      decimal.Decimal `json:"weight_sold"`

	ExpectedAmount decimal.Decimal  `json:"expected_amount"`
	FinalAmount    *decimal.Decimal `json:"final_amount,omitempty"`
	// Variance: "CONFERE" (counted == expected), "SOBRA" (surplus) or
	// "FALTA" (shortage); Difference is always the absolute value shown
	// on the closing slip.
	Variance   string          `json:"variance"`
	Difference decimal.Decimal `json:"difference"`

	TransactionCount int `json:"transaction_count"`
}

type RegisterHistoryResponse struct {
	Data  []RegisterResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
