package dto

import "github.com/shopspring/decimal"

type CreateMaterialRequest struct {
	Name           string          `json:"name"            validate:"required,min=2"`
	Unit           string          `json:"unit"            validate:"omitempty,oneof=kg t un"`
	ReferencePrice decimal.Decimal `json:"reference_price" validate:"required,gt=0"`
}

type UpdateMaterialRequest struct {
	Name           string           `json:"name"`
	Unit           string           `json:"unit" validate:"omitempty,oneof=kg t un"`
	ReferencePrice *decimal.Decimal `json:"reference_price"`
}

type MaterialResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
	// CurrentStock is filled from the inventory aggregator when available;
	// nil means the aggregator could not be reached.
	CurrentStock *decimal.Decimal `json:"current_stock,omitempty"`
	Active       bool             `json:"active"`
}
