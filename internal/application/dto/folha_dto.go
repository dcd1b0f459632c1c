package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollEntryRequest entrada para criar ou atualizar um lançamento de folha.
type PayrollEntryRequest struct {
	UserID      string          `json:"user_id" validate:"required"`
	Period      string          `json:"period" validate:"required"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Deductions  decimal.Decimal `json:"deductions"`
	Notes       string          `json:"notes"`
}

// PayrollEntryResponse saída de um lançamento de folha.
type PayrollEntryResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name"`
	Period      string          `json:"period"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Deductions  decimal.Decimal `json:"deductions"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Notes       string          `json:"notes,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
