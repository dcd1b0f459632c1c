package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenSessionRequest entrada para abrir uma sessão de caixa.
type OpenSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Notes         string          `json:"notes"`
}

// CashMovementRequest entrada para lançar um movimento na sessão.
type CashMovementRequest struct {
	Kind   string          `json:"kind" validate:"required,oneof=venda suprimento sangria"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// CloseSessionRequest entrada para fechar a sessão com o valor conferido.
type CloseSessionRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount"`
	Notes         string          `json:"notes"`
}

// SessionResponse saída de uma sessão de caixa. Os campos de conferência
// (expected, difference, closing) só aparecem após o fechamento.
type SessionResponse struct {
	ID             string           `json:"id"`
	OwnerID        string           `json:"owner_id"`
	OwnerName      string           `json:"owner_name"`
	Status         string           `json:"status"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	Balance        decimal.Decimal  `json:"balance"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}
