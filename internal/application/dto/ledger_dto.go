package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest entrada para registrar um movimento de estoque.
type MovementRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=entrada saida ajuste"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// MovementResponse um movimento do histórico (estoque ou caixa).
type MovementResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	ActorID         string          `json:"actor_id"`
	ActorName       string          `json:"actor_name"`
	ProductName     string          `json:"product_name,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AccountResponse saldo e versão de uma conta de estoque.
type AccountResponse struct {
	ProductID string          `json:"product_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}
