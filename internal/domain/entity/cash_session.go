package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de uma sessão de caixa. Fechada é terminal: não há reabertura.
const (
	SessionAberta  = "aberta"
	SessionFechada = "fechada"
)

// CashSession é um turno de caixa de um operador.
// Balance é o saldo corrente derivado dos movimentos (fundo de troco incluído)
// e serve de fonte única para o valor esperado no fechamento. Version protege
// tanto os movimentos quanto a transição aberta->fechada contra corridas.
type CashSession struct {
	ID             string
	OwnerID        string // operador dono do turno; no máximo uma sessão aberta por dono
	OwnerName      string
	OpeningAmount  decimal.Decimal
	ClosingAmount  decimal.Decimal // valor contado fisicamente, definido no fechamento
	ExpectedAmount decimal.Decimal // calculado no fechamento: saldo corrente da conta
	Difference     decimal.Decimal // ClosingAmount - ExpectedAmount
	Balance        decimal.Decimal
	Version        int64
	Status         string // aberta | fechada
	Notes          string
	OpenedAt       time.Time
	ClosedAt       *time.Time
}
