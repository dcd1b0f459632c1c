// Package ledger contém as regras puras do razão de saldos: dado o estado
// corrente de uma conta e um movimento proposto, ou calcula o novo saldo ou
// rejeita. Não conhece persistência nem transporte (serviço de domínio).
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// Snapshot é a visão mínima de uma conta que o validador precisa:
// saldo e versão correntes, mais o status para contas com ciclo de vida
// (sessões de caixa). Contas de estoque usam Status vazio.
type Snapshot struct {
	Balance decimal.Decimal
	Version int64
	Status  string
}

// Validator decide se um movimento proposto é aceito sobre o estado corrente
// e, em caso positivo, devolve o novo saldo. Função pura: sem efeitos.
type Validator interface {
	Validate(current Snapshot, mov *entity.Movement) (decimal.Decimal, error)
}

// StockValidator aplica as regras de estoque:
//   - entrada: soma, quantidade > 0
//   - saida: subtrai, rejeitada se o saldo ficar negativo
//   - ajuste: substitui o saldo pelo valor informado (>= 0), não soma
type StockValidator struct{}

// Validate implementa Validator para contas de estoque.
func (StockValidator) Validate(current Snapshot, mov *entity.Movement) (decimal.Decimal, error) {
	if mov.Quantity.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	switch mov.Kind {
	case entity.KindEntrada:
		if !mov.Quantity.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return current.Balance.Add(mov.Quantity), nil
	case entity.KindSaida:
		if !mov.Quantity.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		newBalance := current.Balance.Sub(mov.Quantity)
		if newBalance.IsNegative() {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return newBalance, nil
	case entity.KindAjuste:
		// Ajuste é absoluto: o valor informado vira o saldo, qualquer que
		// fosse o anterior. Comportamento herdado do sistema original.
		return mov.Quantity, nil
	default:
		return decimal.Zero, domain.ErrInvalidMovementKind
	}
}

// CashValidator aplica as regras de caixa de uma sessão:
//   - abertura, venda e suprimento somam
//   - sangria subtrai; rejeitada se exceder o saldo registrado (o caixa
//     pode chegar a zero, mas retirar mais do que há é erro do operador)
//   - nenhum movimento é aceito com a sessão fechada
//
// O fechamento não passa por aqui: é gravado pela transição de fechamento
// da própria sessão.
type CashValidator struct{}

// Validate implementa Validator para sessões de caixa.
func (CashValidator) Validate(current Snapshot, mov *entity.Movement) (decimal.Decimal, error) {
	if current.Status != entity.SessionAberta {
		return decimal.Zero, domain.ErrSessionClosed
	}
	if mov.Quantity.IsNegative() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	switch mov.Kind {
	case entity.KindAbertura, entity.KindVenda, entity.KindSuprimento:
		if !mov.Quantity.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		return current.Balance.Add(mov.Quantity), nil
	case entity.KindSangria:
		if !mov.Quantity.IsPositive() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		newBalance := current.Balance.Sub(mov.Quantity)
		if newBalance.IsNegative() {
			return decimal.Zero, domain.ErrSangriaExceedsBalance
		}
		return newBalance, nil
	default:
		return decimal.Zero, domain.ErrInvalidMovementKind
	}
}
