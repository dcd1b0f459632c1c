package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimento de estoque.
const (
	KindEntrada = "entrada" // entrada de mercadoria (delta positivo)
	KindSaida   = "saida"   // saída de mercadoria (delta negativo, nunca abaixo de zero)
	KindAjuste  = "ajuste"  // correção absoluta: substitui o saldo, não soma
)

// Tipos de movimento de caixa.
const (
	KindAbertura   = "abertura"   // fundo de troco ao abrir a sessão
	KindVenda      = "venda"      // venda em dinheiro (delta positivo)
	KindSuprimento = "suprimento" // reforço de caixa (delta positivo)
	KindSangria    = "sangria"    // retirada de caixa (delta negativo)
	KindFechamento = "fechamento" // marcador de conferência no fechamento
)

// Movement é um registro imutável e ordenado de uma alteração de saldo.
// Criado uma única vez pelo motor de razão; nunca alterado nem apagado
// (trilha de auditoria). O ID é um ULID: a ordem lexicográfica dos IDs
// acompanha a ordem temporal dos movimentos.
type Movement struct {
	ID              string
	AccountID       string // ProductID (estoque) ou SessionID (caixa)
	Kind            string
	Quantity        decimal.Decimal // magnitude informada, sempre >= 0
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	ActorID         string
	ActorName       string
	ProductName     string // snapshot do nome do produto no momento (só estoque)
	Reason          string
	CreatedAt       time.Time
}

// Delta devolve a variação efetiva de saldo que o movimento aplicou.
func (m *Movement) Delta() decimal.Decimal {
	return m.NewBalance.Sub(m.PreviousBalance)
}
