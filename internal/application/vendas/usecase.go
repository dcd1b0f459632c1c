// Package vendas implementa o ponto de venda: registra a venda, dá baixa de
// estoque item a item e lança o dinheiro na sessão de caixa do operador.
// Não existe transação cruzando contas: cada passo é uma operação atômica
// independente, e pendências são detectadas e devolvidas ao chamador em vez
// de desfeitas (ver §SaleOutcome).
package vendas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/application/estoque"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

// SaleUseCase registra vendas do ponto de venda.
type SaleUseCase struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	estoque  *estoque.UseCase
	caixa    *caixa.Manager
	now      func() time.Time
	log      *logger.Logger
}

// NewSaleUseCase constrói o caso de uso de vendas.
func NewSaleUseCase(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	stockUC *estoque.UseCase,
	cashMgr *caixa.Manager,
	log *logger.Logger,
) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		sales:    sales,
		products: products,
		estoque:  stockUC,
		caixa:    cashMgr,
		now:      time.Now,
		log:      log,
	}
}

// SaleItemInput uma linha da venda.
type SaleItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// SaleInput entrada para registrar uma venda.
type SaleInput struct {
	PaymentMethod string
	Items         []SaleItemInput
}

// SaleOutcome é o desfecho da venda. CashRecorded indica se o movimento de
// caixa foi lançado; Pending lista o que ficou por fazer (ex.: venda em
// dinheiro sem sessão aberta). O chamador decide como regularizar.
type SaleOutcome struct {
	Sale         *entity.Sale
	CashRecorded bool
	Pending      []string
}

// RegisterSale valida os itens, dá baixa de estoque item a item e grava a
// venda; em pagamento em dinheiro, lança o valor na sessão aberta do
// operador. A baixa de cada item é atômica por conta, mas não há atomicidade
// entre itens: uma falha no meio devolve erro com as baixas anteriores já
// aplicadas (o histórico de movimentos permite auditar e corrigir).
func (uc *SaleUseCase) RegisterSale(ctx context.Context, actor entity.Actor, in SaleInput) (*SaleOutcome, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.PaymentMethod {
	case entity.PaymentDinheiro, entity.PaymentCartao, entity.PaymentPix:
	default:
		return nil, domain.ErrInvalidInput
	}

	saleID := uuid.New().String()
	total := decimal.Zero
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		subtotal := product.Price.Mul(it.Quantity)
		items = append(items, entity.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	// Baixa de estoque item a item, antes de gravar a venda.
	for i, item := range items {
		_, err := uc.estoque.RegisterMovement(ctx, actor, estoque.MovementInput{
			ProductID: item.ProductID,
			Kind:      entity.KindSaida,
			Quantity:  item.Quantity,
			Reason:    "venda " + saleID,
		})
		if err != nil {
			if i > 0 {
				uc.log.Error().
					Str("sale_id", saleID).
					Int("items_applied", i).
					Err(err).
					Msg("baixa de estoque interrompida no meio da venda")
			}
			return nil, fmt.Errorf("baixa de estoque de %s: %w", item.ProductName, err)
		}
	}

	sale := &entity.Sale{
		ID:            saleID,
		OperatorID:    actor.ID,
		OperatorName:  actor.Name,
		PaymentMethod: in.PaymentMethod,
		Total:         total,
		Items:         items,
		CreatedAt:     uc.now(),
	}

	outcome := &SaleOutcome{Sale: sale}

	// Venda em dinheiro entra na sessão de caixa aberta do operador.
	// Operação independente da venda: se falhar, a venda permanece e a
	// pendência é devolvida para regularização manual.
	if in.PaymentMethod == entity.PaymentDinheiro {
		sess, err := uc.caixa.OpenByOwner(ctx, actor.ID)
		switch {
		case err == nil:
			sale.SessionID = sess.ID
		case errors.Is(err, domain.ErrNotFound):
			outcome.Pending = append(outcome.Pending, "venda em dinheiro sem sessão de caixa aberta")
		default:
			return nil, err
		}
	}

	if err := uc.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	if sale.SessionID != "" {
		_, err := uc.caixa.Record(ctx, actor, sale.SessionID, entity.KindVenda, total, "venda "+saleID)
		if err != nil {
			uc.log.Warn().
				Str("sale_id", saleID).
				Str("session_id", sale.SessionID).
				Err(err).
				Msg("venda gravada sem o movimento de caixa")
			outcome.Pending = append(outcome.Pending, "movimento de caixa não registrado: "+err.Error())
		} else {
			outcome.CashRecorded = true
		}
	}

	return outcome, nil
}

// GetSale devolve uma venda por ID.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	return uc.sales.GetByID(ctx, id)
}

// ListSales lista vendas da mais recente para a mais antiga.
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	return uc.sales.List(ctx, limit, offset)
}
