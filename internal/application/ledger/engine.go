// Package ledger orquestra a aplicação de um movimento sobre uma conta:
// carrega o estado corrente, valida com as regras do domínio e persiste
// com compare-and-swap na versão. É o único caminho de escrita de saldo,
// compartilhado pelo estoque e pelo caixa.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

// DefaultMaxRetries limite padrão do loop otimista antes de devolver
// domain.ErrConflict ao chamador.
const DefaultMaxRetries = 4

// Engine aplica movimentos validados sobre uma conta do razão.
// Concorrência: nenhum lock em processo; a serialização por conta vem do
// CAS de versão no store. Em conflito o motor recarrega e tenta de novo,
// até maxRetries.
type Engine struct {
	store      repository.LedgerStore
	validator  ledger.Validator
	maxRetries int
	now        func() time.Time
	log        *logger.Logger
}

// NewEngine constrói o motor. maxRetries <= 0 usa DefaultMaxRetries.
func NewEngine(store repository.LedgerStore, validator ledger.Validator, maxRetries int, log *logger.Logger) *Engine {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		store:      store,
		validator:  validator,
		maxRetries: maxRetries,
		now:        time.Now,
		log:        log,
	}
}

// WithClock troca a fonte de tempo (testes).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Result é o desfecho de um movimento aceito. Balance e Movement.NewBalance
// são sempre idênticos; Version é a versão da conta após a gravação.
type Result struct {
	Balance  decimal.Decimal
	Version  int64
	Movement *entity.Movement
}

// Apply carrega a conta, valida o movimento proposto e persiste saldo novo
// + registro do movimento atomicamente. O movimento de entrada carrega Kind,
// Quantity, ator e contexto; o motor preenche ID (ULID), AccountID, saldos
// antes/depois e CreatedAt.
//
// Erros: domain.ErrNotFound (conta inexistente), erros de validação do
// domínio (terminais, sem retry) e domain.ErrConflict após esgotar as
// tentativas de CAS.
func (e *Engine) Apply(ctx context.Context, accountID string, mov *entity.Movement) (*Result, error) {
	if accountID == "" || mov == nil || mov.Kind == "" {
		return nil, domain.ErrInvalidInput
	}
	if mov.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		snap, err := e.store.Load(ctx, accountID)
		if err != nil {
			return nil, err
		}
		newBalance, err := e.validator.Validate(snap, mov)
		if err != nil {
			return nil, err
		}

		rec := *mov
		rec.ID = ulid.Make().String()
		rec.AccountID = accountID
		rec.PreviousBalance = snap.Balance
		rec.NewBalance = newBalance
		rec.CreatedAt = e.now()

		err = e.store.Apply(ctx, accountID, snap.Version, newBalance, &rec)
		if err == nil {
			return &Result{Balance: newBalance, Version: snap.Version + 1, Movement: &rec}, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		e.log.Debug().
			Str("account_id", accountID).
			Str("kind", mov.Kind).
			Int("attempt", attempt).
			Msg("versão da conta mudou durante a gravação, repetindo")
	}

	e.log.Warn().
		Str("account_id", accountID).
		Str("kind", mov.Kind).
		Int("max_retries", e.maxRetries).
		Msg("tentativas de CAS esgotadas")
	return nil, domain.ErrConflict
}
