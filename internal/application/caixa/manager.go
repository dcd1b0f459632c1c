// Package caixa implementa o ciclo de vida da sessão de caixa sobre o motor
// de razão: abertura com exclusividade por operador, movimentos enquanto
// aberta e fechamento com conferência (valor esperado vs. contado).
package caixa

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

// ReportGenerator gera a representação do relatório de fechamento de uma
// sessão (PDF na implementação padrão).
type ReportGenerator interface {
	GenerateSessionReport(ctx context.Context, sess *entity.CashSession, movements []*entity.Movement) ([]byte, error)
}

// Manager gerencia sessões de caixa. Os movimentos passam pelo motor de
// razão (CashValidator); abertura e fechamento são transições próprias da
// sessão, protegidas pela mesma versão otimista dos movimentos.
type Manager struct {
	sessions   repository.SessionRepository
	movements  repository.MovementRepository
	engine     *appledger.Engine
	report     ReportGenerator
	maxRetries int
	now        func() time.Time
	log        *logger.Logger
}

// NewManager constrói o gerenciador. report pode ser nil (sem PDF).
func NewManager(
	sessions repository.SessionRepository,
	movements repository.MovementRepository,
	engine *appledger.Engine,
	report ReportGenerator,
	maxRetries int,
	log *logger.Logger,
) *Manager {
	if maxRetries <= 0 {
		maxRetries = appledger.DefaultMaxRetries
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		sessions:   sessions,
		movements:  movements,
		engine:     engine,
		report:     report,
		maxRetries: maxRetries,
		now:        time.Now,
		log:        log,
	}
}

// WithClock troca a fonte de tempo (testes).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Open abre uma sessão para o operador com o fundo de troco informado.
// O saldo inicial é o próprio fundo e o movimento de abertura entra no
// histórico junto com a sessão, atomicamente. A pré-checagem de sessão
// aberta dá um erro amigável; a garantia contra corrida é a unicidade no
// store (duas aberturas simultâneas: exatamente uma vence).
func (m *Manager) Open(ctx context.Context, actor entity.Actor, openingAmount decimal.Decimal, notes string) (*entity.CashSession, error) {
	if actor.ID == "" || openingAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if _, err := m.sessions.GetOpenByOwner(ctx, actor.ID); err == nil {
		return nil, domain.ErrSessionAlreadyOpen
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := m.now()
	sess := &entity.CashSession{
		ID:            uuid.New().String(),
		OwnerID:       actor.ID,
		OwnerName:     actor.Name,
		OpeningAmount: openingAmount,
		Balance:       openingAmount,
		Version:       1,
		Status:        entity.SessionAberta,
		Notes:         notes,
		OpenedAt:      now,
	}
	opening := &entity.Movement{
		ID:              ulid.Make().String(),
		AccountID:       sess.ID,
		Kind:            entity.KindAbertura,
		Quantity:        openingAmount,
		PreviousBalance: decimal.Zero,
		NewBalance:      openingAmount,
		ActorID:         actor.ID,
		ActorName:       actor.Name,
		Reason:          "abertura de caixa",
		CreatedAt:       now,
	}
	if err := m.sessions.Create(ctx, sess, opening); err != nil {
		return nil, err
	}
	m.log.Info().
		Str("session_id", sess.ID).
		Str("owner_id", actor.ID).
		Str("opening", openingAmount.String()).
		Msg("sessão de caixa aberta")
	return sess, nil
}

// Record registra um movimento (venda, sangria ou suprimento) na sessão.
// Abertura e fechamento não passam por aqui: pertencem às transições da
// própria sessão. A recusa com sessão fechada é do validador, sobre o
// snapshot lido dentro do CAS — fechar e movimentar ao mesmo tempo nunca
// aplica o movimento depois do fechamento.
func (m *Manager) Record(ctx context.Context, actor entity.Actor, sessionID string, kind string, amount decimal.Decimal, reason string) (*appledger.Result, error) {
	switch kind {
	case entity.KindVenda, entity.KindSangria, entity.KindSuprimento:
	default:
		return nil, domain.ErrInvalidMovementKind
	}
	return m.engine.Apply(ctx, sessionID, &entity.Movement{
		Kind:      kind,
		Quantity:  amount,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Reason:    reason,
	})
}

// Close fecha a sessão: calcula o valor esperado (saldo corrente do razão,
// fonte única), o desvio contra o valor contado, e grava status, valores,
// ClosedAt e o movimento de fechamento numa única operação condicionada à
// versão. Em CAS perdido o saldo pode ter mudado, então recarrega e
// recalcula. Só o dono fecha; fechar duas vezes devolve ErrSessionClosed
// com a conferência original intacta.
func (m *Manager) Close(ctx context.Context, actor entity.Actor, sessionID string, closingAmount decimal.Decimal, notes string) (*entity.CashSession, error) {
	if closingAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		sess, err := m.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sess.Status != entity.SessionAberta {
			return nil, domain.ErrSessionClosed
		}
		if sess.OwnerID != actor.ID {
			return nil, domain.ErrForbidden
		}

		now := m.now()
		expected := sess.Balance
		closed := *sess
		closed.ClosingAmount = closingAmount
		closed.ExpectedAmount = expected
		closed.Difference = closingAmount.Sub(expected)
		if notes != "" {
			closed.Notes = notes
		}
		closed.ClosedAt = &now
		closed.Status = entity.SessionFechada

		closing := &entity.Movement{
			ID:              ulid.Make().String(),
			AccountID:       sessionID,
			Kind:            entity.KindFechamento,
			Quantity:        closingAmount,
			PreviousBalance: expected,
			NewBalance:      expected, // fechamento confere, não altera saldo
			ActorID:         actor.ID,
			ActorName:       actor.Name,
			Reason:          notes,
			CreatedAt:       now,
		}

		err = m.sessions.Close(ctx, &closed, sess.Version, closing)
		if err == nil {
			closed.Version = sess.Version + 1
			m.log.Info().
				Str("session_id", sessionID).
				Str("expected", expected.String()).
				Str("counted", closingAmount.String()).
				Str("difference", closed.Difference.String()).
				Msg("sessão de caixa fechada")
			return &closed, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			m.log.Debug().Str("session_id", sessionID).Int("attempt", attempt).
				Msg("saldo mudou durante o fechamento, recalculando")
			continue
		}
		return nil, err
	}
	return nil, domain.ErrConflict
}

// GetSession devolve uma sessão por ID.
func (m *Manager) GetSession(ctx context.Context, id string) (*entity.CashSession, error) {
	return m.sessions.GetByID(ctx, id)
}

// OpenByOwner devolve a sessão aberta do operador, se houver.
func (m *Manager) OpenByOwner(ctx context.Context, ownerID string) (*entity.CashSession, error) {
	return m.sessions.GetOpenByOwner(ctx, ownerID)
}

// ListSessions lista sessões da mais recente para a mais antiga.
func (m *Manager) ListSessions(ctx context.Context, limit, offset int) ([]*entity.CashSession, error) {
	return m.sessions.List(ctx, limit, offset)
}

// ListMovements lista os movimentos de uma sessão.
func (m *Manager) ListMovements(ctx context.Context, sessionID string, limit, offset int) ([]*entity.Movement, error) {
	if _, err := m.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.movements.ListByAccount(ctx, sessionID, limit, offset)
}

// ClosingReport gera o relatório de fechamento (PDF) de uma sessão fechada.
func (m *Manager) ClosingReport(ctx context.Context, sessionID string) ([]byte, error) {
	if m.report == nil {
		return nil, domain.ErrNotFound
	}
	sess, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != entity.SessionFechada {
		return nil, domain.ErrInvalidInput
	}
	movs, err := m.movements.ListByAccount(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, err
	}
	return m.report.GenerateSessionReport(ctx, sess, movs)
}
