// Package folha implementa a folha de pagamento: lançamentos por
// funcionário e competência, com valor líquido derivado.
package folha

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

// competência no formato YYYY-MM
var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// UseCase casos de uso da folha de pagamento.
type UseCase struct {
	entries repository.PayrollRepository
	users   repository.UserRepository
	now     func() time.Time
	log     *logger.Logger
}

// NewUseCase constrói o caso de uso da folha.
func NewUseCase(entries repository.PayrollRepository, users repository.UserRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{entries: entries, users: users, now: time.Now, log: log}
}

// EntryInput entrada para criar ou atualizar um lançamento.
type EntryInput struct {
	UserID      string
	Period      string
	GrossAmount decimal.Decimal
	Deductions  decimal.Decimal
	Notes       string
}

func (in EntryInput) validate() error {
	if in.UserID == "" || !periodRe.MatchString(in.Period) {
		return domain.ErrInvalidInput
	}
	if in.GrossAmount.IsNegative() || in.Deductions.IsNegative() {
		return domain.ErrInvalidInput
	}
	if in.Deductions.GreaterThan(in.GrossAmount) {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateEntry lança a folha de um funcionário numa competência.
// O líquido é sempre derivado: bruto menos descontos.
func (uc *UseCase) CreateEntry(ctx context.Context, in EntryInput) (*entity.PayrollEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	entry := &entity.PayrollEntry{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		UserName:    user.Name,
		Period:      in.Period,
		GrossAmount: in.GrossAmount,
		Deductions:  in.Deductions,
		NetAmount:   in.GrossAmount.Sub(in.Deductions),
		Notes:       in.Notes,
		CreatedAt:   uc.now(),
	}
	if err := uc.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("entry_id", entry.ID).
		Str("user_id", entry.UserID).
		Str("period", entry.Period).
		Msg("lançamento de folha criado")
	return entry, nil
}

// UpdateEntry atualiza os valores de um lançamento ainda não pago.
func (uc *UseCase) UpdateEntry(ctx context.Context, id string, in EntryInput) (*entity.PayrollEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	entry, err := uc.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.PaidAt != nil {
		return nil, domain.ErrForbidden
	}
	entry.Period = in.Period
	entry.GrossAmount = in.GrossAmount
	entry.Deductions = in.Deductions
	entry.NetAmount = in.GrossAmount.Sub(in.Deductions)
	entry.Notes = in.Notes
	if err := uc.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkPaid marca o lançamento como pago. Idempotente: pagar de novo
// não altera a data original.
func (uc *UseCase) MarkPaid(ctx context.Context, id string) (*entity.PayrollEntry, error) {
	entry, err := uc.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.PaidAt == nil {
		paidAt := uc.now()
		entry.PaidAt = &paidAt
		if err := uc.entries.Update(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// GetEntry devolve um lançamento por ID.
func (uc *UseCase) GetEntry(ctx context.Context, id string) (*entity.PayrollEntry, error) {
	return uc.entries.GetByID(ctx, id)
}

// ListByPeriod lista a folha de uma competência.
func (uc *UseCase) ListByPeriod(ctx context.Context, period string) ([]*entity.PayrollEntry, error) {
	if !periodRe.MatchString(period) {
		return nil, domain.ErrInvalidInput
	}
	return uc.entries.ListByPeriod(ctx, period)
}

// DeleteEntry remove um lançamento ainda não pago.
func (uc *UseCase) DeleteEntry(ctx context.Context, id string) error {
	entry, err := uc.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.PaidAt != nil {
		return domain.ErrForbidden
	}
	return uc.entries.Delete(ctx, id)
}
