// Package memory implementa todos os portos de persistência em memória,
// guardados por um mutex único. Usado no modo dev/demo (DB_DRIVER=memory)
// e nos testes de concorrência do motor de razão: o CAS de versão se
// comporta exatamente como no PostgreSQL, só que em maps.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gfranca/retaguarda-api/internal/domain"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
)

// Store guarda todo o estado da aplicação em maps protegidos por mutex.
type Store struct {
	mu sync.Mutex

	products      map[string]entity.Product
	stockAccounts map[string]entity.StockAccount

	sessions           map[string]entity.CashSession
	openSessionByOwner map[string]string // ownerID -> sessionID

	movementsByID      map[string]entity.Movement
	movementsByAccount map[string][]string // accountID -> IDs em ordem de gravação

	users        map[string]entity.User
	usersByEmail map[string]string

	sales   map[string]entity.Sale
	payroll map[string]entity.PayrollEntry
}

// NewStore constrói um Store vazio.
func NewStore() *Store {
	return &Store{
		products:           map[string]entity.Product{},
		stockAccounts:      map[string]entity.StockAccount{},
		sessions:           map[string]entity.CashSession{},
		openSessionByOwner: map[string]string{},
		movementsByID:      map[string]entity.Movement{},
		movementsByAccount: map[string][]string{},
		users:              map[string]entity.User{},
		usersByEmail:       map[string]string{},
		sales:              map[string]entity.Sale{},
		payroll:            map[string]entity.PayrollEntry{},
	}
}

func (s *Store) appendMovementLocked(mov *entity.Movement) {
	s.movementsByID[mov.ID] = *mov
	s.movementsByAccount[mov.AccountID] = append(s.movementsByAccount[mov.AccountID], mov.ID)
}

// ── Razão de estoque ─────────────────────────────────────────────────────────

type stockLedger struct{ s *Store }

// StockLedger devolve a visão LedgerStore das contas de estoque.
func (s *Store) StockLedger() repository.LedgerStore { return stockLedger{s} }

func (l stockLedger) Load(_ context.Context, accountID string) (ledger.Snapshot, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	acc, ok := l.s.stockAccounts[accountID]
	if !ok {
		return ledger.Snapshot{}, domain.ErrNotFound
	}
	return ledger.Snapshot{Balance: acc.Balance, Version: acc.Version}, nil
}

func (l stockLedger) Apply(_ context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	acc, ok := l.s.stockAccounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	if acc.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	acc.Balance = newBalance
	acc.Version++
	acc.UpdatedAt = mov.CreatedAt
	l.s.stockAccounts[accountID] = acc
	l.s.appendMovementLocked(mov)
	return nil
}

// ── Razão de caixa ───────────────────────────────────────────────────────────

type cashLedger struct{ s *Store }

// CashLedger devolve a visão LedgerStore das sessões de caixa.
func (s *Store) CashLedger() repository.LedgerStore { return cashLedger{s} }

func (l cashLedger) Load(_ context.Context, accountID string) (ledger.Snapshot, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	sess, ok := l.s.sessions[accountID]
	if !ok {
		return ledger.Snapshot{}, domain.ErrNotFound
	}
	return ledger.Snapshot{Balance: sess.Balance, Version: sess.Version, Status: sess.Status}, nil
}

func (l cashLedger) Apply(_ context.Context, accountID string, expectedVersion int64, newBalance decimal.Decimal, mov *entity.Movement) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	sess, ok := l.s.sessions[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	if sess.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	sess.Balance = newBalance
	sess.Version++
	l.s.sessions[accountID] = sess
	l.s.appendMovementLocked(mov)
	return nil
}

// ── Sessões de caixa ─────────────────────────────────────────────────────────

var _ repository.SessionRepository = (*Store)(nil)

// Create insere sessão + movimento de abertura; rejeita segunda sessão
// aberta do mesmo dono sob o mesmo lock (equivalente ao índice único parcial).
func (s *Store) Create(_ context.Context, sess *entity.CashSession, opening *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.openSessionByOwner[sess.OwnerID]; open {
		return domain.ErrSessionAlreadyOpen
	}
	s.sessions[sess.ID] = *sess
	s.openSessionByOwner[sess.OwnerID] = sess.ID
	s.appendMovementLocked(opening)
	return nil
}

// GetByID devolve uma cópia da sessão.
func (s *Store) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sess, nil
}

// GetOpenByOwner devolve a sessão aberta do dono, se houver.
func (s *Store) GetOpenByOwner(_ context.Context, ownerID string) (*entity.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.openSessionByOwner[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess := s.sessions[id]
	return &sess, nil
}

// Close aplica a transição aberta->fechada condicionada à versão.
func (s *Store) Close(_ context.Context, sess *entity.CashSession, expectedVersion int64, closing *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[sess.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != entity.SessionAberta {
		return domain.ErrSessionClosed
	}
	if cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	cur.Status = entity.SessionFechada
	cur.ClosingAmount = sess.ClosingAmount
	cur.ExpectedAmount = sess.ExpectedAmount
	cur.Difference = sess.Difference
	cur.Notes = sess.Notes
	cur.ClosedAt = sess.ClosedAt
	cur.Version++
	s.sessions[sess.ID] = cur
	delete(s.openSessionByOwner, cur.OwnerID)
	s.appendMovementLocked(closing)
	return nil
}

// List devolve sessões da mais recente para a mais antiga.
func (s *Store) List(_ context.Context, limit, offset int) ([]*entity.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*entity.CashSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		c := sess
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
	return page(all, limit, offset), nil
}

// ── Movimentos ───────────────────────────────────────────────────────────────

var _ repository.MovementRepository = (*movementRepo)(nil)

type movementRepo struct{ s *Store }

// Movements devolve a visão MovementRepository do histórico.
func (s *Store) Movements() repository.MovementRepository { return movementRepo{s} }

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mov, ok := r.s.movementsByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &mov, nil
}

func (r movementRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.movementsByAccount[accountID]
	list := make([]*entity.Movement, 0, len(ids))
	// do mais recente para o mais antigo
	for i := len(ids) - 1; i >= 0; i-- {
		mov := r.s.movementsByID[ids[i]]
		list = append(list, &mov)
	}
	return page(list, limit, offset), nil
}

// ── Produtos e contas de estoque ─────────────────────────────────────────────

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct{ s *Store }

// Products devolve a visão ProductRepository.
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

func (r productRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if strings.EqualFold(p.SKU, product.SKU) {
			return domain.ErrDuplicate
		}
	}
	r.s.products[product.ID] = *product
	// Abre a conta de estoque junto com o produto (saldo zero, versão 1).
	r.s.stockAccounts[product.ID] = entity.StockAccount{
		ProductID: product.ID,
		Balance:   decimal.Zero,
		Version:   1,
		UpdatedAt: product.CreatedAt,
	}
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if strings.EqualFold(p.SKU, sku) {
			c := p
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r productRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		c := p
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	delete(r.s.stockAccounts, id)
	return nil
}

func (r productRepo) GetStockAccount(_ context.Context, productID string) (*entity.StockAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc, ok := r.s.stockAccounts[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &acc, nil
}

func (r productRepo) ListLowStock(_ context.Context) ([]*entity.LowStockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.LowStockItem
	for id, p := range r.s.products {
		acc, ok := r.s.stockAccounts[id]
		if !ok || !p.Active {
			continue
		}
		if acc.Balance.LessThan(p.MinStock) {
			list = append(list, &entity.LowStockItem{
				ProductID:   id,
				SKU:         p.SKU,
				ProductName: p.Name,
				Balance:     acc.Balance,
				MinStock:    p.MinStock,
			})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

// ── Usuários ─────────────────────────────────────────────────────────────────

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ s *Store }

// Users devolve a visão UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

func (r userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := r.s.usersByEmail[key]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.s.users[user.ID] = *user
	r.s.usersByEmail[key] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r userRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return page(all, limit, offset), nil
}

// ── Vendas ───────────────────────────────────────────────────────────────────

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct{ s *Store }

// Sales devolve a visão SaleRepository.
func (s *Store) Sales() repository.SaleRepository { return saleRepo{s} }

func (r saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = *sale
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sale, nil
}

func (r saleRepo) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		c := sale
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

// ── Folha de pagamento ───────────────────────────────────────────────────────

var _ repository.PayrollRepository = (*payrollRepo)(nil)

type payrollRepo struct{ s *Store }

// Payroll devolve a visão PayrollRepository.
func (s *Store) Payroll() repository.PayrollRepository { return payrollRepo{s} }

func (r payrollRepo) Create(_ context.Context, entry *entity.PayrollEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payroll[entry.ID] = *entry
	return nil
}

func (r payrollRepo) GetByID(_ context.Context, id string) (*entity.PayrollEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.payroll[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r payrollRepo) ListByPeriod(_ context.Context, period string) ([]*entity.PayrollEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.PayrollEntry
	for _, e := range r.s.payroll {
		if e.Period == period {
			c := e
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserName < list[j].UserName })
	return list, nil
}

func (r payrollRepo) Update(_ context.Context, entry *entity.PayrollEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payroll[entry.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.payroll[entry.ID] = *entry
	return nil
}

func (r payrollRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payroll[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.payroll, id)
	return nil
}

// page aplica limit/offset sobre uma fatia já ordenada.
func page[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
