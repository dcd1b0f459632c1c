package auth

import "github.com/gfranca/retaguarda-api/internal/domain/entity"

// Permissões conhecidas da aplicação.
const (
	PermProductsWrite = "products:write"
	PermStockMove     = "stock:move"
	PermCashOperate   = "cash:operate"
	PermSalesRegister = "sales:register"
	PermPayrollManage = "payroll:manage"
	PermReportsView   = "reports:view"
)

// Resolver é uma estratégia de resolução de permissão. Devolve (decisão, true)
// quando sabe responder; (_, false) passa a palavra para a próxima da cadeia.
type Resolver interface {
	Resolve(user *entity.User, perm string) (allowed, ok bool)
}

// Chain resolve permissões numa ordem fixa de estratégias, primeira resposta
// vence: admin → concessões individuais → permissões do role → tabela padrão
// legada. Sem resposta em toda a cadeia, nega.
type Chain struct {
	resolvers []Resolver
}

// NewChain monta a cadeia na ordem de precedência padrão.
func NewChain() *Chain {
	return &Chain{resolvers: []Resolver{
		adminResolver{},
		customResolver{},
		roleResolver{table: rolePermissions},
		legacyResolver{defaults: legacyDefaults},
	}}
}

// Allowed decide se o usuário possui a permissão.
func (c *Chain) Allowed(user *entity.User, perm string) bool {
	if user == nil {
		return false
	}
	for _, r := range c.resolvers {
		if allowed, ok := r.Resolve(user, perm); ok {
			return allowed
		}
	}
	return false
}

// adminResolver: admin sempre passa.
type adminResolver struct{}

func (adminResolver) Resolve(user *entity.User, _ string) (bool, bool) {
	if user.Role == entity.RoleAdmin {
		return true, true
	}
	return false, false
}

// customResolver: concessões individuais do usuário prevalecem sobre o role.
type customResolver struct{}

func (customResolver) Resolve(user *entity.User, perm string) (bool, bool) {
	for _, p := range user.Permissions {
		if p == perm {
			return true, true
		}
	}
	return false, false
}

// rolePermissions tabela de permissões por role.
var rolePermissions = map[string]map[string]bool{
	entity.RoleGerente: {
		PermProductsWrite: true,
		PermStockMove:     true,
		PermCashOperate:   true,
		PermSalesRegister: true,
		PermPayrollManage: true,
		PermReportsView:   true,
	},
	entity.RoleCaixa: {
		PermCashOperate:   true,
		PermSalesRegister: true,
	},
	entity.RoleEstoquista: {
		PermStockMove:   true,
		PermReportsView: true,
	},
}

// roleResolver: responde somente se o role concede a permissão; caso
// contrário deixa a tabela legada decidir.
type roleResolver struct {
	table map[string]map[string]bool
}

func (r roleResolver) Resolve(user *entity.User, perm string) (bool, bool) {
	if perms, ok := r.table[user.Role]; ok && perms[perm] {
		return true, true
	}
	return false, false
}

// legacyDefaults tabela padrão herdada do sistema antigo: vendas liberadas
// para qualquer usuário autenticado.
var legacyDefaults = map[string]bool{
	PermSalesRegister: true,
}

// legacyResolver: último recurso antes da negação.
type legacyResolver struct {
	defaults map[string]bool
}

func (r legacyResolver) Resolve(_ *entity.User, perm string) (bool, bool) {
	if allowed, ok := r.defaults[perm]; ok {
		return allowed, true
	}
	return false, false
}
