package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gfranca/retaguarda-api/internal/application/auth"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

func TestChain_PrecedenciaDeResolucao(t *testing.T) {
	chain := auth.NewChain()

	admin := &entity.User{Role: entity.RoleAdmin}
	gerente := &entity.User{Role: entity.RoleGerente}
	cashier := &entity.User{Role: entity.RoleCaixa}
	estoquista := &entity.User{Role: entity.RoleEstoquista}

	// Admin passa em tudo, inclusive no que nenhuma tabela concede.
	assert.True(t, chain.Allowed(admin, auth.PermPayrollManage))
	assert.True(t, chain.Allowed(admin, "permissao:desconhecida"))

	// Role concede.
	assert.True(t, chain.Allowed(gerente, auth.PermPayrollManage))
	assert.True(t, chain.Allowed(cashier, auth.PermCashOperate))
	assert.True(t, chain.Allowed(estoquista, auth.PermStockMove))

	// Role não concede e nada mais responde: nega.
	assert.False(t, chain.Allowed(cashier, auth.PermPayrollManage))
	assert.False(t, chain.Allowed(estoquista, auth.PermCashOperate))

	// Concessão individual prevalece sobre o role.
	estoquistaComCaixa := &entity.User{
		Role:        entity.RoleEstoquista,
		Permissions: []string{auth.PermCashOperate},
	}
	assert.True(t, chain.Allowed(estoquistaComCaixa, auth.PermCashOperate))

	// Tabela legada: vendas liberadas para qualquer autenticado.
	assert.True(t, chain.Allowed(estoquista, auth.PermSalesRegister))

	// Permissão desconhecida para não-admin: negada.
	assert.False(t, chain.Allowed(gerente, "permissao:desconhecida"))
	assert.False(t, chain.Allowed(nil, auth.PermSalesRegister))
}
