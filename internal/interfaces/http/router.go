package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/auth"
	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/application/estoque"
	"github.com/gfranca/retaguarda-api/internal/application/folha"
	"github.com/gfranca/retaguarda-api/internal/application/usecase"
	"github.com/gfranca/retaguarda-api/internal/application/vendas"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	EstoqueUC *estoque.UseCase
	CaixaMgr  *caixa.Manager
	VendasUC  *vendas.SaleUseCase
	FolhaUC   *folha.UseCase
	Users     repository.UserRepository
	Perms     *auth.Chain
	JWTSecret string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Usuários (admin e gerente)
	users := protected.Group("/users", RequireRole(entity.RoleGerente))
	users.Get("/", authHandler.ListUsers)

	// Produtos: leitura para qualquer autenticado, escrita por permissão
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	writeProducts := RequirePermission(deps.Perms, deps.Users, auth.PermProductsWrite)
	products.Post("/", writeProducts, productHandler.Create)
	products.Put("/:id", writeProducts, productHandler.Update)
	products.Delete("/:id", writeProducts, productHandler.Delete)

	// Razão de estoque
	estoqueHandler := NewEstoqueHandler(deps.EstoqueUC)
	moveStock := RequirePermission(deps.Perms, deps.Users, auth.PermStockMove)
	products.Post("/:id/movements", moveStock, estoqueHandler.RegisterMovement)
	products.Get("/:id/movements", estoqueHandler.ListMovements)
	products.Get("/:id/stock", estoqueHandler.GetAccount)
	viewReports := RequirePermission(deps.Perms, deps.Users, auth.PermReportsView)
	protected.Get("/estoque/low-stock", viewReports, estoqueHandler.ListLowStock)

	// Sessões de caixa
	caixaGroup := protected.Group("/caixa/sessions")
	caixaHandler := NewCaixaHandler(deps.CaixaMgr)
	operateCash := RequirePermission(deps.Perms, deps.Users, auth.PermCashOperate)
	caixaGroup.Post("/", operateCash, caixaHandler.Open)
	caixaGroup.Get("/", caixaHandler.List)
	caixaGroup.Get("/current", caixaHandler.Current)
	caixaGroup.Get("/:id", caixaHandler.GetByID)
	caixaGroup.Post("/:id/movements", operateCash, caixaHandler.Record)
	caixaGroup.Get("/:id/movements", caixaHandler.ListMovements)
	caixaGroup.Post("/:id/close", operateCash, caixaHandler.Close)
	caixaGroup.Get("/:id/report", caixaHandler.Report)

	// Ponto de venda
	vendasGroup := protected.Group("/vendas")
	vendasHandler := NewVendasHandler(deps.VendasUC)
	vendasGroup.Post("/", RequirePermission(deps.Perms, deps.Users, auth.PermSalesRegister), vendasHandler.Create)
	vendasGroup.Get("/", vendasHandler.List)
	vendasGroup.Get("/:id", vendasHandler.GetByID)

	// Folha de pagamento (por permissão; na prática admin e gerente)
	folhaGroup := protected.Group("/folha", RequirePermission(deps.Perms, deps.Users, auth.PermPayrollManage))
	folhaHandler := NewFolhaHandler(deps.FolhaUC)
	folhaGroup.Post("/", folhaHandler.Create)
	folhaGroup.Get("/", folhaHandler.ListByPeriod)
	folhaGroup.Get("/:id", folhaHandler.GetByID)
	folhaGroup.Put("/:id", folhaHandler.Update)
	folhaGroup.Post("/:id/pay", folhaHandler.MarkPaid)
	folhaGroup.Delete("/:id", folhaHandler.Delete)
}
