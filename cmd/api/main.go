package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gfranca/retaguarda-api/internal/application/auth"
	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/application/estoque"
	appledger "github.com/gfranca/retaguarda-api/internal/application/ledger"
	"github.com/gfranca/retaguarda-api/internal/application/folha"
	"github.com/gfranca/retaguarda-api/internal/application/usecase"
	"github.com/gfranca/retaguarda-api/internal/application/vendas"
	domledger "github.com/gfranca/retaguarda-api/internal/domain/ledger"
	"github.com/gfranca/retaguarda-api/internal/domain/repository"
	"github.com/gfranca/retaguarda-api/internal/infrastructure/memory"
	infrapdf "github.com/gfranca/retaguarda-api/internal/infrastructure/pdf"
	"github.com/gfranca/retaguarda-api/internal/infrastructure/postgres"
	httpRouter "github.com/gfranca/retaguarda-api/internal/interfaces/http"
	"github.com/gfranca/retaguarda-api/pkg/config"
	"github.com/gfranca/retaguarda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicação")

	ctx := context.Background()

	var (
		stockStore   repository.LedgerStore
		cashStore    repository.LedgerStore
		movementRepo repository.MovementRepository
		sessionRepo  repository.SessionRepository
		productRepo  repository.ProductRepository
		userRepo     repository.UserRepository
		saleRepo     repository.SaleRepository
		payrollRepo  repository.PayrollRepository
	)

	switch cfg.DB.Driver {
	case "memory":
		// Store em memória para desenvolvimento e demonstração.
		store := memory.NewStore()
		stockStore = store.StockLedger()
		cashStore = store.CashLedger()
		movementRepo = store.Movements()
		sessionRepo = store
		productRepo = store.Products()
		userRepo = store.Users()
		saleRepo = store.Sales()
		payrollRepo = store.Payroll()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão com PostgreSQL")
		}
		defer pool.Close()

		stockStore = postgres.NewStockLedgerStore(pool)
		cashStore = postgres.NewCashLedgerStore(pool)
		movementRepo = postgres.NewMovementRepository(pool)
		sessionRepo = postgres.NewSessionRepository(pool)
		productRepo = postgres.NewProductRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
		saleRepo = postgres.NewSaleRepository(pool)
		payrollRepo = postgres.NewPayrollRepository(pool)
	}

	// Motores de razão: mesmas regras de CAS, validadores diferentes.
	stockEngine := appledger.NewEngine(stockStore, domledger.StockValidator{}, cfg.Ledger.MaxRetries, log)
	cashEngine := appledger.NewEngine(cashStore, domledger.CashValidator{}, cfg.Ledger.MaxRetries, log)

	reportGen := infrapdf.NewSessionReportGenerator(cfg.App.Name)

	estoqueUC := estoque.NewUseCase(stockEngine, productRepo, movementRepo, log)
	caixaMgr := caixa.NewManager(sessionRepo, movementRepo, cashEngine, reportGen, cfg.Ledger.MaxRetries, log)
	vendasUC := vendas.NewSaleUseCase(saleRepo, productRepo, estoqueUC, caixaMgr, log)
	folhaUC := folha.NewUseCase(payrollRepo, userRepo, log)
	productUC := usecase.NewProductUseCase(productRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: productUC,
		EstoqueUC: estoqueUC,
		CaixaMgr:  caixaMgr,
		VendasUC:  vendasUC,
		FolhaUC:   folhaUC,
		Users:     userRepo,
		Perms:     auth.NewChain(),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
