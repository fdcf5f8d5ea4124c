package router

import (
	"time"

	"armory/internal/config"
	"armory/internal/handler"
	"armory/internal/middleware"
	"armory/internal/model"
	"armory/internal/repository"
	"armory/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	baseRepo := repository.NewBaseRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	expenditureRepo := repository.NewExpenditureRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(stockRepo)
	dashboardSvc := service.NewDashboardService(
		baseRepo, equipmentRepo, stockRepo, purchaseRepo, expenditureRepo, transferRepo,
		rdb, time.Duration(cfg.DashboardCacheTTLSeconds)*time.Second,
	)
	catalogSvc := service.NewCatalogService(baseRepo, equipmentRepo, stockRepo, purchaseRepo, expenditureRepo, transferRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, baseRepo, equipmentRepo, ledgerSvc, dashboardSvc)
	expenditureSvc := service.NewExpenditureService(expenditureRepo, baseRepo, equipmentRepo, ledgerSvc, dashboardSvc)
	transferSvc := service.NewTransferService(transferRepo, baseRepo, equipmentRepo, ledgerSvc, dashboardSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	basesH := handler.NewBasesHandler(catalogSvc)
	equipmentH := handler.NewEquipmentHandler(catalogSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	expendituresH := handler.NewExpendituresHandler(expenditureSvc)
	transfersH := handler.NewTransfersHandler(transferSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		// Catalog — everyone reads, admin writes
		v1.GET("/bases", anyRole, basesH.List)
		v1.GET("/bases/:code", anyRole, basesH.Get)
		bases := v1.Group("/bases", adminOnly)
		{
			bases.POST("", basesH.Create)
			bases.PUT("/:code", basesH.Update)
			bases.DELETE("/:code", basesH.Delete)
		}

		v1.GET("/equipment", anyRole, equipmentH.List)
		v1.GET("/equipment/:code", anyRole, equipmentH.Get)
		equipment := v1.Group("/equipment", adminOnly)
		{
			equipment.POST("", equipmentH.Create)
			equipment.PUT("/:code", equipmentH.Update)
			equipment.DELETE("/:code", equipmentH.Delete)
		}

		// Ledger movements — base-level gating happens in the service layer
		purchases := v1.Group("/purchases", anyRole)
		{
			purchases.POST("", purchasesH.Create)
			purchases.GET("", purchasesH.List)
			purchases.GET("/:id", purchasesH.Get)
			purchases.DELETE("/:id", purchasesH.Delete)
		}

		expenditures := v1.Group("/expenditures", anyRole)
		{
			expenditures.POST("", expendituresH.Create)
			expenditures.GET("", expendituresH.List)
			expenditures.GET("/:id", expendituresH.Get)
			expenditures.DELETE("/:id", expendituresH.Delete)
		}

		// Transfer workflow
		transfers := v1.Group("/transfers", anyRole)
		{
			transfers.POST("/requests", transfersH.CreateRequest)
			transfers.GET("/open", transfersH.ListOpen)
			transfers.GET("", transfersH.List)
			transfers.GET("/:id", transfersH.Get)
			transfers.PUT("/:id/approve", transfersH.Approve)
			transfers.PUT("/:id/claim", transfersH.Claim)
			transfers.PUT("/:id/send", transfersH.Send)
			transfers.PUT("/:id/receive", transfersH.Receive)
		}
		v1.DELETE("/transfers/:id", adminOnly, transfersH.Delete)

		// Dashboards
		v1.GET("/dashboard/admin", adminOnly, dashboardH.Admin)
		v1.GET("/dashboard/base", anyRole, dashboardH.Base)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
