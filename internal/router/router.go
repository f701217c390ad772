package router

import (
	"time"

	"yardpos/internal/config"
	"yardpos/internal/handler"
	"yardpos/internal/infra"
	"yardpos/internal/middleware"
	"yardpos/internal/repository"
	"yardpos/internal/service"
	"yardpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the externally constructed pieces the router wires together.
// main builds them so the worker pool can share the same instances.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Inventory  *infra.InventoryClient
	Dispatcher *worker.Dispatcher
}

// Services groups the service layer for reuse by the worker pool.
type Services struct {
	Auth       service.AuthService
	Register   service.RegisterService
	Settlement service.SettlementService
	Report     service.ReportService
	Material   service.MaterialService
}

// BuildServices wires Repository ← Service. Split out of New so
// cmd/server can hand the same ReportService to the report worker.
func BuildServices(d Deps) Services {
	registerRepo := repository.NewRegisterRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)
	materialRepo := repository.NewMaterialRepository(d.DB)
	operatorRepo := repository.NewOperatorRepository(d.DB)
	txm := repository.NewTxManager(d.DB)

	ledgerSvc := service.NewLedgerService(registerRepo)

	return Services{
		Auth:     service.NewAuthService(operatorRepo, d.Config),
		Register: service.NewRegisterService(registerRepo, ledgerSvc, d.Dispatcher, txm),
		Settlement: service.NewSettlementService(
			orderRepo, customerRepo, registerRepo, materialRepo, ledgerSvc, d.Inventory, txm),
		Report:   service.NewReportService(registerRepo, orderRepo),
		Material: service.NewMaterialService(materialRepo, d.Inventory),
	}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps, svcs Services) *gin.Engine {
	cfg := d.Config
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

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	registerH := handler.NewRegisterHandler(svcs.Register, svcs.Auth)
	ordersH := handler.NewOrderHandler(svcs.Settlement)
	reportsH := handler.NewReportHandler(svcs.Report)
	materialsH := handler.NewMaterialHandler(svcs.Material)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Inventory.Breaker()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("operator", "supervisor", "admin")
	v1 := r.Group("/v1", jwtMW)
	{
		reg := v1.Group("/register", anyRole)
		{
			reg.POST("/open", registerH.Open)
			reg.POST("/close", registerH.Close)
			reg.POST("/funds", registerH.AddFunds)
			reg.POST("/expense", registerH.RecordExpense)
			reg.GET("/active", registerH.Active)
			reg.GET("/history", registerH.History)
		}

		orders := v1.Group("/orders", anyRole)
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.DELETE("/:id", ordersH.Delete)
			orders.POST("/:id/items", ordersH.AddItem)
			orders.DELETE("/:id/items/:index", ordersH.RemoveItem)
			orders.POST("/:id/settle", ordersH.Settle)
		}
		// Cancellation reverses money movement — supervisor and up.
		v1.POST("/orders/:id/cancel", middleware.RequireRole("supervisor", "admin"), ordersH.Cancel)

		v1.GET("/registers/:id/report", anyRole, reportsH.ClosingReport)

		// Materials — admins write, everyone authenticated reads
		v1.GET("/materials", anyRole, materialsH.List)
		v1.GET("/materials/:id", anyRole, materialsH.Get)
		materials := v1.Group("/materials", middleware.RequireRole("admin"))
		{
			materials.POST("", materialsH.Create)
			materials.PUT("/:id", materialsH.Update)
			materials.DELETE("/:id", materialsH.Deactivate)
		}

		operators := v1.Group("/operators", middleware.RequireRole("admin"))
		{
			operators.POST("", authH.CreateOperator)
			operators.GET("", authH.ListOperators)
			operators.PUT("/:id", authH.UpdateOperator)
			operators.DELETE("/:id", authH.DeactivateOperator)
			operators.PATCH("/:id/reactivate", authH.ReactivateOperator)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
