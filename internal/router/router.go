package router

import (
	"context"
	"time"

	"floreria/internal/config"
	"floreria/internal/dto"
	"floreria/internal/handler"
	"floreria/internal/infra"
	"floreria/internal/middleware"
	"floreria/internal/repository"
	"floreria/internal/service"
	"floreria/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine. ctx bounds
// the background janitors of the rate limiters.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	globalLimiter := middleware.NewLimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.NewLoginLimiter()
	go globalLimiter.Run(ctx, time.Minute)
	go loginLimiter.Run(ctx, time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(globalLimiter.Middleware())

	// ── Infrastructure ───────────────────────────────────────────────────────
	images := infra.NewImageStore(cfg.ImageStoragePath, cfg.Domain)
	dispatcher := worker.NewDispatcher(rdb)
	blacklist := service.NewTokenBlacklist(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	earningRepo := repository.NewEarningRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg, blacklist, dispatcher)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo, rdb, cfg.ProductCacheTTL, images)
	sellerSvc := service.NewSellerService(sellerRepo, saleRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, sellerRepo, earningRepo, rdb)
	earningsSvc := service.NewEarningsService(earningRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc)
	productsH := handler.NewProductsHandler(productSvc)
	sellersH := handler.NewSellersHandler(sellerSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	earningsH := handler.NewEarningsHandler(earningsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, mailCB))
	r.Static(infra.ImagesURLPrefix, images.Dir())

	jwtMW := middleware.JWTAuth(cfg.JWTSecret, blacklist)
	adminOnly := middleware.RequireRole(dto.RoleAdmin)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/register", authH.Register)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/forgot-password", loginLimiter.Middleware(), authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
		auth.POST("/logout", jwtMW, authH.Logout)
		auth.GET("/me", jwtMW, authH.Me)
	}

	// Public catalog and seller directory
	api.GET("/products/", productsH.List)
	api.GET("/products/:id", productsH.Get)
	api.GET("/sellers/", sellersH.List)

	v1 := api.Group("", jwtMW)
	{
		products := v1.Group("/products")
		{
			products.POST("/", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.PATCH("/:id/stock", productsH.UpdateStock)
			products.POST("/:id/image", productsH.UploadImage)
			products.DELETE("/:id", adminOnly, productsH.Delete)
		}

		sellers := v1.Group("/sellers")
		{
			sellers.GET("/:id", sellersH.Get)
			sellers.GET("/:id/sales", sellersH.Sales)
			sellers.POST("/", adminOnly, sellersH.Create)
			sellers.PUT("/:id", adminOnly, sellersH.Update)
			sellers.DELETE("/:id", adminOnly, sellersH.Delete)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("/", salesH.Create)
			sales.GET("/", salesH.List)
			sales.GET("/alerts", salesH.Alerts)
			sales.GET("/:id", salesH.Get)
			sales.PUT("/:id", salesH.Update)
			sales.PATCH("/:id/status", salesH.UpdateStatus)
			sales.PATCH("/:id/payment", salesH.RegisterPayment)
			sales.DELETE("/:id", salesH.Cancel)
			sales.GET("/:id/payments", salesH.Payments)
			sales.GET("/:id/receipt", salesH.Receipt)
		}

		earnings := v1.Group("/earnings", adminOnly)
		{
			earnings.GET("/summary", earningsH.Summary)
			earnings.GET("/by-product", earningsH.ByProduct)
			earnings.GET("/by-period", earningsH.ByPeriod)
			earnings.GET("/by-seller", earningsH.BySeller)
			earnings.GET("/investments", earningsH.Investments)
			earnings.GET("/export", earningsH.Export)
			earnings.POST("/investment", earningsH.RecordInvestment)
			earnings.PUT("/earning/:id", earningsH.UpdateEarning)
			earnings.GET("/:saleId", earningsH.ForSale)
		}

		users := v1.Group("/users")
		{
			users.GET("/", adminOnly, usersH.List)
			users.GET("/:id", adminOnly, usersH.Get)
			users.PUT("/:id", adminOnly, usersH.Update)
			users.DELETE("/:id", adminOnly, usersH.Delete)
			users.PUT("/:id/role", adminOnly, usersH.UpdateRole)
			// any user may change their own password; the service checks the id
			users.PUT("/:id/password", usersH.UpdatePassword)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
