package router

import (
	"time"

	"nexopos/internal/config"
	"nexopos/internal/handler"
	"nexopos/internal/middleware"
	"nexopos/internal/repository"
	"nexopos/internal/service"
	"nexopos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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
	productRepo := repository.NewProductRepository(db)
	logRepo := repository.NewInventoryLogRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	webOrderRepo := repository.NewWebOrderRepository(db)
	shopConfigRepo := repository.NewShopConfigRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	engine := service.NewStockEngine(productRepo, logRepo)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, saleRepo, webOrderRepo, categoryRepo, engine)
	saleSvc := service.NewSaleService(saleRepo, productRepo, shopConfigRepo, engine, cfg.PDFStoragePath)
	webOrderSvc := service.NewWebOrderService(webOrderRepo, productRepo, shopConfigRepo, engine, dispatcher, cfg.DefaultReservationMinutes)
	inventorySvc := service.NewInventoryService(logRepo)
	storefrontSvc := service.NewStorefrontService(shopConfigRepo, productRepo, engine, rdb)
	catalogSvc := service.NewCatalogService(categoryRepo, supplierRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	webOrdersH := handler.NewWebOrdersHandler(webOrderSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	storefrontH := handler.NewStorefrontHandler(storefrontSvc, webOrderSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Storefront — no auth, tenant resolved from the shop slug
	shop := r.Group("/v1/shop/:slug")
	{
		shop.GET("", storefrontH.GetShop)
		shop.GET("/products", storefrontH.ListProducts)
		shop.POST("/orders", storefrontH.PlaceOrder)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: CASHIER, SUPERVISOR, ADMIN — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), salesH.ProcessSale)
		v1.GET("/sales", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), salesH.Get)
		v1.GET("/sales/:id/receipt", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), salesH.Receipt)
		// Editing a completed sale rewrites its stock movements — supervisors up
		v1.PUT("/sales/:id/items", middleware.RequireRole("SUPERVISOR", "ADMIN"), salesH.UpdateItems)

		v1.GET("/products", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), productsH.List)
		v1.GET("/products/low-stock", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), productsH.LowStock)
		v1.GET("/products/:id", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), productsH.Get)
		v1.PATCH("/products/:id/stock", middleware.RequireRole("SUPERVISOR", "ADMIN"), productsH.AdjustStock)
		// Write operations — ADMIN only
		prods := v1.Group("/products", middleware.RequireRole("ADMIN"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/activate", productsH.Activate)
			prods.DELETE("/:id/force", productsH.ForceDelete)
		}

		orders := v1.Group("/web-orders", middleware.RequireRole("SUPERVISOR", "ADMIN"))
		{
			orders.GET("", webOrdersH.List)
			orders.GET("/:orderNumber", webOrdersH.Get)
			orders.PATCH("/:orderNumber/status", webOrdersH.UpdateStatus)
			orders.PUT("/:orderNumber/items", webOrdersH.UpdateItems)
		}

		inv := v1.Group("/inventory", middleware.RequireRole("SUPERVISOR", "ADMIN"))
		{
			inv.GET("/logs", inventoryH.ListLogs)
			inv.GET("/logs/export", inventoryH.ExportCSV)
		}

		v1.GET("/categories", middleware.RequireRole("CASHIER", "SUPERVISOR", "ADMIN"), catalogH.ListCategories)
		v1.GET("/suppliers", middleware.RequireRole("SUPERVISOR", "ADMIN"), catalogH.ListSuppliers)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
