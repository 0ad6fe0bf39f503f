package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/agamariel/cryptomart/internal/auth"
	"github.com/agamariel/cryptomart/internal/btcpay"
	"github.com/agamariel/cryptomart/internal/config"
	"github.com/agamariel/cryptomart/internal/handlers"
	"github.com/agamariel/cryptomart/internal/mailer"
	"github.com/agamariel/cryptomart/internal/migrations"
	"github.com/agamariel/cryptomart/internal/ratelimit"
	"github.com/agamariel/cryptomart/internal/services"
	"github.com/agamariel/cryptomart/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg     *config.Config
	dbPool  *pgxpool.Pool
	echo    *echo.Echo
	watcher *services.SettlementWatcher
	limiter *ratelimit.Limiter
	sweeper *services.NotificationServiceImpl

	// Handlers
	checkoutHandler *handlers.CheckoutHandler
	catalogHandler  *handlers.CatalogHandler
	orderHandler    *handlers.OrderHandler
	adminHandler    *handlers.AdminHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies(ctx context.Context) error {
	if app.cfg.BTCPayAddress == "" {
		return fmt.Errorf("BTCPAY_ADDRESS is required")
	}

	// Storage layer
	productStorage := storage.NewPostgresProductStorage(app.dbPool)
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	couponStorage := storage.NewPostgresCouponStorage(app.dbPool)
	shippingStorage := storage.NewPostgresShippingConfigStorage(app.dbPool)

	// Внешние клиенты
	gateway := btcpay.NewHTTPClient(app.cfg.BTCPayAddress, app.cfg.BTCPayAPIKey, app.cfg.BTCPayStoreID, 10*time.Second)

	var mail mailer.Mailer
	if app.cfg.MailerAddress != "" {
		mail = mailer.NewHTTPMailer(app.cfg.MailerAddress, app.cfg.MailerAPIKey, app.cfg.MailerFrom, 10*time.Second)
	} else {
		log.Println("WARNING: MAILER_ADDRESS is not configured. Customer emails will not be sent!")
	}

	// Service layer
	catalogService := services.NewCatalogService(productStorage)
	couponService := services.NewCouponService(couponStorage)
	shippingService := services.NewShippingService(shippingStorage)
	orderService := services.NewOrderService(orderStorage, gateway)

	var notifier services.NotificationService
	if mail != nil {
		sweeper := services.NewNotificationService(orderStorage, mail, log.Default())
		app.sweeper = sweeper
		notifier = sweeper
	}

	checkoutService := services.NewCheckoutService(
		orderStorage,
		productStorage,
		couponService,
		shippingService,
		gateway,
		notifier,
		app.cfg.OrderCurrency,
		log.Default(),
	)

	app.watcher = services.NewSettlementWatcher(gateway, checkoutService, 5*time.Second, time.Second, log.Default())
	app.limiter = ratelimit.New(app.cfg.CheckoutRateLimit, time.Minute)

	// Handler layer
	app.checkoutHandler = handlers.NewCheckoutHandler(checkoutService, app.watchFunc(ctx))
	app.catalogHandler = handlers.NewCatalogHandler(catalogService, couponService, shippingService)
	app.orderHandler = handlers.NewOrderHandler(orderService)
	app.adminHandler = handlers.NewAdminHandler(app.cfg, catalogService, couponService, shippingService, orderService)

	return nil
}

// watchFunc строит callback запуска наблюдения за оплатой.
// Наблюдение живёт дольше HTTP-запроса, поэтому привязывается
// к корневому контексту приложения, а не к контексту запроса.
func (app *App) watchFunc(ctx context.Context) handlers.WatchFunc {
	return func(orderID uuid.UUID, invoiceID string, expiresAt time.Time) {
		app.watcher.Watch(ctx, orderID, invoiceID, expiresAt)
	}
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
	}))

	// Публичные маршруты витрины
	e.GET("/api/products", app.catalogHandler.ListProducts)
	e.GET("/api/products/:id", app.catalogHandler.GetProduct)
	e.GET("/api/shipping/cost", app.catalogHandler.ShippingCost)
	e.POST("/api/coupons/validate", app.catalogHandler.ValidateCoupon)
	e.POST("/api/checkout", app.checkoutHandler.Checkout, app.limiter.Middleware())
	e.GET("/api/orders/:id", app.orderHandler.GetOrder)
	e.GET("/api/orders/:id/payment-status", app.orderHandler.PaymentStatus)
	e.GET("/api/orders/:id/payment-methods", app.orderHandler.PaymentMethods)

	// Вход в админку
	e.POST("/api/admin/login", app.adminHandler.Login)

	// Защищённые маршруты бэк-офиса
	admin := e.Group("/api/admin")
	admin.Use(auth.AdminMiddleware(app.cfg.JWTSecret))
	admin.POST("/products", app.adminHandler.CreateProduct)
	admin.PUT("/products/:id", app.adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", app.adminHandler.DeleteProduct)
	admin.GET("/coupons", app.adminHandler.ListCoupons)
	admin.POST("/coupons", app.adminHandler.CreateCoupon)
	admin.PUT("/coupons/:id", app.adminHandler.UpdateCoupon)
	admin.DELETE("/coupons/:id", app.adminHandler.DeleteCoupon)
	admin.GET("/shipping", app.adminHandler.GetShippingConfig)
	admin.PUT("/shipping", app.adminHandler.UpdateShippingConfig)
	admin.GET("/orders", app.adminHandler.ListOrders)
	admin.GET("/orders/:id", app.adminHandler.GetOrder)
	admin.PATCH("/orders/:id/status", app.adminHandler.UpdateOrderStatus)
	admin.POST("/orders/:id/ship", app.adminHandler.ShipOrder)

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	// Фоновая очистка окон рейт-лимитера
	app.limiter.StartSweeper(ctx)

	// Запуск сервера
	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server gracefully stopped")
	return nil
}
