package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/cache"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/cart"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/checkout"
	h "github.com/ankurrera/auto-speed-shop-sub000/internal/http"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/orders"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/payment"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/pricing"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/publisher"
	"github.com/ankurrera/auto-speed-shop-sub000/internal/status"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CartStore string // "memory" or "mongo"
	MongoURI  string
	MongoDB   string

	RedisAddr    string
	KafkaBrokers string

	DBCreds *orders.Credentials

	PayPalBaseURL  string
	PayPalClientID string
	PayPalSecret   string

	Pricing pricing.Config
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	p := pricing.DefaultConfig()
	if raw := os.Getenv("TAX_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatalf("Invalid TAX_RATE: %v", err)
		}
		p.TaxRate = rate
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		CartStore:       getEnv("CART_STORE", "memory"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		DBCreds: &orders.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/orders/migrations"),
		},
		PayPalBaseURL:  getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:   os.Getenv("PAYPAL_SECRET"),
		Pricing:        p,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadConfig()
	var wg sync.WaitGroup

	// Orders repository
	repo, err := orders.NewPostgresRepository(cfg.DBCreds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.DBCreds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Cart persistence
	var store cart.Store
	switch cfg.CartStore {
	case "mongo":
		mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := cart.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
		mongoCancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = cart.NewMongoStore(db)
	default:
		store = cart.NewMemoryStore()
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cartCache := cache.NewRedisCache(redisClient)
	defer redisClient.Close()

	carts := cart.NewService(store, cartCache, cfg.Pricing)

	// Payment provider
	if cfg.PayPalClientID == "" || cfg.PayPalSecret == "" {
		log.Println("Warning: PAYPAL_CLIENT_ID/PAYPAL_SECRET not set, payments will fail")
	}
	provider := payment.NewPayPalClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)

	checkoutSvc := checkout.NewService(carts, repo, provider, cfg.Pricing)

	// Order status fan-out: outbox -> kafka -> hub -> websockets
	hub := status.NewHub()
	consumer := status.NewConsumer(hub, cfg.KafkaBrokers)
	poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		poller.Run(workerCtx)
	}()

	cartHandler := h.NewCartHandler(carts, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(repo, cfg.RequestTimeout)
	statusHandler := h.NewStatusHandler(hub, repo)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{kind}/{id}", cartHandler.AdjustQuantity)
			r.Delete("/items/{kind}/{id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/orders", checkoutHandler.CreateOrder)
			r.Post("/capture", checkoutHandler.Capture)
			r.Post("/cancel", checkoutHandler.Cancel)
			r.Post("/error", checkoutHandler.WidgetError)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{id}", ordersHandler.GetOrder)
		})
		// Websocket upgrade, no timeout middleware on this one
		r.Get("/orders/{id}/status", statusHandler.Watch)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	workerCancel()
	consumer.Close()
	poller.Close()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("workers stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("workers did not stop in time")
	}

	log.Println("server exited")
}
