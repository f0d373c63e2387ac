package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/config"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/directory"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/handlers"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/metrics"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/middleware"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/naming"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/password"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/store"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/version"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	case "user", "service", "group", "member":
		runAdminCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Identity core for the LDAP front end")
	fmt.Println("\nCommands:")
	fmt.Println("  server     Start the bind/search service")
	fmt.Println("  user       Manage users (list, show, create, set-password, import-hash, unlock, superuser, set-uuid, delete)")
	fmt.Println("  service    Manage services (list, create, set-password, import-hash, set-hyperlink, delete)")
	fmt.Println("  group      Manage groups (list, show, create, set-uuid, delete)")
	fmt.Println("  member     Manage memberships (add-user-to-service, add-user-to-group, add-group-to-service)")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize metrics
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}

	// Initialize the decision core
	resolver := naming.NewResolver(cfg.BaseDN)
	tracker := password.NewLockoutTracker(cfg.LockoutThreshold)
	dir := directory.New(db, resolver, tracker, recorder)
	proxyHandler := handlers.NewProxyHandler(dir)

	// Setup Gin
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Setup Prometheus metrics middleware (must be before other routes)
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", handlers.Health(db))

	// Prometheus metrics endpoint (with optional authentication)
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Setup rate limiting for bind attempts
	bindLimiter, redisClient := setupBindRateLimit(cfg)

	// RPC endpoints called by the LDAP front end
	r.POST("/bind", bindLimiter, proxyHandler.Bind)
	r.POST("/search", proxyHandler.Search)

	// Start server
	log.Printf("Identity core starting on %s", cfg.ServerAddr)
	log.Printf("Base DN: %s", cfg.BaseDN)
	log.Printf("Account lockout threshold: %d failed attempts", cfg.LockoutThreshold)
	log.Printf("Default user: admin (check logs for password if first run)")

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Create graceful manager
	m := graceful.NewManager()

	// Add server as a running job
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	// Add directory gauge update job
	if cfg.MetricsEnabled && cfg.GaugeUpdateInterval > 0 {
		m.AddRunningJob(func(ctx context.Context) error {
			ticker := time.NewTicker(cfg.GaugeUpdateInterval)
			defer ticker.Stop()

			// Update immediately on startup
			updateDirectoryGauges(db, recorder)

			for {
				select {
				case <-ticker.C:
					updateDirectoryGauges(db, recorder)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	// Add shutdown job for HTTP server
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})

	// Add shutdown job for Redis client (if used)
	if redisClient != nil {
		m.AddShutdownJob(func() error {
			log.Println("Closing Redis connection...")
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis client: %v", err)
				return err
			}
			log.Println("Redis connection closed")
			return nil
		})
	}

	// Add shutdown job for the store
	m.AddShutdownJob(func() error {
		log.Println("Closing database...")
		return db.Close()
	})

	// Wait for graceful shutdown
	<-m.Done()
}

// setupBindRateLimit configures per-client-IP rate limiting for the bind endpoint.
// Returns the middleware and optional Redis client (needs cleanup on shutdown).
func setupBindRateLimit(cfg *config.Config) (gin.HandlerFunc, *redis.Client) {
	if !cfg.RateLimitEnabled {
		log.Println("Bind rate limiting disabled")
		return func(c *gin.Context) { c.Next() }, nil
	}

	limiterMiddleware, redisClient, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.BindLimitPerMinute,
		StoreType:         middleware.RateLimitStoreType(cfg.RateLimitStore),
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		RedisDB:           cfg.RedisDB,
		CleanupInterval:   5 * time.Minute,
	})
	if err != nil {
		log.Fatalf("Failed to create bind rate limiter: %v", err)
	}
	log.Printf("Bind rate limit: %d/minute per client (store: %s)",
		cfg.BindLimitPerMinute, cfg.RateLimitStore)
	return limiterMiddleware, redisClient
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]

	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		log.Printf("Database query failed for %s: %v (further errors will be suppressed for %v)",
			operation, err, e.rateLimitWindow)
		e.lastErrorTimes[operation] = now
	}
}

var gaugeErrorLogger = newErrorLogger()

// updateDirectoryGauges refreshes the user/service/group size gauges from the store.
func updateDirectoryGauges(db *store.Store, m metrics.Recorder) {
	users, err := db.CountUsers()
	if err != nil {
		m.RecordDatabaseQueryError("count_users")
		gaugeErrorLogger.logIfNeeded("count_users", err)
		return
	}

	services, err := db.CountServices()
	if err != nil {
		m.RecordDatabaseQueryError("count_services")
		gaugeErrorLogger.logIfNeeded("count_services", err)
		return
	}

	groups, err := db.CountGroups()
	if err != nil {
		m.RecordDatabaseQueryError("count_groups")
		gaugeErrorLogger.logIfNeeded("count_groups", err)
		return
	}

	m.SetDirectoryCounts(users, services, groups)
}
