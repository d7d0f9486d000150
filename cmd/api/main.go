package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"marketplace-console/internal/analytics"
	"marketplace-console/internal/bookings"
	"marketplace-console/internal/cleanup"
	"marketplace-console/internal/config"
	"marketplace-console/internal/crud"
	"marketplace-console/internal/database"
	"marketplace-console/internal/diagnostics"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/handlers"
	"marketplace-console/internal/livechat"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/provinces"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/ratelimit"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/scheduler"
	"marketplace-console/internal/search"
	"marketplace-console/internal/seo"
	"marketplace-console/internal/settings"
	"marketplace-console/internal/store"
	"marketplace-console/internal/support"
)

// the hosted procedure is expensive; manual and scheduled runs share this budget
const (
	syncPerMinute = 1
	syncPerHour   = 6
	syncPerDay    = 24
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/console.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		appConfig = config.DefaultConfig()
		logging.Init("marketplace-console", appConfig.Logging.Level)
		logging.Logger.Warnf("Failed to load config from %s: %v. Using defaults.", configPath, err)
	} else {
		logging.Init("marketplace-console", appConfig.Logging.Level)
		logging.Logger.Infof("Loaded configuration from %s", configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := querycache.New(appConfig.Cache.GetTTL(), appConfig.Cache.GetCleanupInterval())
	hub := realtime.NewHub()

	// Initialize database based on configuration
	dbType := database.ResolveType(appConfig.Database)
	var (
		coll   *collections
		pinger diagnostics.Pinger
	)
	if dbType == database.TypeMemory {
		logging.Logger.Warn("Using in-memory collections; data is lost on restart")
		coll = memoryCollections()
	} else {
		gdb, err := database.Open(appConfig.Database)
		if err != nil {
			logging.Logger.Fatalf("Failed to connect to %s: %v", dbType, err)
		}
		defer gdb.Close()

		if err := gdb.InitSchema(); err != nil {
			logging.Logger.Fatalf("Failed to initialize schema: %v", err)
		}
		logging.Logger.Infof("Using %s with GORM", gdb.Type())
		coll = sqlCollections(gdb.DB())
		pinger = gdb
	}

	deletes := store.NewDeleteLogs(coll.deleteLogs)

	// Editors
	locationEditor := crud.NewEditor[models.Location](coll.locations, forms.LocationForm, cache, hub, deletes)
	propertyEditor := crud.NewEditor[models.Property](coll.properties, forms.PropertyForm, cache, hub, deletes)
	propertyEditor.Invalidates = []string{analytics.CacheCollection}
	imageEditor := crud.NewEditor[models.PropertyImage](coll.propertyImages, forms.PropertyImageForm, cache, hub, deletes)
	bookingEditor := crud.NewEditor[models.RentalBooking](coll.bookings, forms.BookingForm, cache, hub, deletes)
	bookingEditor.Invalidates = []string{analytics.CacheCollection}
	inquiryEditor := crud.NewEditor[models.Inquiry](coll.inquiries, forms.InquiryForm, cache, hub, deletes)
	inquiryEditor.Invalidates = []string{analytics.CacheCollection}
	ticketEditor := crud.NewEditor[models.CustomerComplaint](coll.tickets, forms.TicketForm, cache, hub, deletes)
	ticketEditor.Invalidates = []string{analytics.CacheCollection}
	errorLogEditor := crud.NewEditor[models.ErrorLog](coll.errorLogs, forms.ErrorLogForm, cache, hub, deletes)

	// Province analysis and standardization
	runLog := provinces.NewRunLog(coll.runs, coll.steps)
	var renamer provinces.Renamer = provinces.NewCollectionRenamer(coll.locations)
	if coll.locationTable != nil {
		renamer = provinces.NewTxRenamer(coll.locationTable)
	}
	standardizer := provinces.NewStandardizer(renamer, runLog, cache, hub)
	standardizer.Atomic = coll.locationTable != nil
	provinceService := provinces.NewService(coll.locations, cache, standardizer)

	// Location sync procedure
	breakerThreshold := appConfig.Sync.BreakerFailureThreshold
	if breakerThreshold <= 0 {
		breakerThreshold = 3
	}
	breaker := procedures.NewCircuitBreaker(breakerThreshold, appConfig.Sync.GetResetTimeout())
	syncLimiter := ratelimit.NewRateLimiter(syncPerMinute, syncPerHour, syncPerDay, true)
	syncer := procedures.NewSyncer(procedures.NewClient(appConfig.Backend), breaker, syncLimiter, coll.syncState, cache, hub)

	// Search
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}
	searchClient := search.NewSearchClient(meilisearchHost, meilisearchKey)
	if err := searchClient.InitIndex(); err != nil {
		logging.Logger.Warnf("Failed to initialize search index: %v", err)
	}
	indexer := search.NewIndexer(searchClient, coll.properties, coll.locations)
	go indexer.Run(ctx, hub)

	// Services
	settingsService := settings.NewService(coll.seoSettings, coll.csSettings, cache, hub)
	supportService := support.NewService(ticketEditor, errorLogEditor)
	cleanupService := cleanup.NewService(coll.errorLogs, deletes, cache, hub)
	bookingService := bookings.NewService(bookingEditor, coll.properties, coll.statusChanges)
	analyticsService := analytics.NewService(coll.properties, coll.bookings, coll.inquiries, coll.tickets, cache)
	chatService := livechat.NewService(coll.sessions, coll.messages, cache, hub)
	defer chatService.Close()

	var auditor *seo.Auditor
	if appConfig.SEO.SiteURL != "" {
		var fetcher seo.Fetcher = seo.NewHTTPFetcher(appConfig.SEO.GetTimeout(), appConfig.SEO.UserAgent)
		if appConfig.SEO.Renderer == "chrome" {
			fetcher = seo.NewChromeFetcher(getEnv("CHROME_PATH", ""), appConfig.SEO.UserAgent, appConfig.SEO.GetTimeout())
		}
		auditor = seo.NewAuditor(fetcher, appConfig.SEO.SiteURL)
	}

	// Offline operation queue
	queue := opqueue.New(coll.operations,
		locationEditor, propertyEditor, imageEditor, bookingEditor, inquiryEditor, ticketEditor, errorLogEditor)
	queueWorker := scheduler.NewQueueWorker(queue, appConfig.Queue.GetPollInterval(), appConfig.Queue.BatchSize)
	if appConfig.Queue.Enabled {
		queueWorker.Start()
		defer queueWorker.Stop()
		logging.Logger.Info("Queue worker started")
	}

	// Scheduled jobs
	appScheduler := scheduler.NewScheduler(syncer, cleanupService, appConfig)
	if err := appScheduler.Start(); err != nil {
		logging.Logger.Warnf("Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Initialize rate limiter
	clientLimits := ratelimit.NewPerClient(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)
	logging.Logger.Infof("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	diagnosticsService := diagnostics.NewService(diagnostics.Sources{
		DBType:      dbType,
		DB:          pinger,
		Collections: coll.counted(),
		Search:      searchClient,
		Breaker:     breaker,
		Queue:       queue,
		Cache:       cache,
		RateLimit:   clientLimits,
		SyncLimit:   syncLimiter,
		Hub:         hub,
	})

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", handlers.ActorHeader},
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
	}))

	handlers.Routes{
		Admin: handlers.NewAdminHandler(handlers.AdminDeps{
			Provinces: provinceService,
			Runs:      runLog,
			Syncer:    syncer,
			Scheduler: appScheduler,
			Settings:  settingsService,
			Auditor:   auditor,
			Support:   supportService,
			Cleanup:   cleanupService,
			Retention: cleanup.Options{
				RetentionDays:    appConfig.Cleanup.RetentionDays,
				MaxDeletionCount: appConfig.Cleanup.MaxDeletionCount,
			},
			Deletes:     deletes,
			Diagnostics: diagnosticsService,
			Locations:   searchClient,
		}),
		Agent:          handlers.NewAgentHandler(bookingService, analyticsService, searchClient),
		CS:             handlers.NewCSHandler(supportService, chatService, settingsService),
		Queue:          handlers.NewQueueHandler(queue, queueWorker, appConfig.Queue.BatchSize),
		Hub:            hub,
		Locations:      handlers.NewResource(locationEditor),
		ErrorLogs:      handlers.NewResource(errorLogEditor),
		Properties:     handlers.NewResource(propertyEditor),
		PropertyImages: handlers.NewResource(imageEditor),
		Inquiries:      handlers.NewResource(inquiryEditor),
		Tickets:        handlers.NewResource(ticketEditor),
		Limit:          ratelimit.Middleware(clientLimits),
		Health:         healthCheck(dbType, pinger),
	}.Register(r)

	port := getEnv("PORT", appConfig.Server.Port)
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		logging.Logger.Infof("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Server shutdown failed: %v", err)
	}
}

func healthCheck(dbType string, db diagnostics.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": dbType}
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				status["status"] = "degraded"
				status["error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
		}
		c.JSON(http.StatusOK, status)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
