package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"safenetwork-api/internal/cache"
	"safenetwork-api/internal/config"
	"safenetwork-api/internal/crm"
	"safenetwork-api/internal/handler"
	"safenetwork-api/internal/identity"
	"safenetwork-api/internal/repository"
	"safenetwork-api/internal/router"
	"safenetwork-api/internal/service"
	"safenetwork-api/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting SafeNetwork API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize PostgreSQL store
	store, err := repository.NewStore(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	defer store.Close()

	// Initialize blob storage for photos
	photos, err := storage.NewMinIOPhotoStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	log.Println("Blob storage initialized")

	// Initialize listing cache
	var listingCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddress(), cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Printf("Warning: Redis connection failed, using in-memory cache: %v", err)
			memCache := cache.NewMemoryCache()
			defer memCache.Close()
			listingCache = memCache
		} else {
			defer redisCache.Close()
			listingCache = redisCache
		}
	default:
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		listingCache = memCache
	}

	// Initialize identity verification and role derivation
	verifier := identity.NewHTTPVerifier(cfg.Auth.Userinfo(), cfg.Auth.Timeout)
	roles := identity.NewRoleResolver(cfg.Admin.EmailDomain, cfg.Admin.SuperAdminEmail)

	// Initialize CRM client (optional)
	var crmClient crm.Client = crm.Noop{}
	if cfg.CRM.SiteID != "" && cfg.CRM.APIKey != "" {
		crmClient = crm.NewHTTPClient(cfg.CRM.BaseURL, cfg.CRM.SiteID, cfg.CRM.APIKey, cfg.CRM.Timeout)
		log.Println("CRM client initialized")
	}

	// Initialize services
	feedService := service.NewFeedService(
		store.Feed, store.ItemReactions, store.Profiles,
		store.Wishlists, store.Collections, store.Follows,
	)
	profileService := service.NewProfileService(store.Profiles, roles, crmClient)
	wishlistService := service.NewWishlistService(store.Wishlists, store.Profiles, feedService)
	collectionService := service.NewCollectionService(
		store.Collections, store.Profiles, photos, feedService,
		cfg.Storage.CollectionBucket, cfg.Storage.MaxUploadBytes,
	)
	showService := service.NewShowService(store.Shows, store.Hosts, store.Profiles, listingCache, cfg.Cache.TTL)
	inventoryService := service.NewInventoryService(
		store.HostInventory, store.Hosts, store.Profiles, photos, feedService,
		cfg.Storage.InventoryBucket, cfg.Storage.MaxUploadBytes,
	)
	followService := service.NewFollowService(store.Follows, store.Profiles)
	ledgerService := service.NewLedgerService(store.Ledger, store.Profiles, cfg.Hosts.CategoryTable())

	// Initialize handlers and router
	actions := handler.NewActionHandler(
		verifier,
		profileService,
		wishlistService,
		collectionService,
		showService,
		inventoryService,
		feedService,
		followService,
		ledgerService,
	)
	status := handler.NewStatusHandler(cfg.App.Name, cfg.App.Version)

	r := router.New(router.Config{
		Actions: actions,
		Status:  status,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine for graceful shutdown
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
