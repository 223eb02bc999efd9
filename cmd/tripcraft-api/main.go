// README: Entry point; loads config, wires services, starts the HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tripcraft/internal/ai"
	"tripcraft/internal/config"
	httptransport "tripcraft/internal/http"
	"tripcraft/internal/http/middleware"
	"tripcraft/internal/infra"
	"tripcraft/internal/maps"
	"tripcraft/internal/modules/aiusage"
	"tripcraft/internal/modules/assistant"
	"tripcraft/internal/modules/itinerary"
	"tripcraft/internal/modules/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infra.InitTracing("tripcraft-api", cfg.Tracing.Exporter, cfg.Tracing.SampleRatio, os.Stdout)
	if err != nil {
		log.Fatalf("tracing init: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	registry, err := ai.NewRegistryFromCredentials(ctx, cfg.AI.Credentials())
	if err != nil {
		log.Fatalf("ai init: %v", err)
	}
	defer registry.Close()

	catalog, err := itinerary.LoadCatalog(cfg.AI.FallbackCatalog)
	if err != nil {
		log.Fatalf("fallback catalog: %v", err)
	}

	var enricher itinerary.Enricher
	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.TravelMode)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		enricher = itinerary.NewPlacesEnricher(places, cfg.Maps.EnrichLimit).WithRoutes(routes)
	}

	var (
		itinerarySelector *ai.ModelSelector
		newChatSelector   assistant.SelectorFactory
	)
	if !registry.Empty() {
		itinerarySelector = ai.NewModelSelector(cfg.AI.Models, registry)
		itinerarySelector.Initialize()
		newChatSelector = func() *ai.ModelSelector {
			s := ai.NewModelSelector(cfg.AI.Models, registry)
			s.Initialize()
			return s
		}
	}
	itinerarySvc := itinerary.NewService(itinerarySelector, itinerary.NewFallbackBuilder(catalog), enricher)

	var history assistant.HistoryStore
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
		history = assistant.NewRedisStore(redisClient, cfg.AI.SessionTTL)
	}
	assistantSvc := assistant.NewService(newChatSelector, history, assistant.Config{
		Window:     cfg.AI.HistoryWindow,
		SessionTTL: cfg.AI.SessionTTL,
	})

	deps := httptransport.ServerDeps{
		Assistant:      assistantSvc,
		Itinerary:      itinerarySvc,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute),
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	}

	if cfg.DB.DSN != "" && cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		if cfg.DB.Migrate {
			if err := infra.ApplyMigrations(ctx, dbPool, migrationsDir()); err != nil {
				log.Fatalf("migrate: %v", err)
			}
		}

		usageSvc := aiusage.NewService(aiusage.NewStore(dbPool, cfg.AI.MonthlyTokens))
		deps.Trips = trip.NewService(trip.NewStore(dbPool), itinerarySvc, usageSvc)
		deps.Usage = usageSvc
		deps.Verifier = verifier
	} else {
		log.Printf("trips disabled: TRIPCRAFT_DB_DSN and TRIPCRAFT_FIREBASE_PROJECT_ID are both required")
	}

	handler := httptransport.NewServer(deps)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("tripcraft api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("listen: %v", err)
		return
	}
}

func migrationsDir() string {
	if root, err := infra.RepoRoot(); err == nil {
		return filepath.Join(root, "migrations")
	}
	return "migrations"
}
