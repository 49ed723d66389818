// jobpulse-trends-service
//
// Deduplicated job-posting ingest plus time-bucketed skill trend
// aggregation. Two cron-driven batch loops:
//   - ingest: fetch from source adapters, canonicalize, upsert-merge
//   - aggregate: recompute TrendItem rows for the current period
//
// Exposes the read-side trend queries over HTTP and publishes pass
// summaries to Redis for downstream consumers.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobpulse/trends-service/internal/adapter"
	"jobpulse/trends-service/internal/config"
	"jobpulse/trends-service/internal/db"
	"jobpulse/trends-service/internal/ingest"
	"jobpulse/trends-service/internal/scheduler"
	"jobpulse/trends-service/internal/store"
	"jobpulse/trends-service/internal/trends"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[trends-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[trends-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[trends-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	if err := store.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("[trends-service] Schema: %v", err)
	}
	log.Println("[trends-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[trends-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[trends-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[trends-service] Redis connected ✓")

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	client := adapter.NewHTTPClient()
	creds := adapter.NewCredentialPool(cfg.USAJobsAPIKeys)
	registry := adapter.NewRegistry(client, creds, cfg.MuseAPIKey)

	postings := store.NewPostingStore(pool)
	trendRows := store.NewTrendStore(pool)

	ingestSvc := ingest.NewService(ingest.NewRunner(registry, client), postings, rdb)
	trendSvc := trends.NewService(postings, trendRows, rdb)

	opts := ingest.RunOptions{
		Adapters:  cfg.Adapters,
		Companies: cfg.CompanySlugs,
		MaxPages:  cfg.MaxPages,
		Workers:   cfg.Workers,
	}
	if cfg.SinceDays > 0 {
		opts.Since = time.Now().UTC().AddDate(0, 0, -cfg.SinceDays)
	}

	sched := scheduler.New(ingestSvc, trendSvc, opts, cfg.Granularity,
		cfg.IngestIntervalHours, cfg.AggregateIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[trends-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	trends.NewHandler(trendSvc).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[trends-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[trends-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[trends-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[trends-service] Shutdown error: %v", err)
	}
	log.Println("[trends-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "trends-service",
		"version": version,
	})
}
