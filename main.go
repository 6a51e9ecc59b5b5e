package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"plat-tracker/internal/api"
	"plat-tracker/internal/catalog"
	"plat-tracker/internal/db"
	"plat-tracker/internal/engine"
	"plat-tracker/internal/logger"
	"plat-tracker/internal/scheduler"
	"plat-tracker/internal/wfm"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	catalogPath := flag.String("catalog", "", "pack catalog YAML (empty = embedded default)")
	flag.Parse()

	logger.Banner(version)

	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadConfig()
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("Catalog", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	logger.Success("Catalog", fmt.Sprintf("%d packs, %d distinct items", len(cat.Packs), len(cat.Slugs())))

	client := wfm.NewClient(cfg.Platform, cfg.Language)
	resolver := &engine.Resolver{
		Source: client,
		Store:  database,
		TTL:    time.Duration(cfg.PriceTTLMinutes) * time.Minute,
	}
	refresher := &engine.Refresher{Resolver: resolver, Workers: cfg.RefreshWorkers}

	srv := api.NewServer(cfg, database, client, resolver, refresher, cat)

	// Sync the item catalog in the background so startup never blocks on
	// the market API.
	go srv.SyncItemsIfStale(24 * time.Hour)

	if n := database.PrunePrices(30 * 24 * time.Hour); n > 0 {
		logger.Info("DB", fmt.Sprintf("Pruned %d stale price records", n))
	}

	sched := scheduler.New(refresher, cat)
	if err := sched.Register(cfg.RefreshCron); err != nil {
		logger.Error("Sched", err.Error())
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
