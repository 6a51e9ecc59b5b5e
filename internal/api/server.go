package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"plat-tracker/internal/catalog"
	"plat-tracker/internal/config"
	"plat-tracker/internal/db"
	"plat-tracker/internal/engine"
	"plat-tracker/internal/logger"
	"plat-tracker/internal/wfm"
)

// packsCacheTTL bounds how often a pack valuation sweep can hit the market
// API. One sweep touches every catalog item, so this matters.
const packsCacheTTL = 5 * time.Minute

// Server is the HTTP API that connects the market client, the pricing
// engine, and the price cache.
type Server struct {
	cfg       *config.Config
	db        *db.DB
	client    *wfm.Client
	resolver  *engine.Resolver
	refresher *engine.Refresher
	catalog   *catalog.Catalog

	mu    sync.RWMutex
	ready bool // item catalog synced

	// Pack valuation cache, keyed by price mode.
	packsMu    sync.RWMutex
	packsCache map[engine.PriceMode]packsCacheEntry
}

type packsCacheEntry struct {
	values   []engine.PackValue
	computed time.Time
}

// NewServer creates a Server wired to the given collaborators.
func NewServer(cfg *config.Config, database *db.DB, client *wfm.Client, resolver *engine.Resolver, refresher *engine.Refresher, cat *catalog.Catalog) *Server {
	return &Server{
		cfg:        cfg,
		db:         database,
		client:     client,
		resolver:   resolver,
		refresher:  refresher,
		catalog:    cat,
		packsCache: make(map[engine.PriceMode]packsCacheEntry),
	}
}

// SetReady marks the item catalog as synced.
func (s *Server) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/items/search", s.handleItemSearch)
	mux.HandleFunc("POST /api/items/sync", s.handleItemSync)
	mux.HandleFunc("GET /api/items/{slug}/price", s.handleItemPrice)
	mux.HandleFunc("GET /api/items/{slug}/ranks", s.handleItemRanks)
	mux.HandleFunc("GET /api/packs", s.handlePacks)
	mux.HandleFunc("POST /api/packs/refresh", s.handlePacksRefresh)
	mux.HandleFunc("GET /api/flips", s.handleFlips)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"ready":         s.isReady(),
		"items":         s.db.CountItems(),
		"packs":         len(s.catalog.Packs),
		"cached_prices": s.db.CountPrices(),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, 400, "invalid config payload")
		return
	}
	if cfg.DrawsPerOpen <= 0 || cfg.PriceTTLMinutes <= 0 {
		writeError(w, 400, "draws_per_open and price_ttl_minutes must be positive")
		return
	}
	s.mu.Lock()
	*s.cfg = cfg
	s.mu.Unlock()
	s.resolver.TTL = time.Duration(cfg.PriceTTLMinutes) * time.Minute
	s.refresher.Workers = cfg.RefreshWorkers
	if err := s.db.SaveConfig(&cfg); err != nil {
		writeError(w, 500, fmt.Sprintf("save config: %v", err))
		return
	}
	s.invalidatePacksCache()
	writeJSON(w, s.cfg)
}

func (s *Server) handleItemSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, 400, "missing query parameter q")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, map[string]interface{}{"items": s.db.SearchItems(q, limit)})
}

func (s *Server) handleItemSync(w http.ResponseWriter, r *http.Request) {
	items, err := s.client.FetchItems()
	if err != nil {
		writeError(w, 502, fmt.Sprintf("fetch items: %v", err))
		return
	}
	if err := s.db.UpsertItems(items); err != nil {
		writeError(w, 500, fmt.Sprintf("store items: %v", err))
		return
	}
	s.SetReady()
	logger.Success("Items", fmt.Sprintf("Synced %d items", len(items)))
	writeJSON(w, map[string]int{"synced": len(items)})
}

// handleItemPrice resolves one item's price record (cache-or-compute).
func (s *Server) handleItemPrice(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	rec, err := s.resolver.Resolve(slug)
	if err != nil {
		writeError(w, 502, fmt.Sprintf("resolve %s: %v", slug, err))
		return
	}
	writeJSON(w, rec)
}

// handleItemRanks prices a ranked item at each of its ranks from the live
// order book. The item's class decides the rank sweep (mods: every rank,
// arcanes: floor and ceiling only).
func (s *Server) handleItemRanks(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	class := engine.ClassArcane
	if it, ok := s.db.ItemBySlug(slug); ok {
		class = engine.ItemClass(it.Class())
	}
	orders, err := s.client.Orders(slug)
	if err != nil {
		writeError(w, 502, fmt.Sprintf("orders %s: %v", slug, err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"slug":        slug,
		"class":       class,
		"rank_prices": engine.RankPrices(orders, class),
		"orders":      len(orders),
	})
}

func (s *Server) priceMode(r *http.Request) engine.PriceMode {
	mode := engine.PriceMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = engine.PriceMode(s.cfg.PriceMode)
	}
	if mode != engine.ModeCheapest {
		mode = engine.ModeAverage
	}
	return mode
}

func (s *Server) valuer() *engine.Valuer {
	return &engine.Valuer{
		Lookup: engine.ResolverLookup{
			Resolver: s.resolver,
			Known:    s.knownSlug(),
		},
		DrawsPerOpen: s.cfg.DrawsPerOpen,
	}
}

// knownSlug excludes slugs missing from the item catalog from tier averages.
// Before the first sync the catalog is empty, so every slug passes.
func (s *Server) knownSlug() func(string) bool {
	if s.db.CountItems() == 0 {
		return nil
	}
	return func(slug string) bool {
		_, ok := s.db.ItemBySlug(slug)
		return ok
	}
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	mode := s.priceMode(r)

	s.packsMu.RLock()
	entry, ok := s.packsCache[mode]
	s.packsMu.RUnlock()
	if ok && time.Since(entry.computed) < packsCacheTTL {
		writeJSON(w, map[string]interface{}{"mode": mode, "packs": entry.values, "cached": true})
		return
	}

	values := s.valuer().ValueAll(s.catalog, mode)
	sort.Slice(values, func(i, j int) bool {
		return values[i].ExpectedValue > values[j].ExpectedValue
	})

	s.packsMu.Lock()
	s.packsCache[mode] = packsCacheEntry{values: values, computed: time.Now()}
	s.packsMu.Unlock()

	writeJSON(w, map[string]interface{}{"mode": mode, "packs": values, "cached": false})
}

func (s *Server) handlePacksRefresh(w http.ResponseWriter, r *http.Request) {
	slugs := s.catalog.Slugs()
	start := time.Now()
	records := s.refresher.RefreshAll(r.Context(), slugs)
	s.invalidatePacksCache()
	logger.Success("Packs", fmt.Sprintf("Refreshed %d/%d items in %s",
		len(records), len(slugs), time.Since(start).Round(time.Millisecond)))
	writeJSON(w, map[string]interface{}{
		"requested": len(slugs),
		"refreshed": len(records),
	})
}

// handleFlips lists cached arcane flip margins, widest margin first.
func (s *Server) handleFlips(w http.ResponseWriter, r *http.Request) {
	records := s.db.AllPrices()
	flips := make([]engine.PriceRecord, 0, len(records))
	for _, rec := range records {
		if rec.AvgFlip != 0 || rec.LowFlip != 0 {
			flips = append(flips, rec)
		}
	}
	sort.Slice(flips, func(i, j int) bool { return flips[i].AvgFlip > flips[j].AvgFlip })
	writeJSON(w, map[string]interface{}{"flips": flips})
}

func (s *Server) invalidatePacksCache() {
	s.packsMu.Lock()
	s.packsCache = make(map[engine.PriceMode]packsCacheEntry)
	s.packsMu.Unlock()
}

// SyncItemsIfStale refreshes the item catalog when the last sync is older
// than the window. Meant to run in the background at startup.
func (s *Server) SyncItemsIfStale(window time.Duration) {
	if s.db.ItemsSyncedWithin(window) {
		s.SetReady()
		logger.Info("Items", fmt.Sprintf("Catalog fresh (%d items)", s.db.CountItems()))
		return
	}
	items, err := s.client.FetchItems()
	if err != nil {
		logger.Error("Items", fmt.Sprintf("Sync failed: %v", err))
		if s.db.CountItems() > 0 {
			s.SetReady() // stale catalog beats no catalog
		}
		return
	}
	if err := s.db.UpsertItems(items); err != nil {
		logger.Error("Items", fmt.Sprintf("Store failed: %v", err))
		return
	}
	s.SetReady()
	logger.Success("Items", fmt.Sprintf("Synced %d items", len(items)))
}
