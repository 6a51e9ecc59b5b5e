package engine

import (
	"time"

	"plat-tracker/internal/wfm"
)

// defaultMaxRank is assumed when an order book carries no ranked sell
// listings at all (standard arcanes cap at rank 5).
const defaultMaxRank = 5

// DefaultPriceTTL is how long a cached price record stays authoritative.
const DefaultPriceTTL = time.Hour

// PriceRecord is the cached pricing outcome for one item: representative
// ("avg") and cheapest ("low") prices at rank 0 and at the detected max
// rank, plus the flip margins for both series.
type PriceRecord struct {
	Slug      string    `json:"slug"`
	MaxRank   int       `json:"max_rank"`
	AvgRank0  float64   `json:"avg_rank0"`
	AvgMax    float64   `json:"avg_max"`
	AvgFlip   float64   `json:"avg_flip"`
	LowRank0  float64   `json:"low_rank0"`
	LowMax    float64   `json:"low_max"`
	LowFlip   float64   `json:"low_flip"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderSource supplies the current order book for one item slug.
// An unknown item yields an empty book, not an error.
type OrderSource interface {
	Orders(slug string) ([]wfm.Order, error)
}

// PriceStore is the persistent price cache.
type PriceStore interface {
	GetPrice(slug string) (PriceRecord, bool)
	SetPrice(rec PriceRecord)
}

// Resolver answers "what is this item worth" through a single idempotent
// cache-or-compute-then-write-back step: a fresh cached record is returned
// as-is; a stale or missing one is recomputed from the live order book and
// written back. Concurrent refreshes of the same slug are serialized by the
// order source's singleflight, so at most one computation runs per slug.
type Resolver struct {
	Source OrderSource
	Store  PriceStore
	TTL    time.Duration    // 0 means DefaultPriceTTL
	Now    func() time.Time // injectable clock for tests; nil means time.Now
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultPriceTTL
}

// Fresh reports whether a cached record is still inside the validity window.
func (r *Resolver) Fresh(rec PriceRecord) bool {
	return r.now().Sub(rec.UpdatedAt) < r.ttl()
}

// Resolve returns the price record for an item slug, recomputing it from
// the live order book when the cache has nothing fresh.
func (r *Resolver) Resolve(slug string) (PriceRecord, error) {
	if rec, ok := r.Store.GetPrice(slug); ok && r.Fresh(rec) {
		return rec, nil
	}

	orders, err := r.Source.Orders(slug)
	if err != nil {
		return PriceRecord{}, err
	}

	rec := priceFromOrders(slug, orders)
	rec.UpdatedAt = r.now()
	r.Store.SetPrice(rec)
	return rec, nil
}

// priceFromOrders prices one arcane order book: representative and cheapest
// series at rank 0 and the detected max rank, plus flip margins.
func priceFromOrders(slug string, orders []wfm.Order) PriceRecord {
	rank0 := 0
	maxRank := MaxSellRank(orders)
	if maxRank <= 0 {
		maxRank = defaultMaxRank
	}

	rec := PriceRecord{
		Slug:     slug,
		MaxRank:  maxRank,
		AvgRank0: RepresentativePrice(orders, ClassArcane, &rank0),
		AvgMax:   RepresentativePrice(orders, ClassArcane, &maxRank),
		LowRank0: CheapestPrice(orders, &rank0),
		LowMax:   CheapestPrice(orders, &maxRank),
	}
	rec.AvgFlip = FlipMargin(maxRank, rec.AvgRank0, rec.AvgMax)
	rec.LowFlip = FlipMargin(maxRank, rec.LowRank0, rec.LowMax)
	return rec
}
