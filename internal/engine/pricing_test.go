package engine

import (
	"math"
	"testing"

	"plat-tracker/internal/wfm"
)

func rank(n int) *int { return &n }

func sell(price float64, status string, r *int) wfm.Order {
	return wfm.Order{
		Side:     "sell",
		Platinum: price,
		Rank:     r,
		User:     wfm.User{Status: status},
	}
}

func buy(price float64, status string) wfm.Order {
	return wfm.Order{
		Side:     "buy",
		Platinum: price,
		User:     wfm.User{Status: status},
	}
}

func TestRepresentativePrice_EmptyOrders(t *testing.T) {
	for _, class := range []ItemClass{ClassItem, ClassMod, ClassArcane} {
		if got := RepresentativePrice(nil, class, nil); got != 0 {
			t.Errorf("RepresentativePrice(nil, %s) = %v, want 0", class, got)
		}
		if got := RepresentativePrice(nil, class, rank(3)); got != 0 {
			t.Errorf("RepresentativePrice(nil, %s, rank 3) = %v, want 0", class, got)
		}
	}
}

func TestRepresentativePrice_PlainItemFilters(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, nil),
		sell(20, wfm.StatusOnline, nil),
		sell(30, wfm.StatusOnline, nil),
		sell(100, wfm.StatusOffline, nil), // offline seller excluded
		buy(50, wfm.StatusInGame),         // buy side excluded
	}
	if got := RepresentativePrice(orders, ClassItem, nil); got != 20.0 {
		t.Fatalf("RepresentativePrice = %v, want 20.0", got)
	}
}

func TestRepresentativePrice_ArcaneOutlierTrim(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(0)),
		sell(10, wfm.StatusOnline, rank(0)),
		sell(20, wfm.StatusOnline, rank(0)),
		sell(20, wfm.StatusOnline, rank(0)),
		sell(20, wfm.StatusOnline, rank(0)),
	}
	// Two cheapest dropped, remaining three averaged.
	if got := RepresentativePrice(orders, ClassArcane, rank(0)); got != 20.0 {
		t.Fatalf("RepresentativePrice = %v, want 20.0", got)
	}
}

func TestRepresentativePrice_ArcaneKeepsOfflineSellers(t *testing.T) {
	orders := []wfm.Order{
		sell(5, wfm.StatusOffline, rank(0)),
		sell(6, wfm.StatusOffline, rank(0)),
		sell(30, wfm.StatusOffline, rank(0)),
	}
	// Presence is not filtered for arcanes; trimming handles the low end.
	if got := RepresentativePrice(orders, ClassArcane, rank(0)); got != 30.0 {
		t.Fatalf("RepresentativePrice = %v, want 30.0", got)
	}
}

func TestRepresentativePrice_ArcaneInsufficientAfterTrim(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(0)),
		sell(20, wfm.StatusOnline, rank(0)),
	}
	if got := RepresentativePrice(orders, ClassArcane, rank(0)); got != 0 {
		t.Fatalf("RepresentativePrice with 2 qualifying orders = %v, want 0", got)
	}
}

func TestRepresentativePrice_ArcaneSampleCap(t *testing.T) {
	var orders []wfm.Order
	for i := 0; i < 40; i++ {
		orders = append(orders, sell(float64(i+1), wfm.StatusOnline, rank(0)))
	}
	// Drop [1,2], average [3..17].
	want := 0.0
	for p := 3; p <= 17; p++ {
		want += float64(p)
	}
	want /= 15
	if got := RepresentativePrice(orders, ClassArcane, rank(0)); math.Abs(got-want) > 1e-9 {
		t.Fatalf("RepresentativePrice = %v, want %v", got, want)
	}
}

func TestRepresentativePrice_PlainSampleSmallerThanFive(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusInGame, nil),
		sell(30, wfm.StatusOnline, nil),
	}
	if got := RepresentativePrice(orders, ClassItem, nil); got != 20.0 {
		t.Fatalf("RepresentativePrice = %v, want 20.0", got)
	}
}

func TestRepresentativePrice_RankDefaultsToZeroForRanked(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(0)),
		sell(12, wfm.StatusOnline, nil),     // unranked listing always kept
		sell(500, wfm.StatusOnline, rank(3)), // non-zero rank dropped by the default
	}
	if got := RepresentativePrice(orders, ClassMod, nil); got != 11.0 {
		t.Fatalf("RepresentativePrice(mod, no rank) = %v, want 11.0", got)
	}
	// Plain items have no rank-0 default: every sell participates.
	if got := RepresentativePrice(orders, ClassItem, nil); got != 174.0 {
		t.Fatalf("RepresentativePrice(item, no rank) = %v, want 174.0", got)
	}
}

func TestRepresentativePrice_ExplicitRankFilter(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(0)),
		sell(40, wfm.StatusOnline, rank(3)),
		sell(44, wfm.StatusOnline, rank(3)),
		sell(90, wfm.StatusOnline, nil), // no rank field: excluded by explicit filter
	}
	if got := RepresentativePrice(orders, ClassMod, rank(3)); got != 42.0 {
		t.Fatalf("RepresentativePrice(rank 3) = %v, want 42.0", got)
	}
}

func TestRepresentativePrice_Deterministic(t *testing.T) {
	orders := []wfm.Order{
		sell(7, wfm.StatusOnline, rank(0)),
		sell(3, wfm.StatusInGame, rank(0)),
		sell(11, wfm.StatusOnline, rank(0)),
		sell(5, wfm.StatusOnline, rank(0)),
	}
	first := RepresentativePrice(orders, ClassArcane, rank(0))
	for i := 0; i < 10; i++ {
		if got := RepresentativePrice(orders, ClassArcane, rank(0)); got != first {
			t.Fatalf("run %d: RepresentativePrice = %v, want %v", i, got, first)
		}
	}
}

func TestCheapestPrice_RequiresInGame(t *testing.T) {
	orders := []wfm.Order{
		sell(5, wfm.StatusOnline, nil),
		sell(8, wfm.StatusOffline, nil),
		buy(1, wfm.StatusInGame),
	}
	if got := CheapestPrice(orders, nil); got != PriceNotFound {
		t.Fatalf("CheapestPrice with no in-game sellers = %v, want sentinel %v", got, PriceNotFound)
	}
}

func TestCheapestPrice_MinOfInGameSells(t *testing.T) {
	orders := []wfm.Order{
		sell(12, wfm.StatusInGame, nil),
		sell(9, wfm.StatusInGame, nil),
		sell(2, wfm.StatusOnline, nil), // cheaper but not in-game
	}
	if got := CheapestPrice(orders, nil); got != 9.0 {
		t.Fatalf("CheapestPrice = %v, want 9.0", got)
	}
}

func TestCheapestPrice_NoRankDefaultWhenOmitted(t *testing.T) {
	orders := []wfm.Order{
		sell(15, wfm.StatusInGame, rank(5)),
		sell(20, wfm.StatusInGame, rank(0)),
	}
	// Omitted rank: no rank filtering at all, so the rank-5 listing wins.
	if got := CheapestPrice(orders, nil); got != 15.0 {
		t.Fatalf("CheapestPrice(no rank) = %v, want 15.0", got)
	}
	if got := CheapestPrice(orders, rank(0)); got != 20.0 {
		t.Fatalf("CheapestPrice(rank 0) = %v, want 20.0", got)
	}
	if got := CheapestPrice(orders, rank(3)); got != PriceNotFound {
		t.Fatalf("CheapestPrice(rank 3) = %v, want sentinel", got)
	}
}

func TestRankPrices_PlainItemEmpty(t *testing.T) {
	orders := []wfm.Order{sell(10, wfm.StatusOnline, nil)}
	if got := RankPrices(orders, ClassItem); len(got) != 0 {
		t.Fatalf("RankPrices(item) = %v, want empty", got)
	}
}

func TestRankPrices_ModCoversAllRanks(t *testing.T) {
	var orders []wfm.Order
	for r := 0; r <= 3; r++ {
		for i := 0; i < 3; i++ {
			orders = append(orders, sell(float64(10*(r+1)), wfm.StatusOnline, rank(r)))
		}
	}
	got := RankPrices(orders, ClassMod)
	if len(got) != 4 {
		t.Fatalf("RankPrices(mod) has %d ranks, want 4: %v", len(got), got)
	}
	for r := 0; r <= 3; r++ {
		want := float64(10 * (r + 1))
		if got[r] != want {
			t.Errorf("rank %d price = %v, want %v", r, got[r], want)
		}
	}
}

func TestRankPrices_ArcaneFloorAndCeilingOnly(t *testing.T) {
	var orders []wfm.Order
	for r := 0; r <= 5; r++ {
		for i := 0; i < 4; i++ {
			orders = append(orders, sell(float64(20*(r+1)), wfm.StatusOnline, rank(r)))
		}
	}
	got := RankPrices(orders, ClassArcane)
	if len(got) > 2 {
		t.Fatalf("RankPrices(arcane) has %d ranks, want at most 2: %v", len(got), got)
	}
	if _, ok := got[0]; !ok {
		t.Error("RankPrices(arcane) missing rank 0")
	}
	if _, ok := got[5]; !ok {
		t.Error("RankPrices(arcane) missing detected max rank 5")
	}
	if _, ok := got[3]; ok {
		t.Error("RankPrices(arcane) should not price intermediate ranks")
	}
}

func TestRankPrices_OmitsUnpricedRanks(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(0)),
		sell(12, wfm.StatusOnline, rank(0)),
		// Rank 2 exists only as an offline listing, which mod pricing drops.
		sell(50, wfm.StatusOffline, rank(2)),
	}
	got := RankPrices(orders, ClassMod)
	if _, ok := got[2]; ok {
		t.Fatalf("RankPrices includes rank 2 with no determinable price: %v", got)
	}
	if got[0] != 11.0 {
		t.Fatalf("rank 0 price = %v, want 11.0", got[0])
	}
}

func TestMaxSellRank_ClampsMalformedData(t *testing.T) {
	orders := []wfm.Order{
		sell(10, wfm.StatusOnline, rank(99)),
		sell(10, wfm.StatusOnline, rank(4)),
		buy(10, wfm.StatusOnline), // buy side ignored
	}
	if got := MaxSellRank(orders); got != 10 {
		t.Fatalf("MaxSellRank = %d, want 10 (clamped)", got)
	}
}
