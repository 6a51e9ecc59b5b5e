package engine

import (
	"sort"

	"plat-tracker/internal/wfm"
)

// ItemClass selects the filtering rules used when pricing an item.
type ItemClass string

const (
	// ClassItem is an ordinary tradable item with no ranks.
	ClassItem ItemClass = "item"
	// ClassMod has discrete ranks 0..max and is priced per rank.
	ClassMod ItemClass = "mod"
	// ClassArcane is ranked like a mod but its listings attract extreme
	// low-ball outliers (scalped or mistyped prices), so it gets more
	// aggressive trimming.
	ClassArcane ItemClass = "arcane"
)

// PriceNotFound marks "no qualifying order" for cheapest-price lookups.
// 0 is a legitimate price, so the sentinel is negative.
const PriceNotFound = -1.0

const (
	// maxDetectableRank caps rank detection against malformed order data.
	maxDetectableRank = 10

	arcaneOutlierDrop = 2  // cheapest listings discarded as outlier noise
	arcaneSampleSize  = 15 // listings averaged after the drop
	plainPoolSize     = 30 // cheapest listings considered for plain items
	plainSampleSize   = 5  // listings averaged from that pool
)

// RepresentativePrice computes a smoothed sell price from an order book.
//
// Only sell orders count. For items and mods, offline sellers are excluded;
// arcane pricing keeps every presence and relies on outlier trimming instead.
// When rank is non-nil only orders at exactly that rank survive; when rank is
// nil, mods and arcanes default to rank 0 (unranked listings always pass).
//
// Arcanes: the two cheapest survivors are dropped, then up to the next 15
// are averaged. Everything else: up to 5 of the 30 cheapest are averaged.
// Returns 0 when no price can be determined, never an error.
func RepresentativePrice(orders []wfm.Order, class ItemClass, rank *int) float64 {
	arcane := class == ClassArcane

	var sells []float64
	for _, o := range orders {
		if !o.IsSell() {
			continue
		}
		if !arcane && o.User.Status != wfm.StatusOnline && o.User.Status != wfm.StatusInGame {
			continue
		}
		if rank != nil {
			if o.Rank == nil || *o.Rank != *rank {
				continue
			}
		} else if class == ClassMod || arcane {
			if o.Rank != nil && *o.Rank != 0 {
				continue
			}
		}
		sells = append(sells, o.Platinum)
	}
	sort.Float64s(sells)

	if arcane {
		if len(sells) <= arcaneOutlierDrop {
			return 0
		}
		trimmed := sells[arcaneOutlierDrop:]
		if len(trimmed) > arcaneSampleSize {
			trimmed = trimmed[:arcaneSampleSize]
		}
		return mean(trimmed)
	}

	if len(sells) == 0 {
		return 0
	}
	pool := sells
	if len(pool) > plainPoolSize {
		pool = pool[:plainPoolSize]
	}
	n := plainSampleSize
	if len(pool) < n {
		n = len(pool)
	}
	return mean(pool[:n])
}

// CheapestPrice finds the lowest sell price from sellers who can trade right
// now (in-game only, stricter than RepresentativePrice, which tolerates
// merely-online sellers). A non-nil rank filters to that exact rank; a nil
// rank applies no rank filter at all. Returns PriceNotFound when no order
// qualifies.
func CheapestPrice(orders []wfm.Order, rank *int) float64 {
	cheapest := PriceNotFound
	for _, o := range orders {
		if !o.IsSell() || o.User.Status != wfm.StatusInGame {
			continue
		}
		if rank != nil {
			if o.Rank == nil || *o.Rank != *rank {
				continue
			}
		}
		if cheapest == PriceNotFound || o.Platinum < cheapest {
			cheapest = o.Platinum
		}
	}
	return cheapest
}

// RankPrices computes the representative price per rank for a ranked item.
// Mods are priced at every rank from 0 through the detected max; arcanes only
// at the floor and ceiling (the two ranks flip math needs). Ranks whose price
// comes out non-positive are omitted. Plain items yield an empty map.
func RankPrices(orders []wfm.Order, class ItemClass) map[int]float64 {
	prices := make(map[int]float64)
	if class != ClassMod && class != ClassArcane {
		return prices
	}

	maxRank := MaxSellRank(orders)

	var ranks []int
	if class == ClassArcane {
		ranks = []int{0, maxRank}
	} else {
		for r := 0; r <= maxRank; r++ {
			ranks = append(ranks, r)
		}
	}

	for _, r := range ranks {
		rank := r
		if p := RepresentativePrice(orders, class, &rank); p > 0 {
			prices[r] = p
		}
	}
	return prices
}

// MaxSellRank returns the highest rank present across sell orders, clamped
// to maxDetectableRank against malformed feed data.
func MaxSellRank(orders []wfm.Order) int {
	maxRank := 0
	for _, o := range orders {
		if !o.IsSell() || o.Rank == nil {
			continue
		}
		if *o.Rank > maxRank {
			maxRank = *o.Rank
		}
	}
	if maxRank > maxDetectableRank {
		maxRank = maxDetectableRank
	}
	return maxRank
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
