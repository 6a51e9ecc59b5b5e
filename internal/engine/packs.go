package engine

import (
	"plat-tracker/internal/catalog"
)

// PriceMode selects which price series feeds pack valuation.
type PriceMode string

const (
	// ModeAverage values packs with the smoothed representative price.
	ModeAverage PriceMode = "avg"
	// ModeCheapest values packs with the lowest in-game sell price.
	ModeCheapest PriceMode = "cheapest"
)

// DefaultDrawsPerOpen is how many reward rolls one pack opening grants.
// Game-balance fact, not derived from tier data.
const DefaultDrawsPerOpen = 3

// PriceLookup resolves one item slug to a price in the requested mode.
// ok=false means the lookup does not know the item at all; such items are
// excluded from their tier's average. A known item with a non-positive
// price counts as 0 and still enters the denominator.
type PriceLookup interface {
	ItemPrice(slug string, mode PriceMode) (price float64, ok bool)
}

// PackValue is the valuation result for one pack.
type PackValue struct {
	Name          string  `json:"name"`
	Cost          int     `json:"cost"`
	ExpectedValue float64 `json:"expected_value"`
	PlatPerCost   float64 `json:"plat_per_cost"` // expected platinum per unit of pack cost
}

// Valuer computes expected monetary value for packs.
type Valuer struct {
	Lookup       PriceLookup
	DrawsPerOpen int // 0 means DefaultDrawsPerOpen
}

func (v *Valuer) draws() int {
	if v.DrawsPerOpen > 0 {
		return v.DrawsPerOpen
	}
	return DefaultDrawsPerOpen
}

// PackExpectedValue computes the expected platinum return of opening one
// pack: per tier, the mean price of its priced items weighted by the tier's
// probability, summed over tiers and multiplied by the rolls per opening.
// Tier probabilities are used as given, without normalization.
// A missing price degrades precision, never aborts the computation.
func (v *Valuer) PackExpectedValue(p catalog.Pack, mode PriceMode) PackValue {
	perRoll := 0.0
	for _, tier := range p.Tiers {
		if tier.Probability == 0 || len(tier.Items) == 0 {
			continue
		}
		sum := 0.0
		priced := 0
		for _, slug := range tier.Items {
			price, ok := v.Lookup.ItemPrice(slug, mode)
			if !ok {
				continue
			}
			if price < 0 {
				price = 0
			}
			sum += price
			priced++
		}
		if priced > 0 {
			perRoll += (sum / float64(priced)) * tier.Probability
		}
	}

	ev := perRoll * float64(v.draws())
	pv := PackValue{Name: p.Name, Cost: p.Cost, ExpectedValue: ev}
	if p.Cost > 0 {
		pv.PlatPerCost = ev / float64(p.Cost)
	}
	return pv
}

// ValueAll values every pack in the catalog, in catalog name order.
// Presentation-order sorting (by expected value, by return) is left to the
// caller.
func (v *Valuer) ValueAll(cat *catalog.Catalog, mode PriceMode) []PackValue {
	values := make([]PackValue, 0, len(cat.Packs))
	for _, name := range cat.Names() {
		values = append(values, v.PackExpectedValue(cat.Packs[name], mode))
	}
	return values
}

// ResolverLookup adapts a Resolver (cache-then-estimator) to the PriceLookup
// used by pack valuation. Known reports whether a slug exists in the item
// directory; nil means every slug is assumed known.
type ResolverLookup struct {
	Resolver *Resolver
	Known    func(slug string) bool
}

// ItemPrice resolves one slug to its rank-0 price in the requested mode.
func (l ResolverLookup) ItemPrice(slug string, mode PriceMode) (float64, bool) {
	if l.Known != nil && !l.Known(slug) {
		return 0, false
	}
	rec, err := l.Resolver.Resolve(slug)
	if err != nil {
		return 0, false
	}
	if mode == ModeCheapest {
		return rec.LowRank0, true
	}
	return rec.AvgRank0, true
}
