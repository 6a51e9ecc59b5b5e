// Package catalog loads the arcane pack catalog: which packs exist, what
// each tier can drop, and with what probability. The catalog is plain data
// supplied to the valuation engine, never compiled into it, so drop tables
// can be updated without a rebuild.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"plat-tracker/internal/logger"
)

//go:embed packs.yaml
var defaultPacksYAML []byte

// Tier is one rarity bucket inside a pack: an item pool and the probability
// that a reward roll lands in this bucket.
type Tier struct {
	Items       []string
	Probability float64
}

// Pack is one purchasable collection: a cost in Vosfor and its reward tiers.
type Pack struct {
	Name  string
	Cost  int
	Tiers map[string]Tier
}

// Catalog is the full set of known packs, keyed by pack name.
type Catalog struct {
	Packs map[string]Pack
}

// wire mirrors the YAML document layout.
type wire struct {
	Packs map[string]struct {
		Cost      int                 `yaml:"cost"`
		Tiers     map[string][]string `yaml:"tiers"`
		TierProbs map[string]float64  `yaml:"tier_probs"`
	} `yaml:"packs"`
}

// Load reads a pack catalog from the given YAML file. An empty path loads
// the embedded default catalog.
func Load(path string) (*Catalog, error) {
	data := defaultPacksYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var w wire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(w.Packs) == 0 {
		return nil, fmt.Errorf("catalog has no packs")
	}

	cat := &Catalog{Packs: make(map[string]Pack, len(w.Packs))}
	for name, wp := range w.Packs {
		if wp.Cost <= 0 {
			return nil, fmt.Errorf("pack %q: cost must be positive", name)
		}
		if len(wp.Tiers) == 0 {
			return nil, fmt.Errorf("pack %q: no tiers", name)
		}
		p := Pack{Name: name, Cost: wp.Cost, Tiers: make(map[string]Tier, len(wp.Tiers))}
		probSum := 0.0
		for tierName, items := range wp.Tiers {
			prob, ok := wp.TierProbs[tierName]
			if !ok {
				logger.Warn("Catalog", fmt.Sprintf("%s: tier %q has no probability, treating as 0", name, tierName))
			}
			if prob < 0 {
				return nil, fmt.Errorf("pack %q tier %q: negative probability", name, tierName)
			}
			probSum += prob
			p.Tiers[tierName] = Tier{Items: items, Probability: prob}
		}
		for tierName := range wp.TierProbs {
			if _, ok := wp.Tiers[tierName]; !ok {
				return nil, fmt.Errorf("pack %q: probability for unknown tier %q", name, tierName)
			}
		}
		// Published drop tables don't always sum to 1. Expected value is
		// computed against the raw probabilities, so just flag it.
		if math.Abs(probSum-1.0) > 1e-9 {
			logger.Warn("Catalog", fmt.Sprintf("%s: tier probabilities sum to %.3f", name, probSum))
		}
		cat.Packs[name] = p
	}
	return cat, nil
}

// Names returns all pack names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Packs))
	for name := range c.Packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slugs returns every distinct item slug referenced by any pack tier,
// sorted. This is the set of items pack valuation needs prices for.
func (c *Catalog) Slugs() []string {
	seen := make(map[string]bool)
	for _, p := range c.Packs {
		for _, tier := range p.Tiers {
			for _, slug := range tier.Items {
				seen[slug] = true
			}
		}
	}
	slugs := make([]string, 0, len(seen))
	for slug := range seen {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
