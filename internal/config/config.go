package config

// Config holds application settings (in-memory representation).
// Persistence is handled by the internal/db package.
type Config struct {
	Platform string `json:"platform"` // pc | ps4 | xbox | switch
	Language string `json:"language"`

	// Pricing.
	PriceMode       string `json:"price_mode"` // avg | cheapest
	PriceTTLMinutes int    `json:"price_ttl_minutes"`
	DrawsPerOpen    int    `json:"draws_per_open"` // reward rolls per pack opening

	// Background refresh.
	RefreshWorkers int    `json:"refresh_workers"`
	RefreshCron    string `json:"refresh_cron"` // empty disables the schedule

	// Pack catalog override (empty = embedded default).
	CatalogPath string `json:"catalog_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Platform:        "pc",
		Language:        "en",
		PriceMode:       "avg",
		PriceTTLMinutes: 60,
		DrawsPerOpen:    3,
		RefreshWorkers:  4,
		RefreshCron:     "0 */30 * * * *", // cron spec with seconds field
	}
}
