package db

import (
	"strconv"

	"plat-tracker/internal/config"
)

// LoadConfig reads config from SQLite. Missing keys keep their defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if v, ok := m["platform"]; ok {
		cfg.Platform = v
	}
	if v, ok := m["language"]; ok {
		cfg.Language = v
	}
	if v, ok := m["price_mode"]; ok {
		cfg.PriceMode = v
	}
	if v, ok := m["price_ttl_minutes"]; ok {
		cfg.PriceTTLMinutes, _ = strconv.Atoi(v)
	}
	if v, ok := m["draws_per_open"]; ok {
		cfg.DrawsPerOpen, _ = strconv.Atoi(v)
	}
	if v, ok := m["refresh_workers"]; ok {
		cfg.RefreshWorkers, _ = strconv.Atoi(v)
	}
	if v, ok := m["refresh_cron"]; ok {
		cfg.RefreshCron = v
	}
	if v, ok := m["catalog_path"]; ok {
		cfg.CatalogPath = v
	}
	return cfg
}

// SaveConfig persists config as key/value rows.
func (d *DB) SaveConfig(cfg *config.Config) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	set := func(key, value string) {
		tx.Exec("INSERT OR REPLACE INTO config (key, value) VALUES (?,?)", key, value)
	}
	set("platform", cfg.Platform)
	set("language", cfg.Language)
	set("price_mode", cfg.PriceMode)
	set("price_ttl_minutes", strconv.Itoa(cfg.PriceTTLMinutes))
	set("draws_per_open", strconv.Itoa(cfg.DrawsPerOpen))
	set("refresh_workers", strconv.Itoa(cfg.RefreshWorkers))
	set("refresh_cron", cfg.RefreshCron)
	set("catalog_path", cfg.CatalogPath)

	return tx.Commit()
}
