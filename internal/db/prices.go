package db

import (
	"time"

	"plat-tracker/internal/engine"
)

// GetPrice retrieves the cached price record for an item slug.
// Returns false when the slug has never been priced. Freshness is judged by
// the caller (engine.Resolver) against the record's timestamp.
func (d *DB) GetPrice(slug string) (engine.PriceRecord, bool) {
	var rec engine.PriceRecord
	var updatedAt string
	err := d.sql.QueryRow(`
		SELECT slug, max_rank, avg_rank0, avg_max, avg_flip, low_rank0, low_max, low_flip, updated_at
		FROM price_cache WHERE slug = ?`, slug,
	).Scan(&rec.Slug, &rec.MaxRank, &rec.AvgRank0, &rec.AvgMax, &rec.AvgFlip,
		&rec.LowRank0, &rec.LowMax, &rec.LowFlip, &updatedAt)
	if err != nil {
		return engine.PriceRecord{}, false
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return engine.PriceRecord{}, false
	}
	rec.UpdatedAt = t
	return rec, true
}

// SetPrice stores a price record, replacing any previous record for the slug.
func (d *DB) SetPrice(rec engine.PriceRecord) {
	d.sql.Exec(`
		INSERT OR REPLACE INTO price_cache
			(slug, max_rank, avg_rank0, avg_max, avg_flip, low_rank0, low_max, low_flip, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rec.Slug, rec.MaxRank, rec.AvgRank0, rec.AvgMax, rec.AvgFlip,
		rec.LowRank0, rec.LowMax, rec.LowFlip,
		rec.UpdatedAt.UTC().Format(time.RFC3339))
}

// AllPrices returns every cached price record, most recently updated first.
func (d *DB) AllPrices() []engine.PriceRecord {
	rows, err := d.sql.Query(`
		SELECT slug, max_rank, avg_rank0, avg_max, avg_flip, low_rank0, low_max, low_flip, updated_at
		FROM price_cache ORDER BY updated_at DESC`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var records []engine.PriceRecord
	for rows.Next() {
		var rec engine.PriceRecord
		var updatedAt string
		if err := rows.Scan(&rec.Slug, &rec.MaxRank, &rec.AvgRank0, &rec.AvgMax, &rec.AvgFlip,
			&rec.LowRank0, &rec.LowMax, &rec.LowFlip, &updatedAt); err != nil {
			continue
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			rec.UpdatedAt = t
		}
		records = append(records, rec)
	}
	return records
}

// CountPrices returns how many price records the cache holds.
func (d *DB) CountPrices() int {
	var n int
	d.sql.QueryRow("SELECT COUNT(*) FROM price_cache").Scan(&n)
	return n
}

// PrunePrices removes price records older than the cutoff so abandoned
// slugs don't accumulate forever.
func (d *DB) PrunePrices(olderThan time.Duration) int64 {
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339)
	res, err := d.sql.Exec("DELETE FROM price_cache WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}
