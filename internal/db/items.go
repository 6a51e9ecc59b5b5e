package db

import (
	"strings"
	"time"

	"plat-tracker/internal/wfm"
)

// itemSyncKey is the sync_meta row tracking the last item catalog sync.
const itemSyncKey = "items"

// UpsertItems replaces the stored item catalog with the given items inside
// one transaction and stamps the sync time.
func (d *DB) UpsertItems(items []wfm.Item) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO items (slug, item_id, item_name, item_type, thumb, max_rank)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(it.Slug, it.ID, it.Name, it.Class(), it.Thumb, it.MaxRank); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO sync_meta (name, updated_at) VALUES (?,?)",
		itemSyncKey, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ItemBySlug returns one stored catalog item.
func (d *DB) ItemBySlug(slug string) (wfm.Item, bool) {
	var it wfm.Item
	var class string
	err := d.sql.QueryRow(
		"SELECT slug, item_id, item_name, item_type, thumb, max_rank FROM items WHERE slug = ?",
		slug,
	).Scan(&it.Slug, &it.ID, &it.Name, &class, &it.Thumb, &it.MaxRank)
	if err != nil {
		return wfm.Item{}, false
	}
	it.Tags = tagsForClass(class)
	return it, true
}

// SearchItems returns items whose name or slug contains the query,
// case-insensitive, capped at limit.
func (d *DB) SearchItems(query string, limit int) []wfm.Item {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := d.sql.Query(`
		SELECT slug, item_id, item_name, item_type, thumb, max_rank FROM items
		WHERE lower(item_name) LIKE ? OR slug LIKE ?
		ORDER BY item_name LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var items []wfm.Item
	for rows.Next() {
		var it wfm.Item
		var class string
		if err := rows.Scan(&it.Slug, &it.ID, &it.Name, &class, &it.Thumb, &it.MaxRank); err != nil {
			continue
		}
		it.Tags = tagsForClass(class)
		items = append(items, it)
	}
	return items
}

// CountItems returns how many items the catalog holds.
func (d *DB) CountItems() int {
	var n int
	d.sql.QueryRow("SELECT COUNT(*) FROM items").Scan(&n)
	return n
}

// ItemsSyncedWithin reports whether the item catalog was synced inside the
// given window.
func (d *DB) ItemsSyncedWithin(window time.Duration) bool {
	var updatedAt string
	err := d.sql.QueryRow(
		"SELECT updated_at FROM sync_meta WHERE name = ?", itemSyncKey,
	).Scan(&updatedAt)
	if err != nil {
		return false
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return false
	}
	return time.Since(t) < window
}

// tagsForClass reverses wfm.Item.Class for items loaded from storage, where
// only the derived class survives.
func tagsForClass(class string) []string {
	switch class {
	case "arcane":
		return []string{"arcane_enhancement"}
	case "mod":
		return []string{"mod"}
	default:
		return nil
	}
}
