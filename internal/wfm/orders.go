package wfm

import (
	"fmt"
	"strings"
)

// Seller presence states reported by warframe.market. "ingame" sellers are
// actively playing and can trade immediately.
const (
	StatusOffline = "offline"
	StatusOnline  = "online"
	StatusInGame  = "ingame"
)

// Order is one player's standing buy or sell listing for an item.
type Order struct {
	ID       string  `json:"id"`
	Side     string  `json:"type"` // "sell" or "buy"
	Platinum float64 `json:"platinum"`
	Quantity int     `json:"quantity"`
	Rank     *int    `json:"rank,omitempty"` // only set for ranked items (mods, arcanes)
	Visible  bool    `json:"visible"`
	User     User    `json:"user"`
}

// User is the player behind an order.
type User struct {
	Name       string `json:"ingameName"`
	Status     string `json:"status"`
	Reputation int    `json:"reputation"`
}

// IsSell reports whether the order is a sell listing.
func (o Order) IsSell() bool { return o.Side == "sell" }

// Item is one tradable item from the warframe.market catalog.
type Item struct {
	ID      string
	Slug    string
	Name    string
	Thumb   string
	Tags    []string
	MaxRank int // -1 when the item has no ranks
}

// Class derives the pricing class from the item's tags: arcanes are
// outlier-prone, mods are ranked, everything else is a plain item.
func (i Item) Class() string {
	for _, t := range i.Tags {
		if t == "arcane_enhancement" || t == "arcane" {
			return "arcane"
		}
	}
	for _, t := range i.Tags {
		if t == "mod" {
			return "mod"
		}
	}
	return "item"
}

// wireOrder mirrors an order payload from the v2 API. The API migrated
// field names ("order_type" → "type", "mod_rank" → "rank"); both spellings
// still appear in the wild, so we accept either.
type wireOrder struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	LegacyType string  `json:"order_type"`
	Platinum   float64 `json:"platinum"`
	Quantity   int     `json:"quantity"`
	Rank       *int    `json:"rank"`
	LegacyRank *int    `json:"mod_rank"`
	Visible    bool    `json:"visible"`
	User       User    `json:"user"`
}

func (w wireOrder) normalize() Order {
	o := Order{
		ID:       w.ID,
		Side:     w.Type,
		Platinum: w.Platinum,
		Quantity: w.Quantity,
		Rank:     w.Rank,
		Visible:  w.Visible,
		User:     w.User,
	}
	if o.Side == "" {
		o.Side = w.LegacyType
	}
	if o.Rank == nil {
		o.Rank = w.LegacyRank
	}
	return o
}

// wireItem mirrors an item payload from /v2/items.
type wireItem struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Thumb   string   `json:"thumb"`
	Tags    []string `json:"tags"`
	MaxRank *int     `json:"maxRank"`
	En      struct {
		ItemName string `json:"item_name"`
	} `json:"en"`
}

func (w wireItem) normalize() Item {
	name := w.En.ItemName
	if name == "" {
		name = titleSlug(w.Slug)
	}
	maxRank := -1
	if w.MaxRank != nil {
		maxRank = *w.MaxRank
	}
	return Item{
		ID:      w.ID,
		Slug:    w.Slug,
		Name:    name,
		Thumb:   w.Thumb,
		Tags:    w.Tags,
		MaxRank: maxRank,
	}
}

// titleSlug turns "arcane_grace" into "Arcane Grace" for items the API
// ships without a localized name.
func titleSlug(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FetchItems fetches the full tradable item catalog.
func (c *Client) FetchItems() ([]Item, error) {
	var envelope struct {
		Data []wireItem `json:"data"`
	}
	if err := c.GetJSON(c.BaseURL+"/items", &envelope); err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	items := make([]Item, 0, len(envelope.Data))
	for _, w := range envelope.Data {
		if w.Slug == "" {
			continue
		}
		items = append(items, w.normalize())
	}
	return items, nil
}

// FetchOrders fetches the current order book for one item slug.
// An unknown item (404) yields an empty order list, not an error.
func (c *Client) FetchOrders(slug string) ([]Order, error) {
	var envelope struct {
		Data []wireOrder `json:"data"`
	}
	url := fmt.Sprintf("%s/orders/item/%s", c.BaseURL, slug)
	if err := c.GetJSON(url, &envelope); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch orders %s: %w", slug, err)
	}
	orders := make([]Order, 0, len(envelope.Data))
	for _, w := range envelope.Data {
		orders = append(orders, w.normalize())
	}
	return orders, nil
}
