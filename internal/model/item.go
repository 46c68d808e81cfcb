package model

import (
	"time"

	"github.com/lib/pq"
)

// Item categories shared by wishlists, collections and host inventory.
var ItemCategories = []string{"coins", "pokemon", "sports_cards", "shoes"}

// Host inventory statuses.
const (
	InventoryAvailable = "available"
	InventorySold      = "sold"
	InventoryReserved  = "reserved"
)

// Per-owner row caps and per-item photo caps.
const (
	WishlistMaxItems    = 50
	CollectionMaxItems  = 100
	CollectionMaxPhotos = 3
	InventoryMaxPhotos  = 5
)

// WishlistItem is something a collector wants.
type WishlistItem struct {
	ID             string         `json:"id" db:"id"`
	AuthSubject    string         `json:"auth_subject" db:"auth_subject"`
	Category       string         `json:"category" db:"category"`
	Description    string         `json:"description" db:"description"`
	Details        JSONMap        `json:"details" db:"details"`
	ReactionCounts ReactionCounts `json:"reaction_counts" db:"reaction_counts"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// CollectionItem is something a collector owns and shows off.
type CollectionItem struct {
	ID             string         `json:"id" db:"id"`
	AuthSubject    string         `json:"auth_subject" db:"auth_subject"`
	Category       string         `json:"category" db:"category"`
	Description    string         `json:"description" db:"description"`
	Details        JSONMap        `json:"details" db:"details"`
	PhotoURLs      pq.StringArray `json:"photo_urls" db:"photo_urls"`
	ReactionCounts ReactionCounts `json:"reaction_counts" db:"reaction_counts"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// HostInventoryItem is showcase stock for a live-show host.
type HostInventoryItem struct {
	ID          string         `json:"id" db:"id"`
	HostSlug    string         `json:"host_slug" db:"host_slug"`
	AuthSubject string         `json:"auth_subject" db:"auth_subject"`
	Category    string         `json:"category" db:"category"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Details     JSONMap        `json:"details" db:"details"`
	PhotoURLs   pq.StringArray `json:"photo_urls" db:"photo_urls"`
	PriceRange  string         `json:"price_range" db:"price_range"`
	Quantity    int            `json:"quantity" db:"quantity"`
	Status      string         `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// ValidItemCategory reports whether c is one of the closed item categories.
func ValidItemCategory(c string) bool {
	for _, v := range ItemCategories {
		if c == v {
			return true
		}
	}
	return false
}
