package model

import "time"

// Ledger categories (closed enum, distinct from the showcase item
// categories) and statuses.
var (
	LedgerCategories = []string{"coins", "bullion", "pokemon_cards", "pokemon_sealed", "sports_cards"}
	LedgerStatuses   = []string{"in_stock", "listed", "sold"}
)

// AdminInventoryItem is a privileged purchase/sale ledger entry. Access is
// gated per host by the static host→category table; admins see everything.
type AdminInventoryItem struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	Status        string    `json:"status" db:"status"`
	Quantity      int       `json:"quantity" db:"quantity"`
	QuantitySold  int       `json:"quantity_sold" db:"quantity_sold"`
	PurchasePrice float64   `json:"purchase_price" db:"purchase_price"`
	SalePrice     float64   `json:"sale_price" db:"sale_price"`
	Details       JSONMap   `json:"details" db:"details"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SaleRecord is one entry of the sales[] history appended inside the
// item's details payload by mark-sold.
type SaleRecord struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Note     string  `json:"note,omitempty"`
	SoldAt   string  `json:"sold_at"`
}

// ValidLedgerCategory reports whether c is a known ledger category.
func ValidLedgerCategory(c string) bool {
	for _, v := range LedgerCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ValidLedgerStatus reports whether s is a known ledger status.
func ValidLedgerStatus(s string) bool {
	for _, v := range LedgerStatuses {
		if s == v {
			return true
		}
	}
	return false
}
