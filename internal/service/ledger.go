package service

import (
	"context"
	"time"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

// LedgerService handles the privileged purchase/sale inventory ledger.
// Admins see every category; hosts see only the categories granted to
// their slug by the static access table. A host missing from the table
// gets nothing: the gate fails closed.
type LedgerService struct {
	ledger     repository.LedgerRepository
	profiles   repository.ProfileRepository
	categories map[string][]string
}

// NewLedgerService creates a ledger service with the host→category table.
func NewLedgerService(ledger repository.LedgerRepository, profiles repository.ProfileRepository, categories map[string][]string) *LedgerService {
	return &LedgerService{ledger: ledger, profiles: profiles, categories: categories}
}

// allowedCategories resolves the caller's ledger visibility. nil means
// every category (admin); an empty slice means none.
func (s *LedgerService) allowedCategories(p *model.Profile) []string {
	if p.IsAdmin() {
		return nil
	}
	if p.IsHost() {
		return s.categories[p.HostSlug]
	}
	return []string{}
}

func (s *LedgerService) authorize(ctx context.Context, subject string) (*model.Profile, []string, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, nil, err
	}
	allowed := s.allowedCategories(caller)
	if allowed != nil && len(allowed) == 0 {
		return nil, nil, apierror.Forbidden("No inventory access")
	}
	return caller, allowed, nil
}

func categoryAllowed(allowed []string, category string) bool {
	if allowed == nil {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// LedgerListRequest optionally narrows the listing to one category.
type LedgerListRequest struct {
	Category string `json:"category"`
}

// List returns up to 200 ledger items within the caller's visibility.
func (s *LedgerService) List(ctx context.Context, subject string, req LedgerListRequest) ([]model.AdminInventoryItem, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}

	filter := allowed
	if req.Category != "" {
		if !model.ValidLedgerCategory(req.Category) {
			return nil, apierror.BadRequest("Invalid category")
		}
		if !categoryAllowed(allowed, req.Category) {
			return nil, apierror.Forbidden("No access to this category")
		}
		filter = []string{req.Category}
	}
	return s.ledger.List(ctx, filter, 200)
}

// LedgerAddRequest describes a new ledger entry.
type LedgerAddRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Category      string        `json:"category" validate:"required"`
	Status        string        `json:"status"`
	Quantity      int           `json:"quantity" validate:"omitempty,min=1"`
	PurchasePrice float64       `json:"purchase_price" validate:"omitempty,min=0"`
	SalePrice     float64       `json:"sale_price" validate:"omitempty,min=0"`
	Details       model.JSONMap `json:"details"`
}

// Add inserts a ledger entry in a category the caller can access.
func (s *LedgerService) Add(ctx context.Context, subject string, req LedgerAddRequest) (*model.AdminInventoryItem, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	item, err := s.buildItem(subject, allowed, req)
	if err != nil {
		return nil, err
	}
	return s.ledger.Insert(ctx, item)
}

// LedgerBulkAddRequest inserts several entries at once.
type LedgerBulkAddRequest struct {
	Items []LedgerAddRequest `json:"items" validate:"required,min=1,max=100"`
}

// BulkAdd inserts all entries in one transaction. One bad entry rejects
// the whole batch; there are no partial bulk writes.
func (s *LedgerService) BulkAdd(ctx context.Context, subject string, req LedgerBulkAddRequest) ([]model.AdminInventoryItem, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	items := make([]*model.AdminInventoryItem, 0, len(req.Items))
	for _, entry := range req.Items {
		if err := validateStruct(entry); err != nil {
			return nil, err
		}
		item, err := s.buildItem(subject, allowed, entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return s.ledger.InsertBulk(ctx, items)
}

func (s *LedgerService) buildItem(subject string, allowed []string, req LedgerAddRequest) (*model.AdminInventoryItem, error) {
	if !model.ValidLedgerCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if !categoryAllowed(allowed, req.Category) {
		return nil, apierror.Forbidden("No access to this category")
	}
	status := req.Status
	if status == "" {
		status = "in_stock"
	}
	if !model.ValidLedgerStatus(status) {
		return nil, apierror.BadRequest("Invalid status")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	details := req.Details
	if details == nil {
		details = model.JSONMap{}
	}
	return &model.AdminInventoryItem{
		Name:          req.Name,
		Category:      req.Category,
		Status:        status,
		Quantity:      quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Details:       details,
		CreatedBy:     subject,
	}, nil
}

var ledgerUpdateFields = map[string]bool{
	"name":           true,
	"category":       true,
	"status":         true,
	"quantity":       true,
	"purchase_price": true,
	"sale_price":     true,
	"details":        true,
}

// LedgerUpdateRequest updates an existing ledger entry.
type LedgerUpdateRequest struct {
	ItemID  string                 `json:"item_id" validate:"required"`
	Updates map[string]interface{} `json:"updates" validate:"required"`
}

// Update applies whitelisted fields within the caller's visibility. Moving
// an entry into a category the caller cannot access is rejected.
func (s *LedgerService) Update(ctx context.Context, subject string, req LedgerUpdateRequest) (*model.AdminInventoryItem, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.fetchVisible(ctx, req.ItemID, allowed)
	if err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if ledgerUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if cat, ok := filtered["category"].(string); ok {
		if !model.ValidLedgerCategory(cat) {
			return nil, apierror.BadRequest("Invalid category")
		}
		if !categoryAllowed(allowed, cat) {
			return nil, apierror.Forbidden("No access to this category")
		}
	}
	if st, ok := filtered["status"].(string); ok && !model.ValidLedgerStatus(st) {
		return nil, apierror.BadRequest("Invalid status")
	}

	return s.ledger.UpdateFields(ctx, item.ID, filtered)
}

// LedgerMarkSoldRequest records a full or partial sale.
type LedgerMarkSoldRequest struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Price    float64 `json:"price" validate:"omitempty,min=0"`
	Note     string  `json:"note" validate:"max=500"`
}

// MarkSold consumes quantity from an entry and appends a sale record to
// its details history. The entry flips to sold only when fully consumed;
// selling more than remains is rejected.
func (s *LedgerService) MarkSold(ctx context.Context, subject string, req LedgerMarkSoldRequest) (*model.AdminInventoryItem, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.fetchVisible(ctx, req.ItemID, allowed)
	if err != nil {
		return nil, err
	}

	remaining := item.Quantity - item.QuantitySold
	if req.Quantity > remaining {
		return nil, apierror.BadRequest("Cannot sell more than remaining quantity")
	}

	price := req.Price
	if price == 0 {
		price = item.SalePrice
	}
	sale := model.SaleRecord{
		Quantity: req.Quantity,
		Price:    price,
		Note:     req.Note,
		SoldAt:   time.Now().UTC().Format(time.RFC3339),
	}

	details := item.Details
	if details == nil {
		details = model.JSONMap{}
	}
	var sales []interface{}
	if existing, ok := details["sales"].([]interface{}); ok {
		sales = existing
	}
	details["sales"] = append(sales, sale)

	newSold := item.QuantitySold + req.Quantity
	status := item.Status
	if newSold >= item.Quantity {
		status = "sold"
	}
	return s.ledger.RecordSale(ctx, item.ID, newSold, status, details)
}

// LedgerRemoveRequest deletes a ledger entry.
type LedgerRemoveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// Remove deletes an entry within the caller's visibility.
func (s *LedgerService) Remove(ctx context.Context, subject string, req LedgerRemoveRequest) (map[string]bool, error) {
	_, allowed, err := s.authorize(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.fetchVisible(ctx, req.ItemID, allowed)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// fetchVisible loads an entry and hides it when outside the caller's
// categories; out-of-scope entries look like missing ones.
func (s *LedgerService) fetchVisible(ctx context.Context, id string, allowed []string) (*model.AdminInventoryItem, error) {
	item, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || !categoryAllowed(allowed, item.Category) {
		return nil, apierror.NotFound("Item not found")
	}
	return item, nil
}
