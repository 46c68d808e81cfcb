package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/internal/storage"
	"safenetwork-api/pkg/apierror"
)

// InventoryService handles host showcase inventory: the items a live-show
// host displays on their public page.
type InventoryService struct {
	inventory repository.HostInventoryRepository
	hosts     repository.HostRepository
	profiles  repository.ProfileRepository
	photos    storage.PhotoStore
	feed      *FeedService
	bucket    string
	maxBytes  int64
}

// NewInventoryService creates an inventory service.
func NewInventoryService(
	inventory repository.HostInventoryRepository,
	hosts repository.HostRepository,
	profiles repository.ProfileRepository,
	photos storage.PhotoStore,
	feed *FeedService,
	bucket string,
	maxBytes int64,
) *InventoryService {
	return &InventoryService{
		inventory: inventory,
		hosts:     hosts,
		profiles:  profiles,
		photos:    photos,
		feed:      feed,
		bucket:    bucket,
		maxBytes:  maxBytes,
	}
}

// Get returns showcase inventory for the caller. Hosts see only their
// own slug, admins see everything.
func (s *InventoryService) Get(ctx context.Context, subject string) ([]model.HostInventoryItem, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RoleAdmin {
		return s.inventory.ListAll(ctx)
	}
	return s.inventory.ListByHost(ctx, caller.HostSlug)
}

// InventoryAddRequest describes a new showcase item.
type InventoryAddRequest struct {
	HostSlug    string        `json:"host_slug"`
	Category    string        `json:"category" validate:"required"`
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"max=1000"`
	Details     model.JSONMap `json:"details"`
	PriceRange  string        `json:"price_range" validate:"max=100"`
	Quantity    int           `json:"quantity" validate:"omitempty,min=1"`
}

// Add inserts a showcase item under the caller's host slug (admins can
// post for any host) and publishes a feed event in-request.
func (s *InventoryService) Add(ctx context.Context, subject string, req InventoryAddRequest) (*model.HostInventoryItem, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}

	slug := req.HostSlug
	if !caller.IsAdmin() {
		slug = caller.HostSlug
	}
	if slug == "" {
		return nil, apierror.BadRequest("host_slug is required")
	}
	host, err := s.hosts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if host == nil {
		return nil, apierror.NotFound("Host not found")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item, err := s.inventory.Insert(ctx, &model.HostInventoryItem{
		HostSlug:    slug,
		AuthSubject: subject,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Details:     req.Details,
		PhotoURLs:   []string{},
		PriceRange:  req.PriceRange,
		Quantity:    quantity,
		Status:      model.InventoryAvailable,
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ctx, subject, EventSource{
		EventType:   model.FeedEventInventory,
		SourceID:    item.ID,
		Category:    item.Category,
		Title:       item.Title,
		Description: item.Description,
		Details:     item.Details,
		HostSlug:    slug,
		HostName:    host.Name,
	})
	return item, nil
}

var inventoryUpdateFields = map[string]bool{
	"title":       true,
	"description": true,
	"details":     true,
	"category":    true,
	"price_range": true,
	"quantity":    true,
	"status":      true,
}

// InventoryUpdateRequest updates a showcase item.
type InventoryUpdateRequest struct {
	ItemID  string                 `json:"item_id" validate:"required"`
	Updates map[string]interface{} `json:"updates" validate:"required"`
}

// Update applies whitelisted fields. Hosts can only touch their own
// showcase; admins can touch any.
func (s *InventoryService) Update(ctx context.Context, subject string, req InventoryUpdateRequest) (*model.HostInventoryItem, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.inventory.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	if !caller.IsAdmin() && item.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own inventory")
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if inventoryUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if cat, ok := filtered["category"].(string); ok && !model.ValidItemCategory(cat) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if st, ok := filtered["status"].(string); ok {
		if st != model.InventoryAvailable && st != model.InventorySold && st != model.InventoryReserved {
			return nil, apierror.BadRequest("Invalid status")
		}
	}

	return s.inventory.UpdateFields(ctx, req.ItemID, filtered)
}

// InventoryRemoveRequest removes a showcase item.
type InventoryRemoveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// Remove deletes a showcase item with the same ownership rules as Update,
// then drops its photo blobs best effort.
func (s *InventoryService) Remove(ctx context.Context, subject string, req InventoryRemoveRequest) (map[string]bool, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.inventory.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	if !caller.IsAdmin() && item.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own inventory")
	}

	if err := s.inventory.Delete(ctx, req.ItemID); err != nil {
		return nil, err
	}
	for _, url := range item.PhotoURLs {
		if path := s.photos.PathFromURL(s.bucket, url); path != "" {
			if err := s.photos.Remove(ctx, s.bucket, path); err != nil {
				log.Printf("[InventoryService] Orphaned photo %s: %v", path, err)
			}
		}
	}
	return map[string]bool{"success": true}, nil
}

// UploadPhoto decodes, stores and attaches a photo. Showcase items hold
// at most 5 photos.
func (s *InventoryService) UploadPhoto(ctx context.Context, subject string, req PhotoUploadRequest) (*PhotoUploadResult, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.inventory.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	if !caller.IsAdmin() && item.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own inventory")
	}
	if len(item.PhotoURLs) >= model.InventoryMaxPhotos {
		return nil, apierror.BadRequest("Photo limit reached (5 photos max)")
	}

	data, contentType, err := decodePhoto(req.ImageData, req.Extension, s.maxBytes)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(req.Extension, "."))
	path := fmt.Sprintf("%s/%s/%d.%s", subject, item.ID, time.Now().UnixMilli(), ext)
	url, err := s.photos.Upload(ctx, s.bucket, path, data, contentType)
	if err != nil {
		return nil, apierror.Upstream("Photo upload failed")
	}

	urls := append(append([]string{}, item.PhotoURLs...), url)
	if err := s.inventory.SetPhotos(ctx, item.ID, urls); err != nil {
		if rmErr := s.photos.Remove(ctx, s.bucket, path); rmErr != nil {
			log.Printf("[InventoryService] Orphaned photo %s: %v", path, rmErr)
		}
		return nil, err
	}
	return &PhotoUploadResult{URL: url}, nil
}

// DeletePhoto removes the database reference first, then the blob best
// effort.
func (s *InventoryService) DeletePhoto(ctx context.Context, subject string, req PhotoDeleteRequest) (map[string]bool, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item, err := s.inventory.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	if !caller.IsAdmin() && item.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own inventory")
	}

	urls := make([]string, 0, len(item.PhotoURLs))
	found := false
	for _, u := range item.PhotoURLs {
		if u == req.PhotoURL {
			found = true
			continue
		}
		urls = append(urls, u)
	}
	if !found {
		return nil, apierror.NotFound("Photo not found")
	}

	if err := s.inventory.SetPhotos(ctx, item.ID, urls); err != nil {
		return nil, err
	}
	if path := s.photos.PathFromURL(s.bucket, req.PhotoURL); path != "" {
		if err := s.photos.Remove(ctx, s.bucket, path); err != nil {
			log.Printf("[InventoryService] Orphaned photo %s: %v", path, err)
		}
	}
	return map[string]bool{"success": true}, nil
}
