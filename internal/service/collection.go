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

// CollectionService handles a collector's owned-item showcase, including
// photo uploads.
type CollectionService struct {
	colls    repository.CollectionRepository
	profiles repository.ProfileRepository
	photos   storage.PhotoStore
	feed     *FeedService
	bucket   string
	maxBytes int64
}

// NewCollectionService creates a collection service.
func NewCollectionService(
	colls repository.CollectionRepository,
	profiles repository.ProfileRepository,
	photos storage.PhotoStore,
	feed *FeedService,
	bucket string,
	maxBytes int64,
) *CollectionService {
	return &CollectionService{
		colls:    colls,
		profiles: profiles,
		photos:   photos,
		feed:     feed,
		bucket:   bucket,
		maxBytes: maxBytes,
	}
}

// Get returns the caller's own collection.
func (s *CollectionService) Get(ctx context.Context, subject string) ([]model.CollectionItem, error) {
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	return s.colls.ListByOwner(ctx, subject, model.CollectionMaxItems)
}

// CollectionAddRequest describes a new collection item.
type CollectionAddRequest struct {
	Category    string        `json:"category" validate:"required"`
	Description string        `json:"description" validate:"required,max=1000"`
	Details     model.JSONMap `json:"details"`
}

// Add inserts a collection item, enforcing the 100-item cap, and publishes
// a feed event in-request when the owner's profile is public.
func (s *CollectionService) Add(ctx context.Context, subject string, req CollectionAddRequest) (*model.CollectionItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}

	count, err := s.colls.CountByOwner(ctx, subject)
	if err != nil {
		return nil, err
	}
	if count >= model.CollectionMaxItems {
		return nil, apierror.BadRequest("Collection limit reached (100 items max)")
	}

	item, err := s.colls.Insert(ctx, &model.CollectionItem{
		AuthSubject:    subject,
		Category:       req.Category,
		Description:    req.Description,
		Details:        req.Details,
		PhotoURLs:      []string{},
		ReactionCounts: model.ReactionCounts{},
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ctx, subject, EventSource{
		EventType:   model.FeedEventCollection,
		SourceID:    item.ID,
		Category:    item.Category,
		Title:       item.Description,
		Description: item.Description,
		Details:     item.Details,
		PhotoURLs:   item.PhotoURLs,
	})
	return item, nil
}

var collectionUpdateFields = map[string]bool{
	"category":    true,
	"description": true,
	"details":     true,
}

// CollectionUpdateRequest updates an existing collection item.
type CollectionUpdateRequest struct {
	ItemID  string                 `json:"item_id" validate:"required"`
	Updates map[string]interface{} `json:"updates" validate:"required"`
}

// Update applies whitelisted fields to the caller's own item. Photos are
// managed through the dedicated upload/delete actions, never here.
func (s *CollectionService) Update(ctx context.Context, subject string, req CollectionUpdateRequest) (*model.CollectionItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if collectionUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if cat, ok := filtered["category"].(string); ok && !model.ValidItemCategory(cat) {
		return nil, apierror.BadRequest("Invalid category")
	}

	item, err := s.colls.UpdateFields(ctx, req.ItemID, subject, filtered)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	return item, nil
}

// CollectionRemoveRequest removes an item.
type CollectionRemoveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// Remove deletes the caller's own item. Photo blobs are removed best
// effort after the row is gone.
func (s *CollectionService) Remove(ctx context.Context, subject string, req CollectionRemoveRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	item, err := s.colls.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.AuthSubject != subject {
		return nil, apierror.NotFound("Item not found")
	}

	if err := s.colls.Delete(ctx, req.ItemID, subject); err != nil {
		return nil, err
	}
	for _, url := range item.PhotoURLs {
		if path := s.photos.PathFromURL(s.bucket, url); path != "" {
			if err := s.photos.Remove(ctx, s.bucket, path); err != nil {
				log.Printf("[CollectionService] Orphaned photo %s: %v", path, err)
			}
		}
	}
	return map[string]bool{"success": true}, nil
}

// PhotoUploadRequest carries a base64 photo for an item.
type PhotoUploadRequest struct {
	ItemID    string `json:"item_id" validate:"required"`
	ImageData string `json:"image_data" validate:"required"`
	Extension string `json:"extension" validate:"required"`
}

// UploadPhoto decodes, stores and attaches a photo to the caller's item.
// The 5MB cap applies to decoded bytes; items hold at most 3 photos.
func (s *CollectionService) UploadPhoto(ctx context.Context, subject string, req PhotoUploadRequest) (*PhotoUploadResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	item, err := s.colls.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.AuthSubject != subject {
		return nil, apierror.NotFound("Item not found")
	}
	if len(item.PhotoURLs) >= model.CollectionMaxPhotos {
		return nil, apierror.BadRequest("Photo limit reached (3 photos max)")
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
	if err := s.colls.SetPhotos(ctx, item.ID, urls); err != nil {
		// The row still references the old set; drop the orphaned blob.
		if rmErr := s.photos.Remove(ctx, s.bucket, path); rmErr != nil {
			log.Printf("[CollectionService] Orphaned photo %s: %v", path, rmErr)
		}
		return nil, err
	}
	return &PhotoUploadResult{URL: url}, nil
}

// PhotoDeleteRequest detaches one photo from an item.
type PhotoDeleteRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	PhotoURL string `json:"photo_url" validate:"required"`
}

// DeletePhoto removes the database reference first, then the blob best
// effort. A failed blob delete leaves an orphan, never a dangling URL.
func (s *CollectionService) DeletePhoto(ctx context.Context, subject string, req PhotoDeleteRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	item, err := s.colls.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.AuthSubject != subject {
		return nil, apierror.NotFound("Item not found")
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

	if err := s.colls.SetPhotos(ctx, item.ID, urls); err != nil {
		return nil, err
	}
	if path := s.photos.PathFromURL(s.bucket, req.PhotoURL); path != "" {
		if err := s.photos.Remove(ctx, s.bucket, path); err != nil {
			log.Printf("[CollectionService] Orphaned photo %s: %v", path, err)
		}
	}
	return map[string]bool{"success": true}, nil
}

// AdminList returns up to 500 collection items across all collectors.
func (s *CollectionService) AdminList(ctx context.Context, subject string, req AdminItemFilter) ([]model.CollectionItem, error) {
	if _, err := requireAdmin(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	if req.Category != "" && !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	return s.colls.AdminList(ctx, req.Category, req.Search, 500)
}

// PublicCollection is a public collection page with the owner's public info.
type PublicCollection struct {
	Profile model.ProfileSummary   `json:"profile"`
	Items   []model.CollectionItem `json:"items"`
}

// Public returns a collector's collection by username.
func (s *CollectionService) Public(ctx context.Context, req PublicViewRequest) (*PublicCollection, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	owner, err := s.profiles.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, apierror.NotFound("Collector not found")
	}
	if !owner.ProfilePublic {
		return nil, apierror.Forbidden("This profile is private")
	}

	items, err := s.colls.ListByOwner(ctx, owner.AuthSubject, model.CollectionMaxItems)
	if err != nil {
		return nil, err
	}
	return &PublicCollection{
		Profile: model.ProfileSummary{
			AuthSubject: owner.AuthSubject,
			Username:    owner.Username,
			DisplayName: owner.DisplayName,
			AvatarURL:   owner.AvatarURL,
			Role:        owner.Role,
		},
		Items: items,
	}, nil
}
