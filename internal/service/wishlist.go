package service

import (
	"context"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

// WishlistService handles a collector's want list.
type WishlistService struct {
	wishlists repository.WishlistRepository
	profiles  repository.ProfileRepository
	feed      *FeedService
}

// NewWishlistService creates a wishlist service.
func NewWishlistService(wishlists repository.WishlistRepository, profiles repository.ProfileRepository, feed *FeedService) *WishlistService {
	return &WishlistService{wishlists: wishlists, profiles: profiles, feed: feed}
}

// Get returns the caller's own wishlist.
func (s *WishlistService) Get(ctx context.Context, subject string) ([]model.WishlistItem, error) {
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	return s.wishlists.ListByOwner(ctx, subject, model.WishlistMaxItems)
}

// WishlistAddRequest describes a new wishlist item.
type WishlistAddRequest struct {
	Category    string        `json:"category" validate:"required"`
	Description string        `json:"description" validate:"required,max=1000"`
	Details     model.JSONMap `json:"details"`
}

// Add inserts a wishlist item, enforcing the 50-item cap, and publishes a
// feed event in-request when the owner's profile is public.
func (s *WishlistService) Add(ctx context.Context, subject string, req WishlistAddRequest) (*model.WishlistItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}

	count, err := s.wishlists.CountByOwner(ctx, subject)
	if err != nil {
		return nil, err
	}
	if count >= model.WishlistMaxItems {
		return nil, apierror.BadRequest("Wishlist limit reached (50 items max)")
	}

	item, err := s.wishlists.Insert(ctx, &model.WishlistItem{
		AuthSubject:    subject,
		Category:       req.Category,
		Description:    req.Description,
		Details:        req.Details,
		ReactionCounts: model.ReactionCounts{},
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ctx, subject, EventSource{
		EventType:   model.FeedEventWishlist,
		SourceID:    item.ID,
		Category:    item.Category,
		Title:       item.Description,
		Description: item.Description,
		Details:     item.Details,
	})
	return item, nil
}

var wishlistUpdateFields = map[string]bool{
	"category":    true,
	"description": true,
	"details":     true,
}

// WishlistUpdateRequest updates an existing wishlist item.
type WishlistUpdateRequest struct {
	ItemID  string                 `json:"item_id" validate:"required"`
	Updates map[string]interface{} `json:"updates" validate:"required"`
}

// Update applies whitelisted fields to the caller's own item.
func (s *WishlistService) Update(ctx context.Context, subject string, req WishlistUpdateRequest) (*model.WishlistItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if wishlistUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if cat, ok := filtered["category"].(string); ok && !model.ValidItemCategory(cat) {
		return nil, apierror.BadRequest("Invalid category")
	}

	item, err := s.wishlists.UpdateFields(ctx, req.ItemID, subject, filtered)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apierror.NotFound("Item not found")
	}
	return item, nil
}

// WishlistRemoveRequest removes an item.
type WishlistRemoveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// Remove deletes the caller's own item. Any feed event already published
// for it stays; the feed is a log, not a mirror.
func (s *WishlistService) Remove(ctx context.Context, subject string, req WishlistRemoveRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.wishlists.Delete(ctx, req.ItemID, subject); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// AdminItemFilter filters the admin-side item listings.
type AdminItemFilter struct {
	Category string `json:"category"`
	Search   string `json:"search"`
}

// AdminList returns up to 500 wishlist items across all collectors.
func (s *WishlistService) AdminList(ctx context.Context, subject string, req AdminItemFilter) ([]model.WishlistItem, error) {
	if _, err := requireAdmin(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	if req.Category != "" && !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	return s.wishlists.AdminList(ctx, req.Category, req.Search, 500)
}

// PublicViewRequest targets another collector's public page by username.
type PublicViewRequest struct {
	Username string `json:"username" validate:"required"`
}

// PublicWishlist is a public wishlist page with the owner's public info.
type PublicWishlist struct {
	Profile model.ProfileSummary `json:"profile"`
	Items   []model.WishlistItem `json:"items"`
}

// Public returns a collector's wishlist by username.
func (s *WishlistService) Public(ctx context.Context, req PublicViewRequest) (*PublicWishlist, error) {
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

	items, err := s.wishlists.ListByOwner(ctx, owner.AuthSubject, model.WishlistMaxItems)
	if err != nil {
		return nil, err
	}
	return &PublicWishlist{
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
