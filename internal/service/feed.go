package service

import (
	"context"
	"log"
	"time"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

// FeedService owns the denormalized social feed: event synthesis from item
// creations, paged reads, reactions, comments and item reactions.
type FeedService struct {
	feed      repository.FeedRepository
	itemReact repository.ItemReactionRepository
	profiles  repository.ProfileRepository
	wishlists repository.WishlistRepository
	colls     repository.CollectionRepository
	follows   repository.FollowRepository
}

// NewFeedService creates a feed service.
func NewFeedService(
	feed repository.FeedRepository,
	itemReact repository.ItemReactionRepository,
	profiles repository.ProfileRepository,
	wishlists repository.WishlistRepository,
	colls repository.CollectionRepository,
	follows repository.FollowRepository,
) *FeedService {
	return &FeedService{
		feed:      feed,
		itemReact: itemReact,
		profiles:  profiles,
		wishlists: wishlists,
		colls:     colls,
		follows:   follows,
	}
}

// EventSource describes the item a feed event is synthesized from.
type EventSource struct {
	EventType   string
	SourceID    string
	Category    string
	Title       string
	Description string
	Details     model.JSONMap
	PhotoURLs   []string
	HostSlug    string
	HostName    string
}

// Publish synthesizes a feed event for an item creation, in-request.
// Feed failures are logged and swallowed so item creation never fails
// because the feed write did. Events are skipped entirely when the
// author's profile is private. The author snapshot is taken here and
// never re-synced.
func (s *FeedService) Publish(ctx context.Context, subject string, src EventSource) {
	author, err := s.profiles.GetBySubject(ctx, subject)
	if err != nil {
		log.Printf("[FeedService] Skipping %s event for %s: profile lookup failed: %v", src.EventType, subject, err)
		return
	}
	if author == nil || !author.ProfilePublic {
		return
	}

	_, err = s.feed.InsertEvent(ctx, &model.FeedEvent{
		EventType:         src.EventType,
		SourceID:          src.SourceID,
		AuthSubject:       subject,
		Category:          src.Category,
		Title:             truncate(src.Title, model.FeedTitleMax),
		Description:       truncate(src.Description, model.FeedDescriptionMax),
		Details:           src.Details,
		PhotoURLs:         src.PhotoURLs,
		HostSlug:          src.HostSlug,
		HostName:          src.HostName,
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
		AuthorAvatarURL:   author.AvatarURL,
		AuthorRole:        author.Role,
		ReactionCounts:    model.ReactionCounts{},
	})
	if err != nil {
		log.Printf("[FeedService] Failed to publish %s event for %s: %v", src.EventType, subject, err)
	}
}

// GetRequest pages and filters the feed.
type GetRequest struct {
	Cursor        string `json:"cursor"`
	Category      string `json:"category"`
	EventType     string `json:"event_type"`
	FollowingOnly bool   `json:"following_only"`
}

// FeedPage is one page of annotated events plus the cursor for the next.
// FollowingIDs lists the page's authors the caller already follows so the
// client can render follow buttons without extra calls.
type FeedPage struct {
	Events       []model.AnnotatedFeedEvent `json:"events"`
	NextCursor   *string                    `json:"next_cursor"`
	FollowingIDs []string                   `json:"following_ids"`
}

// Get returns a page of 20 events, newest first. The "following" scope
// narrows to authors the caller follows and requires authentication.
// Authenticated callers get their own reaction annotated on each event.
func (s *FeedService) Get(ctx context.Context, subject string, req GetRequest) (*FeedPage, error) {
	filter := repository.FeedFilter{
		Category:  req.Category,
		EventType: req.EventType,
		Limit:     model.FeedPageSize,
	}
	if req.Category != "" && !model.ValidItemCategory(req.Category) {
		return nil, apierror.BadRequest("Invalid category")
	}
	if req.EventType != "" && req.EventType != model.FeedEventWishlist &&
		req.EventType != model.FeedEventCollection && req.EventType != model.FeedEventInventory {
		return nil, apierror.BadRequest("Invalid event type")
	}
	if req.Cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, req.Cursor)
		if err != nil {
			return nil, apierror.BadRequest("Invalid cursor")
		}
		filter.Cursor = &t
	}
	var following []string
	if req.FollowingOnly {
		if subject == "" {
			return nil, apierror.Unauthorized("")
		}
		var err error
		following, err = s.follows.ListFollowing(ctx, subject, 0)
		if err != nil {
			return nil, err
		}
		if len(following) == 0 {
			return &FeedPage{Events: []model.AnnotatedFeedEvent{}, FollowingIDs: []string{}}, nil
		}
		filter.AuthorIn = following
	}

	events, err := s.feed.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{Events: make([]model.AnnotatedFeedEvent, 0, len(events)), FollowingIDs: []string{}}
	var mine map[string]string
	if subject != "" && len(events) > 0 {
		ids := make([]string, len(events))
		for i, ev := range events {
			ids[i] = ev.ID
		}
		mine, err = s.feed.GetUserReactions(ctx, ids, subject)
		if err != nil {
			return nil, err
		}

		if len(following) > 0 {
			page.FollowingIDs = following
		} else {
			seen := map[string]bool{}
			authors := []string{}
			for _, ev := range events {
				if ev.AuthSubject != "" && !seen[ev.AuthSubject] {
					seen[ev.AuthSubject] = true
					authors = append(authors, ev.AuthSubject)
				}
			}
			followed, err := s.follows.FilterFollowing(ctx, subject, authors)
			if err != nil {
				return nil, err
			}
			page.FollowingIDs = followed
		}
	}
	for _, ev := range events {
		annotated := model.AnnotatedFeedEvent{FeedEvent: ev}
		if emoji, ok := mine[ev.ID]; ok {
			e := emoji
			annotated.UserReaction = &e
		}
		page.Events = append(page.Events, annotated)
	}
	if len(events) == model.FeedPageSize {
		cursor := events[len(events)-1].CreatedAt.Format(time.RFC3339Nano)
		page.NextCursor = &cursor
	}
	return page, nil
}

// DetailRequest identifies one feed event.
type DetailRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// EventDetail is one event with its comment thread.
type EventDetail struct {
	Event    model.AnnotatedFeedEvent `json:"event"`
	Comments []model.FeedComment      `json:"comments"`
}

// Detail returns one event with up to 100 comments, oldest first.
func (s *FeedService) Detail(ctx context.Context, subject string, req DetailRequest) (*EventDetail, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	event, err := s.feed.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apierror.NotFound("Event not found")
	}

	comments, err := s.feed.ListComments(ctx, event.ID, model.FeedMaxComments)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{
		Event:    model.AnnotatedFeedEvent{FeedEvent: *event},
		Comments: comments,
	}
	if subject != "" {
		reaction, err := s.feed.GetUserReaction(ctx, event.ID, subject)
		if err != nil {
			return nil, err
		}
		if reaction != nil {
			detail.Event.UserReaction = &reaction.Emoji
		}
	}
	return detail, nil
}

// ReactRequest toggles the caller's reaction on a feed event.
type ReactRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Emoji   string `json:"emoji" validate:"required"`
}

// ReactResult reports what the toggle did. UserReaction is nil after a
// removal and the active emoji otherwise.
type ReactResult struct {
	Status         string               `json:"status"`
	ReactionCounts model.ReactionCounts `json:"reaction_counts"`
	UserReaction   *string              `json:"user_reaction"`
}

func reactResult(status, emoji string, counts model.ReactionCounts) *ReactResult {
	res := &ReactResult{Status: status, ReactionCounts: counts}
	if status != "removed" {
		e := emoji
		res.UserReaction = &e
	}
	return res
}

// React applies the tri-state toggle: no reaction inserts, the same emoji
// removes, a different emoji switches. A user holds at most one reaction
// per event.
func (s *FeedService) React(ctx context.Context, subject string, req ReactRequest) (*ReactResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidFeedEmoji(req.Emoji) {
		return nil, apierror.BadRequest("Invalid emoji")
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	event, err := s.feed.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apierror.NotFound("Event not found")
	}

	existing, err := s.feed.GetUserReaction(ctx, event.ID, subject)
	if err != nil {
		return nil, err
	}

	var status string
	switch {
	case existing == nil:
		err = s.feed.InsertReaction(ctx, &model.FeedReaction{
			FeedEventID: event.ID,
			AuthSubject: subject,
			Emoji:       req.Emoji,
		})
		if err != nil {
			return nil, err
		}
		if err := s.feed.BumpReactionCount(ctx, event.ID, req.Emoji, 1); err != nil {
			return nil, err
		}
		status = "added"

	case existing.Emoji == req.Emoji:
		if err := s.feed.DeleteReaction(ctx, existing.ID); err != nil {
			return nil, err
		}
		if err := s.feed.BumpReactionCount(ctx, event.ID, req.Emoji, -1); err != nil {
			return nil, err
		}
		status = "removed"

	default:
		if err := s.feed.UpdateReactionEmoji(ctx, existing.ID, req.Emoji); err != nil {
			return nil, err
		}
		if err := s.feed.BumpReactionCount(ctx, event.ID, existing.Emoji, -1); err != nil {
			return nil, err
		}
		if err := s.feed.BumpReactionCount(ctx, event.ID, req.Emoji, 1); err != nil {
			return nil, err
		}
		status = "switched"
	}

	refreshed, err := s.feed.GetEvent(ctx, event.ID)
	if err != nil || refreshed == nil {
		return reactResult(status, req.Emoji, nil), nil
	}
	return reactResult(status, req.Emoji, refreshed.ReactionCounts), nil
}

// CommentAddRequest adds a comment to an event.
type CommentAddRequest struct {
	EventID string `json:"event_id" validate:"required"`
	Body    string `json:"body" validate:"required,max=500"`
}

// CommentAdd appends a comment with a denormalized author snapshot. Threads
// are capped at 100 comments.
func (s *FeedService) CommentAdd(ctx context.Context, subject string, req CommentAddRequest) (*model.FeedComment, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	author, err := loadCaller(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	event, err := s.feed.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apierror.NotFound("Event not found")
	}
	if event.CommentCount >= model.FeedMaxComments {
		return nil, apierror.BadRequest("Comment limit reached")
	}

	comment, err := s.feed.InsertComment(ctx, &model.FeedComment{
		FeedEventID:       event.ID,
		AuthSubject:       subject,
		Body:              req.Body,
		AuthorUsername:    author.Username,
		AuthorDisplayName: author.DisplayName,
		AuthorAvatarURL:   author.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.feed.BumpCommentCount(ctx, event.ID, 1); err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentDeleteRequest removes a comment.
type CommentDeleteRequest struct {
	CommentID string `json:"comment_id" validate:"required"`
}

// CommentDelete removes the caller's own comment; admins can remove any.
func (s *FeedService) CommentDelete(ctx context.Context, subject string, req CommentDeleteRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	caller, err := loadCaller(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	comment, err := s.feed.GetComment(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apierror.NotFound("Comment not found")
	}
	if comment.AuthSubject != subject && !caller.IsAdmin() {
		return nil, apierror.Forbidden("You can only delete your own comments")
	}

	if err := s.feed.DeleteComment(ctx, comment.ID); err != nil {
		return nil, err
	}
	if err := s.feed.BumpCommentCount(ctx, comment.FeedEventID, -1); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// AdminDeleteRequest removes an event from the feed.
type AdminDeleteRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// AdminDelete removes a feed event and, via cascade, its comments and
// reactions. Moderation only; the source item is untouched.
func (s *FeedService) AdminDelete(ctx context.Context, subject string, req AdminDeleteRequest) (map[string]bool, error) {
	if _, err := requireAdmin(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	event, err := s.feed.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apierror.NotFound("Event not found")
	}
	if err := s.feed.DeleteEvent(ctx, event.ID); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// ItemReactRequest toggles the caller's reaction on a wishlist or
// collection item.
type ItemReactRequest struct {
	ItemType string `json:"item_type" validate:"required,oneof=wishlist collection"`
	ItemID   string `json:"item_id" validate:"required"`
	Emoji    string `json:"emoji" validate:"required"`
}

// ItemReact is the same tri-state toggle as React, but against the item
// reaction namespace with its own emoji set.
func (s *FeedService) ItemReact(ctx context.Context, subject string, req ItemReactRequest) (*ReactResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidItemEmoji(req.Emoji) {
		return nil, apierror.BadRequest("Invalid emoji")
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	if err := s.itemExists(ctx, req.ItemType, req.ItemID); err != nil {
		return nil, err
	}

	existing, err := s.itemReact.GetUserReaction(ctx, req.ItemType, req.ItemID, subject)
	if err != nil {
		return nil, err
	}

	var status string
	switch {
	case existing == nil:
		err = s.itemReact.Insert(ctx, &model.ItemReaction{
			ItemType:    req.ItemType,
			ItemID:      req.ItemID,
			AuthSubject: subject,
			Emoji:       req.Emoji,
		})
		if err != nil {
			return nil, err
		}
		if err := s.itemReact.BumpCount(ctx, req.ItemType, req.ItemID, req.Emoji, 1); err != nil {
			return nil, err
		}
		status = "added"

	case existing.Emoji == req.Emoji:
		if err := s.itemReact.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		if err := s.itemReact.BumpCount(ctx, req.ItemType, req.ItemID, req.Emoji, -1); err != nil {
			return nil, err
		}
		status = "removed"

	default:
		if err := s.itemReact.UpdateEmoji(ctx, existing.ID, req.Emoji); err != nil {
			return nil, err
		}
		if err := s.itemReact.BumpCount(ctx, req.ItemType, req.ItemID, existing.Emoji, -1); err != nil {
			return nil, err
		}
		if err := s.itemReact.BumpCount(ctx, req.ItemType, req.ItemID, req.Emoji, 1); err != nil {
			return nil, err
		}
		status = "switched"
	}

	counts, err := s.itemReact.GetCounts(ctx, req.ItemType, req.ItemID)
	if err != nil {
		return reactResult(status, req.Emoji, nil), nil
	}
	return reactResult(status, req.Emoji, counts), nil
}

// ItemReactionsRequest asks for reaction state on a batch of items.
type ItemReactionsRequest struct {
	ItemType string   `json:"item_type" validate:"required,oneof=wishlist collection"`
	ItemIDs  []string `json:"item_ids" validate:"required,min=1,max=100"`
}

// ItemReactionState is one item's aggregate counts plus the caller's own
// reaction when authenticated.
type ItemReactionState struct {
	ReactionCounts model.ReactionCounts `json:"reaction_counts"`
	UserReaction   *string              `json:"user_reaction"`
}

// ItemReactions returns reaction counts for a batch of items. The caller's
// own reactions are included when a subject is present; anonymous callers
// get counts only.
func (s *FeedService) ItemReactions(ctx context.Context, subject string, req ItemReactionsRequest) (map[string]*ItemReactionState, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	counts, err := s.itemReact.GetCountsBatch(ctx, req.ItemType, req.ItemIDs)
	if err != nil {
		return nil, err
	}
	var mine map[string]string
	if subject != "" {
		mine, err = s.itemReact.GetUserReactions(ctx, req.ItemType, req.ItemIDs, subject)
		if err != nil {
			return nil, err
		}
	}

	result := make(map[string]*ItemReactionState, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		c, ok := counts[id]
		if !ok {
			continue
		}
		state := &ItemReactionState{ReactionCounts: c}
		if emoji, ok := mine[id]; ok {
			e := emoji
			state.UserReaction = &e
		}
		result[id] = state
	}
	return result, nil
}

func (s *FeedService) itemExists(ctx context.Context, itemType, itemID string) error {
	switch itemType {
	case "wishlist":
		item, err := s.wishlists.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apierror.NotFound("Item not found")
		}
	case "collection":
		item, err := s.colls.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apierror.NotFound("Item not found")
		}
	}
	return nil
}
