package repository

import (
	"context"
	"time"

	"safenetwork-api/internal/model"
)

// ProfileRepository defines profile data access methods. Lookups return
// (nil, nil) when no row exists.
type ProfileRepository interface {
	GetBySubject(ctx context.Context, subject string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	UpdateFields(ctx context.Context, subject string, updates map[string]interface{}) (*model.Profile, error)
	List(ctx context.Context, search, roleFilter string, limit int) ([]model.Profile, error)
	GetSummaries(ctx context.Context, subjects []string, publicOnly bool) ([]model.ProfileSummary, error)
}

// WishlistRepository defines wishlist item data access methods.
type WishlistRepository interface {
	ListByOwner(ctx context.Context, subject string, limit int) ([]model.WishlistItem, error)
	CountByOwner(ctx context.Context, subject string) (int, error)
	Insert(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error)
	GetByID(ctx context.Context, id string) (*model.WishlistItem, error)
	UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.WishlistItem, error)
	Delete(ctx context.Context, id, subject string) error
	AdminList(ctx context.Context, category, search string, limit int) ([]model.WishlistItem, error)
}

// CollectionRepository defines collection item data access methods.
type CollectionRepository interface {
	ListByOwner(ctx context.Context, subject string, limit int) ([]model.CollectionItem, error)
	CountByOwner(ctx context.Context, subject string) (int, error)
	Insert(ctx context.Context, item *model.CollectionItem) (*model.CollectionItem, error)
	GetByID(ctx context.Context, id string) (*model.CollectionItem, error)
	UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.CollectionItem, error)
	SetPhotos(ctx context.Context, id string, urls []string) error
	Delete(ctx context.Context, id, subject string) error
	AdminList(ctx context.Context, category, search string, limit int) ([]model.CollectionItem, error)
}

// HostInventoryRepository defines host showcase inventory data access.
type HostInventoryRepository interface {
	ListAll(ctx context.Context) ([]model.HostInventoryItem, error)
	ListByHost(ctx context.Context, hostSlug string) ([]model.HostInventoryItem, error)
	Insert(ctx context.Context, item *model.HostInventoryItem) (*model.HostInventoryItem, error)
	GetByID(ctx context.Context, id string) (*model.HostInventoryItem, error)
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.HostInventoryItem, error)
	SetPhotos(ctx context.Context, id string, urls []string) error
	Delete(ctx context.Context, id string) error
}

// HostRepository defines host record access.
type HostRepository interface {
	List(ctx context.Context) ([]model.Host, error)
	GetBySlug(ctx context.Context, slug string) (*model.Host, error)
}

// ShowRepository defines scheduled-show data access.
type ShowRepository interface {
	List(ctx context.Context, showType, hostSlug string, since *time.Time, limit int) ([]model.ScheduledShowWithHost, error)
	Insert(ctx context.Context, show *model.ScheduledShow) (*model.ScheduledShow, error)
	GetByID(ctx context.Context, id string) (*model.ScheduledShow, error)
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.ScheduledShow, error)
	Delete(ctx context.Context, id string) error
}

// FeedFilter narrows a feed listing.
type FeedFilter struct {
	Cursor      *time.Time
	Category    string
	EventType   string
	AuthorIn    []string
	Limit       int
}

// FeedRepository defines feed event, comment and reaction data access.
// Counter mutations are atomic at the store level so concurrent reactions
// and comments never lose updates.
type FeedRepository interface {
	InsertEvent(ctx context.Context, ev *model.FeedEvent) (*model.FeedEvent, error)
	GetEvent(ctx context.Context, id string) (*model.FeedEvent, error)
	ListEvents(ctx context.Context, f FeedFilter) ([]model.FeedEvent, error)
	DeleteEvent(ctx context.Context, id string) error

	GetUserReaction(ctx context.Context, eventID, subject string) (*model.FeedReaction, error)
	GetUserReactions(ctx context.Context, eventIDs []string, subject string) (map[string]string, error)
	InsertReaction(ctx context.Context, r *model.FeedReaction) error
	UpdateReactionEmoji(ctx context.Context, id, emoji string) error
	DeleteReaction(ctx context.Context, id string) error
	BumpReactionCount(ctx context.Context, eventID, emoji string, delta int) error

	InsertComment(ctx context.Context, c *model.FeedComment) (*model.FeedComment, error)
	GetComment(ctx context.Context, id string) (*model.FeedComment, error)
	ListComments(ctx context.Context, eventID string, limit int) ([]model.FeedComment, error)
	DeleteComment(ctx context.Context, id string) error
	BumpCommentCount(ctx context.Context, eventID string, delta int) error
}

// ItemReactionRepository defines reactions on collection/wishlist items.
type ItemReactionRepository interface {
	GetUserReaction(ctx context.Context, itemType, itemID, subject string) (*model.ItemReaction, error)
	Insert(ctx context.Context, r *model.ItemReaction) error
	UpdateEmoji(ctx context.Context, id, emoji string) error
	Delete(ctx context.Context, id string) error
	BumpCount(ctx context.Context, itemType, itemID, emoji string, delta int) error
	GetCounts(ctx context.Context, itemType, itemID string) (model.ReactionCounts, error)
	GetCountsBatch(ctx context.Context, itemType string, itemIDs []string) (map[string]model.ReactionCounts, error)
	GetUserReactions(ctx context.Context, itemType string, itemIDs []string, subject string) (map[string]string, error)
}

// FollowRepository defines follow-graph access. Upsert reports whether a
// new edge was actually inserted so counters are bumped exactly once.
type FollowRepository interface {
	Upsert(ctx context.Context, follower, following string) (bool, error)
	Delete(ctx context.Context, follower, following string) (bool, error)
	Exists(ctx context.Context, follower, following string) (bool, error)
	ListFollowers(ctx context.Context, subject string, limit int) ([]string, error)
	ListFollowing(ctx context.Context, subject string, limit int) ([]string, error)
	FilterFollowing(ctx context.Context, follower string, candidates []string) ([]string, error)
	BumpFollowerCount(ctx context.Context, subject string, delta int) error
	BumpFollowingCount(ctx context.Context, subject string, delta int) error
}

// LedgerRepository defines the privileged admin inventory ledger access.
type LedgerRepository interface {
	List(ctx context.Context, categories []string, limit int) ([]model.AdminInventoryItem, error)
	Insert(ctx context.Context, item *model.AdminInventoryItem) (*model.AdminInventoryItem, error)
	InsertBulk(ctx context.Context, items []*model.AdminInventoryItem) ([]model.AdminInventoryItem, error)
	GetByID(ctx context.Context, id string) (*model.AdminInventoryItem, error)
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.AdminInventoryItem, error)
	RecordSale(ctx context.Context, id string, quantitySold int, status string, details model.JSONMap) (*model.AdminInventoryItem, error)
	Delete(ctx context.Context, id string) error
}
