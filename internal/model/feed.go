package model

import (
	"time"

	"github.com/lib/pq"
)

// Feed event types.
const (
	FeedEventWishlist   = "wishlist"
	FeedEventCollection = "collection"
	FeedEventInventory  = "inventory"
)

// Emoji sets. Feed events and item reactions are separate namespaces with
// separate closed sets.
var (
	FeedEmojis = []string{"fire", "heart", "eyes", "raised_hands", "money", "dart"}
	ItemEmojis = []string{"fire", "heart", "eyes", "money", "star"}
)

// Truncation bounds applied when a feed event is synthesized.
const (
	FeedTitleMax       = 80
	FeedDescriptionMax = 500
	FeedCommentMax     = 500
	FeedMaxComments    = 100
	FeedPageSize       = 20
)

// FeedEvent is a denormalized post synthesized from a wishlist, collection
// or inventory creation. Author fields are a snapshot taken at creation
// time and are never re-synced.
type FeedEvent struct {
	ID                string         `json:"id" db:"id"`
	EventType         string         `json:"event_type" db:"event_type"`
	SourceID          string         `json:"source_id" db:"source_id"`
	AuthSubject       string         `json:"auth_subject" db:"auth_subject"`
	Category          string         `json:"category" db:"category"`
	Title             string         `json:"title" db:"title"`
	Description       string         `json:"description" db:"description"`
	Details           JSONMap        `json:"details" db:"details"`
	PhotoURLs         pq.StringArray `json:"photo_urls" db:"photo_urls"`
	HostSlug          string         `json:"host_slug,omitempty" db:"host_slug"`
	HostName          string         `json:"host_name,omitempty" db:"host_name"`
	AuthorUsername    string         `json:"author_username" db:"author_username"`
	AuthorDisplayName string         `json:"author_display_name" db:"author_display_name"`
	AuthorAvatarURL   string         `json:"author_avatar_url" db:"author_avatar_url"`
	AuthorRole        string         `json:"author_role" db:"author_role"`
	ReactionCounts    ReactionCounts `json:"reaction_counts" db:"reaction_counts"`
	CommentCount      int            `json:"comment_count" db:"comment_count"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// AnnotatedFeedEvent carries the requesting user's own reaction, when
// the caller is authenticated.
type AnnotatedFeedEvent struct {
	FeedEvent
	UserReaction *string `json:"user_reaction"`
}

// FeedComment is a comment on a feed event with a denormalized author
// snapshot.
type FeedComment struct {
	ID                string    `json:"id" db:"id"`
	FeedEventID       string    `json:"feed_event_id" db:"feed_event_id"`
	AuthSubject       string    `json:"auth_subject" db:"auth_subject"`
	Body              string    `json:"body" db:"body"`
	AuthorUsername    string    `json:"author_username" db:"author_username"`
	AuthorDisplayName string    `json:"author_display_name" db:"author_display_name"`
	AuthorAvatarURL   string    `json:"author_avatar_url" db:"author_avatar_url"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// FeedReaction is a user's single reaction to a feed event.
type FeedReaction struct {
	ID          string    `json:"id" db:"id"`
	FeedEventID string    `json:"feed_event_id" db:"feed_event_id"`
	AuthSubject string    `json:"auth_subject" db:"auth_subject"`
	Emoji       string    `json:"emoji" db:"emoji"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ItemReaction is a user's single reaction to a collection or wishlist
// item. Item reactions live in their own namespace with their own emoji set.
type ItemReaction struct {
	ID          string    `json:"id" db:"id"`
	ItemType    string    `json:"item_type" db:"item_type"`
	ItemID      string    `json:"item_id" db:"item_id"`
	AuthSubject string    `json:"auth_subject" db:"auth_subject"`
	Emoji       string    `json:"emoji" db:"emoji"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// FollowEdge is a directed follower→following edge.
type FollowEdge struct {
	ID               string    `json:"id" db:"id"`
	FollowerSubject  string    `json:"follower_subject" db:"follower_subject"`
	FollowingSubject string    `json:"following_subject" db:"following_subject"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ValidFeedEmoji reports whether e is in the feed reaction set.
func ValidFeedEmoji(e string) bool {
	for _, v := range FeedEmojis {
		if e == v {
			return true
		}
	}
	return false
}

// ValidItemEmoji reports whether e is in the item reaction set.
func ValidItemEmoji(e string) bool {
	for _, v := range ItemEmojis {
		if e == v {
			return true
		}
	}
	return false
}
