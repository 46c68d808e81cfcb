package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safenetwork-api/internal/model"
)

type feedEnv struct {
	svc       *FeedService
	feedRepo  *fakeFeedRepo
	itemRepo  *fakeItemReactionRepo
	profiles  *fakeProfileRepo
	wishlists *fakeWishlistRepo
	follows   *fakeFollowRepo
}

func newFeedEnv() *feedEnv {
	profiles := newFakeProfileRepo()
	feedRepo := newFakeFeedRepo()
	itemRepo := newFakeItemReactionRepo()
	wishlists := newFakeWishlistRepo()
	follows := newFakeFollowRepo(profiles)
	svc := NewFeedService(feedRepo, itemRepo, profiles, wishlists, newFakeCollectionRepo(), follows)
	return &feedEnv{svc: svc, feedRepo: feedRepo, itemRepo: itemRepo, profiles: profiles, wishlists: wishlists, follows: follows}
}

func (e *feedEnv) seedEvent(ctx context.Context, author string) *model.FeedEvent {
	ev, _ := e.feedRepo.InsertEvent(ctx, &model.FeedEvent{
		EventType:   model.FeedEventWishlist,
		SourceID:    "src",
		AuthSubject: author,
		Category:    "coins",
		Title:       "seed",
	})
	return ev
}

func TestFeedReact(t *testing.T) {
	ctx := context.Background()
	env := newFeedEnv()
	env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
	ev := env.seedEvent(ctx, "auth0|author")

	t.Run("first reaction is added", func(t *testing.T) {
		res, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: ev.ID, Emoji: "fire"})
		require.NoError(t, err)
		assert.Equal(t, "added", res.Status)
		assert.Equal(t, 1, res.ReactionCounts["fire"])
		require.NotNil(t, res.UserReaction)
		assert.Equal(t, "fire", *res.UserReaction)
	})

	t.Run("different emoji switches", func(t *testing.T) {
		res, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: ev.ID, Emoji: "heart"})
		require.NoError(t, err)
		assert.Equal(t, "switched", res.Status)
		assert.Equal(t, 0, res.ReactionCounts["fire"])
		assert.Equal(t, 1, res.ReactionCounts["heart"])
	})

	t.Run("same emoji removes", func(t *testing.T) {
		res, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: ev.ID, Emoji: "heart"})
		require.NoError(t, err)
		assert.Equal(t, "removed", res.Status)
		assert.Equal(t, 0, res.ReactionCounts["heart"])
		assert.Nil(t, res.UserReaction)
	})

	t.Run("emoji outside the feed set is rejected", func(t *testing.T) {
		_, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: ev.ID, Emoji: "star"})
		assert.Error(t, err)
	})

	t.Run("missing event is rejected", func(t *testing.T) {
		_, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: "nope", Emoji: "fire"})
		assert.Error(t, err)
	})
}

func TestItemReact(t *testing.T) {
	ctx := context.Background()
	env := newFeedEnv()
	env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
	item, _ := env.wishlists.Insert(ctx, &model.WishlistItem{AuthSubject: "auth0|owner", Category: "coins", Description: "peace dollar"})

	t.Run("item set accepts star but not items outside it", func(t *testing.T) {
		res, err := env.svc.ItemReact(ctx, "auth0|u", ItemReactRequest{ItemType: "wishlist", ItemID: item.ID, Emoji: "star"})
		require.NoError(t, err)
		assert.Equal(t, "added", res.Status)

		_, err = env.svc.ItemReact(ctx, "auth0|u", ItemReactRequest{ItemType: "wishlist", ItemID: item.ID, Emoji: "raised_hands"})
		assert.Error(t, err)
	})

	t.Run("toggle removes on repeat", func(t *testing.T) {
		res, err := env.svc.ItemReact(ctx, "auth0|u", ItemReactRequest{ItemType: "wishlist", ItemID: item.ID, Emoji: "star"})
		require.NoError(t, err)
		assert.Equal(t, "removed", res.Status)
		assert.Equal(t, 0, res.ReactionCounts["star"])
	})

	t.Run("missing item is rejected", func(t *testing.T) {
		_, err := env.svc.ItemReact(ctx, "auth0|u", ItemReactRequest{ItemType: "wishlist", ItemID: "nope", Emoji: "star"})
		assert.Error(t, err)
	})
}

func TestItemReactions(t *testing.T) {
	ctx := context.Background()
	env := newFeedEnv()
	env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
	env.profiles.add(&model.Profile{AuthSubject: "auth0|v", Username: "V", Role: model.RoleShopper})
	first, _ := env.wishlists.Insert(ctx, &model.WishlistItem{AuthSubject: "auth0|owner", Category: "coins", Description: "morgan dollar"})
	second, _ := env.wishlists.Insert(ctx, &model.WishlistItem{AuthSubject: "auth0|owner", Category: "coins", Description: "walking liberty"})

	_, err := env.svc.ItemReact(ctx, "auth0|u", ItemReactRequest{ItemType: "wishlist", ItemID: first.ID, Emoji: "star"})
	require.NoError(t, err)
	_, err = env.svc.ItemReact(ctx, "auth0|v", ItemReactRequest{ItemType: "wishlist", ItemID: first.ID, Emoji: "fire"})
	require.NoError(t, err)

	t.Run("authenticated caller sees counts and own reaction", func(t *testing.T) {
		res, err := env.svc.ItemReactions(ctx, "auth0|u", ItemReactionsRequest{ItemType: "wishlist", ItemIDs: []string{first.ID, second.ID}})
		require.NoError(t, err)
		require.Contains(t, res, first.ID)
		assert.Equal(t, 1, res[first.ID].ReactionCounts["star"])
		assert.Equal(t, 1, res[first.ID].ReactionCounts["fire"])
		require.NotNil(t, res[first.ID].UserReaction)
		assert.Equal(t, "star", *res[first.ID].UserReaction)
		require.Contains(t, res, second.ID)
		assert.Nil(t, res[second.ID].UserReaction)
	})

	t.Run("anonymous caller gets counts only", func(t *testing.T) {
		res, err := env.svc.ItemReactions(ctx, "", ItemReactionsRequest{ItemType: "wishlist", ItemIDs: []string{first.ID}})
		require.NoError(t, err)
		require.Contains(t, res, first.ID)
		assert.Equal(t, 1, res[first.ID].ReactionCounts["fire"])
		assert.Nil(t, res[first.ID].UserReaction)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		_, err := env.svc.ItemReactions(ctx, "", ItemReactionsRequest{ItemType: "wishlist"})
		assert.Error(t, err)
	})
}

func TestFeedComments(t *testing.T) {
	ctx := context.Background()
	env := newFeedEnv()
	env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", DisplayName: "User", Role: model.RoleShopper})
	env.profiles.add(&model.Profile{AuthSubject: "auth0|other", Username: "O", Role: model.RoleShopper})
	env.profiles.add(&model.Profile{AuthSubject: "auth0|mod", Username: "M", Role: model.RoleAdmin})
	ev := env.seedEvent(ctx, "auth0|author")

	t.Run("comment carries author snapshot and bumps count", func(t *testing.T) {
		c, err := env.svc.CommentAdd(ctx, "auth0|u", CommentAddRequest{EventID: ev.ID, Body: "great pull"})
		require.NoError(t, err)
		assert.Equal(t, "U", c.AuthorUsername)

		refreshed, _ := env.feedRepo.GetEvent(ctx, ev.ID)
		assert.Equal(t, 1, refreshed.CommentCount)
	})

	t.Run("full thread rejects new comments", func(t *testing.T) {
		full := env.seedEvent(ctx, "auth0|author")
		env.feedRepo.mu.Lock()
		env.feedRepo.events[full.ID].CommentCount = model.FeedMaxComments
		env.feedRepo.mu.Unlock()

		_, err := env.svc.CommentAdd(ctx, "auth0|u", CommentAddRequest{EventID: full.ID, Body: "no room"})
		assert.Error(t, err)
	})

	t.Run("only the author or an admin deletes a comment", func(t *testing.T) {
		c, err := env.svc.CommentAdd(ctx, "auth0|u", CommentAddRequest{EventID: ev.ID, Body: "temp"})
		require.NoError(t, err)

		_, err = env.svc.CommentDelete(ctx, "auth0|other", CommentDeleteRequest{CommentID: c.ID})
		assert.Error(t, err)

		_, err = env.svc.CommentDelete(ctx, "auth0|mod", CommentDeleteRequest{CommentID: c.ID})
		assert.NoError(t, err)
	})
}

func TestFeedGet(t *testing.T) {
	ctx := context.Background()

	t.Run("following filter needs auth and narrows authors", func(t *testing.T) {
		env := newFeedEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
		env.seedEvent(ctx, "auth0|a")
		env.seedEvent(ctx, "auth0|b")
		env.follows.Upsert(ctx, "auth0|u", "auth0|a")

		_, err := env.svc.Get(ctx, "", GetRequest{FollowingOnly: true})
		assert.Error(t, err)

		page, err := env.svc.Get(ctx, "auth0|u", GetRequest{FollowingOnly: true})
		require.NoError(t, err)
		require.Len(t, page.Events, 1)
		assert.Equal(t, "auth0|a", page.Events[0].AuthSubject)
		assert.Equal(t, []string{"auth0|a"}, page.FollowingIDs)
	})

	t.Run("authenticated callers see their own reaction", func(t *testing.T) {
		env := newFeedEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
		ev := env.seedEvent(ctx, "auth0|a")
		_, err := env.svc.React(ctx, "auth0|u", ReactRequest{EventID: ev.ID, Emoji: "dart"})
		require.NoError(t, err)

		page, err := env.svc.Get(ctx, "auth0|u", GetRequest{})
		require.NoError(t, err)
		require.Len(t, page.Events, 1)
		require.NotNil(t, page.Events[0].UserReaction)
		assert.Equal(t, "dart", *page.Events[0].UserReaction)
		assert.Empty(t, page.FollowingIDs)

		anon, err := env.svc.Get(ctx, "", GetRequest{})
		require.NoError(t, err)
		assert.Nil(t, anon.Events[0].UserReaction)
	})

	t.Run("bad cursor is rejected", func(t *testing.T) {
		env := newFeedEnv()
		_, err := env.svc.Get(ctx, "", GetRequest{Cursor: "yesterday"})
		assert.Error(t, err)
	})
}
