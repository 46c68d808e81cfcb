package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safenetwork-api/internal/model"
)

type collectionEnv struct {
	svc      *CollectionService
	colls    *fakeCollectionRepo
	profiles *fakeProfileRepo
	photos   *fakePhotoStore
}

func newCollectionEnv() *collectionEnv {
	profiles := newFakeProfileRepo()
	wishlists := newFakeWishlistRepo()
	colls := newFakeCollectionRepo()
	photos := newFakePhotoStore()
	follows := newFakeFollowRepo(profiles)
	feed := NewFeedService(newFakeFeedRepo(), newFakeItemReactionRepo(), profiles, wishlists, colls, follows)
	return &collectionEnv{
		svc:      NewCollectionService(colls, profiles, photos, feed, "collection-photos", 5<<20),
		colls:    colls,
		profiles: profiles,
		photos:   photos,
	}
}

func TestCollectionPhotos(t *testing.T) {
	ctx := context.Background()
	img := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	t.Run("blob path is keyed by owner, item and timestamp", func(t *testing.T) {
		env := newCollectionEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper, ProfilePublic: true})
		item, err := env.colls.Insert(ctx, &model.CollectionItem{AuthSubject: "auth0|u", Category: "coins", Description: "Trade dollar"})
		require.NoError(t, err)

		res, err := env.svc.UploadPhoto(ctx, "auth0|u", PhotoUploadRequest{ItemID: item.ID, ImageData: img, Extension: "JPG"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.URL)

		paths := env.photos.paths()
		require.Len(t, paths, 1)
		pattern := fmt.Sprintf(`^collection-photos/%s/%s/\d+\.jpg$`, regexp.QuoteMeta("auth0|u"), regexp.QuoteMeta(item.ID))
		assert.Regexp(t, pattern, paths[0])

		stored, err := env.colls.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{res.URL}, stored.PhotoURLs)
	})

	t.Run("fourth photo is rejected", func(t *testing.T) {
		env := newCollectionEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
		item, err := env.colls.Insert(ctx, &model.CollectionItem{
			AuthSubject: "auth0|u",
			Category:    "coins",
			Description: "Slab stack",
			PhotoURLs:   []string{"a", "b", "c"},
		})
		require.NoError(t, err)

		_, err = env.svc.UploadPhoto(ctx, "auth0|u", PhotoUploadRequest{ItemID: item.ID, ImageData: img, Extension: "jpg"})
		assert.ErrorContains(t, err, "3 photos max")
	})

	t.Run("someone else's item reads as missing", func(t *testing.T) {
		env := newCollectionEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper})
		item, err := env.colls.Insert(ctx, &model.CollectionItem{AuthSubject: "auth0|other", Category: "coins", Description: "Not yours"})
		require.NoError(t, err)

		_, err = env.svc.UploadPhoto(ctx, "auth0|u", PhotoUploadRequest{ItemID: item.ID, ImageData: img, Extension: "jpg"})
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("delete drops the reference and the blob", func(t *testing.T) {
		env := newCollectionEnv()
		env.profiles.add(&model.Profile{AuthSubject: "auth0|u", Username: "U", Role: model.RoleShopper, ProfilePublic: true})
		item, err := env.colls.Insert(ctx, &model.CollectionItem{AuthSubject: "auth0|u", Category: "coins", Description: "Trade dollar"})
		require.NoError(t, err)

		res, err := env.svc.UploadPhoto(ctx, "auth0|u", PhotoUploadRequest{ItemID: item.ID, ImageData: img, Extension: "jpg"})
		require.NoError(t, err)

		out, err := env.svc.DeletePhoto(ctx, "auth0|u", PhotoDeleteRequest{ItemID: item.ID, PhotoURL: res.URL})
		require.NoError(t, err)
		assert.True(t, out["success"])

		stored, err := env.colls.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PhotoURLs)
		assert.Empty(t, env.photos.paths())
	})
}
