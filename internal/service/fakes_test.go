package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/internal/storage"
	"safenetwork-api/pkg/uid"
)

// Map-backed repository fakes. They implement only the semantics the
// services rely on: nil-on-missing lookups, uniqueness on usernames and
// reaction pairs, and counter bumps.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*model.Profile{}}
}

func (f *fakeProfileRepo) add(p *model.Profile) *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uid.New()
	}
	p.CreatedAt = time.Now()
	f.profiles[p.AuthSubject] = p
	return p
}

func (f *fakeProfileRepo) GetBySubject(ctx context.Context, subject string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[subject]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProfileRepo) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	f.mu.Lock()
	for _, existing := range f.profiles {
		if existing.Username == p.Username {
			f.mu.Unlock()
			return nil, &pq.Error{Code: "23505", Constraint: "profiles_username_key"}
		}
	}
	f.mu.Unlock()
	return f.add(p), nil
}

func (f *fakeProfileRepo) UpdateFields(ctx context.Context, subject string, updates map[string]interface{}) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[subject]
	if !ok {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "email":
			p.Email = v.(string)
		case "role":
			p.Role = v.(string)
		case "username":
			p.Username = v.(string)
		case "display_name":
			p.DisplayName = v.(string)
		case "bio":
			p.Bio = v.(string)
		case "host_slug":
			p.HostSlug = v.(string)
		case "loyalty_tier":
			p.LoyaltyTier = v.(string)
		case "profile_public":
			p.ProfilePublic = v.(bool)
		}
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) List(ctx context.Context, search, roleFilter string, limit int) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Profile{}
	for _, p := range f.profiles {
		if roleFilter != "" && p.Role != roleFilter {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfileRepo) GetSummaries(ctx context.Context, subjects []string, publicOnly bool) ([]model.ProfileSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.ProfileSummary{}
	for _, s := range subjects {
		p, ok := f.profiles[s]
		if !ok || (publicOnly && !p.ProfilePublic) {
			continue
		}
		out = append(out, model.ProfileSummary{
			AuthSubject: p.AuthSubject,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Role:        p.Role,
		})
	}
	return out, nil
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

type fakeWishlistRepo struct {
	mu    sync.Mutex
	items map[string]*model.WishlistItem
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{items: map[string]*model.WishlistItem{}}
}

func (f *fakeWishlistRepo) ListByOwner(ctx context.Context, subject string, limit int) ([]model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WishlistItem{}
	for _, it := range f.items {
		if it.AuthSubject == subject {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) CountByOwner(ctx context.Context, subject string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if it.AuthSubject == subject {
			n++
		}
	}
	return n, nil
}

func (f *fakeWishlistRepo) Insert(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = uid.New()
	}
	item.CreatedAt = time.Now()
	f.items[item.ID] = item
	cp := *item
	return &cp, nil
}

func (f *fakeWishlistRepo) GetByID(ctx context.Context, id string) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeWishlistRepo) UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok || it.AuthSubject != subject {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "category":
			it.Category = v.(string)
		case "description":
			it.Description = v.(string)
		}
	}
	cp := *it
	return &cp, nil
}

func (f *fakeWishlistRepo) Delete(ctx context.Context, id, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok && it.AuthSubject == subject {
		delete(f.items, id)
	}
	return nil
}

func (f *fakeWishlistRepo) AdminList(ctx context.Context, category, search string, limit int) ([]model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.WishlistItem{}
	for _, it := range f.items {
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

var _ repository.WishlistRepository = (*fakeWishlistRepo)(nil)

type fakeCollectionRepo struct {
	mu    sync.Mutex
	items map[string]*model.CollectionItem
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{items: map[string]*model.CollectionItem{}}
}

func (f *fakeCollectionRepo) ListByOwner(ctx context.Context, subject string, limit int) ([]model.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.CollectionItem{}
	for _, it := range f.items {
		if it.AuthSubject == subject {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeCollectionRepo) CountByOwner(ctx context.Context, subject string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if it.AuthSubject == subject {
			n++
		}
	}
	return n, nil
}

func (f *fakeCollectionRepo) Insert(ctx context.Context, item *model.CollectionItem) (*model.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = uid.New()
	}
	item.CreatedAt = time.Now()
	f.items[item.ID] = item
	cp := *item
	return &cp, nil
}

func (f *fakeCollectionRepo) GetByID(ctx context.Context, id string) (*model.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCollectionRepo) UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok || it.AuthSubject != subject {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "category":
			it.Category = v.(string)
		case "description":
			it.Description = v.(string)
		}
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCollectionRepo) SetPhotos(ctx context.Context, id string, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok {
		it.PhotoURLs = urls
	}
	return nil
}

func (f *fakeCollectionRepo) Delete(ctx context.Context, id, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok && it.AuthSubject == subject {
		delete(f.items, id)
	}
	return nil
}

func (f *fakeCollectionRepo) AdminList(ctx context.Context, category, search string, limit int) ([]model.CollectionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.CollectionItem{}
	for _, it := range f.items {
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

var _ repository.CollectionRepository = (*fakeCollectionRepo)(nil)

type fakeFeedRepo struct {
	mu        sync.Mutex
	events    map[string]*model.FeedEvent
	reactions map[string]*model.FeedReaction
	comments  map[string]*model.FeedComment
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{
		events:    map[string]*model.FeedEvent{},
		reactions: map[string]*model.FeedReaction{},
		comments:  map[string]*model.FeedComment{},
	}
}

func (f *fakeFeedRepo) InsertEvent(ctx context.Context, ev *model.FeedEvent) (*model.FeedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uid.New()
	}
	ev.CreatedAt = time.Now()
	if ev.ReactionCounts == nil {
		ev.ReactionCounts = model.ReactionCounts{}
	}
	f.events[ev.ID] = ev
	cp := *ev
	return &cp, nil
}

func (f *fakeFeedRepo) GetEvent(ctx context.Context, id string) (*model.FeedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := f.events[id]; ok {
		cp := *ev
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeFeedRepo) ListEvents(ctx context.Context, filter repository.FeedFilter) ([]model.FeedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.FeedEvent{}
	for _, ev := range f.events {
		if filter.Category != "" && ev.Category != filter.Category {
			continue
		}
		if filter.EventType != "" && ev.EventType != filter.EventType {
			continue
		}
		if len(filter.AuthorIn) > 0 {
			found := false
			for _, a := range filter.AuthorIn {
				if ev.AuthSubject == a {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *ev)
	}
	return out, nil
}

func (f *fakeFeedRepo) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.events, id)
	for cid, c := range f.comments {
		if c.FeedEventID == id {
			delete(f.comments, cid)
		}
	}
	for rid, r := range f.reactions {
		if r.FeedEventID == id {
			delete(f.reactions, rid)
		}
	}
	return nil
}

func (f *fakeFeedRepo) GetUserReaction(ctx context.Context, eventID, subject string) (*model.FeedReaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reactions {
		if r.FeedEventID == eventID && r.AuthSubject == subject {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeFeedRepo) GetUserReactions(ctx context.Context, eventIDs []string, subject string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for _, r := range f.reactions {
		if r.AuthSubject != subject {
			continue
		}
		for _, id := range eventIDs {
			if r.FeedEventID == id {
				out[id] = r.Emoji
			}
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) InsertReaction(ctx context.Context, r *model.FeedReaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = uid.New()
	}
	f.reactions[r.ID] = r
	return nil
}

func (f *fakeFeedRepo) UpdateReactionEmoji(ctx context.Context, id, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reactions[id]; ok {
		r.Emoji = emoji
	}
	return nil
}

func (f *fakeFeedRepo) DeleteReaction(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reactions, id)
	return nil
}

func (f *fakeFeedRepo) BumpReactionCount(ctx context.Context, eventID, emoji string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := f.events[eventID]; ok {
		if ev.ReactionCounts == nil {
			ev.ReactionCounts = model.ReactionCounts{}
		}
		n := ev.ReactionCounts[emoji] + delta
		if n < 0 {
			n = 0
		}
		ev.ReactionCounts[emoji] = n
	}
	return nil
}

func (f *fakeFeedRepo) InsertComment(ctx context.Context, c *model.FeedComment) (*model.FeedComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == "" {
		c.ID = uid.New()
	}
	c.CreatedAt = time.Now()
	f.comments[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeFeedRepo) GetComment(ctx context.Context, id string) (*model.FeedComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeFeedRepo) ListComments(ctx context.Context, eventID string, limit int) ([]model.FeedComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.FeedComment{}
	for _, c := range f.comments {
		if c.FeedEventID == eventID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) DeleteComment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.comments, id)
	return nil
}

func (f *fakeFeedRepo) BumpCommentCount(ctx context.Context, eventID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := f.events[eventID]; ok {
		ev.CommentCount += delta
		if ev.CommentCount < 0 {
			ev.CommentCount = 0
		}
	}
	return nil
}

var _ repository.FeedRepository = (*fakeFeedRepo)(nil)

type fakeItemReactionRepo struct {
	mu        sync.Mutex
	reactions map[string]*model.ItemReaction
	counts    map[string]model.ReactionCounts
}

func newFakeItemReactionRepo() *fakeItemReactionRepo {
	return &fakeItemReactionRepo{
		reactions: map[string]*model.ItemReaction{},
		counts:    map[string]model.ReactionCounts{},
	}
}

func (f *fakeItemReactionRepo) GetUserReaction(ctx context.Context, itemType, itemID, subject string) (*model.ItemReaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reactions {
		if r.ItemType == itemType && r.ItemID == itemID && r.AuthSubject == subject {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeItemReactionRepo) Insert(ctx context.Context, r *model.ItemReaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = uid.New()
	}
	f.reactions[r.ID] = r
	return nil
}

func (f *fakeItemReactionRepo) UpdateEmoji(ctx context.Context, id, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reactions[id]; ok {
		r.Emoji = emoji
	}
	return nil
}

func (f *fakeItemReactionRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reactions, id)
	return nil
}

func (f *fakeItemReactionRepo) BumpCount(ctx context.Context, itemType, itemID, emoji string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := itemType + "|" + itemID
	counts := f.counts[key]
	if counts == nil {
		counts = model.ReactionCounts{}
		f.counts[key] = counts
	}
	n := counts[emoji] + delta
	if n < 0 {
		n = 0
	}
	counts[emoji] = n
	return nil
}

func (f *fakeItemReactionRepo) GetCounts(ctx context.Context, itemType, itemID string) (model.ReactionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := f.counts[itemType+"|"+itemID]
	if counts == nil {
		return model.ReactionCounts{}, nil
	}
	out := model.ReactionCounts{}
	for k, v := range counts {
		out[k] = v
	}
	return out, nil
}

func (f *fakeItemReactionRepo) GetCountsBatch(ctx context.Context, itemType string, itemIDs []string) (map[string]model.ReactionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := map[string]model.ReactionCounts{}
	for _, id := range itemIDs {
		counts := f.counts[itemType+"|"+id]
		out := model.ReactionCounts{}
		for k, v := range counts {
			out[k] = v
		}
		result[id] = out
	}
	return result, nil
}

func (f *fakeItemReactionRepo) GetUserReactions(ctx context.Context, itemType string, itemIDs []string, subject string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := map[string]string{}
	for _, id := range itemIDs {
		for _, r := range f.reactions {
			if r.ItemType == itemType && r.ItemID == id && r.AuthSubject == subject {
				result[id] = r.Emoji
			}
		}
	}
	return result, nil
}

var _ repository.ItemReactionRepository = (*fakeItemReactionRepo)(nil)

type fakeFollowRepo struct {
	mu       sync.Mutex
	edges    map[string]bool
	profiles *fakeProfileRepo
}

func newFakeFollowRepo(profiles *fakeProfileRepo) *fakeFollowRepo {
	return &fakeFollowRepo{edges: map[string]bool{}, profiles: profiles}
}

func edgeKey(follower, following string) string { return follower + "->" + following }

func (f *fakeFollowRepo) Upsert(ctx context.Context, follower, following string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey(follower, following)
	if f.edges[key] {
		return false, nil
	}
	f.edges[key] = true
	return true, nil
}

func (f *fakeFollowRepo) Delete(ctx context.Context, follower, following string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey(follower, following)
	if !f.edges[key] {
		return false, nil
	}
	delete(f.edges, key)
	return true, nil
}

func (f *fakeFollowRepo) Exists(ctx context.Context, follower, following string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[edgeKey(follower, following)], nil
}

func (f *fakeFollowRepo) ListFollowers(ctx context.Context, subject string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for key := range f.edges {
		var follower, following string
		for i := 0; i < len(key)-2; i++ {
			if key[i:i+2] == "->" {
				follower, following = key[:i], key[i+2:]
				break
			}
		}
		if following == subject {
			out = append(out, follower)
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) ListFollowing(ctx context.Context, subject string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	prefix := subject + "->"
	for key := range f.edges {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key[len(prefix):])
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) FilterFollowing(ctx context.Context, follower string, candidates []string) ([]string, error) {
	out := []string{}
	for _, c := range candidates {
		ok, _ := f.Exists(ctx, follower, c)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) BumpFollowerCount(ctx context.Context, subject string, delta int) error {
	f.profiles.mu.Lock()
	defer f.profiles.mu.Unlock()
	if p, ok := f.profiles.profiles[subject]; ok {
		p.FollowerCount += delta
		if p.FollowerCount < 0 {
			p.FollowerCount = 0
		}
	}
	return nil
}

func (f *fakeFollowRepo) BumpFollowingCount(ctx context.Context, subject string, delta int) error {
	f.profiles.mu.Lock()
	defer f.profiles.mu.Unlock()
	if p, ok := f.profiles.profiles[subject]; ok {
		p.FollowingCount += delta
		if p.FollowingCount < 0 {
			p.FollowingCount = 0
		}
	}
	return nil
}

var _ repository.FollowRepository = (*fakeFollowRepo)(nil)

type fakeLedgerRepo struct {
	mu    sync.Mutex
	items map[string]*model.AdminInventoryItem
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{items: map[string]*model.AdminInventoryItem{}}
}

func (f *fakeLedgerRepo) List(ctx context.Context, categories []string, limit int) ([]model.AdminInventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.AdminInventoryItem{}
	for _, it := range f.items {
		if categories != nil {
			ok := false
			for _, c := range categories {
				if it.Category == c {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeLedgerRepo) Insert(ctx context.Context, item *model.AdminInventoryItem) (*model.AdminInventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = uid.New()
	}
	item.CreatedAt = time.Now()
	f.items[item.ID] = item
	cp := *item
	return &cp, nil
}

func (f *fakeLedgerRepo) InsertBulk(ctx context.Context, items []*model.AdminInventoryItem) ([]model.AdminInventoryItem, error) {
	out := make([]model.AdminInventoryItem, 0, len(items))
	for _, it := range items {
		created, err := f.Insert(ctx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func (f *fakeLedgerRepo) GetByID(ctx context.Context, id string) (*model.AdminInventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeLedgerRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.AdminInventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "name":
			it.Name = v.(string)
		case "category":
			it.Category = v.(string)
		case "status":
			it.Status = v.(string)
		case "quantity":
			it.Quantity = v.(int)
		}
	}
	cp := *it
	return &cp, nil
}

func (f *fakeLedgerRepo) RecordSale(ctx context.Context, id string, quantitySold int, status string, details model.JSONMap) (*model.AdminInventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	it.QuantitySold = quantitySold
	it.Status = status
	it.Details = details
	cp := *it
	return &cp, nil
}

func (f *fakeLedgerRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

var _ repository.LedgerRepository = (*fakeLedgerRepo)(nil)

type fakeCRM struct {
	mu         sync.Mutex
	identifies []string
	tracks     []string
}

func (f *fakeCRM) Identify(ctx context.Context, subject string, attributes map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identifies = append(f.identifies, subject)
	return nil
}

func (f *fakeCRM) Track(ctx context.Context, subject, event string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, subject+":"+event)
	return nil
}

type fakeHostRepo struct {
	mu    sync.Mutex
	hosts []*model.Host
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{}
}

func (f *fakeHostRepo) add(h *model.Host) *model.Host {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID == "" {
		h.ID = uid.New()
	}
	f.hosts = append(f.hosts, h)
	return h
}

func (f *fakeHostRepo) List(ctx context.Context) ([]model.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Host, 0, len(f.hosts))
	for _, h := range f.hosts {
		out = append(out, *h)
	}
	return out, nil
}

func (f *fakeHostRepo) GetBySlug(ctx context.Context, slug string) (*model.Host, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hosts {
		if h.Slug == slug {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

var _ repository.HostRepository = (*fakeHostRepo)(nil)

type fakeShowRepo struct {
	mu    sync.Mutex
	shows map[string]*model.ScheduledShow
}

func newFakeShowRepo() *fakeShowRepo {
	return &fakeShowRepo{shows: map[string]*model.ScheduledShow{}}
}

func (f *fakeShowRepo) List(ctx context.Context, showType, hostSlug string, since *time.Time, limit int) ([]model.ScheduledShowWithHost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ScheduledShowWithHost
	for _, s := range f.shows {
		if showType != "" && s.ShowType != showType {
			continue
		}
		if hostSlug != "" && s.HostSlug != hostSlug {
			continue
		}
		if since != nil && s.ScheduledAt.Before(*since) {
			continue
		}
		out = append(out, model.ScheduledShowWithHost{ScheduledShow: *s, HostHandle: s.HostSlug})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeShowRepo) Insert(ctx context.Context, show *model.ScheduledShow) (*model.ScheduledShow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *show
	cp.ID = uid.New()
	cp.CreatedAt = time.Now()
	f.shows[cp.ID] = &cp
	res := cp
	return &res, nil
}

func (f *fakeShowRepo) GetByID(ctx context.Context, id string) (*model.ScheduledShow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.shows[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeShowRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.ScheduledShow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shows[id]
	if !ok {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "title":
			s.Title, _ = v.(string)
		case "description":
			s.Description, _ = v.(string)
		case "status":
			s.Status, _ = v.(string)
		case "show_type":
			s.ShowType, _ = v.(string)
		case "whatnot_url":
			s.WhatnotURL, _ = v.(string)
		case "host_slug":
			s.HostSlug, _ = v.(string)
		case "duration_minutes":
			if n, ok := v.(int); ok {
				s.DurationMinutes = n
			}
		case "scheduled_at":
			if t, ok := v.(time.Time); ok {
				s.ScheduledAt = t
			}
		}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeShowRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.shows, id)
	return nil
}

var _ repository.ShowRepository = (*fakeShowRepo)(nil)

type fakePhotoStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: map[string][]byte{}}
}

func (f *fakePhotoStore) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+objectPath] = data
	return "https://cdn.test/" + bucket + "/" + objectPath, nil
}

func (f *fakePhotoStore) Remove(ctx context.Context, bucket, objectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+objectPath)
	return nil
}

func (f *fakePhotoStore) PathFromURL(bucket, publicURL string) string {
	return strings.TrimPrefix(publicURL, "https://cdn.test/"+bucket+"/")
}

func (f *fakePhotoStore) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var _ storage.PhotoStore = (*fakePhotoStore)(nil)
