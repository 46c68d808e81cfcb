package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"safenetwork-api/internal/identity"
	"safenetwork-api/internal/middleware"
	"safenetwork-api/internal/service"
	"safenetwork-api/pkg/apierror"
	"safenetwork-api/pkg/response"
)

// authLevel classifies who may call an action.
type authLevel int

const (
	authPublic   authLevel = iota // no token needed, token ignored
	authOptional                  // token used when present, anonymous otherwise
	authRequired                  // missing or invalid token is a 401
)

// actionFunc executes one action. subject is empty for anonymous callers.
type actionFunc func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error)

type action struct {
	level authLevel
	fn    actionFunc
}

// envelope is the request body of every action call.
type envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

const maxBodyBytes = 10 << 20

// ActionHandler multiplexes every storefront operation through a single
// POST endpoint dispatched on the action name.
type ActionHandler struct {
	verifier identity.Verifier
	actions  map[string]action
}

// NewActionHandler wires every action to its service method.
func NewActionHandler(
	verifier identity.Verifier,
	profiles *service.ProfileService,
	wishlists *service.WishlistService,
	collections *service.CollectionService,
	shows *service.ShowService,
	inventory *service.InventoryService,
	feed *service.FeedService,
	follows *service.FollowService,
	ledger *service.LedgerService,
) *ActionHandler {
	h := &ActionHandler{verifier: verifier, actions: map[string]action{}}

	// Profiles and CRM.
	h.register("init", authRequired, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		ident, _ := identity.FromContext(ctx)
		profile, err := profiles.Init(ctx, ident)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"profile": profile}, nil
	})
	wrap(h, "update", authRequired, "profile", profiles.Update)
	wrap(h, "admin-list", authRequired, "users", profiles.AdminList)
	wrap(h, "admin-update", authRequired, "profile", profiles.AdminUpdate)
	register(h, "crm-track", authOptional, profiles.Track)
	h.register("crm-identify", authRequired, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		return profiles.Identify(ctx, subject)
	})

	// Wishlists.
	h.register("wishlist-get", authRequired, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		items, err := wishlists.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"items": items}, nil
	})
	wrap(h, "wishlist-add", authRequired, "item", wishlists.Add)
	wrap(h, "wishlist-update", authRequired, "item", wishlists.Update)
	register(h, "wishlist-remove", authRequired, wishlists.Remove)
	wrap(h, "admin-wishlist", authRequired, "wishes", wishlists.AdminList)
	registerPublic(h, "public-wishlist", wishlists.Public)

	// Collections.
	h.register("collection-get", authRequired, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		items, err := collections.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"items": items}, nil
	})
	wrap(h, "collection-add", authRequired, "item", collections.Add)
	wrap(h, "collection-update", authRequired, "item", collections.Update)
	register(h, "collection-remove", authRequired, collections.Remove)
	register(h, "upload-collection-photo", authRequired, collections.UploadPhoto)
	register(h, "delete-collection-photo", authRequired, collections.DeletePhoto)
	wrap(h, "admin-collections", authRequired, "collections", collections.AdminList)
	registerPublic(h, "public-collection", collections.Public)

	// Hosts and scheduled shows.
	h.register("list-hosts", authPublic, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		hosts, err := shows.ListHosts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"hosts": hosts}, nil
	})
	wrapPublic(h, "list-scheduled-shows", "shows", shows.ListShows)
	wrap(h, "create-scheduled-show", authRequired, "show", shows.Create)
	wrap(h, "update-scheduled-show", authRequired, "show", shows.Update)
	register(h, "delete-scheduled-show", authRequired, shows.Delete)

	// Host showcase inventory.
	h.register("inventory-get", authRequired, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		items, err := inventory.Get(ctx, subject)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"items": items}, nil
	})
	wrap(h, "inventory-add", authRequired, "item", inventory.Add)
	wrap(h, "inventory-update", authRequired, "item", inventory.Update)
	register(h, "inventory-remove", authRequired, inventory.Remove)
	register(h, "upload-inventory-photo", authRequired, inventory.UploadPhoto)
	register(h, "delete-inventory-photo", authRequired, inventory.DeletePhoto)

	// Feed.
	register(h, "feed-get", authOptional, feed.Get)
	register(h, "feed-event-detail", authOptional, feed.Detail)
	register(h, "feed-react", authRequired, feed.React)
	wrap(h, "feed-comment-add", authRequired, "comment", feed.CommentAdd)
	register(h, "feed-comment-delete", authRequired, feed.CommentDelete)
	register(h, "admin-feed-delete", authRequired, feed.AdminDelete)
	register(h, "item-react", authRequired, feed.ItemReact)
	wrap(h, "item-reactions-get", authOptional, "reactions", feed.ItemReactions)

	// Follow graph.
	register(h, "follow", authRequired, follows.Follow)
	register(h, "unfollow", authRequired, follows.Unfollow)
	register(h, "is-following", authRequired, follows.IsFollowing)
	registerPublic(h, "get-followers", follows.Followers)
	registerPublic(h, "get-following", follows.Following)

	// Admin inventory ledger.
	wrap(h, "admin-inventory-get", authRequired, "items", ledger.List)
	wrap(h, "admin-inventory-add", authRequired, "item", ledger.Add)
	wrap(h, "admin-inventory-bulk-add", authRequired, "items", ledger.BulkAdd)
	wrap(h, "admin-inventory-update", authRequired, "item", ledger.Update)
	wrap(h, "admin-inventory-mark-sold", authRequired, "item", ledger.MarkSold)
	register(h, "admin-inventory-remove", authRequired, ledger.Remove)

	return h
}

func (h *ActionHandler) register(name string, level authLevel, fn actionFunc) {
	h.actions[name] = action{level: level, fn: fn}
}

// register adapts a typed service method into an actionFunc, decoding
// the data payload into the method's request type.
func register[Req any, Res any](h *ActionHandler, name string, level authLevel, fn func(context.Context, string, Req) (Res, error)) {
	h.register(name, level, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		req, err := decode[Req](data)
		if err != nil {
			return nil, err
		}
		return fn(ctx, subject, req)
	})
}

// wrap is register with the result sent under a single named key, the
// response envelope the client contract uses for entity payloads.
func wrap[Req any, Res any](h *ActionHandler, name string, level authLevel, key string, fn func(context.Context, string, Req) (Res, error)) {
	h.register(name, level, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		req, err := decode[Req](data)
		if err != nil {
			return nil, err
		}
		res, err := fn(ctx, subject, req)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{key: res}, nil
	})
}

// registerPublic adapts a typed method that never sees the caller.
func registerPublic[Req any, Res any](h *ActionHandler, name string, fn func(context.Context, Req) (Res, error)) {
	h.register(name, authPublic, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		req, err := decode[Req](data)
		if err != nil {
			return nil, err
		}
		return fn(ctx, req)
	})
}

// wrapPublic is registerPublic with a single-key response envelope.
func wrapPublic[Req any, Res any](h *ActionHandler, name string, key string, fn func(context.Context, Req) (Res, error)) {
	h.register(name, authPublic, func(ctx context.Context, subject string, data json.RawMessage) (interface{}, error) {
		req, err := decode[Req](data)
		if err != nil {
			return nil, err
		}
		res, err := fn(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{key: res}, nil
	})
}

func decode[Req any](data json.RawMessage) (Req, error) {
	var req Req
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, apierror.BadRequest("Invalid request data")
	}
	return req, nil
}

// Dispatch is the single action endpoint.
func (h *ActionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		response.ActionError(w, apierror.BadRequest("Failed to read request body"))
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		response.ActionError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if env.Action == "" {
		response.ActionError(w, apierror.BadRequest("Missing action"))
		return
	}
	middleware.RecordAction(r.Context(), env.Action)

	act, ok := h.actions[env.Action]
	if !ok {
		response.ActionError(w, apierror.BadRequest("Unknown action: "+env.Action))
		return
	}

	ctx := r.Context()
	subject := ""
	if act.level != authPublic {
		ident, err := h.verifier.Verify(ctx, r.Header.Get("Authorization"))
		if err != nil {
			log.Printf("[ActionHandler] Identity verification error for %s: %v", env.Action, err)
		}
		if ident != nil {
			subject = ident.Subject
			ctx = identity.NewContext(ctx, ident)
		} else if act.level == authRequired {
			response.ActionError(w, apierror.Unauthorized(""))
			return
		}
	}

	result, err := act.fn(ctx, subject, env.Data)
	if err != nil {
		log.Printf("[ActionHandler] Action %s failed: %v", env.Action, err)
		response.ActionError(w, err)
		return
	}
	response.OK(w, result)
}

// Preflight answers CORS preflight requests with a bare ok.
func (h *ActionHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]bool{"ok": true})
}
