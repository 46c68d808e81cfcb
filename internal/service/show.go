package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"safenetwork-api/internal/cache"
	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

// ShowService handles the public host directory and the scheduled-show
// calendar. Both public listings are served through a short-TTL cache;
// mutations invalidate eagerly, and filtered variants age out on TTL.
type ShowService struct {
	shows    repository.ShowRepository
	hosts    repository.HostRepository
	profiles repository.ProfileRepository
	cache    cache.Cache
	ttl      time.Duration
}

// NewShowService creates a show service.
func NewShowService(
	shows repository.ShowRepository,
	hosts repository.HostRepository,
	profiles repository.ProfileRepository,
	c cache.Cache,
	ttl time.Duration,
) *ShowService {
	return &ShowService{shows: shows, hosts: hosts, profiles: profiles, cache: c, ttl: ttl}
}

const hostListKey = "hosts:all"

// ListHosts returns the public host directory.
func (s *ShowService) ListHosts(ctx context.Context) ([]model.Host, error) {
	raw, err := s.cache.GetOrSet(ctx, hostListKey, s.ttl, func() ([]byte, error) {
		hosts, err := s.hosts.List(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(hosts)
	})
	if err != nil {
		return nil, err
	}
	var hosts []model.Host
	if err := json.Unmarshal(raw, &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

// ShowListRequest filters the public show calendar.
type ShowListRequest struct {
	ShowType   string `json:"show_type"`
	HostSlug   string `json:"host_slug"`
	IncludeAll bool   `json:"include_all"`
}

// ListShows returns up to 100 shows, soonest first.
func (s *ShowService) ListShows(ctx context.Context, req ShowListRequest) ([]model.ScheduledShowWithHost, error) {
	if req.ShowType != "" && !model.ValidShowType(req.ShowType) {
		return nil, apierror.BadRequest("Invalid show type")
	}

	key := fmt.Sprintf("shows:%s:%s:%t", req.ShowType, req.HostSlug, req.IncludeAll)
	raw, err := s.cache.GetOrSet(ctx, key, s.ttl, func() ([]byte, error) {
		var since *time.Time
		if !req.IncludeAll {
			// Keep the recent past on the calendar alongside upcoming shows.
			weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
			since = &weekAgo
		}
		shows, err := s.shows.List(ctx, req.ShowType, req.HostSlug, since, 100)
		if err != nil {
			return nil, err
		}
		return json.Marshal(shows)
	})
	if err != nil {
		return nil, err
	}
	var shows []model.ScheduledShowWithHost
	if err := json.Unmarshal(raw, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

// ShowCreateRequest describes a new scheduled show.
type ShowCreateRequest struct {
	HostSlug        string `json:"host_slug"`
	ShowType        string `json:"show_type" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=1000"`
	ScheduledAt     string `json:"scheduled_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	WhatnotURL      string `json:"whatnot_url" validate:"omitempty,url,max=500"`
}

// Create schedules a show. Hosts always schedule under their own slug;
// admins can schedule for any host.
func (s *ShowService) Create(ctx context.Context, subject string, req ShowCreateRequest) (*model.ScheduledShow, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidShowType(req.ShowType) {
		return nil, apierror.BadRequest("Invalid show type")
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

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, apierror.BadRequest("Invalid scheduled_at timestamp")
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	show, err := s.shows.Insert(ctx, &model.ScheduledShow{
		HostSlug:        slug,
		ShowType:        req.ShowType,
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          "scheduled",
		WhatnotURL:      req.WhatnotURL,
		CreatedBy:       subject,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateShows(ctx)
	return show, nil
}

// showUpdateFields is the base update whitelist; host_slug is additionally
// allowed for admins.
var showUpdateFields = map[string]bool{
	"title":            true,
	"description":      true,
	"scheduled_at":     true,
	"duration_minutes": true,
	"status":           true,
	"whatnot_url":      true,
	"show_type":        true,
}

// ShowUpdateRequest updates a scheduled show.
type ShowUpdateRequest struct {
	ShowID  string                 `json:"show_id" validate:"required"`
	Updates map[string]interface{} `json:"updates" validate:"required"`
}

// Update applies whitelisted fields. Hosts can only touch shows under
// their own slug; only admins may move a show to another host.
func (s *ShowService) Update(ctx context.Context, subject string, req ShowUpdateRequest) (*model.ScheduledShow, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	show, err := s.shows.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, apierror.NotFound("Show not found")
	}
	if !caller.IsAdmin() && show.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own shows")
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if showUpdateFields[k] || (k == "host_slug" && caller.IsAdmin()) {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if st, ok := filtered["status"].(string); ok && !model.ValidShowStatus(st) {
		return nil, apierror.BadRequest("Invalid status")
	}
	if tp, ok := filtered["show_type"].(string); ok && !model.ValidShowType(tp) {
		return nil, apierror.BadRequest("Invalid show type")
	}
	if ts, ok := filtered["scheduled_at"].(string); ok {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, apierror.BadRequest("Invalid scheduled_at timestamp")
		}
		filtered["scheduled_at"] = parsed
	}

	updated, err := s.shows.UpdateFields(ctx, req.ShowID, filtered)
	if err != nil {
		return nil, err
	}
	s.invalidateShows(ctx)
	return updated, nil
}

// ShowDeleteRequest removes a show.
type ShowDeleteRequest struct {
	ShowID string `json:"show_id" validate:"required"`
}

// Delete removes a scheduled show with the same ownership rules as Update.
func (s *ShowService) Delete(ctx context.Context, subject string, req ShowDeleteRequest) (map[string]bool, error) {
	caller, err := requireHostOrAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	show, err := s.shows.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, apierror.NotFound("Show not found")
	}
	if !caller.IsAdmin() && show.HostSlug != caller.HostSlug {
		return nil, apierror.Forbidden("You can only manage your own shows")
	}

	if err := s.shows.Delete(ctx, req.ShowID); err != nil {
		return nil, err
	}
	s.invalidateShows(ctx)
	return map[string]bool{"success": true}, nil
}

// invalidateShows drops the unfiltered calendar keys. Filtered variants
// age out within the cache TTL.
func (s *ShowService) invalidateShows(ctx context.Context) {
	for _, key := range []string{"shows:::false", "shows:::true"} {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Printf("[ShowService] Cache invalidation failed for %s: %v", key, err)
		}
	}
}
