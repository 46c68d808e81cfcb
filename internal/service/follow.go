package service

import (
	"context"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

// FollowService handles the follow graph and its denormalized counters.
type FollowService struct {
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
}

// NewFollowService creates a follow service.
func NewFollowService(follows repository.FollowRepository, profiles repository.ProfileRepository) *FollowService {
	return &FollowService{follows: follows, profiles: profiles}
}

// FollowRequest targets another collector by subject.
type FollowRequest struct {
	TargetSubject string `json:"target_subject" validate:"required"`
}

// Follow creates a follower edge. Following twice is a no-op that still
// succeeds; counters move only when the edge actually appears.
func (s *FollowService) Follow(ctx context.Context, subject string, req FollowRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.TargetSubject == subject {
		return nil, apierror.BadRequest("You cannot follow yourself")
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	target, err := s.profiles.GetBySubject(ctx, req.TargetSubject)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apierror.NotFound("Profile not found")
	}

	inserted, err := s.follows.Upsert(ctx, subject, req.TargetSubject)
	if err != nil {
		return nil, err
	}
	if inserted {
		if err := s.follows.BumpFollowerCount(ctx, req.TargetSubject, 1); err != nil {
			return nil, err
		}
		if err := s.follows.BumpFollowingCount(ctx, subject, 1); err != nil {
			return nil, err
		}
	}
	return map[string]bool{"following": true}, nil
}

// Unfollow removes a follower edge. Unfollowing someone never followed
// succeeds without touching counters.
func (s *FollowService) Unfollow(ctx context.Context, subject string, req FollowRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}

	existed, err := s.follows.Delete(ctx, subject, req.TargetSubject)
	if err != nil {
		return nil, err
	}
	if existed {
		if err := s.follows.BumpFollowerCount(ctx, req.TargetSubject, -1); err != nil {
			return nil, err
		}
		if err := s.follows.BumpFollowingCount(ctx, subject, -1); err != nil {
			return nil, err
		}
	}
	return map[string]bool{"following": false}, nil
}

// IsFollowing reports whether the caller follows the target.
func (s *FollowService) IsFollowing(ctx context.Context, subject string, req FollowRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, apierror.Unauthorized("")
	}
	following, err := s.follows.Exists(ctx, subject, req.TargetSubject)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"following": following}, nil
}

// FollowListRequest identifies a collector by username.
type FollowListRequest struct {
	Username string `json:"username" validate:"required"`
}

// FollowersResult lists who follows a collector. Count is the denormalized
// counter, not the visible list length: private followers are counted but
// not listed.
type FollowersResult struct {
	Followers   []model.ProfileSummary `json:"followers"`
	Count       int                    `json:"count"`
	AuthSubject string                 `json:"auth_subject"`
}

// FollowingResult lists who a collector follows, same visibility rules as
// FollowersResult.
type FollowingResult struct {
	Following   []model.ProfileSummary `json:"following"`
	Count       int                    `json:"count"`
	AuthSubject string                 `json:"auth_subject"`
}

// Followers lists who follows the named collector, public profiles only.
func (s *FollowService) Followers(ctx context.Context, req FollowListRequest) (*FollowersResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apierror.NotFound("User not found")
	}

	subjects, err := s.follows.ListFollowers(ctx, profile.AuthSubject, 200)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, subjects)
	if err != nil {
		return nil, err
	}
	return &FollowersResult{
		Followers:   summaries,
		Count:       profile.FollowerCount,
		AuthSubject: profile.AuthSubject,
	}, nil
}

// Following lists who the named collector follows, public profiles only.
func (s *FollowService) Following(ctx context.Context, req FollowListRequest) (*FollowingResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apierror.NotFound("User not found")
	}

	subjects, err := s.follows.ListFollowing(ctx, profile.AuthSubject, 200)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, subjects)
	if err != nil {
		return nil, err
	}
	return &FollowingResult{
		Following:   summaries,
		Count:       profile.FollowingCount,
		AuthSubject: profile.AuthSubject,
	}, nil
}

func (s *FollowService) summarize(ctx context.Context, subjects []string) ([]model.ProfileSummary, error) {
	if len(subjects) == 0 {
		return []model.ProfileSummary{}, nil
	}
	return s.profiles.GetSummaries(ctx, subjects, true)
}
