package service

import (
	"context"
	"log"

	"safenetwork-api/internal/crm"
	"safenetwork-api/internal/identity"
	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
	"safenetwork-api/pkg/uid"
)

// ProfileService handles login-time profile provisioning, self-service
// updates and the admin profile roster.
type ProfileService struct {
	profiles repository.ProfileRepository
	roles    *identity.RoleResolver
	crm      crm.Client
}

// NewProfileService creates a profile service.
func NewProfileService(profiles repository.ProfileRepository, roles *identity.RoleResolver, crmClient crm.Client) *ProfileService {
	return &ProfileService{profiles: profiles, roles: roles, crm: crmClient}
}

// Init upserts the caller's profile at login. New identities get a
// generated Collector_XXXX username and a role derived from the verified
// email. Existing profiles get a role re-check: domain admins are
// upgraded, ex-domain admins are downgraded, manually granted roles
// survive. The super admin can never be demoted.
func (s *ProfileService) Init(ctx context.Context, ident *identity.Identity) (*model.Profile, error) {
	existing, err := s.profiles.GetBySubject(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}

	var profile *model.Profile
	if existing == nil {
		profile, err = s.createProfile(ctx, ident)
		if err != nil {
			return nil, err
		}
	} else {
		updates := map[string]interface{}{}
		if existing.Email != ident.Email {
			updates["email"] = ident.Email
		}
		if s.roles.IsSuperAdmin(ident.Email) {
			if existing.Role != model.RoleAdmin {
				updates["role"] = model.RoleAdmin
			}
		} else if s.roles.ShouldOverwrite(existing.Role, ident.Email, ident.EmailVerified) {
			updates["role"] = s.roles.Resolve(ident.Email, ident.EmailVerified)
		}

		if len(updates) > 0 {
			profile, err = s.profiles.UpdateFields(ctx, ident.Subject, updates)
			if err != nil {
				return nil, err
			}
		} else {
			profile = existing
		}
	}

	s.identify(ctx, profile)
	return profile, nil
}

func (s *ProfileService) createProfile(ctx context.Context, ident *identity.Identity) (*model.Profile, error) {
	role := model.RoleShopper
	if ident.EmailVerified {
		role = s.roles.Resolve(ident.Email, ident.EmailVerified)
	}

	// One retry on username collision; a 4-char suffix over a 32-rune
	// alphabet makes a second collision vanishingly unlikely.
	for attempt := 0; attempt < 2; attempt++ {
		username := "Collector_" + uid.Suffix(4)
		created, err := s.profiles.Create(ctx, &model.Profile{
			AuthSubject:   ident.Subject,
			Email:         ident.Email,
			Username:      username,
			DisplayName:   username,
			Role:          role,
			LoyaltyTier:   "bronze",
			ProfilePublic: true,
		})
		if err == nil {
			return created, nil
		}
		if repository.IsUniqueViolation(err, "username") && attempt == 0 {
			continue
		}
		return nil, err
	}
	return nil, apierror.Internal("Failed to create profile")
}

// profileUpdateFields is the self-service update whitelist. Anything not
// listed here is silently ignored.
var profileUpdateFields = map[string]bool{
	"display_name":     true,
	"username":         true,
	"whatnot_username": true,
	"bio":              true,
	"interests":        true,
	"profile_public":   true,
	"email_visible":    true,
	"avatar_url":       true,
}

// UpdateRequest carries a self-service profile update.
type UpdateRequest struct {
	Updates map[string]interface{} `json:"updates"`
}

// Update applies whitelisted fields to the caller's own profile.
func (s *ProfileService) Update(ctx context.Context, subject string, req UpdateRequest) (*model.Profile, error) {
	if _, err := loadCaller(ctx, s.profiles, subject); err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if profileUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}
	if username, ok := filtered["username"].(string); ok && username == "" {
		return nil, apierror.BadRequest("Username cannot be empty")
	}

	updated, err := s.profiles.UpdateFields(ctx, subject, filtered)
	if err != nil {
		if repository.IsUniqueViolation(err, "username") {
			return nil, apierror.Conflict("Username is already taken")
		}
		return nil, err
	}

	s.identify(ctx, updated)
	return updated, nil
}

// AdminListRequest filters the admin profile roster.
type AdminListRequest struct {
	Search string `json:"search"`
	Role   string `json:"role"`
}

// AdminList returns up to 200 profiles for the admin dashboard.
func (s *ProfileService) AdminList(ctx context.Context, subject string, req AdminListRequest) ([]model.Profile, error) {
	if _, err := requireAdmin(ctx, s.profiles, subject); err != nil {
		return nil, err
	}
	if req.Role != "" && req.Role != model.RoleShopper && req.Role != model.RoleHost && req.Role != model.RoleAdmin {
		return nil, apierror.BadRequest("Invalid role filter")
	}
	return s.profiles.List(ctx, req.Search, req.Role, 200)
}

// adminUpdateFields is the admin-side update whitelist.
var adminUpdateFields = map[string]bool{
	"role":           true,
	"loyalty_tier":   true,
	"loyalty_points": true,
	"host_slug":      true,
}

// AdminUpdateRequest targets another profile by subject.
type AdminUpdateRequest struct {
	AuthSubject string                 `json:"auth_subject" validate:"required"`
	Updates     map[string]interface{} `json:"updates" validate:"required"`
}

// AdminUpdate lets admins change role, loyalty and host assignment on any
// profile, with three guardrails: only the super admin grants the admin
// role, admin-domain accounts cannot be demoted, and the super admin can
// never be touched at all.
func (s *ProfileService) AdminUpdate(ctx context.Context, subject string, req AdminUpdateRequest) (*model.Profile, error) {
	caller, err := requireAdmin(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	target, err := s.profiles.GetBySubject(ctx, req.AuthSubject)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apierror.NotFound("Profile not found")
	}

	filtered := map[string]interface{}{}
	for k, v := range req.Updates {
		if adminUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, apierror.BadRequest("No valid fields to update")
	}

	if newRole, ok := filtered["role"].(string); ok {
		if newRole != model.RoleShopper && newRole != model.RoleHost && newRole != model.RoleAdmin {
			return nil, apierror.BadRequest("Invalid role")
		}
		if s.roles.IsSuperAdmin(target.Email) && newRole != model.RoleAdmin {
			return nil, apierror.Forbidden("This account cannot be demoted")
		}
		if newRole == model.RoleAdmin && !s.roles.IsSuperAdmin(caller.Email) {
			return nil, apierror.Forbidden("Only the super admin can grant the admin role")
		}
		if target.Role == model.RoleAdmin && newRole != model.RoleAdmin && s.roles.IsAdminDomain(target.Email) {
			return nil, apierror.Forbidden("Admin-domain accounts cannot be demoted")
		}
	}

	return s.profiles.UpdateFields(ctx, req.AuthSubject, filtered)
}

// TrackRequest carries a behavioral CRM event.
type TrackRequest struct {
	Event string                 `json:"event" validate:"required,max=100"`
	Data  map[string]interface{} `json:"data"`
}

// Track forwards a behavioral event to the CRM. Anonymous callers are
// tracked under a client-provided identifier inside the event data.
func (s *ProfileService) Track(ctx context.Context, subject string, req TrackRequest) (map[string]bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	who := subject
	if who == "" {
		who = "anonymous"
		if anon, ok := req.Data["anonymous_id"].(string); ok && anon != "" {
			who = anon
		}
	}
	if err := s.crm.Track(ctx, who, req.Event, req.Data); err != nil {
		log.Printf("[ProfileService] CRM track failed for %s: %v", who, err)
		return nil, apierror.Upstream("Failed to record event")
	}
	return map[string]bool{"success": true}, nil
}

// Identify pushes the caller's current profile attributes to the CRM.
func (s *ProfileService) Identify(ctx context.Context, subject string) (map[string]bool, error) {
	profile, err := loadCaller(ctx, s.profiles, subject)
	if err != nil {
		return nil, err
	}
	if err := s.crm.Identify(ctx, subject, crmAttributes(profile)); err != nil {
		log.Printf("[ProfileService] CRM identify failed for %s: %v", subject, err)
		return nil, apierror.Upstream("Failed to sync profile")
	}
	return map[string]bool{"success": true}, nil
}

// identify pushes profile attributes to the CRM in-request. CRM failures
// are logged and dropped so login and profile updates survive an outage.
func (s *ProfileService) identify(ctx context.Context, profile *model.Profile) {
	if err := s.crm.Identify(ctx, profile.AuthSubject, crmAttributes(profile)); err != nil {
		log.Printf("[ProfileService] CRM identify failed for %s: %v", profile.AuthSubject, err)
	}
}

func crmAttributes(p *model.Profile) map[string]interface{} {
	return map[string]interface{}{
		"email":          p.Email,
		"username":       p.Username,
		"display_name":   p.DisplayName,
		"role":           p.Role,
		"loyalty_tier":   p.LoyaltyTier,
		"loyalty_points": p.LoyaltyPoints,
	}
}
