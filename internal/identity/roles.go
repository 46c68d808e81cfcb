package identity

import (
	"strings"

	"safenetwork-api/internal/model"
)

// RoleResolver derives roles from verified emails. Only verified emails on
// the admin domain get the admin role; everything else starts as shopper.
// Host and other roles are granted manually and are never derived here.
type RoleResolver struct {
	adminDomain     string
	superAdminEmail string
}

// NewRoleResolver creates a resolver for the given admin email domain and
// super-admin address.
func NewRoleResolver(adminDomain, superAdminEmail string) *RoleResolver {
	return &RoleResolver{
		adminDomain:     strings.ToLower(strings.TrimSpace(adminDomain)),
		superAdminEmail: strings.ToLower(strings.TrimSpace(superAdminEmail)),
	}
}

// Resolve computes the role for a verified email. Unverified emails are
// always shoppers, which blocks email-injection privilege escalation.
func (r *RoleResolver) Resolve(email string, emailVerified bool) string {
	if !emailVerified {
		return model.RoleShopper
	}
	if r.IsAdminDomain(email) {
		return model.RoleAdmin
	}
	return model.RoleShopper
}

// IsAdminDomain reports whether the email belongs to the admin domain.
func (r *RoleResolver) IsAdminDomain(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+r.adminDomain)
}

// IsSuperAdmin reports whether the email is the distinguished super-admin
// identity.
func (r *RoleResolver) IsSuperAdmin(email string) bool {
	return strings.ToLower(strings.TrimSpace(email)) == r.superAdminEmail
}

// ShouldOverwrite decides whether a stored role is replaced on login.
// A stored role is only overwritten when the fresh email is on the admin
// domain (auto-upgrade) or the stored role was already admin (re-check,
// possible auto-downgrade). Manually granted roles such as host survive
// logins; domain-derived admin rights are revoked when the domain is lost.
func (r *RoleResolver) ShouldOverwrite(storedRole, email string, emailVerified bool) bool {
	resolved := r.Resolve(email, emailVerified)
	if resolved == storedRole {
		return false
	}
	return r.IsAdminDomain(email) || storedRole == model.RoleAdmin
}
