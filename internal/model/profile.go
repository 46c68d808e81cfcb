package model

import "time"

// Roles assignable to a profile. Admin is derived from the verified email
// domain or granted by the super admin; host is always granted manually.
const (
	RoleShopper = "shopper"
	RoleHost    = "host"
	RoleAdmin   = "admin"
)

// Profile is a collector account keyed by the external identity subject.
type Profile struct {
	ID              string    `json:"id" db:"id"`
	AuthSubject     string    `json:"auth_subject" db:"auth_subject"`
	Email           string    `json:"email" db:"email"`
	Username        string    `json:"username" db:"username"`
	DisplayName     string    `json:"display_name" db:"display_name"`
	AvatarURL       string    `json:"avatar_url" db:"avatar_url"`
	Bio             string    `json:"bio" db:"bio"`
	Interests       string    `json:"interests" db:"interests"`
	WhatnotUsername string    `json:"whatnot_username" db:"whatnot_username"`
	Role            string    `json:"role" db:"role"`
	HostSlug        string    `json:"host_slug" db:"host_slug"`
	LoyaltyTier     string    `json:"loyalty_tier" db:"loyalty_tier"`
	LoyaltyPoints   int       `json:"loyalty_points" db:"loyalty_points"`
	ProfilePublic   bool      `json:"profile_public" db:"profile_public"`
	EmailVisible    bool      `json:"email_visible" db:"email_visible"`
	FollowerCount   int       `json:"follower_count" db:"follower_count"`
	FollowingCount  int       `json:"following_count" db:"following_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsHost reports whether the profile is a host with an assigned slug.
func (p *Profile) IsHost() bool {
	return p.Role == RoleHost && p.HostSlug != ""
}

// ProfileSummary is the public subset returned in follower/following lists.
type ProfileSummary struct {
	AuthSubject string `json:"auth_subject" db:"auth_subject"`
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name" db:"display_name"`
	AvatarURL   string `json:"avatar_url" db:"avatar_url"`
	Role        string `json:"role" db:"role"`
}
