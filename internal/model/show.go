package model

import "time"

// Show types and statuses (closed enums).
var (
	ShowTypes    = []string{"coins", "pokemon", "sports", "shoes"}
	ShowStatuses = []string{"scheduled", "live", "completed", "cancelled"}
)

// Host is a live-show host record.
type Host struct {
	ID            string    `json:"id" db:"id"`
	Slug          string    `json:"slug" db:"slug"`
	Name          string    `json:"name" db:"name"`
	WhatnotHandle string    `json:"whatnot_handle" db:"whatnot_handle"`
	AvatarURL     string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ScheduledShow is a planned live-shopping show.
type ScheduledShow struct {
	ID              string    `json:"id" db:"id"`
	HostSlug        string    `json:"host_slug" db:"host_slug"`
	ShowType        string    `json:"show_type" db:"show_type"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	ScheduledAt     time.Time `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          string    `json:"status" db:"status"`
	WhatnotURL      string    `json:"whatnot_url" db:"whatnot_url"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ScheduledShowWithHost is a show row with its host info flattened in,
// as returned by the public listing.
type ScheduledShowWithHost struct {
	ScheduledShow
	HostName   string `json:"host_name" db:"host_name"`
	HostHandle string `json:"host_handle" db:"host_handle"`
	HostAvatar string `json:"host_avatar" db:"host_avatar"`
}

// ValidShowType reports whether t is a known show type.
func ValidShowType(t string) bool {
	for _, v := range ShowTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ValidShowStatus reports whether s is a known show status.
func ValidShowStatus(s string) bool {
	for _, v := range ShowStatuses {
		if s == v {
			return true
		}
	}
	return false
}
