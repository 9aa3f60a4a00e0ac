package model

import "strings"

// Restriction is the content-restriction level of a household profile
type Restriction string

const (
	RestrictionKids   Restriction = "KIDS"
	RestrictionAdults Restriction = "ADULTS"
)

// Valid reports whether r is a known restriction level
func (r Restriction) Valid() bool {
	return r == RestrictionKids || r == RestrictionAdults
}

// ParseRestriction parses a restriction level, ignoring case
func ParseRestriction(s string) (Restriction, bool) {
	r := Restriction(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Profile is a household member sub-account with its own restriction level
type Profile struct {
	ID          FlexID      `json:"_id"`
	Name        string      `json:"name"`
	Restriction Restriction `json:"allowedRating"`
	UserID      FlexID      `json:"userId,omitempty"`
}

// IsKids reports whether the profile is restricted to kids content
func (p *Profile) IsKids() bool {
	return p != nil && p.Restriction == RestrictionKids
}

// ProfileInput is the payload for profile create and update
type ProfileInput struct {
	Name        string      `json:"name"`
	Restriction Restriction `json:"allowedRating"`
	UserID      string      `json:"userId,omitempty"`
}
