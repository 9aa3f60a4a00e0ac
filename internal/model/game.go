package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID is an identifier that the API may send as either a JSON string or a number
type FlexID string

// UnmarshalJSON accepts strings, numbers and null
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// String returns the identifier as a string
func (id FlexID) String() string {
	return string(id)
}

// CanonicalID is the single resolved identity of a game across its id aliases
type CanonicalID string

// ESRBRating is the nested rating object some catalog records carry
type ESRBRating struct {
	ID   FlexID `json:"id,omitempty"`
	Name string `json:"name"`
}

// Game is a catalog record as returned by the GamerHub API
type Game struct {
	StoreID    FlexID `json:"_id,omitempty"`
	ExternalID FlexID `json:"rawgId,omitempty"`
	ID         FlexID `json:"id,omitempty"`

	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Released        string      `json:"releaseDate,omitempty"`
	Rating          *float64    `json:"rating,omitempty"`
	AgeRating       string      `json:"ageRating,omitempty"`
	ESRB            *ESRBRating `json:"esrb_rating,omitempty"`
	ESRBLabel       string      `json:"esrbRating,omitempty"`
	Genres          []string    `json:"genres,omitempty"`
	Platforms       []string    `json:"platforms,omitempty"`
	BackgroundImage string      `json:"backgroundImage,omitempty"`
	Metacritic      *int        `json:"metacritic,omitempty"`
	Website         string      `json:"website,omitempty"`
}

// ContentRating returns the age/content rating label of the game.
// The label may live in any of three fields; the first non-empty one wins.
func (g Game) ContentRating() (string, bool) {
	if r := strings.TrimSpace(g.AgeRating); r != "" {
		return r, true
	}
	if g.ESRB != nil {
		if r := strings.TrimSpace(g.ESRB.Name); r != "" {
			return r, true
		}
	}
	if r := strings.TrimSpace(g.ESRBLabel); r != "" {
		return r, true
	}
	return "", false
}

// Aliases returns every id the game is known by, in resolution order
func (g Game) Aliases() []string {
	var aliases []string
	for _, id := range []FlexID{g.StoreID, g.ExternalID, g.ID} {
		if id != "" {
			aliases = append(aliases, id.String())
		}
	}
	return aliases
}

// HasAlias reports whether id matches any of the game's identifiers
func (g Game) HasAlias(id string) bool {
	for _, alias := range g.Aliases() {
		if alias == id {
			return true
		}
	}
	return false
}

// ResolveGameIdentity returns the canonical identity of a game: the store id,
// else the external catalog id, else the generic id. The second return value is
// false when the record carries none of them.
func ResolveGameIdentity(g Game) (CanonicalID, bool) {
	aliases := g.Aliases()
	if len(aliases) == 0 {
		return "", false
	}
	return CanonicalID(aliases[0]), true
}

// RatingText formats the numeric rating for display
func (g Game) RatingText() string {
	if g.Rating == nil {
		return "-"
	}
	return strconv.FormatFloat(*g.Rating, 'f', 1, 64)
}

// GameFilter holds the server-side catalog filters
type GameFilter struct {
	Search   string `json:"search,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Key returns a comparable representation of the filter
func (f GameFilter) Key() string {
	return f.Search + "\x00" + f.Genre + "\x00" + f.Platform
}

// GameListing is one page of a remote game listing
type GameListing struct {
	Games []Game `json:"games"`
	Total int    `json:"total"`
}

// GameInput is the payload for admin game create and update
type GameInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Released        string   `json:"releaseDate,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	AgeRating       string   `json:"ageRating"`
	Genres          []string `json:"genres"`
	Platforms       []string `json:"platforms"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	Metacritic      *int     `json:"metacritic,omitempty"`
	Website         string   `json:"website,omitempty"`
}
