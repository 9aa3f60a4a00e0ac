package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcoot/gamerhub/internal/model"
)

// kidsRatings is the "everyone" tier of content ratings, upper-cased
var kidsRatings = map[string]struct{}{
	"E":            {},
	"EVERYONE":     {},
	"E10+":         {},
	"EVERYONE 10+": {},
	"EC":           {},
}

var upper = cases.Upper(language.Und)

// normalizeRating upper-cases a rating and collapses inner whitespace
func normalizeRating(r string) string {
	return strings.Join(strings.Fields(upper.String(r)), " ")
}

// IsAppropriateForKids reports whether a game may be shown to a kids profile.
// A game without any content rating is not appropriate.
func IsAppropriateForKids(g model.Game) bool {
	rating, ok := g.ContentRating()
	if !ok {
		return false
	}
	_, allowed := kidsRatings[normalizeRating(rating)]
	return allowed
}

// Visible reports whether a game is visible under a restriction level.
// Only the kids level filters.
func Visible(r model.Restriction, g model.Game) bool {
	if r == model.RestrictionKids {
		return IsAppropriateForKids(g)
	}
	return true
}

// FilterVisible returns the games visible under r, preserving order
func FilterVisible(r model.Restriction, games []model.Game) []model.Game {
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if Visible(r, g) {
			out = append(out, g)
		}
	}
	return out
}
