package catalog

import (
	"slices"
	"strings"

	"github.com/mcoot/gamerhub/internal/model"
)

// GenreOptions returns the distinct genres of games, sorted. Filter menus are
// built from the games on screen since the API has no genre listing.
func GenreOptions(games []model.Game, selected string) []string {
	return options(games, selected, func(g model.Game) []string { return g.Genres })
}

// PlatformOptions returns the distinct platforms of games, sorted
func PlatformOptions(games []model.Game, selected string) []string {
	return options(games, selected, func(g model.Game) []string { return g.Platforms })
}

// options keeps the selected value listed even when no game on screen has it,
// so the active filter can still be cleared from the menu
func options(games []model.Game, selected string, field func(model.Game) []string) []string {
	var out []string
	if selected = strings.TrimSpace(selected); selected != "" {
		out = append(out, selected)
	}
	for _, g := range games {
		for _, v := range field(g) {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
