package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/validation"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	msg := describe(err)
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": msg,
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", msg)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintRaw writes data as is, whatever the format
func (o *Output) PrintRaw(data []byte) {
	_, _ = o.w.Write(data)
}

// describe turns an error into the message a user should see
func describe(err error) string {
	if fe, ok := validation.AsFieldErrors(err); ok {
		fields := make([]string, 0, len(fe))
		for f := range fe {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fe[f])
		}
		return strings.Join(parts, "; ")
	}
	var apiErr *backend.Error
	if errors.As(err, &apiErr) {
		return backend.Message(err)
	}
	return err.Error()
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.User:
		o.printUser(v)
	case SessionStatus:
		o.printSessionStatus(v)
	case []model.User:
		o.printUsers(v)
	case model.Profile:
		o.printProfile(v)
	case ProfileList:
		o.printProfileList(v)
	case CatalogPage:
		o.printCatalogPage(v)
	case GameDetails:
		o.printGameDetails(v)
	case AgeCheck:
		o.printAgeCheck(v)
	case Watchlist:
		o.printWatchlist(v)
	case WatchResult:
		o.printWatchResult(v)
	case AdminGames:
		o.printAdminGames(v)
	case backend.ImportResult:
		fmt.Fprintf(o.w, "%d games imported\n", v.Imported)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// SessionStatus is the saved session as the route guard sees it
type SessionStatus struct {
	State       string             `json:"state"`
	User        *model.User        `json:"user,omitempty"`
	Profile     *model.Profile     `json:"profile,omitempty"`
	Permissions []model.Permission `json:"permissions"`
}

// ProfileList is the profile listing with the active one marked
type ProfileList struct {
	Profiles []model.Profile `json:"profiles"`
	Active   string          `json:"active,omitempty"`
}

// CatalogPage is one page of the catalog as seen by the active profile
type CatalogPage struct {
	Profile    model.Profile    `json:"profile"`
	Filter     model.GameFilter `json:"filter"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
	Kids       bool             `json:"kids"`
	Truncated  bool             `json:"truncated,omitempty"`
	Games      []GameRow        `json:"games"`
}

// GameRow is a game in a listing with its watchlist state
type GameRow struct {
	ID      string     `json:"id"`
	Game    model.Game `json:"game"`
	Watched bool       `json:"watched"`
}

// GameDetails is a game opened by the active profile
type GameDetails struct {
	ID      string     `json:"id"`
	Game    model.Game `json:"game"`
	Watched bool       `json:"watched"`
}

// AgeCheck is the server's verdict on a game for a profile
type AgeCheck struct {
	GameID    string `json:"game_id"`
	ProfileID string `json:"profile_id"`
	Allowed   bool   `json:"allowed"`
}

// Watchlist is a profile's saved games
type Watchlist struct {
	Profile model.Profile `json:"profile"`
	Games   []GameRow     `json:"games"`
}

// WatchResult is the outcome of a watchlist mutation
type WatchResult struct {
	GameID  string `json:"game_id"`
	Watched bool   `json:"watched"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AdminGames is one page of the admin game listing
type AdminGames struct {
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
	Games      []model.Game `json:"games"`
}

func restrictionLabel(r model.Restriction) string {
	if r == model.RestrictionKids {
		return "Kids"
	}
	return "Adults"
}

func rating(g model.Game) string {
	if r, ok := g.ContentRating(); ok {
		return r
	}
	return "Unrated"
}

func gameID(g model.Game) string {
	id, _ := model.ResolveGameIdentity(g)
	return string(id)
}

func (o *Output) printUser(u model.User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Name, u.ID)
	fmt.Fprintf(o.w, "Email: %s\n", u.Email)
	fmt.Fprintf(o.w, "Role: %s\n", u.Role)
}

func (o *Output) printSessionStatus(s SessionStatus) {
	fmt.Fprintf(o.w, "State: %s\n", s.State)
	if s.User != nil {
		fmt.Fprintf(o.w, "User: %s <%s> [%s]\n", s.User.Name, s.User.Email, s.User.Role)
	}
	if s.Profile != nil {
		fmt.Fprintf(o.w, "Profile: %s (%s)\n", s.Profile.Name, restrictionLabel(s.Profile.Restriction))
	}
	if len(s.Permissions) > 0 {
		names := make([]string, len(s.Permissions))
		for i, p := range s.Permissions {
			names[i] = string(p)
		}
		fmt.Fprintf(o.w, "Permissions: %s\n", strings.Join(names, ", "))
	}
}

func (o *Output) printUsers(users []model.User) {
	if len(users) == 0 {
		fmt.Fprintln(o.w, "No users found.")
		return
	}
	for _, u := range users {
		fmt.Fprintf(o.w, "%s  %s <%s> [%s]\n", u.ID, u.Name, u.Email, u.Role)
		for _, p := range u.Profiles {
			fmt.Fprintf(o.w, "    - %s (%s) %s\n", p.Name, p.ID, restrictionLabel(p.Restriction))
		}
	}
}

func (o *Output) printProfile(p model.Profile) {
	fmt.Fprintf(o.w, "Profile: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Content: %s\n", restrictionLabel(p.Restriction))
}

func (o *Output) printProfileList(l ProfileList) {
	if len(l.Profiles) == 0 {
		fmt.Fprintln(o.w, "No profiles yet. Create one with 'gamerhub profile create'.")
		return
	}
	for _, p := range l.Profiles {
		marker := " "
		if p.ID.String() == l.Active {
			marker = "*"
		}
		fmt.Fprintf(o.w, "%s %s  %s (%s)\n", marker, p.ID, p.Name, restrictionLabel(p.Restriction))
	}
}

func (o *Output) printGameRows(rows []GameRow) {
	for _, r := range rows {
		watched := ""
		if r.Watched {
			watched = " [watchlist]"
		}
		fmt.Fprintf(o.w, "%-12s %s (%s, %s)%s\n", r.ID, r.Game.Name, rating(r.Game), r.Game.RatingText(), watched)
	}
}

func (o *Output) printCatalogPage(p CatalogPage) {
	fmt.Fprintf(o.w, "Catalog for %s\n", p.Profile.Name)
	if p.Kids {
		fmt.Fprintln(o.w, "Showing kid-friendly content")
	}
	if len(p.Games) == 0 {
		fmt.Fprintln(o.w, "No games match the current filters.")
		if p.Kids {
			fmt.Fprintln(o.w, "Kids profiles only see games with an age-appropriate rating.")
		}
		return
	}
	o.printGameRows(p.Games)
	fmt.Fprintf(o.w, "Page %d of %d (%d games)\n", p.Page, p.TotalPages, p.Total)
	if p.Truncated {
		fmt.Fprintln(o.w, "Only the first results are shown. Narrow your search to see more.")
	}
}

func (o *Output) printGameDetails(d GameDetails) {
	g := d.Game
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.Name, d.ID)
	fmt.Fprintf(o.w, "Rating: %s\n", rating(g))
	fmt.Fprintf(o.w, "Score: %s\n", g.RatingText())
	if g.Released != "" {
		fmt.Fprintf(o.w, "Released: %s\n", g.Released)
	}
	if len(g.Genres) > 0 {
		fmt.Fprintf(o.w, "Genres: %s\n", strings.Join(g.Genres, ", "))
	}
	if len(g.Platforms) > 0 {
		fmt.Fprintf(o.w, "Platforms: %s\n", strings.Join(g.Platforms, ", "))
	}
	if g.Metacritic != nil {
		fmt.Fprintf(o.w, "Metacritic: %d\n", *g.Metacritic)
	}
	if g.Website != "" {
		fmt.Fprintf(o.w, "Website: %s\n", g.Website)
	}
	if d.Watched {
		fmt.Fprintln(o.w, "On the watchlist")
	}
	if g.Description != "" {
		fmt.Fprintf(o.w, "\n%s\n", g.Description)
	}
}

func (o *Output) printAgeCheck(c AgeCheck) {
	if c.Allowed {
		fmt.Fprintf(o.w, "%s is allowed for profile %s\n", c.GameID, c.ProfileID)
		return
	}
	fmt.Fprintf(o.w, "%s is not available for profile %s\n", c.GameID, c.ProfileID)
}

func (o *Output) printWatchlist(l Watchlist) {
	fmt.Fprintf(o.w, "Watchlist for %s\n", l.Profile.Name)
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "The watchlist is empty.")
		return
	}
	o.printGameRows(l.Games)
}

func (o *Output) printWatchResult(r WatchResult) {
	fmt.Fprintln(o.w, r.Message)
}

func (o *Output) printAdminGames(p AdminGames) {
	if len(p.Games) == 0 {
		fmt.Fprintln(o.w, "No games found.")
		return
	}
	for _, g := range p.Games {
		fmt.Fprintf(o.w, "%-12s %s (%s) %s | %s\n", gameID(g), g.Name, rating(g),
			strings.Join(g.Genres, ", "), strings.Join(g.Platforms, ", "))
	}
	fmt.Fprintf(o.w, "Page %d of %d (%d games)\n", p.Page, p.TotalPages, p.Total)
}
