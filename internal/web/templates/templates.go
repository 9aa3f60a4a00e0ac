// Package templates holds the HTML views of the web client. Markup lives in
// embedded html/template files and is exposed to handlers as templ components.
package templates

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
)

//go:embed html/*.html
var files embed.FS

var set = template.Must(template.New("gamerhub").Funcs(funcs).ParseFS(files, "html/*.html"))

var funcs = template.FuncMap{
	"join": strings.Join,
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"rating": func(g model.Game) string {
		if r, ok := g.ContentRating(); ok {
			return r
		}
		return "Unrated"
	},
	"restriction": func(r model.Restriction) string {
		if r == model.RestrictionKids {
			return "Kids"
		}
		return "Adults"
	},
	// pageURL keeps the filters in pagination links
	"pageURL": func(base string, f model.GameFilter, page int) string {
		q := url.Values{}
		if f.Search != "" {
			q.Set("search", f.Search)
		}
		if f.Genre != "" {
			q.Set("genre", f.Genre)
		}
		if f.Platform != "" {
			q.Set("platform", f.Platform)
		}
		q.Set("page", strconv.Itoa(page))
		return base + "?" + q.Encode()
	},
	"gameID": func(g model.Game) string {
		id, _ := model.ResolveGameIdentity(g)
		return string(id)
	},
	"pager": func(p catalog.Page, f model.GameFilter, base string) Pager {
		return Pager{Page: p, Filter: f, BaseURL: base}
	},
}

// Pager is the input of the pagination partial
type Pager struct {
	Page    catalog.Page
	Filter  model.GameFilter
	BaseURL string
}

// Component renders the named template with data
func Component(name string, data any) templ.Component {
	t := set.Lookup(name)
	if t == nil {
		panic("templates: no template named " + name)
	}
	return templ.FromGoHTML(t, data)
}
