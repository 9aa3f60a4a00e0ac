package layout

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/web/templates"
)

// FlashMessage is a one-shot toast carried across a redirect
type FlashMessage struct {
	Type    string
	Message string
}

// FromNotice converts a store notice to a flash message
func FromNotice(n model.Notice) *FlashMessage {
	if n.Empty() {
		return nil
	}
	return &FlashMessage{Type: string(n.Level), Message: n.Message}
}

// PageData is the data every full page needs for the shell
type PageData struct {
	Title   string
	Flash   *FlashMessage
	User    *model.User
	Profile *model.Profile
	Nav     Nav
}

// Nav lists the admin screens the logged in user may open
type Nav struct {
	Users bool
	Games bool
}

type shell struct {
	PageData
	Body template.HTML
}

// Page wraps body in the site shell: navigation, toast and footer
func Page(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		return templates.Component("layout", shell{PageData: data, Body: html}).Render(ctx, w)
	})
}
