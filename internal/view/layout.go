package view

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/navigation"
)

// Sections are the page anchors in document order. The header links to each
// of them and the live client reports their offsets.
var Sections = []string{"home", "skills", "projects", "experience", "contact"}

// Chrome is what the layout needs besides the page body.
type Chrome struct {
	Title string
	Doc   *content.Document
	Nav   navigation.State
	Year  int
	// Live enables the websocket client; detail pages render without it.
	Live bool
	// Home prefixes section links so they work from other pages.
	Home string
}

// Layout wraps body in the document shell, header and footer.
func Layout(chrome Chrome, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", "en")
		h.open("head")
		h.raw(`<meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", chrome.Title)
		if chrome.Doc != nil {
			h.open("meta", "name", "description", "content", chrome.Doc.Personal.Bio)
		}
		h.open("link", "rel", "stylesheet", "href", "/static/folio.css")
		h.close("head")

		if chrome.Live {
			h.open("body", "data-live", "/ws")
		} else {
			h.open("body")
		}
		h.render(Header(chrome))
		h.open("main")
		h.render(body)
		h.close("main")
		h.render(Footer(chrome.Doc, chrome.Year))
		if chrome.Live {
			h.open("script", "src", "/static/folio.js", "defer", "")
			h.close("script")
		}
		h.close("body")
		h.close("html")
		return h.err
	})
}

// Header renders the fixed navigation. The active link and the compact style
// follow the tracker state.
func Header(chrome Chrome) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		headerClass := "header"
		if chrome.Nav.Scrolled {
			headerClass = classes(headerClass, "header-scrolled")
		}
		h.open("header", "id", "site-header", "class", headerClass)
		h.open("nav", "aria-label", "Primary")

		h.open("a", "href", chrome.Home+"#home", "class", "brand")
		if chrome.Doc != nil {
			h.element("span", Initials(chrome.Doc.Personal.Name), "class", "initials")
			h.element("span", chrome.Doc.Personal.Name, "class", "brand-name")
		}
		h.close("a")

		h.open("ul", "class", "nav-links")
		for _, id := range Sections {
			h.open("li")
			linkClass := "nav-link"
			if id == chrome.Nav.Active {
				linkClass = classes(linkClass, "active")
				h.element("a", Label(id), "href", chrome.Home+"#"+id, "class", linkClass, "data-nav", id, "aria-current", "true")
			} else {
				h.element("a", Label(id), "href", chrome.Home+"#"+id, "class", linkClass, "data-nav", id)
			}
			h.close("li")
		}
		h.close("ul")

		h.close("nav")
		h.close("header")
		return h.err
	})
}

// Footer renders the initials badge, home city, socials and copyright.
func Footer(doc *content.Document, year int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("footer", "class", "footer")
		if doc != nil {
			h.element("span", Initials(doc.Personal.Name), "class", "initials")
			h.element("span", doc.Personal.Name, "class", "footer-name")
			if city := doc.Personal.City(); city != "" {
				h.element("p", "Crafted in "+city, "class", "footer-city")
			}
			h.render(socialLinks(doc.Socials))
		}
		h.element("p", "© "+strconv.Itoa(year)+" All rights reserved.", "class", "copyright")
		h.close("footer")
		return h.err
	})
}

func socialLinks(socials []content.SocialLink) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(socials) == 0 {
			return nil
		}
		h := newWriter(ctx, w)
		h.open("ul", "class", "socials")
		for _, s := range socials {
			h.open("li")
			h.element("a", s.Name, "href", s.URL, "class", "social social-"+s.Icon,
				"target", "_blank", "rel", "noopener noreferrer", "aria-label", s.Name)
			h.close("li")
		}
		h.close("ul")
		return h.err
	})
}
