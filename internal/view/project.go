package view

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/content"
)

// ProjectTitle is the page title of a project detail page.
func ProjectTitle(doc *content.Document, p content.Project) string {
	return p.Name + " | " + doc.Personal.Name
}

// ProjectDetail renders a project's own page.
func ProjectDetail(doc *content.Document, p content.Project, year int) templ.Component {
	chrome := Chrome{Title: ProjectTitle(doc, p), Doc: doc, Year: year, Home: "/"}
	return Layout(chrome, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("article", "class", "project-detail", "data-project", p.Slug)
		h.element("a", "Back to Projects", "href", "/#projects", "class", "back-link")
		h.element("h1", p.Name)
		h.element("p", p.Description, "class", "lead")

		if p.LongDescription != "" {
			h.open("div", "class", "long-description")
			h.render(templ.Raw(SanitizeHTML(p.LongDescription)))
			h.close("div")
		}

		if len(p.Technologies) > 0 {
			h.element("h2", "Technologies Used")
			h.render(technologies(p.Technologies))
		}

		h.open("div", "class", "project-links")
		if p.HasLinks() {
			if p.AppStoreURL != "" {
				h.element("a", "View on App Store", "href", p.AppStoreURL, "class", "button", "target", "_blank", "rel", "noopener noreferrer")
			}
			if p.GithubURL != "" {
				h.element("a", "View on GitHub", "href", p.GithubURL, "class", "button", "target", "_blank", "rel", "noopener noreferrer")
			}
			if p.WebsiteURL != "" {
				h.element("a", "Visit Website", "href", p.WebsiteURL, "class", "button", "target", "_blank", "rel", "noopener noreferrer")
			}
		} else {
			h.element("p", "This project is private or no public links are available.", "class", "muted")
		}
		h.close("div")

		status := "Completed"
		if p.AppStoreURL != "" {
			status = "Live on App Store"
		}
		h.open("dl", "class", "quick-info")
		h.element("dt", "Role")
		h.element("dd", p.Role)
		h.element("dt", "Stack")
		h.element("dd", strconv.Itoa(len(p.Technologies))+" technologies")
		h.element("dt", "Status")
		h.element("dd", status)
		h.close("dl")

		h.close("article")
		return h.err
	}))
}

// NotFound renders the 404 page. doc may be nil when no content loaded.
func NotFound(doc *content.Document, year int) templ.Component {
	title := "Page Not Found"
	if doc != nil {
		title += " | " + doc.Personal.Name
	}
	chrome := Chrome{Title: title, Doc: doc, Year: year, Home: "/"}
	return Layout(chrome, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "class", "not-found")
		h.element("p", "404", "class", "status-code")
		h.element("h1", "Page Not Found")
		h.element("p", "The page you're looking for doesn't exist or has been moved to a new location.")
		h.element("a", "Back to Home", "href", "/", "class", "button")
		h.close("section")
		return h.err
	}))
}
