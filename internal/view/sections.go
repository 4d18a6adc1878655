package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/navigation"
)

// PageData is everything the portfolio page renders from.
type PageData struct {
	Doc     *content.Document
	Contact contact.Snapshot
	Nav     navigation.State
	Year    int
}

// Page renders the full single-page portfolio.
func Page(data PageData) templ.Component {
	chrome := Chrome{
		Title: data.Doc.Personal.Name + " | " + data.Doc.Personal.Title,
		Doc:   data.Doc,
		Nav:   data.Nav,
		Year:  data.Year,
		Live:  true,
	}
	return Layout(chrome, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.render(Hero(data.Doc.Personal))
		h.render(Skills(data.Doc.Skills))
		h.render(Projects(data.Doc.Projects))
		h.render(Experience(data.Doc.Experience, data.Doc.Education))
		h.render(Contact(data.Doc, data.Contact))
		return h.err
	}))
}

func Hero(p content.Personal) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "id", "home", "class", "hero")
		h.element("h1", p.Name)
		h.element("p", p.Title, "class", "hero-title")
		h.element("p", p.Bio, "class", "hero-bio")
		h.open("div", "class", "hero-actions")
		h.element("a", "Get in Touch", "href", "#contact", "class", "button", "data-nav", "contact")
		if p.ResumeURL != "" {
			h.element("a", "Download Resume", "href", p.ResumeURL, "class", "button button-outline")
		}
		h.close("div")
		h.close("section")
		return h.err
	})
}

func Skills(categories []content.SkillCategory) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "id", "skills", "class", "section")
		h.element("h2", "Skills & Technologies", "class", "section-title")
		for _, category := range categories {
			h.open("div", "class", "skill-category")
			h.element("h3", category.Name)
			h.open("ul", "class", "badges")
			for _, skill := range category.Skills {
				h.element("li", skill.Name, "class", "badge")
			}
			h.close("ul")
			h.close("div")
		}
		h.close("section")
		return h.err
	})
}

func Projects(projects []content.Project) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "id", "projects", "class", "section")
		h.element("h2", "Featured Projects", "class", "section-title")
		h.open("div", "class", "project-grid")
		for _, p := range projects {
			h.render(ProjectCard(p))
		}
		h.close("div")
		h.close("section")
		return h.err
	})
}

// ProjectCard renders the summary card linking to the detail page.
func ProjectCard(p content.Project) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		cardClass := "card project-card"
		if p.Featured {
			cardClass = classes(cardClass, "featured")
		}
		h.open("article", "class", cardClass, "data-project", p.Slug)
		h.open("h3")
		h.element("a", p.Name, "href", "/projects/"+p.Slug)
		h.close("h3")
		h.element("p", p.Role, "class", "project-role")
		h.element("p", p.Description)
		h.render(technologies(p.Technologies))
		h.close("article")
		return h.err
	})
}

func technologies(techs []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(techs) == 0 {
			return nil
		}
		h := newWriter(ctx, w)
		h.open("ul", "class", "badges")
		for _, t := range techs {
			h.element("li", t, "class", "badge")
		}
		h.close("ul")
		return h.err
	})
}

func Experience(jobs []content.Experience, education []content.Education) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "id", "experience", "class", "section")
		h.element("h2", "Experience", "class", "section-title")
		h.open("ol", "class", "timeline")
		for _, job := range jobs {
			h.open("li", "class", "timeline-item")
			h.element("h3", job.Role)
			h.element("p", job.Company+" · "+job.Location, "class", "company")
			end := job.EndDate
			if job.Current {
				end = "Present"
			}
			h.element("p", job.StartDate+" - "+end, "class", "dates")
			h.open("ul")
			for _, a := range job.Achievements {
				h.element("li", a)
			}
			h.close("ul")
			h.close("li")
		}
		h.close("ol")

		if len(education) > 0 {
			h.element("h3", "Education", "class", "subsection-title")
			for _, e := range education {
				h.open("div", "class", "education")
				h.element("h4", e.Degree)
				h.element("p", e.Institution+" · "+e.Location)
				h.element("p", e.StartYear+" - "+e.EndYear, "class", "dates")
				h.close("div")
			}
		}
		h.close("section")
		return h.err
	})
}
