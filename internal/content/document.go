// Package content loads the portfolio document the site is rendered from.
package content

import (
	"fmt"
	"strings"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

// Document is the read-only portfolio content.
type Document struct {
	Personal   Personal        `json:"personal" yaml:"personal" toml:"personal"`
	Skills     []SkillCategory `json:"skills" yaml:"skills" toml:"skills"`
	Projects   []Project       `json:"projects" yaml:"projects" toml:"projects"`
	Experience []Experience    `json:"experience" yaml:"experience" toml:"experience"`
	Education  []Education     `json:"education" yaml:"education" toml:"education"`
	Socials    []SocialLink    `json:"socials" yaml:"socials" toml:"socials"`
}

// Personal describes the site owner.
type Personal struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Bio       string `json:"bio" yaml:"bio" toml:"bio"`
	Email     string `json:"email" yaml:"email" toml:"email"`
	Location  string `json:"location" yaml:"location" toml:"location"`
	ResumeURL string `json:"resumeUrl" yaml:"resumeUrl" toml:"resumeUrl"`
}

// City returns the part of Location before the first comma.
func (p Personal) City() string {
	city, _, _ := strings.Cut(p.Location, ",")
	return strings.TrimSpace(city)
}

type SkillCategory struct {
	Name   string  `json:"name" yaml:"name" toml:"name"`
	Skills []Skill `json:"skills" yaml:"skills" toml:"skills"`
}

type Skill struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
}

// Project is a portfolio entry. Slug addresses its detail page.
type Project struct {
	ID              string   `json:"id" yaml:"id" toml:"id"`
	Slug            string   `json:"slug" yaml:"slug" toml:"slug"`
	Name            string   `json:"name" yaml:"name" toml:"name"`
	Description     string   `json:"description" yaml:"description" toml:"description"`
	LongDescription string   `json:"longDescription,omitempty" yaml:"longDescription,omitempty" toml:"longDescription,omitempty"`
	Role            string   `json:"role" yaml:"role" toml:"role"`
	Technologies    []string `json:"technologies" yaml:"technologies" toml:"technologies"`
	AppStoreURL     string   `json:"appStoreUrl,omitempty" yaml:"appStoreUrl,omitempty" toml:"appStoreUrl,omitempty"`
	GithubURL       string   `json:"githubUrl,omitempty" yaml:"githubUrl,omitempty" toml:"githubUrl,omitempty"`
	WebsiteURL      string   `json:"websiteUrl,omitempty" yaml:"websiteUrl,omitempty" toml:"websiteUrl,omitempty"`
	Featured        bool     `json:"featured" yaml:"featured" toml:"featured"`
	Image           string   `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
}

// HasLinks reports whether the project has any outbound link.
func (p Project) HasLinks() bool {
	return p.AppStoreURL != "" || p.GithubURL != "" || p.WebsiteURL != ""
}

type Experience struct {
	ID           string   `json:"id" yaml:"id" toml:"id"`
	Company      string   `json:"company" yaml:"company" toml:"company"`
	Role         string   `json:"role" yaml:"role" toml:"role"`
	Location     string   `json:"location" yaml:"location" toml:"location"`
	StartDate    string   `json:"startDate" yaml:"startDate" toml:"startDate"`
	EndDate      string   `json:"endDate" yaml:"endDate" toml:"endDate"`
	Current      bool     `json:"current" yaml:"current" toml:"current"`
	Achievements []string `json:"achievements" yaml:"achievements" toml:"achievements"`
}

type Education struct {
	Degree      string `json:"degree" yaml:"degree" toml:"degree"`
	Institution string `json:"institution" yaml:"institution" toml:"institution"`
	Location    string `json:"location" yaml:"location" toml:"location"`
	StartYear   string `json:"startYear" yaml:"startYear" toml:"startYear"`
	EndYear     string `json:"endYear" yaml:"endYear" toml:"endYear"`
}

type SocialLink struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
	Icon string `json:"icon" yaml:"icon" toml:"icon"`
}

// FindProject returns the project with the given slug.
func (d *Document) FindProject(slug string) (Project, bool) {
	for _, p := range d.Projects {
		if p.Slug == slug {
			return p, true
		}
	}
	return Project{}, false
}

// FeaturedProjects returns the projects flagged as featured, in document
// order.
func (d *Document) FeaturedProjects() []Project {
	var out []Project
	for _, p := range d.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the fields the site depends on: a name and email for the
// owner, and a non-empty unique slug for each project.
func (d *Document) Validate() error {
	var problems []string

	if strings.TrimSpace(d.Personal.Name) == "" {
		problems = append(problems, "personal.name is required")
	}
	if strings.TrimSpace(d.Personal.Email) == "" {
		problems = append(problems, "personal.email is required")
	}

	slugs := make(map[string]int, len(d.Projects))
	for i, p := range d.Projects {
		switch {
		case p.Slug == "":
			problems = append(problems, fmt.Sprintf("projects[%d].slug is required", i))
		case strings.ContainsAny(p.Slug, "/?# "):
			problems = append(problems, fmt.Sprintf("projects[%d].slug %q contains reserved characters", i, p.Slug))
		default:
			if prev, ok := slugs[p.Slug]; ok {
				problems = append(problems, fmt.Sprintf("projects[%d].slug %q duplicates projects[%d]", i, p.Slug, prev))
			}
			slugs[p.Slug] = i
		}
		if strings.TrimSpace(p.Name) == "" {
			problems = append(problems, fmt.Sprintf("projects[%d].name is required", i))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return folioerrors.NewValidationError(folioerrors.ErrCodeContentInvalid, strings.Join(problems, "; ")).
		WithComponent("content")
}
