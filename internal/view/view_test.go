package view

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() *content.Document {
	return &content.Document{
		Personal: content.Personal{
			Name:     "Ada Lovelace",
			Title:    "Software Engineer",
			Bio:      "Builds engines.",
			Email:    "ada@example.com",
			Location: "London, United Kingdom",
		},
		Skills: []content.SkillCategory{{Name: "Languages", Skills: []content.Skill{{Name: "Go"}}}},
		Projects: []content.Project{
			{
				Slug:            "engine",
				Name:            "Engine <One>",
				Description:     "Computes.",
				LongDescription: `<p>Safe <strong>bold</strong></p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`,
				Role:            "Lead",
				Technologies:    []string{"Go", "SQLite"},
				GithubURL:       "https://github.com/example/engine",
				Featured:        true,
			},
			{Slug: "private", Name: "Private", Role: "Author"},
		},
		Socials: []content.SocialLink{{Name: "GitHub", URL: "https://github.com/example", Icon: "github"}},
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLabelAndInitials(t *testing.T) {
	assert.Equal(t, "Home", Label("home"))
	assert.Equal(t, "Side Projects", Label("side-projects"))

	assert.Equal(t, "AL", Initials("Ada Lovelace"))
	assert.Equal(t, "ÉZ", Initials("émile zola"))
	assert.Equal(t, "", Initials("   "))
}

func TestPageSectionsMatchNavigation(t *testing.T) {
	page := Page(PageData{Doc: testDoc(), Contact: contact.IdleSnapshot(), Year: 2026})

	missing, err := MissingAnchors(context.Background(), page, Sections)
	require.NoError(t, err)
	assert.Empty(t, missing)

	ids, err := Anchors(strings.NewReader(render(t, page)))
	require.NoError(t, err)
	assert.Equal(t, Sections, ids)
}

func TestPageRendering(t *testing.T) {
	out := render(t, Page(PageData{
		Doc:     testDoc(),
		Contact: contact.IdleSnapshot(),
		Nav:     navigation.State{Active: "skills", Scrolled: true},
		Year:    2026,
	}))

	assert.Contains(t, out, "<title>Ada Lovelace | Software Engineer</title>")
	assert.Contains(t, out, `data-live="/ws"`)
	assert.Contains(t, out, `src="/static/folio.js"`)
	assert.Contains(t, out, `class="header header-scrolled"`)
	assert.Contains(t, out, `class="nav-link active" data-nav="skills" aria-current="true"`)
	assert.Contains(t, out, "Engine &lt;One&gt;")
	assert.Contains(t, out, `href="/projects/engine"`)
	assert.Contains(t, out, "Crafted in London")
	assert.Contains(t, out, "© 2026 All rights reserved.")
	assert.Contains(t, out, `href="mailto:ada@example.com"`)
	assert.NotContains(t, out, "<script>alert")
}

func TestContactForm(t *testing.T) {
	t.Run("idle", func(t *testing.T) {
		out := render(t, ContactForm(contact.IdleSnapshot()))
		assert.Contains(t, out, `action="/contact"`)
		assert.Contains(t, out, `data-status="idle"`)
		assert.Contains(t, out, ">Send Message</button>")
		assert.NotContains(t, out, "disabled")
		assert.NotContains(t, out, "field-error")
		assert.NotContains(t, out, "banner")
	})

	t.Run("errors on touched fields", func(t *testing.T) {
		snap := contact.IdleSnapshot()
		snap.Values = contact.Values{Name: "A", Email: "a@b.co", Message: "<b>hi</b>"}
		snap.Errors = map[string]string{"name": "Name must be at least 2 characters"}
		snap.Touched = []contact.Field{contact.FieldName}

		out := render(t, ContactForm(snap))
		assert.Contains(t, out, `<p id="name-error" class="field-error" role="alert">Name must be at least 2 characters</p>`)
		assert.Contains(t, out, `aria-invalid="true"`)
		assert.Contains(t, out, `value="a@b.co"`)
		assert.Contains(t, out, "&lt;b&gt;hi&lt;/b&gt;</textarea>")
		assert.Equal(t, 1, strings.Count(out, "field-error"))
	})

	t.Run("submitting", func(t *testing.T) {
		snap := contact.Snapshot{Status: contact.StatusSubmitting}
		out := render(t, ContactForm(snap))
		assert.Contains(t, out, "Sending...")
		assert.Equal(t, 4, strings.Count(out, " disabled"))
	})

	t.Run("banners", func(t *testing.T) {
		snap := contact.IdleSnapshot()
		snap.Status = contact.StatusSucceeded
		assert.Contains(t, render(t, ContactForm(snap)), "Message sent successfully! I&#39;ll get back to you soon.")

		snap.Status = contact.StatusFailed
		assert.Contains(t, render(t, ContactForm(snap)), "Failed to send message. Please try again or email me directly.")
	})
}

func TestProjectDetail(t *testing.T) {
	doc := testDoc()

	out := render(t, ProjectDetail(doc, doc.Projects[0], 2026))
	assert.Contains(t, out, "<title>Engine &lt;One&gt; | Ada Lovelace</title>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "View on GitHub")
	assert.Contains(t, out, "2 technologies")
	assert.Contains(t, out, `href="/#skills"`)
	assert.NotContains(t, out, "data-live")

	private := render(t, ProjectDetail(doc, doc.Projects[1], 2026))
	assert.Contains(t, private, "This project is private or no public links are available.")
	assert.Contains(t, private, "Completed")
}

func TestNotFound(t *testing.T) {
	out := render(t, NotFound(nil, 2026))
	assert.Contains(t, out, "<title>Page Not Found</title>")
	assert.Contains(t, out, "Back to Home")

	out = render(t, NotFound(testDoc(), 2026))
	assert.Contains(t, out, "<title>Page Not Found | Ada Lovelace</title>")
}

func TestStatic(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/static/", Static()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/static/folio.js")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "field_change")
}
