// Package view renders the portfolio pages as templ components. Components
// only read content and core state snapshots.
package view

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs are name/value pairs; boolean attributes
// are written bare and their value is ignored.
func (h *htmlWriter) open(tag string, attrs ...string) {
	h.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if booleanAttrs[name] {
			h.raw(" ", name)
			continue
		}
		if name == "href" || name == "src" || name == "action" {
			value = string(templ.URL(value))
		}
		h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
	}
	h.raw(">")
}

var booleanAttrs = map[string]bool{
	"defer":      true,
	"disabled":   true,
	"novalidate": true,
	"required":   true,
}

func (h *htmlWriter) close(tag string) {
	h.raw("</", tag, ">")
}

// element writes a start tag, escaped text and the end tag.
func (h *htmlWriter) element(tag, text string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(text)
	h.close(tag)
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

var (
	titleCaser = cases.Title(language.English)
	upperCaser = cases.Upper(language.English)

	// longDescriptionPolicy allows the formatting project write-ups use.
	longDescriptionPolicy = bluemonday.UGCPolicy()
)

// Label turns a section id into its navigation label.
func Label(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "-", " "))
}

// Initials returns the upper-cased first letter of each word of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return upperCaser.String(b.String())
}

// SanitizeHTML strips everything but basic formatting from untrusted markup.
func SanitizeHTML(s string) string {
	return longDescriptionPolicy.Sanitize(s)
}
