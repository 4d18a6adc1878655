package view

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Anchors returns the ids of the <section> elements in r, in document order.
func Anchors(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var ids []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "section" {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val != "" {
					ids = append(ids, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ids, nil
}

// MissingAnchors renders c and reports which ids in want have no matching
// section, so navigation never points at nothing.
func MissingAnchors(ctx context.Context, c templ.Component, want []string) ([]string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	got, err := Anchors(&buf)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(got))
	for _, id := range got {
		present[id] = true
	}
	var missing []string
	for _, id := range want {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
