package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
)

const (
	SuccessMessage = "Message sent successfully! I'll get back to you soon."
	FailureMessage = "Failed to send message. Please try again or email me directly."
)

type fieldSpec struct {
	field       contact.Field
	label       string
	inputType   string
	placeholder string
}

var formFields = []fieldSpec{
	{contact.FieldName, "Your Name", "text", "John Doe"},
	{contact.FieldEmail, "Your Email", "email", "john@example.com"},
	{contact.FieldMessage, "Your Message", "", "Tell me about your project or idea..."},
}

// Contact renders the contact section: the form and the info panel.
func Contact(doc *content.Document, snap contact.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("section", "id", "contact", "class", "section")
		h.element("h2", "Let's Connect", "class", "section-title")
		h.element("p", "Have a project in mind or want to collaborate? I'd love to hear from you!", "class", "section-subtitle")
		h.open("div", "class", "contact-grid")
		h.render(ContactForm(snap))
		h.render(ContactInfo(doc))
		h.close("div")
		h.close("section")
		return h.err
	})
}

// ContactForm renders the form from a controller snapshot. It is also the
// fragment the live client swaps in, so it carries a stable id. Without
// JavaScript it posts to /contact.
func ContactForm(snap contact.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		submitting := snap.Status == contact.StatusSubmitting

		h.open("form", "id", "contact-form", "method", "post", "action", "/contact",
			"data-status", string(snap.Status), "novalidate", "")
		h.element("h3", "Send a Message")

		for _, spec := range formFields {
			id := string(spec.field)
			msg := snap.Error(spec.field)

			h.open("div", "class", "field")
			h.element("label", spec.label, "for", id)

			attrs := []string{"id", id, "name", id, "placeholder", spec.placeholder, "class", inputClass(msg)}
			if msg != "" {
				attrs = append(attrs, "aria-invalid", "true", "aria-describedby", id+"-error")
			}
			if submitting {
				attrs = append(attrs, "disabled", "")
			}

			value := snap.Values.Get(spec.field)
			if spec.inputType == "" {
				h.open("textarea", append(attrs, "rows", "5")...)
				h.text(value)
				h.close("textarea")
			} else {
				h.open("input", append(attrs, "type", spec.inputType, "value", value)...)
			}

			if msg != "" {
				h.element("p", msg, "id", id+"-error", "class", "field-error", "role", "alert")
			}
			h.close("div")
		}

		label := "Send Message"
		btnAttrs := []string{"type", "submit", "class", "button"}
		if !snap.CanSubmit {
			btnAttrs = append(btnAttrs, "disabled", "")
		}
		if submitting {
			label = "Sending..."
		}
		h.element("button", label, btnAttrs...)

		switch snap.Status {
		case contact.StatusSucceeded:
			h.element("p", SuccessMessage, "class", "banner banner-success", "role", "status")
		case contact.StatusFailed:
			h.element("p", FailureMessage, "class", "banner banner-error", "role", "alert")
		}

		h.close("form")
		return h.err
	})
}

func inputClass(errMsg string) string {
	if errMsg != "" {
		return "input input-error"
	}
	return "input"
}

// ContactInfo renders the email, location and social links panel.
func ContactInfo(doc *content.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if doc == nil {
			return nil
		}
		h := newWriter(ctx, w)
		p := doc.Personal
		h.open("aside", "class", "contact-info")
		h.element("h3", "Contact Info")
		h.open("dl")
		h.element("dt", "Email")
		h.open("dd")
		h.element("a", p.Email, "href", "mailto:"+p.Email)
		h.close("dd")
		if p.Location != "" {
			h.element("dt", "Location")
			h.element("dd", p.Location)
		}
		h.close("dl")
		h.render(socialLinks(doc.Socials))
		h.close("aside")
		return h.err
	})
}
