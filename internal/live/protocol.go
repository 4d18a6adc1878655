// Package live hosts the interactive state of one rendered page: the contact
// form controller and the section tracker. The browser reports input and
// scrolling over a websocket and the session pushes state back.
package live

import (
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/navigation"
)

// Inbound message types.
const (
	TypeFieldChange = "field_change"
	TypeFieldBlur   = "field_blur"
	TypeSubmit      = "submit"
	TypeScroll      = "scroll"
	TypeNavigate    = "navigate"
)

// Outbound message types.
const (
	TypeContactState  = "contact_state"
	TypeActiveSection = "active_section"
	TypeScrollTo      = "scroll_to"
	TypeReload        = "reload"
	TypeError         = "error"
)

// Inbound is any message the browser sends. Only the fields of its Type are
// set.
type Inbound struct {
	Type     string               `json:"type"`
	Field    string               `json:"field,omitempty"`
	Value    string               `json:"value,omitempty"`
	ScrollY  float64              `json:"scrollY,omitempty"`
	Sections []navigation.Section `json:"sections,omitempty"`
	Target   string               `json:"target,omitempty"`
}

type ContactState struct {
	Type    string           `json:"type"`
	Contact contact.Snapshot `json:"contact"`
}

type ActiveSection struct {
	Type string `json:"type"`
	navigation.State
}

type ScrollTo struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Reload struct {
	Type string `json:"type"`
}

// ReloadMessage tells every page to reload after a content change.
func ReloadMessage() Reload {
	return Reload{Type: TypeReload}
}
