package game

import (
	"github.com/stellarlinkco/aptname/internal/event"
	"github.com/stellarlinkco/aptname/internal/requirement"
)

// Message is one feed entry. ID is the feed length when the message was
// created and never changes, however the feed is reordered.
type Message struct {
	ID          int
	Requirement *requirement.Requirement
	Event       *event.Event

	interruption string
}

// Text is the body shown for the message.
func (m *Message) Text() string {
	var body string
	switch {
	case m.Requirement != nil:
		body = m.Requirement.Message()
	case m.Event != nil:
		body = m.Event.Message()
	}
	if m.interruption != "" {
		return "**" + m.interruption + "** " + body
	}
	return body
}

// Entry is the read-only view of a Message handed to subscribers.
type Entry struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Kind    string `json:"kind"` // "requirement" or "event"
	Code    string `json:"code"`
	Profile string `json:"profile,omitempty"`
	Image   string `json:"image,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Done    bool   `json:"done"`
	Active  bool   `json:"active"`
}

// Snapshot is the consistent state published after every update.
type Snapshot struct {
	Seq       int     `json:"seq"`
	Name      string  `json:"name"`
	Feed      []Entry `json:"feed"`
	Satisfied int     `json:"satisfied"`
	Total     int     `json:"total"`
	Won       bool    `json:"won"`
}

func (m *Message) entry() Entry {
	e := Entry{ID: m.ID, Text: m.Text()}
	switch {
	case m.Requirement != nil:
		r := m.Requirement
		e.Kind = "requirement"
		e.Code = string(r.Code)
		e.Profile = r.Metadata.ProfileName
		e.Image = r.Metadata.ProfileImage
		e.Done = r.Satisfied()
	case m.Event != nil:
		e.Kind = "event"
		e.Code = string(m.Event.Kind)
		e.Icon = m.Event.Icon()
		e.Active = m.Event.Active()
	}
	return e
}
