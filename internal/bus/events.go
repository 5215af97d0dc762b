package bus

import (
	"strings"
	"time"
)

// Kind says what the player asked for.
type Kind string

const (
	KindEdit  Kind = "edit"  // replace the name
	KindKey   Kind = "key"   // pick the forbidden keyboard key
	KindReset Kind = "reset" // restart with the same complex
	KindNew   Kind = "new"   // restart with a fresh complex
	KindShow  Kind = "show"  // re-send the current state
	KindClose Kind = "close" // the player left
)

type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Kind      Kind
	Content   string
	Timestamp time.Time
	Metadata  map[string]any
}

func (m *InboundMessage) SessionKey() string {
	return m.Channel + ":" + m.ChatID
}

type OutboundMessage struct {
	Channel  string
	ChatID   string
	Content  string
	Metadata map[string]any
}

// ParseCommand maps chat text to a Kind. Slash commands select the kind;
// anything else is an edit of the name.
func ParseCommand(text string) (Kind, string) {
	if !strings.HasPrefix(text, "/") {
		return KindEdit, text
	}
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "key":
		return KindKey, arg
	case "reset":
		return KindReset, ""
	case "new", "start":
		return KindNew, ""
	case "show":
		return KindShow, ""
	case "name":
		return KindEdit, arg
	}
	return KindEdit, text
}
