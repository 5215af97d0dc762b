// Package render turns session snapshots into text for the hosts.
package render

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/aptname/internal/game"
)

const winBanner = "🎉 축: 아파트 이름 짓기 성공!"

// Markdown renders snap with **bold** and ~~strike~~ markup, the feed in
// display order below the name.
func Markdown(snap game.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏢 **%s**\n", snap.Name)
	fmt.Fprintf(&sb, "요구사항 %d/%d", snap.Satisfied, snap.Total)
	for _, e := range snap.Feed {
		sb.WriteString("\n\n")
		sb.WriteString(Entry(e))
	}
	if snap.Won {
		sb.WriteString("\n\n" + winBanner)
	}
	return sb.String()
}

// Entry renders one feed message.
func Entry(e game.Entry) string {
	switch e.Kind {
	case "event":
		if !e.Active {
			return fmt.Sprintf("%s ~~%s~~", e.Icon, firstLine(e.Text))
		}
		return e.Icon + " " + e.Text
	default:
		mark := "❌"
		if e.Done {
			mark = "✅"
		}
		if e.Profile == "" {
			return mark + " " + e.Text
		}
		return fmt.Sprintf("%s **%s**\n%s", mark, e.Profile, e.Text)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Plain strips the markup Markdown emits.
func Plain(s string) string {
	return strings.NewReplacer("**", "", "~~", "").Replace(s)
}

// TelegramHTML converts Markdown output to Telegram HTML.
func TelegramHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = wrapPairs(s, "**", "<b>", "</b>")
	s = wrapPairs(s, "~~", "<s>", "</s>")
	return s
}

// wrapPairs replaces each complete pair of delim with open and close tags.
// An unpaired trailing delim is left as written.
func wrapPairs(s, delim, openTag, closeTag string) string {
	for {
		start := strings.Index(s, delim)
		if start == -1 {
			return s
		}
		end := strings.Index(s[start+len(delim):], delim)
		if end == -1 {
			return s
		}
		end += start + len(delim)
		s = s[:start] + openTag + s[start+len(delim):end] + closeTag + s[end+len(delim):]
	}
}
