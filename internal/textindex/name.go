package textindex

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name is the observed text of one session: a root element holding a single
// span, edited by the player as a whole and by events through ranges.
type Name struct {
	root *Node
}

func NewName(text string) *Name {
	n := &Name{}
	n.Set(text)
	return n
}

// Set replaces the whole text, as a player edit does. Input is NFC-normalised
// so that jamo typed one by one compose into syllable blocks.
func (n *Name) Set(text string) {
	n.root = NewElement(NewElement(NewText(norm.NFC.String(text))))
}

func (n *Name) Root() *Node { return n.root }

func (n *Name) String() string { return n.root.TextContent() }

func (n *Name) Graphemes() []string { return Graphemes(n.String()) }

func (n *Name) Len() int { return Count(n.String()) }

func (n *Name) Contains(s string) bool { return strings.Contains(n.String(), s) }

// Delete removes graphemes [start, end).
func (n *Name) Delete(start, end int) error {
	r, err := AddressRange(n.root, start, end)
	if err != nil {
		return err
	}
	r.DeleteContents()
	return nil
}

// Insert inserts s before grapheme offset at.
func (n *Name) Insert(at int, s string) error {
	r, err := AddressRange(n.root, at, at)
	if err != nil {
		return err
	}
	r.InsertText(s)
	return nil
}

// Replace swaps graphemes [start, end) for s.
func (n *Name) Replace(start, end int, s string) error {
	r, err := AddressRange(n.root, start, end)
	if err != nil {
		return err
	}
	r.DeleteContents()
	r.InsertText(s)
	return nil
}
