package textindex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAddress is returned when a grapheme range cannot be mapped onto a tree.
var ErrAddress = errors.New("grapheme offset out of range")

// AddressError describes a failed AddressRange lookup.
type AddressError struct {
	Start, End int
	Len        int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address range [%d,%d) in text of %d graphemes: %v", e.Start, e.End, e.Len, ErrAddress)
}

func (e *AddressError) Unwrap() error { return ErrAddress }

// Node is an element or a text leaf of a rich-text tree.
type Node struct {
	Text     string
	Children []*Node
	element  bool
}

// NewText returns a text leaf.
func NewText(s string) *Node {
	return &Node{Text: s}
}

// NewElement returns an element node holding children in order.
func NewElement(children ...*Node) *Node {
	return &Node{Children: children, element: true}
}

func (n *Node) IsText() bool { return !n.element }

// TextContent concatenates every text leaf below n in document order.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

func (n *Node) leaves(dst []*Node) []*Node {
	if n.IsText() {
		return append(dst, n)
	}
	for _, c := range n.Children {
		dst = c.leaves(dst)
	}
	return dst
}

type point struct {
	node   *Node
	offset int // bytes into node.Text
}

// resolve descends from n to the text leaf holding grapheme offset. A
// boundary between two children resolves into the earlier one.
func resolve(n *Node, offset int) (point, bool) {
	if n.IsText() {
		b, ok := byteOffset(n.Text, offset)
		if !ok {
			return point{}, false
		}
		return point{node: n, offset: b}, true
	}
	for _, c := range n.Children {
		count := Count(c.TextContent())
		if offset <= count {
			return resolve(c, offset)
		}
		offset -= count
	}
	return point{}, false
}

// Range is an editable span of a tree.
type Range struct {
	root       *Node
	start, end point
}

// AddressRange maps the grapheme range [start, end) of root's text onto an
// editable Range. It fails with an *AddressError when either offset is out of
// bounds or the tree has no leaf at that offset.
func AddressRange(root *Node, start, end int) (Range, error) {
	total := Count(root.TextContent())
	fail := &AddressError{Start: start, End: end, Len: total}
	if start < 0 || end < start || end > total {
		return Range{}, fail
	}
	s, ok := resolve(root, start)
	if !ok {
		return Range{}, fail
	}
	e, ok := resolve(root, end)
	if !ok {
		return Range{}, fail
	}
	return Range{root: root, start: s, end: e}, nil
}

// DeleteContents removes the text covered by the range and collapses it to
// its start.
func (r *Range) DeleteContents() {
	if r.start.node == r.end.node {
		t := r.start.node.Text
		r.start.node.Text = t[:r.start.offset] + t[r.end.offset:]
		r.end = r.start
		return
	}
	inside := false
	for _, leaf := range r.root.leaves(nil) {
		switch {
		case leaf == r.start.node:
			leaf.Text = leaf.Text[:r.start.offset]
			inside = true
		case leaf == r.end.node:
			leaf.Text = leaf.Text[r.end.offset:]
			inside = false
		case inside:
			leaf.Text = ""
		}
	}
	r.end = r.start
}

// InsertText inserts s at the start of the range.
func (r *Range) InsertText(s string) {
	t := r.start.node.Text
	r.start.node.Text = t[:r.start.offset] + s + t[r.start.offset:]
	if r.end.node == r.start.node && r.end.offset >= r.start.offset {
		r.end.offset += len(s)
	}
}
