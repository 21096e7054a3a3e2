// Package input collects the items a run operates on: file paths, piped
// text, and ripgrep match streams.
package input

import (
	"github.com/walteh/rplc/pkg/text"
)

// Kind identifies where an item's content comes from
type Kind int

const (
	KindPath    Kind = iota // Content is read from Path
	KindText                // Content is supplied inline
	KindMatches             // Content is read from Path, edits restricted to Ranges
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindMatches:
		return "matches"
	default:
		return "unknown"
	}
}

// TextName is the display name of an inline text item.
const TextName = "<stdin>"

// 📄 Item is one unit of work for the engine.
type Item struct {
	Kind    Kind
	Path    string
	Content []byte
	Ranges  []text.ByteRange
}

// Path creates a file item.
func Path(p string) Item {
	return Item{Kind: KindPath, Path: p}
}

// Text creates an inline item. It has no backing file.
func Text(b []byte) Item {
	return Item{Kind: KindText, Content: b}
}

// Matches creates a file item whose edits are limited to ranges. A nil
// slice means no restriction; an empty one allows nothing.
func Matches(p string, ranges []text.ByteRange) Item {
	return Item{Kind: KindMatches, Path: p, Ranges: ranges}
}

// Name returns the path, or TextName for inline items.
func (i Item) Name() string {
	if i.Kind == KindText {
		return TextName
	}
	return i.Path
}

// Virtual reports whether the item has no file behind it.
func (i Item) Virtual() bool {
	return i.Kind == KindText
}
