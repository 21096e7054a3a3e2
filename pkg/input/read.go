package input

import (
	"bufio"
	"bytes"
	"io"

	"gitlab.com/tozd/go/errors"
)

// Delimiters accepted by ReadPaths.
const (
	DelimNewline byte = '\n'
	DelimNUL     byte = 0
)

// ReadPaths reads a delimited list of paths from r. Blank entries are
// skipped. Newline separated entries are trimmed of surrounding space; NUL
// separated entries are taken as is.
func ReadPaths(r io.Reader, delim byte) ([]Item, error) {
	br := bufio.NewReader(r)

	var items []Item
	for {
		chunk, err := br.ReadBytes(delim)
		if len(chunk) > 0 {
			if chunk[len(chunk)-1] == delim {
				chunk = chunk[:len(chunk)-1]
			}
			if delim != DelimNUL {
				chunk = bytes.TrimSpace(chunk)
			}
			if len(chunk) > 0 {
				items = append(items, Path(string(chunk)))
			}
		}
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, errors.Errorf("reading paths: %w", err)
		}
	}
}

// ReadText reads all of r as a single inline item.
func ReadText(r io.Reader) (Item, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Item{}, errors.Errorf("reading text: %w", err)
	}
	return Text(b), nil
}
