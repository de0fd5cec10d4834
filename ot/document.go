package ot

import (
	"fmt"

	"github.com/halissimsek/edit-text/text"
)

// Document represents a collaborative document as a list of styled runs,
// with its full operation history.
type Document struct {
	Runs    []text.DocString
	Version int
	History []Operation
}

// NewDocument creates a new document with the given initial plain content.
func NewDocument(content string) *Document {
	d := &Document{}
	if content != "" {
		d.Runs = []text.DocString{text.NewDocString(content)}
	}
	return d
}

// Content returns the document's visible text with styling flattened away.
func (d *Document) Content() string {
	s := ""
	for _, r := range d.Runs {
		s += r.String()
	}
	return s
}

// CharLen returns the document length in characters.
func (d *Document) CharLen() int {
	return runsCharLen(d.Runs)
}

// Apply applies an operation to the document, appending it to history.
func (d *Document) Apply(op Operation) error {
	if op.IsNoop() {
		return nil
	}
	result, err := Apply(d.Runs, op)
	if err != nil {
		return fmt.Errorf("apply to document v%d: %w", d.Version, err)
	}
	d.Runs = result
	d.Version++
	d.History = append(d.History, op)
	return nil
}
