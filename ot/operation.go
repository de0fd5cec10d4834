package ot

import (
	"fmt"

	"github.com/halissimsek/edit-text/text"
)

// Component is a single step in an OT operation. Exactly one of Retain,
// Insert, or Delete is set. All counts are in characters (Unicode scalar
// values), never bytes. A Retain may additionally carry style changes to
// apply over the retained span.
type Component struct {
	Retain  int             `json:"retain,omitempty"`  // keep N chars unchanged
	Insert  *text.DocString `json:"insert,omitempty"`  // insert a styled run at the cursor
	Delete  int             `json:"delete,omitempty"`  // remove N chars at the cursor
	Styles  text.StyleMap   `json:"styles,omitempty"`  // styles to apply to retained chars
	Unstyle text.StyleSet   `json:"unstyle,omitempty"` // styles to strip from retained chars
}

func (c Component) IsRetain() bool { return c.Retain > 0 && c.Insert == nil && c.Delete == 0 }
func (c Component) IsInsert() bool { return c.Insert != nil }
func (c Component) IsDelete() bool { return c.Delete > 0 && c.Insert == nil }

// HasStyling reports whether a retain carries style changes.
func (c Component) HasStyling() bool { return len(c.Styles) > 0 || len(c.Unstyle) > 0 }

// Operation is a sequence of components that transforms a document.
// Components are applied left-to-right, advancing a cursor through the
// input runs.
type Operation struct {
	Ops []Component `json:"ops"`
}

// BaseLen returns the expected input document length in characters.
func (op Operation) BaseLen() int {
	n := 0
	for _, c := range op.Ops {
		if c.IsRetain() {
			n += c.Retain
		} else if c.IsDelete() {
			n += c.Delete
		}
	}
	return n
}

// TargetLen returns the document character length after the operation.
func (op Operation) TargetLen() int {
	n := 0
	for _, c := range op.Ops {
		if c.IsRetain() {
			n += c.Retain
		} else if c.IsInsert() {
			n += c.Insert.CharLen()
		}
	}
	return n
}

// IsNoop returns true if the operation makes no changes.
func (op Operation) IsNoop() bool {
	for _, c := range op.Ops {
		if c.IsInsert() || c.IsDelete() {
			return false
		}
		if c.IsRetain() && c.HasStyling() {
			return false
		}
	}
	return true
}

// Apply applies the operation to a list of runs, splitting runs at component
// boundaries. Retained segments keep their backing buffers (zero-copy splits);
// retained segments with style changes get new style maps; adjacent output
// runs with identical styling are merged.
func Apply(runs []text.DocString, op Operation) ([]text.DocString, error) {
	if got := runsCharLen(runs); got != op.BaseLen() {
		return nil, fmt.Errorf("document length %d != operation base length %d", got, op.BaseLen())
	}

	// The walk consumes the input list, so work on a copy.
	in := append([]text.DocString(nil), runs...)
	var out []text.DocString

	consume := func(n int, keep bool, restyle Component) error {
		for n > 0 {
			if len(in) == 0 {
				return fmt.Errorf("operation walked past the last run")
			}
			cur := in[0]
			cl := cur.CharLen()
			if cl == 0 {
				in = in[1:]
				continue
			}
			if cl <= n {
				in = in[1:]
				n -= cl
			} else {
				left, right, err := cur.SplitAt(n)
				if err != nil {
					return err
				}
				cur, in[0] = left, right
				n = 0
			}
			if keep {
				if restyle.Unstyle != nil {
					cur.RemoveStyles(restyle.Unstyle)
				}
				if restyle.Styles != nil {
					cur.ExtendStyles(restyle.Styles)
				}
				out = append(out, cur)
			}
		}
		return nil
	}

	for _, c := range op.Ops {
		switch {
		case c.IsRetain():
			if err := consume(c.Retain, true, c); err != nil {
				return nil, err
			}
		case c.IsInsert():
			out = append(out, *c.Insert)
		case c.IsDelete():
			if err := consume(c.Delete, false, Component{}); err != nil {
				return nil, err
			}
		}
	}
	return compactRuns(out), nil
}

// compactRuns merges adjacent runs whose styling matches and drops empty
// runs. Merging goes through Append, which is the one copying path.
func compactRuns(runs []text.DocString) []text.DocString {
	var out []text.DocString
	for _, r := range runs {
		if r.IsEmpty() {
			continue
		}
		if len(out) > 0 && sameStyling(out[len(out)-1], r) {
			out[len(out)-1].Append(r.String())
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameStyling(a, b text.DocString) bool {
	as, bs := a.Styles(), b.Styles()
	if (as == nil) != (bs == nil) {
		return false
	}
	return as == nil || as.Equal(bs)
}

func runsCharLen(runs []text.DocString) int {
	n := 0
	for _, r := range runs {
		n += r.CharLen()
	}
	return n
}

// NewInsert creates an operation that inserts a run at pos in a document of
// docLen characters.
func NewInsert(pos int, run text.DocString, docLen int) Operation {
	var ops []Component
	if pos > 0 {
		ops = append(ops, Component{Retain: pos})
	}
	ops = append(ops, Component{Insert: &run})
	if remaining := docLen - pos; remaining > 0 {
		ops = append(ops, Component{Retain: remaining})
	}
	return Operation{Ops: ops}
}

// NewDelete creates an operation that deletes count chars at pos in a
// document of docLen characters.
func NewDelete(pos, count, docLen int) Operation {
	var ops []Component
	if pos > 0 {
		ops = append(ops, Component{Retain: pos})
	}
	ops = append(ops, Component{Delete: count})
	if remaining := docLen - pos - count; remaining > 0 {
		ops = append(ops, Component{Retain: remaining})
	}
	return Operation{Ops: ops}
}

// NewRestyle creates an operation that applies and/or strips styles over
// count chars at pos in a document of docLen characters.
func NewRestyle(pos, count int, styles text.StyleMap, unstyle text.StyleSet, docLen int) Operation {
	var ops []Component
	if pos > 0 {
		ops = append(ops, Component{Retain: pos})
	}
	ops = append(ops, Component{Retain: count, Styles: styles, Unstyle: unstyle})
	if remaining := docLen - pos - count; remaining > 0 {
		ops = append(ops, Component{Retain: remaining})
	}
	return Operation{Ops: ops}
}
