package ot

import (
	"fmt"

	"github.com/halissimsek/edit-text/text"
)

// Transform takes two concurrent operations a and b (both applied to the same
// document state) and returns aPrime and bPrime such that:
//
//	Apply(Apply(runs, a), bPrime) == Apply(Apply(runs, b), aPrime)
func Transform(a, b Operation) (aPrime, bPrime Operation, err error) {
	if a.BaseLen() != b.BaseLen() {
		return Operation{}, Operation{}, fmt.Errorf(
			"base lengths differ: a=%d, b=%d", a.BaseLen(), b.BaseLen())
	}

	var ap, bp []Component
	ia := newIter(a.Ops)
	ib := newIter(b.Ops)

	for ia.hasNext() || ib.hasNext() {
		// a's insert goes first (tie-break).
		if ia.peekType() == compInsert {
			c := ia.take(0)
			ap = append(ap, Component{Insert: c.Insert})
			bp = append(bp, Component{Retain: c.Insert.CharLen()})
			continue
		}
		if ib.peekType() == compInsert {
			c := ib.take(0)
			bp = append(bp, Component{Insert: c.Insert})
			ap = append(ap, Component{Retain: c.Insert.CharLen()})
			continue
		}

		// Both consume input. Take the shorter chunk.
		if !ia.hasNext() || !ib.hasNext() {
			return Operation{}, Operation{}, fmt.Errorf("transform ran out of operations")
		}

		n := min(ia.peekLen(), ib.peekLen())
		ca := ia.take(n)
		cb := ib.take(n)

		switch {
		case ca.IsRetain() && cb.IsRetain():
			// Restyles ride on retains: each side keeps its own changes.
			ap = append(ap, Component{Retain: n, Styles: ca.Styles, Unstyle: ca.Unstyle})
			bp = append(bp, Component{Retain: n, Styles: cb.Styles, Unstyle: cb.Unstyle})
		case ca.IsDelete() && cb.IsRetain():
			ap = append(ap, Component{Delete: n})
		case ca.IsRetain() && cb.IsDelete():
			bp = append(bp, Component{Delete: n})
		case ca.IsDelete() && cb.IsDelete():
			// Both delete same chars — nothing to do.
		}
	}

	return Operation{Ops: compact(ap)}, Operation{Ops: compact(bp)}, nil
}

// compact merges adjacent components of the same type. Retains merge only
// when neither carries style changes; inserts merge only when their runs
// share identical styling.
func compact(ops []Component) []Component {
	if len(ops) == 0 {
		return ops
	}
	var result []Component
	for _, c := range ops {
		if len(result) == 0 {
			result = append(result, c)
			continue
		}
		last := &result[len(result)-1]
		switch {
		case c.IsRetain() && last.IsRetain() && !c.HasStyling() && !last.HasStyling():
			last.Retain += c.Retain
		case c.IsDelete() && last.IsDelete():
			last.Delete += c.Delete
		case c.IsInsert() && last.IsInsert() && sameStyling(*last.Insert, *c.Insert):
			merged := *last.Insert
			merged.Append(c.Insert.String())
			last.Insert = &merged
		default:
			result = append(result, c)
		}
	}
	return result
}

// compType identifies a component kind for the iterator.
type compType int

const (
	compNone compType = iota
	compRetain
	compInsert
	compDelete
)

// iter walks through operation components, allowing partial consumption.
// Offsets are in characters.
type iter struct {
	ops    []Component
	index  int
	offset int
}

func newIter(ops []Component) *iter {
	return &iter{ops: ops}
}

func (it *iter) hasNext() bool {
	return it.index < len(it.ops)
}

func (it *iter) peekType() compType {
	if !it.hasNext() {
		return compNone
	}
	c := it.ops[it.index]
	switch {
	case c.IsInsert():
		return compInsert
	case c.IsDelete():
		return compDelete
	default:
		return compRetain
	}
}

func (it *iter) peekLen() int {
	if !it.hasNext() {
		return 0
	}
	c := it.ops[it.index]
	switch {
	case c.IsRetain():
		return c.Retain - it.offset
	case c.IsInsert():
		return c.Insert.CharLen() - it.offset
	case c.IsDelete():
		return c.Delete - it.offset
	}
	return 0
}

// insertTail returns the unconsumed part of an insert run, splitting off
// the already-consumed prefix through the run's own zero-copy split.
func (it *iter) insertTail(run *text.DocString) *text.DocString {
	if it.offset == 0 {
		return run
	}
	_, rest, err := run.SplitAt(it.offset)
	if err != nil {
		// The offset only ever advances by amounts peekLen reported.
		panic(fmt.Sprintf("ot: iterator offset %d invalid for insert %q: %v", it.offset, run.String(), err))
	}
	return &rest
}

// take consumes n units from the current component. For inserts, n=0 means
// take all.
func (it *iter) take(n int) Component {
	c := it.ops[it.index]
	remaining := it.peekLen()

	switch {
	case c.IsRetain():
		if n >= remaining {
			it.index++
			it.offset = 0
			return Component{Retain: remaining, Styles: c.Styles, Unstyle: c.Unstyle}
		}
		it.offset += n
		return Component{Retain: n, Styles: c.Styles, Unstyle: c.Unstyle}

	case c.IsInsert():
		if n == 0 || n >= remaining {
			tail := it.insertTail(c.Insert)
			it.index++
			it.offset = 0
			return Component{Insert: tail}
		}
		rest := it.insertTail(c.Insert)
		mid, _, err := rest.SplitAt(n)
		if err != nil {
			panic(fmt.Sprintf("ot: cannot take %d chars of insert %q: %v", n, rest.String(), err))
		}
		it.offset += n
		return Component{Insert: &mid}

	case c.IsDelete():
		if n >= remaining {
			it.index++
			it.offset = 0
			return Component{Delete: remaining}
		}
		it.offset += n
		return Component{Delete: n}
	}

	it.index++
	return Component{}
}
