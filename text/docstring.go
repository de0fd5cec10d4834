// Package text implements the styled text runs that document content is
// built from. A run is an immutable view into a shared backing buffer, so
// splitting text while applying operations never copies the underlying
// characters.
package text

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Errors returned for out-of-range indices and invalid seeks. These signal
// logic errors in the calling operation engine; callers must not paper over
// them by clamping.
var (
	ErrIndexOutOfRange = errors.New("char index out of range")
	ErrSeekOutOfRange  = errors.New("seek out of range")
	ErrRuneBoundary    = errors.New("seek does not land on a rune boundary")
)

// DocString is a logical string backed by a shared immutable buffer.
// It holds an optional half-open byte range into the buffer (absent means
// the whole buffer) and an optional shared style map. Splitting and seeking
// only adjust the range; the buffer itself is never copied except by Append.
//
// The zero value is an empty, styleless run.
type DocString struct {
	buf    *string
	start  int
	end    int
	ranged bool
	styles StyleMap
}

// NewDocString creates a styleless run over its own buffer.
func NewDocString(s string) DocString {
	return DocString{buf: &s}
}

// NewStyledDocString creates a run with the given style map attached.
// The map is adopted by reference and must not be mutated afterwards.
func NewStyledDocString(s string, styles StyleMap) DocString {
	return DocString{buf: &s, styles: styles}
}

// bounds resolves the view range against the backing buffer.
func (ds DocString) bounds() (int, int) {
	if ds.buf == nil {
		return 0, 0
	}
	if ds.ranged {
		return ds.start, ds.end
	}
	return 0, len(*ds.buf)
}

// String returns the visible text: the buffer sliced by the view range.
// O(1), no allocation.
func (ds DocString) String() string {
	if ds.buf == nil {
		return ""
	}
	start, end := ds.bounds()
	return (*ds.buf)[start:end]
}

// IsEmpty reports whether the visible text is empty.
func (ds DocString) IsEmpty() bool {
	start, end := ds.bounds()
	return start == end
}

// CharLen returns the number of Unicode scalar values in the visible text.
func (ds DocString) CharLen() int {
	return utf8.RuneCountInString(ds.String())
}

// Styles returns the shared style map handle, or nil if no styles are
// attached. Callers must treat the returned map as immutable.
func (ds DocString) Styles() StyleMap {
	return ds.styles
}

// RemoveStyles drops the given styles from the attached map, replacing it
// with a new map so other runs sharing the old one are untouched. A no-op
// when no styles are attached; removing every key leaves a present-but-empty
// map, which is distinct from "no styles attached".
func (ds *DocString) RemoveStyles(styles StyleSet) {
	if ds.styles == nil {
		return
	}
	next := make(StyleMap, len(ds.styles))
	for k, v := range ds.styles {
		if !styles.Contains(k) {
			next[k] = v
		}
	}
	ds.styles = next
}

// ExtendStyles merges the given styles into the attached map, with incoming
// entries overriding existing keys. When no styles are attached the incoming
// map is adopted by reference.
func (ds *DocString) ExtendStyles(styles StyleMap) {
	if ds.styles == nil {
		ds.styles = styles
		return
	}
	next := ds.styles.Clone()
	for k, v := range styles {
		next[k] = v
	}
	ds.styles = next
}

// Append adds text (with the same styling) to the end of this run. This is
// the one operation that copies: the visible content plus the suffix are
// materialized into a new owned buffer and the view range is cleared.
func (ds *DocString) Append(s string) {
	value := ds.String() + s
	ds.buf = &value
	ds.ranged = false
	ds.start, ds.end = 0, 0
}

// byteOffsetOfChar walks n runes into s and returns the byte offset where
// the n-th rune starts. This scan is the single source of truth for
// character-to-byte conversion; everything else derives byte deltas from it.
func byteOffsetOfChar(s string, n int) int {
	off := 0
	for i := 0; i < n && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// SplitAt cuts the run at a character offset within the visible text,
// returning two runs that share the backing buffer and the style map.
// charIndex 0 or CharLen() returns one empty and one full run. An index
// outside [0, CharLen()] returns ErrIndexOutOfRange.
func (ds DocString) SplitAt(charIndex int) (DocString, DocString, error) {
	if charIndex < 0 || charIndex > ds.CharLen() {
		return DocString{}, DocString{}, fmt.Errorf("split at %d of %d chars: %w", charIndex, ds.CharLen(), ErrIndexOutOfRange)
	}
	start, end := ds.bounds()
	byteIndex := byteOffsetOfChar(ds.String(), charIndex)

	left := DocString{
		buf:    ds.buf,
		start:  start,
		end:    start + byteIndex,
		ranged: true,
		styles: ds.styles,
	}
	right := DocString{
		buf:    ds.buf,
		start:  start + byteIndex,
		end:    end,
		ranged: true,
		styles: ds.styles,
	}
	return left, right, nil
}

// SeekForward narrows the view by moving its start forward n bytes,
// validating that the new start stays within the range and lands on a
// rune boundary.
func (ds *DocString) SeekForward(n int) error {
	if ds.buf == nil {
		if n != 0 {
			return fmt.Errorf("seek forward %d bytes in empty run: %w", n, ErrSeekOutOfRange)
		}
		return nil
	}
	start, end := ds.bounds()
	next := start + n
	if n < 0 || next > end {
		return fmt.Errorf("seek forward %d bytes from [%d,%d): %w", n, start, end, ErrSeekOutOfRange)
	}
	if next < len(*ds.buf) && !utf8.RuneStart((*ds.buf)[next]) {
		return fmt.Errorf("seek forward %d bytes to offset %d: %w", n, next, ErrRuneBoundary)
	}
	ds.start, ds.end, ds.ranged = next, end, true
	return nil
}

// SeekBackward widens the view by moving its start back n bytes, with the
// same validation as SeekForward.
func (ds *DocString) SeekBackward(n int) error {
	if ds.buf == nil {
		if n != 0 {
			return fmt.Errorf("seek backward %d bytes in empty run: %w", n, ErrSeekOutOfRange)
		}
		return nil
	}
	start, end := ds.bounds()
	next := start - n
	if n < 0 || next < 0 {
		return fmt.Errorf("seek backward %d bytes from [%d,%d): %w", n, start, end, ErrSeekOutOfRange)
	}
	if next < len(*ds.buf) && !utf8.RuneStart((*ds.buf)[next]) {
		return fmt.Errorf("seek backward %d bytes to offset %d: %w", n, next, ErrRuneBoundary)
	}
	ds.start, ds.end, ds.ranged = next, end, true
	return nil
}

// SeekForwardUnchecked moves the view's start forward n raw bytes without
// validating bounds or rune boundaries. The caller must already know that
// the resulting offset lands on a character boundary within the range,
// typically because the delta came out of SplitAt's scan. Use SeekForward
// unless the rescan cost has been measured to matter.
func (ds *DocString) SeekForwardUnchecked(n int) {
	start, end := ds.bounds()
	ds.start, ds.end, ds.ranged = start+n, end, true
}

// SeekBackwardUnchecked is the unchecked counterpart of SeekBackward.
// Same contract as SeekForwardUnchecked.
func (ds *DocString) SeekBackwardUnchecked(n int) {
	start, end := ds.bounds()
	ds.start, ds.end, ds.ranged = start-n, end, true
}

// Equal reports whether both runs have identical visible text. Backing
// buffer identity, view ranges, and attached styles are ignored: this is
// the content-only equality the conflict-resolution logic relies on.
func (ds DocString) Equal(other DocString) bool {
	return ds.String() == other.String()
}

// MarshalJSON encodes the run in its dual wire form: a bare string when no
// styles are attached, otherwise a two-element array of text and style map.
func (ds DocString) MarshalJSON() ([]byte, error) {
	if ds.styles == nil {
		return json.Marshal(ds.String())
	}
	return json.Marshal([2]interface{}{ds.String(), ds.styles})
}

// UnmarshalJSON accepts either wire shape. A short array is an error naming
// the missing position.
func (ds *DocString) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*ds = NewDocString(plain)
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("docstring: expected string or [text, styles] pair")
	}
	if len(parts) < 1 {
		return fmt.Errorf("docstring: missing content element")
	}
	if len(parts) < 2 {
		return fmt.Errorf("docstring: missing styles element")
	}
	if len(parts) > 2 {
		return fmt.Errorf("docstring: unexpected element after styles")
	}

	var content string
	if err := json.Unmarshal(parts[0], &content); err != nil {
		return fmt.Errorf("docstring content: %w", err)
	}
	var styles StyleMap
	if err := json.Unmarshal(parts[1], &styles); err != nil {
		return fmt.Errorf("docstring styles: %w", err)
	}
	if styles == nil {
		styles = StyleMap{}
	}
	*ds = NewStyledDocString(content, styles)
	return nil
}
