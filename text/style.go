package text

import "fmt"

// Style is a formatting kind that can be attached to a run of text.
type Style uint8

const (
	// StyleNormie is the sentinel "no formatting" value.
	StyleNormie Style = iota
	// StyleSelected marks locally-highlighted text. It is only ever used on
	// the client and is never persisted to the shared document.
	StyleSelected
	StyleBold
	StyleItalic
	StyleLink
)

var styleNames = map[Style]string{
	StyleNormie:   "Normie",
	StyleSelected: "Selected",
	StyleBold:     "Bold",
	StyleItalic:   "Italic",
	StyleLink:     "Link",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", uint8(s))
}

// MarshalText encodes the style as its name, which also makes Style
// usable as a JSON object key.
func (s Style) MarshalText() ([]byte, error) {
	name, ok := styleNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown style %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *Style) UnmarshalText(data []byte) error {
	for style, name := range styleNames {
		if name == string(data) {
			*s = style
			return nil
		}
	}
	return fmt.Errorf("unknown style %q", string(data))
}

// StyleMap is the full formatting of one run: each style maps to an
// optional payload (a Link carries its target URL, most styles carry nil).
//
// Style maps attached to a DocString are shared and must be treated as
// immutable; every mutation path builds a new map and swaps the handle.
type StyleMap map[Style]*string

// NewStyleMap builds a map of payload-less styles.
func NewStyleMap(styles ...Style) StyleMap {
	m := make(StyleMap, len(styles))
	for _, s := range styles {
		m[s] = nil
	}
	return m
}

// Clone returns an independent shallow copy.
func (m StyleMap) Clone() StyleMap {
	if m == nil {
		return nil
	}
	out := make(StyleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same styles with the same payloads.
func (m StyleMap) Equal(other StyleMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok {
			return false
		}
		if (v == nil) != (ov == nil) {
			return false
		}
		if v != nil && *v != *ov {
			return false
		}
	}
	return true
}

// StyleSet names which styles to remove from a run, no payloads needed.
type StyleSet map[Style]struct{}

// NewStyleSet builds a set from the given styles.
func NewStyleSet(styles ...Style) StyleSet {
	set := make(StyleSet, len(styles))
	for _, s := range styles {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether the style is in the set.
func (s StyleSet) Contains(style Style) bool {
	_, ok := s[style]
	return ok
}

// Payload is a convenience for building StyleMap values in place.
func Payload(s string) *string {
	return &s
}
