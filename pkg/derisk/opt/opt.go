// Package opt provides an explicit optional string used for match results.
//
// A result column is either a value or "no value"; the zero String is the
// latter, so results can be built without sentinel strings.
package opt

import "encoding/json"

// String is a string that may be absent.
type String struct {
	val string
	ok  bool
}

// Some returns a present value.
func Some(s string) String {
	return String{val: s, ok: true}
}

// None returns an absent value.
func None() String {
	return String{}
}

// FromPtr converts a nullable pointer.
func FromPtr(p *string) String {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (s String) Get() (string, bool) {
	return s.val, s.ok
}

// Valid reports whether a value is present.
func (s String) Valid() bool {
	return s.ok
}

// OrElse returns the value, or def when absent.
func (s String) OrElse(def string) string {
	if !s.ok {
		return def
	}
	return s.val
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (s String) Ptr() *string {
	if !s.ok {
		return nil
	}
	v := s.val
	return &v
}

func (s String) String() string {
	if !s.ok {
		return "<none>"
	}
	return s.val
}

// MarshalJSON encodes an absent value as null.
func (s String) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return json.Marshal(s.val)
}

// UnmarshalJSON decodes null as an absent value.
func (s *String) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = None()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}
