package domain

import "strings"

// MenuState represents user's current interaction mode
type MenuState string

const (
	MenuMain    MenuState = "main"
	MenuConvert MenuState = "convert"
	MenuWeather MenuState = "weather"
	MenuNotes   MenuState = "notes"
)

// ParseMenuState maps a stored value to a menu state.
// Unknown or empty values fall back to MenuMain.
func ParseMenuState(s string) MenuState {
	switch MenuState(strings.ToLower(strings.TrimSpace(s))) {
	case MenuConvert:
		return MenuConvert
	case MenuWeather:
		return MenuWeather
	case MenuNotes:
		return MenuNotes
	default:
		return MenuMain
	}
}

// String returns the wire value of the state
func (m MenuState) String() string {
	return string(ParseMenuState(string(m)))
}

// MarshalText implements encoding.TextMarshaler
func (m MenuState) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MenuState) UnmarshalText(text []byte) error {
	*m = ParseMenuState(string(text))
	return nil
}

// UserRecord holds everything persisted for a single user
type UserRecord struct {
	Menu  MenuState `json:"menu"`
	Notes []string  `json:"notes"`
}

// NewUserRecord returns the record synthesized on first contact
func NewUserRecord() UserRecord {
	return UserRecord{Menu: MenuMain, Notes: []string{}}
}

// Normalize fills defaults for fields missing in stored data
func (r *UserRecord) Normalize() {
	r.Menu = ParseMenuState(string(r.Menu))
	if r.Notes == nil {
		r.Notes = []string{}
	}
}

// Clone returns a deep copy of the record
func (r UserRecord) Clone() UserRecord {
	notes := make([]string, len(r.Notes))
	copy(notes, r.Notes)
	return UserRecord{Menu: r.Menu, Notes: notes}
}

// Equal reports whether two records hold the same data
func (r UserRecord) Equal(other UserRecord) bool {
	if r.Menu.String() != other.Menu.String() || len(r.Notes) != len(other.Notes) {
		return false
	}
	for i := range r.Notes {
		if r.Notes[i] != other.Notes[i] {
			return false
		}
	}
	return true
}

// Document maps user id to user record. It is the unit of persistence
// for whole-document stores.
type Document map[int64]UserRecord

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for id, rec := range d {
		out[id] = rec.Clone()
	}
	return out
}

// Normalize fills defaults on every record
func (d Document) Normalize() {
	for id, rec := range d {
		rec.Normalize()
		d[id] = rec
	}
}
