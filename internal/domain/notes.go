package domain

import "fmt"

// Note is a saved note with its user-facing position
type Note struct {
	Position int
	Text     string
}

// AppendNote adds a note to the end of the list
func (r *UserRecord) AppendNote(text string) {
	r.Notes = append(r.Notes, text)
}

// ListNotes returns notes in insertion order with 1-based positions
func (r UserRecord) ListNotes() []Note {
	notes := make([]Note, 0, len(r.Notes))
	for i, text := range r.Notes {
		notes = append(notes, Note{Position: i + 1, Text: text})
	}
	return notes
}

// DeleteNote removes the note at a 1-based position and returns its text.
// The list is left untouched when position is outside [1, count].
func (r *UserRecord) DeleteNote(position int) (string, error) {
	if position < 1 || position > len(r.Notes) {
		return "", fmt.Errorf("note %d of %d: %w", position, len(r.Notes), ErrOutOfRange)
	}

	idx := position - 1
	removed := r.Notes[idx]

	notes := make([]string, 0, len(r.Notes)-1)
	notes = append(notes, r.Notes[:idx]...)
	notes = append(notes, r.Notes[idx+1:]...)
	r.Notes = notes

	return removed, nil
}
