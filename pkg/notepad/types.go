// Package notepad keeps folders and notes in a key-value store.
//
// Every collection is stored as one JSON array under one key and every
// mutation reads the whole array, changes it in memory and writes it back.
// There is no locking: callers serialize mutations against the same key and
// the last writer wins.
package notepad

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultFolderTitle is the folder that always exists and cannot be deleted.
	DefaultFolderTitle = "Geral"

	// DateLayout is the human-readable stamp written on every save.
	DateLayout = "Mon Jan 02 2006"
)

// Default storage keys. {title} in NotesKeyTemplate is replaced by the folder title.
const (
	DefaultFoldersKey       = "folders"
	DefaultNotesKeyTemplate = "{title}_notes"
	DefaultTopLevelNotesKey = "notes"
)

// Clock returns the current time. Tests replace it to pin date stamps.
type Clock func() time.Time

// Folder is a named partition of notes. Its title is the partition key.
type Folder struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Date  string    `json:"date"`
}

// NoteKind tells the two note shapes apart.
type NoteKind int

const (
	// FolderScoped notes live under "<folder title>_notes" and need only a title.
	FolderScoped NoteKind = iota
	// TopLevel notes live under the fixed "notes" key, need a title and a
	// description and may carry a reminder.
	TopLevel
)

func (k NoteKind) String() string {
	switch k {
	case FolderScoped:
		return "folder-scoped"
	case TopLevel:
		return "top-level"
	default:
		return "unknown"
	}
}

// Note is a note kept inside a folder.
type Note struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    string    `json:"date"`
}

// TopLevelNote is a note outside any folder, optionally with a reminder.
type TopLevelNote struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Reminder    *time.Time `json:"reminder,omitempty"`
}

func (Note) Kind() NoteKind { return FolderScoped }

func (TopLevelNote) Kind() NoteKind { return TopLevel }

// record is what the shared sequence logic needs from a stored element.
type record[T any] interface {
	identity() uuid.UUID
	stamped(id uuid.UUID, date string) T
	validate() error
}

func (f Folder) identity() uuid.UUID { return f.ID }

func (f Folder) stamped(id uuid.UUID, date string) Folder {
	f.ID, f.Date = id, date
	return f
}

func (f Folder) validate() error {
	if blank(f.Title) {
		return &ValidationError{Field: "title", Message: "folder title is required"}
	}
	return nil
}

func (n Note) identity() uuid.UUID { return n.ID }

func (n Note) stamped(id uuid.UUID, date string) Note {
	n.ID, n.Date = id, date
	return n
}

func (n Note) validate() error {
	if blank(n.Title) {
		return &ValidationError{Field: "title", Message: "note title is required"}
	}
	return nil
}

func (n TopLevelNote) identity() uuid.UUID { return n.ID }

func (n TopLevelNote) stamped(id uuid.UUID, date string) TopLevelNote {
	n.ID, n.Date = id, date
	return n
}

func (n TopLevelNote) validate() error {
	if blank(n.Title) || blank(n.Description) {
		return &ValidationError{Field: "title", Message: "please fill in both the title and description"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
