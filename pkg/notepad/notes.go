package notepad

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/kv"
)

const titlePlaceholder = "{title}"

// keyFunc builds the partition key function for a template such as "{title}_notes".
func keyFunc(template string) func(string) string {
	return func(title string) string {
		return strings.ReplaceAll(template, titlePlaceholder, title)
	}
}

// NoteOptions configures a NoteRepository.
type NoteOptions struct {
	KeyTemplate string
	Clock       Clock
	Logger      *zap.Logger
}

// NoteRepository owns the notes of every folder, one key per folder title.
type NoteRepository struct {
	seq      sequence[Note]
	template string
	key      func(string) string
}

func NewNoteRepository(store kv.Store, opts NoteOptions) *NoteRepository {
	if opts.KeyTemplate == "" || !strings.Contains(opts.KeyTemplate, titlePlaceholder) {
		opts.KeyTemplate = DefaultNotesKeyTemplate
	}
	return &NoteRepository{
		seq:      sequence[Note]{store: store, clock: nowIfNil(opts.Clock), log: nopIfNil(opts.Logger).Named("notes")},
		template: opts.KeyTemplate,
		key:      keyFunc(opts.KeyTemplate),
	}
}

// Key returns the storage key holding the notes of folderTitle.
func (r *NoteRepository) Key(folderTitle string) string {
	return r.key(folderTitle)
}

// TitleFromKey is the inverse of Key. ok is false for keys that are not note partitions.
func (r *NoteRepository) TitleFromKey(key string) (string, bool) {
	prefix, suffix, _ := strings.Cut(r.template, titlePlaceholder)
	if len(key) <= len(prefix)+len(suffix) || !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
		return "", false
	}
	return key[len(prefix) : len(key)-len(suffix)], true
}

func folderRequired(folderTitle string) error {
	if blank(folderTitle) {
		return &ValidationError{Field: "folder", Message: "folder title is required"}
	}
	return nil
}

// List returns the notes of folderTitle in order.
func (r *NoteRepository) List(ctx context.Context, folderTitle string) ([]Note, error) {
	if err := folderRequired(folderTitle); err != nil {
		return nil, err
	}
	return r.seq.load(ctx, r.key(folderTitle))
}

// Save appends note to folderTitle, or replaces the note at *editIndex.
func (r *NoteRepository) Save(ctx context.Context, folderTitle string, note Note, editIndex *int) ([]Note, error) {
	if err := folderRequired(folderTitle); err != nil {
		return nil, err
	}
	if err := note.validate(); err != nil {
		return nil, err
	}

	key := r.key(folderTitle)
	notes, err := r.seq.load(ctx, key)
	if err != nil {
		return nil, err
	}
	updated, err := r.seq.place(notes, note, editIndex)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the note at index from folderTitle.
func (r *NoteRepository) Delete(ctx context.Context, folderTitle string, index int) ([]Note, error) {
	if err := folderRequired(folderTitle); err != nil {
		return nil, err
	}

	key := r.key(folderTitle)
	notes, err := r.seq.load(ctx, key)
	if err != nil {
		return nil, err
	}
	updated, err := removeAt(notes, index)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// IndexOf returns the current position of the note with id in folderTitle.
func (r *NoteRepository) IndexOf(ctx context.Context, folderTitle string, id uuid.UUID) (int, error) {
	notes, err := r.List(ctx, folderTitle)
	if err != nil {
		return -1, err
	}
	return indexOf(notes, id)
}

// TopLevelOptions configures a TopLevelNoteRepository.
type TopLevelOptions struct {
	Key    string
	Clock  Clock
	Logger *zap.Logger
}

// TopLevelNoteRepository owns the notes that are not scoped to a folder.
type TopLevelNoteRepository struct {
	seq sequence[TopLevelNote]
	key string
}

func NewTopLevelNoteRepository(store kv.Store, opts TopLevelOptions) *TopLevelNoteRepository {
	if opts.Key == "" {
		opts.Key = DefaultTopLevelNotesKey
	}
	return &TopLevelNoteRepository{
		seq: sequence[TopLevelNote]{store: store, clock: nowIfNil(opts.Clock), log: nopIfNil(opts.Logger).Named("top_level_notes")},
		key: opts.Key,
	}
}

// Key returns the storage key of the top-level notes.
func (r *TopLevelNoteRepository) Key() string { return r.key }

func (r *TopLevelNoteRepository) List(ctx context.Context) ([]TopLevelNote, error) {
	return r.seq.load(ctx, r.key)
}

// Save appends note, or replaces the note at *editIndex. Both title and
// description are required.
func (r *TopLevelNoteRepository) Save(ctx context.Context, note TopLevelNote, editIndex *int) ([]TopLevelNote, error) {
	if err := note.validate(); err != nil {
		return nil, err
	}

	notes, err := r.seq.load(ctx, r.key)
	if err != nil {
		return nil, err
	}
	updated, err := r.seq.place(notes, note, editIndex)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, r.key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TopLevelNoteRepository) Delete(ctx context.Context, index int) ([]TopLevelNote, error) {
	notes, err := r.seq.load(ctx, r.key)
	if err != nil {
		return nil, err
	}
	updated, err := removeAt(notes, index)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, r.key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TopLevelNoteRepository) IndexOf(ctx context.Context, id uuid.UUID) (int, error) {
	notes, err := r.seq.load(ctx, r.key)
	if err != nil {
		return -1, err
	}
	return indexOf(notes, id)
}
