package notepad

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/kv"
)

// FolderOptions configures a FolderRepository. Zero values take the defaults.
type FolderOptions struct {
	Key          string
	DefaultTitle string
	// NotesKeyTemplate is only used to name the partition a rename leaves behind.
	NotesKeyTemplate string
	Clock            Clock
	Logger           *zap.Logger
}

// FolderRepository owns the ordered folder list stored under one key.
type FolderRepository struct {
	seq          sequence[Folder]
	key          string
	defaultTitle string
	notesKey     func(string) string
	log          *zap.Logger
}

func NewFolderRepository(store kv.Store, opts FolderOptions) *FolderRepository {
	if opts.Key == "" {
		opts.Key = DefaultFoldersKey
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultFolderTitle
	}
	if opts.NotesKeyTemplate == "" {
		opts.NotesKeyTemplate = DefaultNotesKeyTemplate
	}
	log := nopIfNil(opts.Logger).Named("folders")

	return &FolderRepository{
		seq:          sequence[Folder]{store: store, clock: nowIfNil(opts.Clock), log: log},
		key:          opts.Key,
		defaultTitle: opts.DefaultTitle,
		notesKey:     keyFunc(opts.NotesKeyTemplate),
		log:          log,
	}
}

// DefaultTitle returns the title of the protected folder.
func (r *FolderRepository) DefaultTitle() string { return r.defaultTitle }

// List returns the stored folders in order, empty if none were ever saved.
func (r *FolderRepository) List(ctx context.Context) ([]Folder, error) {
	return r.seq.load(ctx, r.key)
}

// EnsureDefault guarantees exactly one default folder. An empty store gets a
// single default folder; a list without one gets it prepended; duplicates of
// it beyond the first are dropped. A list that already satisfies the
// invariant is returned without writing.
func (r *FolderRepository) EnsureDefault(ctx context.Context) ([]Folder, error) {
	folders, err := r.seq.load(ctx, r.key)
	if err != nil {
		return nil, err
	}

	seen := 0
	kept := make([]Folder, 0, len(folders)+1)
	for _, f := range folders {
		if f.Title == r.defaultTitle {
			seen++
			if seen > 1 {
				continue
			}
		}
		kept = append(kept, f)
	}

	switch {
	case seen == 1:
		return folders, nil
	case seen == 0:
		def := Folder{Title: r.defaultTitle}.stamped(uuid.New(), r.seq.today())
		kept = append([]Folder{def}, kept...)
		r.log.Info("default folder created", zap.String("title", r.defaultTitle), zap.Int("existing", len(folders)))
	default:
		r.log.Warn("duplicate default folders removed", zap.Int("removed", seen-1))
	}

	if err := r.seq.persist(ctx, r.key, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Save appends folder, or replaces the folder at *editIndex, and persists the
// whole list. Titles must be non-empty and unique. The default folder cannot
// be renamed. Renaming another folder leaves its notes under the old
// partition key, where they are no longer reachable.
func (r *FolderRepository) Save(ctx context.Context, folder Folder, editIndex *int) ([]Folder, error) {
	if err := folder.validate(); err != nil {
		return nil, err
	}

	folders, err := r.seq.load(ctx, r.key)
	if err != nil {
		return nil, err
	}

	for i, f := range folders {
		if editIndex != nil && i == *editIndex {
			continue
		}
		if f.Title == folder.Title {
			return nil, &ValidationError{Field: "title", Message: "a folder named " + folder.Title + " already exists"}
		}
	}

	if editIndex != nil && *editIndex >= 0 && *editIndex < len(folders) {
		old := folders[*editIndex].Title
		if old != folder.Title {
			if old == r.defaultTitle {
				return nil, &ProtectedEntityError{Title: old}
			}
			r.log.Warn("folder renamed, notes left under previous key",
				zap.String("from", old),
				zap.String("to", folder.Title),
				zap.String("orphaned_key", r.notesKey(old)))
		}
	}

	updated, err := r.seq.place(folders, folder, editIndex)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, r.key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the folder at index. The default folder is protected. The
// folder's notes are not touched.
func (r *FolderRepository) Delete(ctx context.Context, index int) ([]Folder, error) {
	folders, err := r.seq.load(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if index >= 0 && index < len(folders) && folders[index].Title == r.defaultTitle {
		return nil, &ProtectedEntityError{Title: r.defaultTitle}
	}

	updated, err := removeAt(folders, index)
	if err != nil {
		return nil, err
	}
	if err := r.seq.persist(ctx, r.key, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// IndexOf returns the current position of the folder with the given id.
func (r *FolderRepository) IndexOf(ctx context.Context, id uuid.UUID) (int, error) {
	folders, err := r.seq.load(ctx, r.key)
	if err != nil {
		return -1, err
	}
	return indexOf(folders, id)
}

// Find returns the folder titled title, with ok=false if there is none.
func (r *FolderRepository) Find(ctx context.Context, title string) (Folder, bool, error) {
	folders, err := r.seq.load(ctx, r.key)
	if err != nil {
		return Folder{}, false, err
	}
	for _, f := range folders {
		if f.Title == title {
			return f, true, nil
		}
	}
	return Folder{}, false, nil
}
