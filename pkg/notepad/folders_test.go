package notepad

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nin/pkg/kv"
)

func newFolders(store kv.Store) *FolderRepository {
	return NewFolderRepository(store, FolderOptions{Clock: fixedClock})
}

func titles(folders []Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.Title
	}
	return out
}

func TestFolderRepository_ListEmpty(t *testing.T) {
	folders, err := newFolders(kv.NewMemoryStore()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, folders)
	assert.Empty(t, folders)
}

func TestFolderRepository_EnsureDefault_EmptyStore(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := newFolders(store)

	folders, err := repo.EnsureDefault(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, DefaultFolderTitle, folders[0].Title)
	assert.Equal(t, today, folders[0].Date)
	assert.NotEqual(t, uuid.Nil, folders[0].ID)

	var persisted []Folder
	require.NoError(t, json.Unmarshal([]byte(stored(t, store, "folders")), &persisted))
	assert.Equal(t, folders, persisted)
}

func TestFolderRepository_EnsureDefault_Invariant(t *testing.T) {
	tests := []struct {
		name  string
		seed  string
		want  []string
		write bool
	}{
		{"missing default is prepended", `[{"title":"Work"},{"title":"Home"}]`, []string{"Geral", "Work", "Home"}, true},
		{"present default is left alone", `[{"title":"Work"},{"title":"Geral"}]`, []string{"Work", "Geral"}, false},
		{"duplicates collapse to the first", `[{"title":"Geral"},{"title":"Work"},{"title":"Geral"}]`, []string{"Geral", "Work"}, true},
		{"empty array", `[]`, []string{"Geral"}, true},
		{"case matters", `[{"title":"geral"}]`, []string{"Geral", "geral"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := kv.NewMemoryStore()
			seed(t, mem, "folders", tt.seed)
			store := &failingStore{Store: mem}
			repo := newFolders(store)

			first, err := repo.EnsureDefault(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(first))
			if tt.write {
				assert.Equal(t, 1, store.sets)
			} else {
				assert.Zero(t, store.sets, "satisfied invariant must not write")
			}

			second, err := repo.EnsureDefault(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, second, "EnsureDefault must be idempotent")

			count := 0
			for _, f := range second {
				if f.Title == DefaultFolderTitle {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})
	}
}

func TestFolderRepository_SaveAppendAndEdit(t *testing.T) {
	ctx := context.Background()
	repo := newFolders(kv.NewMemoryStore())

	_, err := repo.EnsureDefault(ctx)
	require.NoError(t, err)
	folders, err := repo.Save(ctx, Folder{Title: "Work"}, nil)
	require.NoError(t, err)
	folders, err = repo.Save(ctx, Folder{Title: "Home"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral", "Work", "Home"}, titles(folders))
	assert.Equal(t, today, folders[2].Date)

	workID := folders[1].ID
	edited, err := repo.Save(ctx, Folder{Title: "Office"}, intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral", "Office", "Home"}, titles(edited))
	assert.Len(t, edited, 3)
	assert.Equal(t, workID, edited[1].ID, "edit keeps the id")
	assert.Equal(t, folders[0], edited[0])
	assert.Equal(t, folders[2], edited[2])

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, edited, listed, "save must round-trip through list")
}

func TestFolderRepository_SaveValidation(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	seed(t, mem, "folders", `[{"title":"Geral"},{"title":"Work"}]`)
	store := &failingStore{Store: mem}
	repo := newFolders(store)

	_, err := repo.Save(ctx, Folder{Title: ""}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = repo.Save(ctx, Folder{Title: "   "}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.Save(ctx, Folder{Title: "Work"}, nil)
	assert.ErrorIs(t, err, ErrValidation, "titles are unique")

	_, err = repo.Save(ctx, Folder{Title: "Work"}, intPtr(1))
	assert.NoError(t, err, "re-saving a folder under its own title is fine")

	_, err = repo.Save(ctx, Folder{Title: "Other"}, intPtr(7))
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 1, store.sets, "only the valid save may write")
}

func TestFolderRepository_RenameDefaultIsProtected(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	seed(t, store, "folders", `[{"title":"Geral"},{"title":"Work"}]`)
	repo := newFolders(store)

	_, err := repo.Save(ctx, Folder{Title: "General"}, intPtr(0))
	assert.ErrorIs(t, err, ErrProtected)

	folders, err := repo.Save(ctx, Folder{Title: "Geral"}, intPtr(0))
	require.NoError(t, err)
	assert.Equal(t, today, folders[0].Date)
}

func TestFolderRepository_RenameOrphansNotes(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	folders := newFolders(store)
	notes := NewNoteRepository(store, NoteOptions{Clock: fixedClock})

	_, err := folders.Save(ctx, Folder{Title: "Work"}, nil)
	require.NoError(t, err)
	_, err = notes.Save(ctx, "Work", Note{Title: "standup"}, nil)
	require.NoError(t, err)

	_, err = folders.Save(ctx, Folder{Title: "Job"}, intPtr(0))
	require.NoError(t, err)

	renamed, err := notes.List(ctx, "Job")
	require.NoError(t, err)
	assert.Empty(t, renamed, "notes stay under the old key")

	old, err := notes.List(ctx, "Work")
	require.NoError(t, err)
	assert.Len(t, old, 1)
}

func TestFolderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	seed(t, store, "folders", `[{"title":"Geral"},{"title":"Work"},{"title":"Home"},{"title":"Gym"}]`)
	repo := newFolders(store)

	folders, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral", "Home", "Gym"}, titles(folders))

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, folders, listed)

	_, err = repo.Delete(ctx, 0)
	assert.ErrorIs(t, err, ErrProtected)
	var perr *ProtectedEntityError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Geral", perr.Title)

	_, err = repo.Delete(ctx, 3)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = repo.Delete(ctx, -1)
	assert.ErrorIs(t, err, ErrValidation)

	listed, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 3, "rejected deletes leave state intact")
}

func TestFolderRepository_DeleteScenario(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	seed(t, store, "folders", `[{"title":"Geral"},{"title":"Work"}]`)

	folders, err := newFolders(store).Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral"}, titles(folders))
}

func TestFolderRepository_CustomKeyAndDefault(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewFolderRepository(store, FolderOptions{Key: "tenant-a/folders", DefaultTitle: "Inbox", Clock: fixedClock})

	folders, err := repo.EnsureDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inbox"}, titles(folders))

	_, ok, err := store.Get(ctx, "folders")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, stored(t, store, "tenant-a/folders"), `"title":"Inbox"`)
}

func TestFolderRepository_IndexOfAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newFolders(kv.NewMemoryStore())
	folders, err := repo.EnsureDefault(ctx)
	require.NoError(t, err)
	folders, err = repo.Save(ctx, Folder{Title: "Work"}, nil)
	require.NoError(t, err)

	i, err := repo.IndexOf(ctx, folders[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = repo.IndexOf(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	f, ok, err := repo.Find(ctx, "Work")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, folders[1], f)

	_, ok, err = repo.Find(ctx, "work")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFolderRepository_StorageErrors(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	seed(t, mem, "folders", `[{"title":"Geral"},{"title":"Work"}]`)

	_, err := newFolders(&failingStore{Store: mem, failGet: true}).List(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errDisk)

	_, err = newFolders(&failingStore{Store: mem, failSet: true}).Save(ctx, Folder{Title: "Home"}, nil)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "set", serr.Op)
	assert.Equal(t, "folders", serr.Key)

	folders, err := newFolders(mem).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral", "Work"}, titles(folders))

	seed(t, mem, "folders", `{not json`)
	_, err = newFolders(mem).List(ctx)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "decode", serr.Op)
}
