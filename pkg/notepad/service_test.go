package notepad

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nin/pkg/kv"
)

func newService(store kv.Store, n Notifier) *Service {
	return NewService(store, ServiceOptions{Notifier: n, Location: time.UTC, Clock: fixedClock})
}

func TestService_SaveTopLevelNote(t *testing.T) {
	ctx := context.Background()
	at := fixedNow.Add(24 * time.Hour)

	t.Run("scheduled", func(t *testing.T) {
		n := &fakeNotifier{status: PermissionGranted}
		res, err := newService(kv.NewMemoryStore(), n).SaveTopLevelNote(ctx, TopLevelNote{Title: "dentist", Description: "10am", Reminder: &at}, nil)
		require.NoError(t, err)
		assert.NoError(t, res.Warning)
		assert.Equal(t, ScheduleScheduled, res.Outcome.Status)
		require.Len(t, res.Notes, 1)
		require.NotNil(t, res.Notes[0].Reminder)
		assert.True(t, at.Equal(*res.Notes[0].Reminder))
	})

	t.Run("permission denied still saves", func(t *testing.T) {
		store := kv.NewMemoryStore()
		svc := newService(store, &fakeNotifier{status: PermissionDenied})
		res, err := svc.SaveTopLevelNote(ctx, TopLevelNote{Title: "dentist", Description: "10am", Reminder: &at}, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, res.Warning, ErrPermission)
		assert.Len(t, res.Notes, 1)

		listed, err := svc.TopLevel().List(ctx)
		require.NoError(t, err)
		assert.Equal(t, res.Notes, listed)
	})

	t.Run("invalid note schedules nothing", func(t *testing.T) {
		n := &fakeNotifier{status: PermissionGranted}
		_, err := newService(kv.NewMemoryStore(), n).SaveTopLevelNote(ctx, TopLevelNote{Title: "x", Reminder: &at}, nil)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, n.calls)
		assert.Zero(t, n.statusReads)
	})
}

func TestService_RequireFolder(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore(), nil)
	_, err := svc.Folders().EnsureDefault(ctx)
	require.NoError(t, err)

	assert.NoError(t, svc.RequireFolder(ctx, "Geral"))
	assert.ErrorIs(t, svc.RequireFolder(ctx, "Typo"), ErrNotFound)
	assert.ErrorIs(t, svc.RequireFolder(ctx, "  "), ErrValidation)

	mem := kv.NewMemoryStore()
	broken := newService(&failingStore{Store: mem, failGet: true}, nil)
	assert.ErrorIs(t, broken.RequireFolder(ctx, "Geral"), ErrStorage)
}

func TestService_RenderContent(t *testing.T) {
	svc := newService(kv.NewMemoryStore(), nil)
	html, err := svc.RenderContent(Note{Title: "md", Content: "# Shopping\n\n- *eggs*\n"})
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Shopping</h1>")
	assert.Contains(t, html, "<li><em>eggs</em></li>")
}

func TestService_OrphanedPartitions(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore(), nil)

	_, err := svc.Folders().EnsureDefault(ctx)
	require.NoError(t, err)
	_, err = svc.Folders().Save(ctx, Folder{Title: "Work"}, nil)
	require.NoError(t, err)
	_, err = svc.Folders().Save(ctx, Folder{Title: "Home"}, nil)
	require.NoError(t, err)
	for _, folder := range []string{"Geral", "Work", "Home"} {
		_, err = svc.Notes().Save(ctx, folder, Note{Title: "n"}, nil)
		require.NoError(t, err)
	}
	_, err = svc.TopLevel().Save(ctx, TopLevelNote{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	orphans, err := svc.OrphanedPartitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	_, err = svc.Folders().Save(ctx, Folder{Title: "Job"}, intPtr(1))
	require.NoError(t, err)
	_, err = svc.Folders().Delete(ctx, 2)
	require.NoError(t, err)

	orphans, err = svc.OrphanedPartitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Home_notes", "Work_notes"}, orphans)
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore(), nil)

	_, err := svc.Folders().EnsureDefault(ctx)
	require.NoError(t, err)
	_, err = svc.Folders().Save(ctx, Folder{Title: "Work"}, nil)
	require.NoError(t, err)
	_, err = svc.Notes().Save(ctx, "Work", Note{Title: "standup", Content: "9am"}, nil)
	require.NoError(t, err)
	_, err = svc.TopLevel().Save(ctx, TopLevelNote{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, snap.ExportedAt)
	require.Len(t, snap.Folders, 2)
	assert.Equal(t, "Geral", snap.Folders[0].Title)
	assert.Empty(t, snap.Folders[0].Notes)
	assert.Equal(t, "Work", snap.Folders[1].Title)
	require.Len(t, snap.Folders[1].Notes, 1)
	assert.Equal(t, "standup", snap.Folders[1].Notes[0].Title)
	assert.Len(t, snap.TopLevelNotes, 1)
}

func TestService_CustomKeys(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := NewService(store, ServiceOptions{
		Keys:          Keys{Folders: "a/folders", NotesTemplate: "a/{title}", TopLevelNotes: "a/memos"},
		DefaultFolder: "Inbox",
		Clock:         fixedClock,
	})

	_, err := svc.Folders().EnsureDefault(ctx)
	require.NoError(t, err)
	_, err = svc.Notes().Save(ctx, "Inbox", Note{Title: "n"}, nil)
	require.NoError(t, err)
	_, err = svc.TopLevel().Save(ctx, TopLevelNote{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Inbox", "a/folders", "a/memos"}, keys)
	assert.Equal(t, time.Local, svc.Location())
}
