package notepad

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/kv"
)

// Keys names the storage keys a Service uses.
type Keys struct {
	Folders       string
	NotesTemplate string
	TopLevelNotes string
}

// ServiceOptions configures NewService. Notifier may be nil, in which case
// every reminder comes back as a permission warning.
type ServiceOptions struct {
	Keys          Keys
	DefaultFolder string
	Notifier      Notifier
	Location      *time.Location
	Clock         Clock
	Logger        *zap.Logger
}

// Service is what a presentation layer talks to: the three repositories, the
// reminder scheduler and a few read-only reports over them.
type Service struct {
	store     kv.Store
	folders   *FolderRepository
	notes     *NoteRepository
	topLevel  *TopLevelNoteRepository
	scheduler *Scheduler
	loc       *time.Location
	clock     Clock
	md        goldmark.Markdown
	log       *zap.Logger
}

func NewService(store kv.Store, opts ServiceOptions) *Service {
	log := nopIfNil(opts.Logger)
	clock := nowIfNil(opts.Clock)
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Service{
		store: store,
		folders: NewFolderRepository(store, FolderOptions{
			Key:              opts.Keys.Folders,
			DefaultTitle:     opts.DefaultFolder,
			NotesKeyTemplate: opts.Keys.NotesTemplate,
			Clock:            clock,
			Logger:           log,
		}),
		notes: NewNoteRepository(store, NoteOptions{
			KeyTemplate: opts.Keys.NotesTemplate,
			Clock:       clock,
			Logger:      log,
		}),
		topLevel: NewTopLevelNoteRepository(store, TopLevelOptions{
			Key:    opts.Keys.TopLevelNotes,
			Clock:  clock,
			Logger: log,
		}),
		scheduler: NewScheduler(opts.Notifier, SchedulerOptions{Clock: clock, Logger: log}),
		loc:       loc,
		clock:     clock,
		md:        goldmark.New(),
		log:       log,
	}
}

func (s *Service) Folders() *FolderRepository { return s.folders }

func (s *Service) Notes() *NoteRepository { return s.notes }

func (s *Service) TopLevel() *TopLevelNoteRepository { return s.topLevel }

func (s *Service) Scheduler() *Scheduler { return s.scheduler }

// Location is the time zone reminders are composed in.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.clock() }

// RequireFolder fails with ErrNotFound unless a folder is titled title. Callers
// check it before touching notes so no partition is written without an owner.
func (s *Service) RequireFolder(ctx context.Context, title string) error {
	if err := folderRequired(title); err != nil {
		return err
	}
	_, ok, err := s.folders.Find(ctx, title)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no folder titled %q", ErrNotFound, title)
	}
	return nil
}

// SaveResult is the outcome of SaveTopLevelNote. Warning is set when the note
// was saved but its reminder could not be scheduled.
type SaveResult struct {
	Notes   []TopLevelNote
	Outcome ScheduleOutcome
	Warning error
}

// SaveTopLevelNote saves note and then schedules its reminder, if any.
// Scheduling problems never fail the save; they are reported in Warning.
func (s *Service) SaveTopLevelNote(ctx context.Context, note TopLevelNote, editIndex *int) (SaveResult, error) {
	notes, err := s.topLevel.Save(ctx, note, editIndex)
	if err != nil {
		return SaveResult{}, err
	}

	res := SaveResult{Notes: notes}
	res.Outcome, res.Warning = s.scheduler.Schedule(ctx, note)
	if res.Warning != nil {
		s.log.Warn("note saved without reminder", zap.String("title", note.Title), zap.Error(res.Warning))
	}
	return res, nil
}

// RenderContent renders a note's content from Markdown to HTML.
func (s *Service) RenderContent(note Note) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(note.Content), &buf); err != nil {
		return "", fmt.Errorf("render note %q: %w", note.Title, err)
	}
	return buf.String(), nil
}

// OrphanedPartitions lists note partitions whose folder no longer exists,
// which is what renaming or deleting a folder leaves behind.
func (s *Service) OrphanedPartitions(ctx context.Context) ([]string, error) {
	folders, err := s.folders.List(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]bool, len(folders))
	for _, f := range folders {
		titles[f.Title] = true
	}

	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, &StorageError{Op: "keys", Err: err}
	}

	var orphans []string
	for _, k := range keys {
		title, ok := s.notes.TitleFromKey(k)
		if !ok || titles[title] {
			continue
		}
		orphans = append(orphans, k)
	}
	sort.Strings(orphans)
	return orphans, nil
}

// FolderSnapshot is a folder together with its notes.
type FolderSnapshot struct {
	Folder `yaml:",inline"`
	Notes  []Note `json:"notes" yaml:"notes"`
}

// Snapshot is everything the service can reach, in storage order.
type Snapshot struct {
	ExportedAt    time.Time        `json:"exported_at" yaml:"exported_at"`
	Folders       []FolderSnapshot `json:"folders" yaml:"folders"`
	TopLevelNotes []TopLevelNote   `json:"top_level_notes" yaml:"top_level_notes"`
}

// Export reads every folder, its notes and the top-level notes.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	folders, err := s.folders.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ExportedAt: s.clock(),
		Folders:    make([]FolderSnapshot, 0, len(folders)),
	}
	for _, f := range folders {
		notes, err := s.notes.List(ctx, f.Title)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Folders = append(snap.Folders, FolderSnapshot{Folder: f, Notes: notes})
	}

	snap.TopLevelNotes, err = s.topLevel.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
