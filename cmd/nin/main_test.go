package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nin "github.com/unowned-ai/nin/pkg"
	"github.com/unowned-ai/nin/pkg/notepad"
)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NIN_STORE_DRIVER", "sqlite")
	t.Setenv("NIN_REMINDERS_PERMISSION", "granted")
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "nin.db")}
}

// run executes nin against the harness database with stdin as input.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--dbpath=" + h.dbPath, "--log-level=warn"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, nin.Version+"\n", h.mustRun("version"))
}

func TestFoldersAndNotes(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("folders", "list")
	assert.Contains(t, out, "Geral", "the default folder exists from the first run")

	h.mustRun("folders", "add", "Work")
	out = h.mustRun("folders", "list")
	assert.Contains(t, out, "Geral")
	assert.Contains(t, out, "Work")

	_, err := h.run("", "folders", "add", "Work")
	assert.ErrorIs(t, err, notepad.ErrValidation)

	h.mustRun("notes", "add", "--folder", "Work", "-t", "standup", "-c", "**9am**")
	out = h.mustRun("notes", "list", "--folder", "Work")
	assert.Contains(t, out, "standup")
	out = h.mustRun("notes", "list")
	assert.Contains(t, out, "No notes found.")

	out = h.mustRun("notes", "show", "1", "--folder", "Work", "--html")
	assert.Contains(t, out, "<strong>9am</strong>")

	h.mustRun("notes", "edit", "1", "--folder", "Work", "--content", "10am")
	out = h.mustRun("notes", "show", "1", "--folder", "Work")
	assert.Contains(t, out, "standup")
	assert.Contains(t, out, "10am")

	_, err = h.run("", "notes", "add", "--folder", "Work", "-c", "no title")
	assert.ErrorIs(t, err, notepad.ErrValidation)

	_, err = h.run("", "folders", "delete", "1", "--yes")
	assert.ErrorIs(t, err, notepad.ErrProtected)

	out, err = h.run("n\n", "folders", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = h.run("y\n", "folders", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.NotContains(t, h.mustRun("folders", "list"), "Work")

	out = h.mustRun("folders", "orphans")
	assert.Contains(t, out, "Work_notes")
}

func TestNotes_UnknownFolder(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"notes", "add", "--folder", "Typo", "-t", "lost"},
		{"notes", "list", "--folder", "Typo"},
		{"notes", "show", "1", "--folder", "Typo"},
		{"notes", "delete", "1", "--folder", "Typo", "--yes"},
	} {
		_, err := h.run("", args...)
		assert.ErrorIs(t, err, notepad.ErrNotFound, strings.Join(args, " "))
	}

	out := h.mustRun("folders", "orphans")
	assert.NotContains(t, out, "Typo_notes")
}

func TestFolderRename(t *testing.T) {
	h := newHarness(t)
	h.mustRun("folders", "add", "Work")

	_, err := h.run("", "folders", "edit", "1", "--title", "General")
	assert.ErrorIs(t, err, notepad.ErrProtected)

	h.mustRun("folders", "edit", "2", "--title", "Job")
	out := h.mustRun("folders", "list")
	assert.Contains(t, out, "Job")
	assert.NotContains(t, out, "Work")

	_, err = h.run("", "folders", "edit", "--id", "not-a-uuid", "--title", "x")
	assert.Error(t, err)
}

func TestMemosAndReminders(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("memos", "add", "-t", "dentist", "-d", "bring x-rays", "--date", "2099-01-01", "--time", "10:00")
	assert.Contains(t, out, "Note saved.")
	assert.Contains(t, out, "Reminder set for")

	out = h.mustRun("reminders", "list")
	assert.Contains(t, out, "dentist")

	out = h.mustRun("memos", "add", "-t", "old", "-d", "past", "--date", "2001-01-01")
	assert.Contains(t, out, "Note saved.")
	assert.Contains(t, out, "not in the future")

	_, err := h.run("", "memos", "add", "-t", "only title")
	assert.ErrorIs(t, err, notepad.ErrValidation)

	out = h.mustRun("memos", "list")
	assert.Contains(t, out, "dentist")
	assert.Contains(t, out, "reminder:")

	h.mustRun("memos", "edit", "2", "-d", "very past")
	assert.Contains(t, h.mustRun("memos", "list"), "very past")

	h.mustRun("memos", "delete", "2", "--yes")
	assert.NotContains(t, h.mustRun("memos", "list"), "very past")
}

func TestMemos_PermissionDenied(t *testing.T) {
	h := newHarness(t)
	t.Setenv("NIN_REMINDERS_PERMISSION", "denied")

	out := h.mustRun("memos", "add", "-t", "dentist", "-d", "x", "--time", "23:59", "--date", "2099-01-01")
	assert.Contains(t, out, "Note saved.")
	assert.Contains(t, out, "grant the notification permission")
	assert.Contains(t, h.mustRun("reminders", "list"), "No pending reminders.")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("notes", "add", "-t", "groceries", "-c", "eggs")

	out := h.mustRun("export", "--format", "yaml")
	assert.Contains(t, out, "title: Geral")
	assert.Contains(t, out, "title: groceries")

	out = h.mustRun("export")
	assert.Contains(t, out, `"title": "groceries"`)

	_, err := h.run("", "export", "--format", "xml")
	assert.Error(t, err)
}

func TestDBUpgrade(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("db", "upgrade")
	assert.Contains(t, out, "Upgrading kvstore component")
	h.mustRun("db", "upgrade")
}
