package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/nin/pkg/notepad"
)

const timeLayout = time.RFC3339

type handlers struct {
	svc *notepad.Service
}

func selector() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("id", mcp.Description("Stable id of the item.")),
		mcp.WithNumber("position", mcp.Description("1-based position of the item, used when no id is given.")),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

func registerTools(s *server.MCPServer, h *handlers) {
	folderArg := mcp.WithString("folder", mcp.Required(), mcp.Description("Title of the folder."))

	s.AddTool(tool("ping", "Responds with 'pong_nin' to check if the server is alive."), h.ping)

	s.AddTool(tool("list_folders", "Lists all folders in order. The default folder is created if missing."), h.listFolders)
	s.AddTool(tool("save_folder", "Creates a folder, or renames the folder selected by id or position.",
		append(selector(), mcp.WithString("title", mcp.Required(), mcp.Description("Folder title.")))...), h.saveFolder)
	s.AddTool(tool("delete_folder", "Deletes the folder selected by id or position. The default folder cannot be deleted.",
		selector()...), h.deleteFolder)

	s.AddTool(tool("list_notes", "Lists the notes of a folder.", folderArg), h.listNotes)
	s.AddTool(tool("save_note", "Creates a note in a folder, or replaces the note selected by id or position.",
		append(selector(), folderArg,
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title.")),
			mcp.WithString("content", mcp.Description("Note body, Markdown allowed.")))...), h.saveNote)
	s.AddTool(tool("delete_note", "Deletes the note selected by id or position from a folder.",
		append(selector(), folderArg)...), h.deleteNote)
	s.AddTool(tool("render_note", "Renders the Markdown content of a note as HTML.",
		append(selector(), folderArg)...), h.renderNote)

	s.AddTool(tool("list_top_notes", "Lists the notes that do not belong to a folder."), h.listTopNotes)
	s.AddTool(tool("save_top_note", "Creates or replaces a top-level note, optionally with a one-shot reminder.",
		append(selector(),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title.")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Note description.")),
			mcp.WithString("reminder_date", mcp.Description("Reminder day as YYYY-MM-DD. Defaults to today when only a time is given.")),
			mcp.WithString("reminder_time", mcp.Description("Reminder time as HH:MM. Defaults to now when only a date is given.")))...), h.saveTopNote)
	s.AddTool(tool("delete_top_note", "Deletes the top-level note selected by id or position.",
		selector()...), h.deleteTopNote)
}

func (h *handlers) ping(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_nin"), nil
}

func (h *handlers) listFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders, err := h.svc.Folders().EnsureDefault(ctx)
	if err != nil {
		return toolError("list folders", err), nil
	}
	return jsonResult(folders)
}

func (h *handlers) saveFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("'title' parameter is required and must be a string."), nil
	}
	index, found, err := selectIndex(ctx, req, h.svc.Folders().IndexOf)
	if err != nil {
		return toolError("save folder", err), nil
	}

	folders, err := h.svc.Folders().Save(ctx, notepad.Folder{Title: title}, editIndex(index, found))
	if err != nil {
		return toolError("save folder", err), nil
	}
	return jsonResult(folders)
}

func (h *handlers) deleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, found, err := selectIndex(ctx, req, h.svc.Folders().IndexOf)
	if err != nil {
		return toolError("delete folder", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Either 'id' or 'position' is required."), nil
	}

	folders, err := h.svc.Folders().Delete(ctx, index)
	if err != nil {
		return toolError("delete folder", err), nil
	}
	return jsonResult(folders)
}

func (h *handlers) noteLookup(folder string) func(context.Context, uuid.UUID) (int, error) {
	return func(ctx context.Context, id uuid.UUID) (int, error) {
		return h.svc.Notes().IndexOf(ctx, folder, id)
	}
}

// folder reads the "folder" argument and checks that such a folder exists.
// A non-nil result is the tool error to return.
func (h *handlers) folder(ctx context.Context, req mcp.CallToolRequest, action string) (string, *mcp.CallToolResult) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return "", mcp.NewToolResultError("'folder' parameter is required and must be a string.")
	}
	if err := h.svc.RequireFolder(ctx, folder); err != nil {
		return "", toolError(action, err)
	}
	return folder, nil
}

func (h *handlers) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, res := h.folder(ctx, req, "list notes")
	if res != nil {
		return res, nil
	}
	notes, err := h.svc.Notes().List(ctx, folder)
	if err != nil {
		return toolError("list notes", err), nil
	}
	return jsonResult(notes)
}

func (h *handlers) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, res := h.folder(ctx, req, "save note")
	if res != nil {
		return res, nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("'title' parameter is required and must be a string."), nil
	}
	index, found, err := selectIndex(ctx, req, h.noteLookup(folder))
	if err != nil {
		return toolError("save note", err), nil
	}

	note := notepad.Note{Title: title, Content: req.GetString("content", "")}
	notes, err := h.svc.Notes().Save(ctx, folder, note, editIndex(index, found))
	if err != nil {
		return toolError("save note", err), nil
	}
	return jsonResult(notes)
}

func (h *handlers) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, res := h.folder(ctx, req, "delete note")
	if res != nil {
		return res, nil
	}
	index, found, err := selectIndex(ctx, req, h.noteLookup(folder))
	if err != nil {
		return toolError("delete note", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Either 'id' or 'position' is required."), nil
	}

	notes, err := h.svc.Notes().Delete(ctx, folder, index)
	if err != nil {
		return toolError("delete note", err), nil
	}
	return jsonResult(notes)
}

func (h *handlers) renderNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, res := h.folder(ctx, req, "render note")
	if res != nil {
		return res, nil
	}
	index, found, err := selectIndex(ctx, req, h.noteLookup(folder))
	if err != nil {
		return toolError("render note", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Either 'id' or 'position' is required."), nil
	}

	notes, err := h.svc.Notes().List(ctx, folder)
	if err != nil {
		return toolError("render note", err), nil
	}
	if index < 0 || index >= len(notes) {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot render note: folder %q has %d notes.", folder, len(notes))), nil
	}
	html, err := h.svc.RenderContent(notes[index])
	if err != nil {
		return toolError("render note", err), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (h *handlers) listTopNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := h.svc.TopLevel().List(ctx)
	if err != nil {
		return toolError("list notes", err), nil
	}
	return jsonResult(notes)
}

type saveTopNoteResult struct {
	Notes    []notepad.TopLevelNote `json:"notes"`
	Reminder string                 `json:"reminder"`
	At       string                 `json:"at,omitempty"`
	Warning  string                 `json:"warning,omitempty"`
}

func (h *handlers) saveTopNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("'title' parameter is required and must be a string."), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("'description' parameter is required and must be a string."), nil
	}
	reminder, err := notepad.ParseReminder(
		req.GetString("reminder_date", ""),
		req.GetString("reminder_time", ""),
		h.svc.Now(), h.svc.Location())
	if err != nil {
		return toolError("save note", err), nil
	}
	index, found, err := selectIndex(ctx, req, h.svc.TopLevel().IndexOf)
	if err != nil {
		return toolError("save note", err), nil
	}

	note := notepad.TopLevelNote{Title: title, Description: description, Reminder: reminder}
	if found && reminder == nil {
		return h.editTopNote(ctx, note, index)
	}
	res, err := h.svc.SaveTopLevelNote(ctx, note, editIndex(index, found))
	if err != nil {
		return toolError("save note", err), nil
	}

	out := saveTopNoteResult{Notes: res.Notes, Reminder: res.Outcome.Status.String()}
	if res.Outcome.Status == notepad.ScheduleScheduled {
		out.At = res.Outcome.At.Format(timeLayout)
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	return jsonResult(out)
}

// editTopNote replaces the note at index and keeps its stored reminder. The
// reminder was scheduled when it was set, so nothing is scheduled again.
func (h *handlers) editTopNote(ctx context.Context, note notepad.TopLevelNote, index int) (*mcp.CallToolResult, error) {
	notes, err := h.svc.TopLevel().List(ctx)
	if err != nil {
		return toolError("save note", err), nil
	}
	if index >= 0 && index < len(notes) {
		note.Reminder = notes[index].Reminder
	}
	notes, err = h.svc.TopLevel().Save(ctx, note, &index)
	if err != nil {
		return toolError("save note", err), nil
	}
	return jsonResult(saveTopNoteResult{Notes: notes, Reminder: notepad.ScheduleSkipped.String()})
}

func (h *handlers) deleteTopNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, found, err := selectIndex(ctx, req, h.svc.TopLevel().IndexOf)
	if err != nil {
		return toolError("delete note", err), nil
	}
	if !found {
		return mcp.NewToolResultError("Either 'id' or 'position' is required."), nil
	}

	notes, err := h.svc.TopLevel().Delete(ctx, index)
	if err != nil {
		return toolError("delete note", err), nil
	}
	return jsonResult(notes)
}
