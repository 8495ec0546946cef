package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/unowned-ai/nin/pkg/notepad"
)

// folderOf returns --folder, or the default folder when it was not given.
// The folder must exist.
func folderOf(ctx context.Context, cmd *cobra.Command, a *app) (string, error) {
	folder, _ := cmd.Flags().GetString("folder")
	if folder == "" {
		folder = a.svc.Folders().DefaultTitle()
	}
	if err := a.svc.RequireFolder(ctx, folder); err != nil {
		return "", err
	}
	return folder, nil
}

func noteLookup(a *app, folder string) lookupFunc {
	return func(ctx context.Context, id uuid.UUID) (int, error) {
		return a.svc.Notes().IndexOf(ctx, folder, id)
	}
}

// selectNote resolves the addressed note of folder and returns it with its index.
func selectNote(ctx context.Context, cmd *cobra.Command, args []string, a *app, folder string) (notepad.Note, int, error) {
	index, err := selectIndex(ctx, cmd, args, noteLookup(a, folder))
	if err != nil {
		return notepad.Note{}, 0, err
	}
	notes, err := a.svc.Notes().List(ctx, folder)
	if err != nil {
		return notepad.Note{}, 0, err
	}
	if index < 0 || index >= len(notes) {
		return notepad.Note{}, 0, fmt.Errorf("folder %q has no note at position %d", folder, index+1)
	}
	return notes[index], index, nil
}

func newNotesCmd(opts *rootOptions) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Manage the notes of a folder",
		Long:    `Create, list, show, edit and delete the notes of a folder (--folder, default folder when omitted).`,
	}
	notesCmd.PersistentFlags().StringP("folder", "f", "", "Folder title (defaults to the default folder)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the notes of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folder, err := folderOf(ctx, cmd, a)
				if err != nil {
					return err
				}
				notes, err := a.svc.Notes().List(ctx, folder)
				if err != nil {
					return err
				}
				rows := make([]row, len(notes))
				for i, n := range notes {
					rows[i] = row{title: n.Title, date: n.Date}
				}
				printList(cmd.OutOrStdout(), "Notes in "+folder, "No notes found.", rows)
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folder, err := folderOf(ctx, cmd, a)
				if err != nil {
					return err
				}
				notes, err := a.svc.Notes().Save(ctx, folder, notepad.Note{Title: title, Content: content}, nil)
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Note %q added to %s at position %d.", title, folder, len(notes))
				return nil
			})
		},
	}
	addCmd.Flags().StringP("title", "t", "", "Title of the note (required)")
	addCmd.Flags().StringP("content", "c", "", "Content of the note, Markdown allowed")

	editCmd := &cobra.Command{
		Use:   "edit [position]",
		Short: "Edit a note",
		Long:  `Replaces the title and/or content of the note at the given 1-based position (or --id).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folder, err := folderOf(ctx, cmd, a)
				if err != nil {
					return err
				}
				note, index, err := selectNote(ctx, cmd, args, a, folder)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") {
					note.Title, _ = cmd.Flags().GetString("title")
				}
				if cmd.Flags().Changed("content") {
					note.Content, _ = cmd.Flags().GetString("content")
				}
				if _, err := a.svc.Notes().Save(ctx, folder, note, &index); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Note %d in %s updated.", index+1, folder)
				return nil
			})
		},
	}
	addSelectionFlags(editCmd)
	editCmd.Flags().StringP("title", "t", "", "New title of the note")
	editCmd.Flags().StringP("content", "c", "", "New content of the note")

	deleteCmd := &cobra.Command{
		Use:   "delete [position]",
		Short: "Delete a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folder, err := folderOf(ctx, cmd, a)
				if err != nil {
					return err
				}
				note, index, err := selectNote(ctx, cmd, args, a, folder)
				if err != nil {
					return err
				}
				ok, err := confirm(cmd, fmt.Sprintf("Are you sure you want to delete the note %q?", note.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				if _, err := a.svc.Notes().Delete(ctx, folder, index); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Note %q deleted from %s.", note.Title, folder)
				return nil
			})
		},
	}
	addSelectionFlags(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	showCmd := &cobra.Command{
		Use:   "show [position]",
		Short: "Print a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			asHTML, _ := cmd.Flags().GetBool("html")
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folder, err := folderOf(ctx, cmd, a)
				if err != nil {
					return err
				}
				note, _, err := selectNote(ctx, cmd, args, a, folder)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asHTML {
					html, err := a.svc.RenderContent(note)
					if err != nil {
						return err
					}
					fmt.Fprint(out, html)
					return nil
				}
				fmt.Fprintln(out, titleStyle.Render(note.Title))
				fmt.Fprintln(out, dimStyle.Render(note.Date+"  "+note.ID.String()))
				if note.Content != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, note.Content)
				}
				return nil
			})
		},
	}
	addSelectionFlags(showCmd)
	showCmd.Flags().Bool("html", false, "Render the Markdown content as HTML")

	notesCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, showCmd)
	return notesCmd
}
