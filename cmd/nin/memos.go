package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nin/pkg/notepad"
)

const reminderLayout = "Mon Jan 02 2006 15:04 MST"

func memoRows(notes []notepad.TopLevelNote, loc *time.Location) []row {
	rows := make([]row, len(notes))
	for i, n := range notes {
		detail := n.Description
		if n.Reminder != nil {
			detail += "\n" + dimStyle.Render("reminder: "+n.Reminder.In(loc).Format(reminderLayout))
		}
		rows[i] = row{title: n.Title, date: n.Date, detail: detail}
	}
	return rows
}

func addReminderFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Reminder day as YYYY-MM-DD (today when only --time is given)")
	cmd.Flags().String("time", "", "Reminder time as HH:MM (now when only --date is given)")
}

func reminderFromFlags(cmd *cobra.Command, a *app) (*time.Time, error) {
	date, _ := cmd.Flags().GetString("date")
	tod, _ := cmd.Flags().GetString("time")
	return notepad.ParseReminder(date, tod, a.svc.Now(), a.svc.Location())
}

// reportSave prints the outcome of a save and any reminder warning.
func reportSave(w io.Writer, verb string, res notepad.SaveResult, loc *time.Location) {
	printOK(w, "Note %s.", verb)
	if res.Outcome.Status == notepad.ScheduleScheduled {
		fmt.Fprintln(w, dimStyle.Render("Reminder set for "+res.Outcome.At.In(loc).Format(reminderLayout)+"."))
	}
	if res.Warning != nil {
		printWarning(w, "%s", describe(res.Warning))
	}
}

func newMemosCmd(opts *rootOptions) *cobra.Command {
	memosCmd := &cobra.Command{
		Use:     "memos",
		Aliases: []string{"memo"},
		Short:   "Manage top-level notes and their reminders",
		Long:    `Top-level notes live outside any folder, need a title and a description and may carry a one-shot reminder.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List top-level notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				notes, err := a.svc.TopLevel().List(ctx)
				if err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), "Notes", "No notes found.", memoRows(notes, a.svc.Location()))
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a top-level note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				reminder, err := reminderFromFlags(cmd, a)
				if err != nil {
					return err
				}
				note := notepad.TopLevelNote{Title: title, Description: description, Reminder: reminder}
				res, err := a.svc.SaveTopLevelNote(ctx, note, nil)
				if err != nil {
					return err
				}
				reportSave(cmd.OutOrStdout(), "saved", res, a.svc.Location())
				return nil
			})
		},
	}
	addCmd.Flags().StringP("title", "t", "", "Title of the note (required)")
	addCmd.Flags().StringP("description", "d", "", "Description of the note (required)")
	addReminderFlags(addCmd)

	editCmd := &cobra.Command{
		Use:   "edit [position]",
		Short: "Edit a top-level note",
		Long: `Replaces fields of the note at the given 1-based position (or --id).
Passing --date or --time sets a new reminder and schedules it; otherwise the
existing reminder is kept as is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				index, err := selectIndex(ctx, cmd, args, a.svc.TopLevel().IndexOf)
				if err != nil {
					return err
				}
				notes, err := a.svc.TopLevel().List(ctx)
				if err != nil {
					return err
				}
				if index < 0 || index >= len(notes) {
					return fmt.Errorf("there is no note at position %d", index+1)
				}

				note := notes[index]
				if cmd.Flags().Changed("title") {
					note.Title, _ = cmd.Flags().GetString("title")
				}
				if cmd.Flags().Changed("description") {
					note.Description, _ = cmd.Flags().GetString("description")
				}

				if !cmd.Flags().Changed("date") && !cmd.Flags().Changed("time") {
					if _, err := a.svc.TopLevel().Save(ctx, note, &index); err != nil {
						return err
					}
					printOK(cmd.OutOrStdout(), "Note updated.")
					return nil
				}

				if note.Reminder, err = reminderFromFlags(cmd, a); err != nil {
					return err
				}
				res, err := a.svc.SaveTopLevelNote(ctx, note, &index)
				if err != nil {
					return err
				}
				reportSave(cmd.OutOrStdout(), "updated", res, a.svc.Location())
				return nil
			})
		},
	}
	addSelectionFlags(editCmd)
	editCmd.Flags().StringP("title", "t", "", "New title of the note")
	editCmd.Flags().StringP("description", "d", "", "New description of the note")
	addReminderFlags(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete [position]",
		Short: "Delete a top-level note",
		Long:  `Deletes the note. A reminder that was already scheduled still fires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				index, err := selectIndex(ctx, cmd, args, a.svc.TopLevel().IndexOf)
				if err != nil {
					return err
				}
				ok, err := confirm(cmd, fmt.Sprintf("Are you sure you want to delete note %d?", index+1))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				if _, err := a.svc.TopLevel().Delete(ctx, index); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Note deleted.")
				return nil
			})
		},
	}
	addSelectionFlags(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	memosCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return memosCmd
}
