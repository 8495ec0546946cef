package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nin/pkg/notepad"
)

func folderRows(folders []notepad.Folder) []row {
	rows := make([]row, len(folders))
	for i, f := range folders {
		rows[i] = row{title: f.Title, date: f.Date}
	}
	return rows
}

func newFoldersCmd(opts *rootOptions) *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder"},
		Short:   "Manage folders",
		Long:    `Create, list, rename and delete folders. The default folder always exists and cannot be deleted.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folders, err := a.svc.Folders().List(ctx)
				if err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), "Folders", "No folders found.", folderRows(folders))
				return nil
			})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				folders, err := a.svc.Folders().Save(ctx, notepad.Folder{Title: args[0]}, nil)
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Folder %q created at position %d.", args[0], len(folders))
				return nil
			})
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit [position]",
		Short: "Rename a folder",
		Long: `Renames the folder at the given 1-based position (or --id).

Notes stay under the folder's previous title and are no longer listed under the
new one; "nin folders orphans" shows such leftovers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				index, err := selectIndex(ctx, cmd, args, a.svc.Folders().IndexOf)
				if err != nil {
					return err
				}
				folders, err := a.svc.Folders().Save(ctx, notepad.Folder{Title: title}, &index)
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Folder %d renamed to %q.", index+1, folders[index].Title)
				return nil
			})
		},
	}
	addSelectionFlags(editCmd)
	editCmd.Flags().StringP("title", "t", "", "New title for the folder (required)")
	editCmd.MarkFlagRequired("title")

	deleteCmd := &cobra.Command{
		Use:   "delete [position]",
		Short: "Delete a folder",
		Long:  `Deletes the folder at the given 1-based position (or --id). Its notes are kept in storage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				index, err := selectIndex(ctx, cmd, args, a.svc.Folders().IndexOf)
				if err != nil {
					return err
				}
				folders, err := a.svc.Folders().List(ctx)
				if err != nil {
					return err
				}
				if index < 0 || index >= len(folders) {
					return fmt.Errorf("there is no folder at position %d", index+1)
				}
				title := folders[index].Title
				if title == a.svc.Folders().DefaultTitle() {
					return &notepad.ProtectedEntityError{Title: title}
				}

				ok, err := confirm(cmd, fmt.Sprintf("Are you sure you want to delete the folder %q?", title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				if _, err := a.svc.Folders().Delete(ctx, index); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Folder %q deleted.", title)
				return nil
			})
		},
	}
	addSelectionFlags(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	orphansCmd := &cobra.Command{
		Use:   "orphans",
		Short: "List note partitions whose folder no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				keys, err := a.svc.OrphanedPartitions(ctx)
				if err != nil {
					return err
				}
				rows := make([]row, len(keys))
				for i, k := range keys {
					rows[i] = row{title: k}
				}
				printList(cmd.OutOrStdout(), "Orphaned note partitions", "No orphaned notes.", rows)
				return nil
			})
		},
	}

	foldersCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, orphansCmd)
	return foldersCmd
}
