package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// parsePosition turns a 1-based position from the command line into an index.
func parsePosition(arg string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("position must be a number starting at 1, got %q", arg)
	}
	return pos - 1, nil
}

type lookupFunc func(ctx context.Context, id uuid.UUID) (int, error)

// selectIndex resolves the item a command addresses, either by --id or by the
// positional argument.
func selectIndex(ctx context.Context, cmd *cobra.Command, args []string, lookup lookupFunc) (int, error) {
	rawID, _ := cmd.Flags().GetString("id")
	switch {
	case rawID != "" && len(args) > 0:
		return 0, errors.New("use either a position or --id, not both")
	case rawID != "":
		id, err := uuid.Parse(rawID)
		if err != nil {
			return 0, fmt.Errorf("invalid --id: %w", err)
		}
		return lookup(ctx, id)
	case len(args) == 1:
		return parsePosition(args[0])
	default:
		return 0, errors.New("a position or --id is required")
	}
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Address the item by its id instead of its position")
	cmd.Args = cobra.MaximumNArgs(1)
}

// confirm asks a yes/no question on the command's streams. --yes skips it.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
