package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/nin/pkg/notepad"
)

// selectIndex resolves the item a request points at. An "id" wins over a
// 1-based "position". found is false when neither was given.
func selectIndex(ctx context.Context, req mcp.CallToolRequest, lookup func(context.Context, uuid.UUID) (int, error)) (index int, found bool, err error) {
	if raw := req.GetString("id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, false, fmt.Errorf("'id' must be a UUID: %w", err)
		}
		index, err := lookup(ctx, id)
		if err != nil {
			return 0, false, err
		}
		return index, true, nil
	}
	if _, ok := req.GetArguments()["position"]; !ok {
		return 0, false, nil
	}
	pos := req.GetInt("position", 0)
	if pos < 1 {
		return 0, false, &notepad.ValidationError{Field: "position", Message: "'position' must be 1 or greater"}
	}
	return pos - 1, true, nil
}

func editIndex(index int, found bool) *int {
	if !found {
		return nil
	}
	return &index
}

// toolError turns a service error into a message for the client.
func toolError(action string, err error) *mcp.CallToolResult {
	var perr *notepad.ProtectedEntityError
	switch {
	case errors.As(err, &perr):
		return mcp.NewToolResultError(fmt.Sprintf("Cannot %s: %q is the default folder.", action, perr.Title))
	case errors.Is(err, notepad.ErrValidation), errors.Is(err, notepad.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("Cannot %s: %v", action, err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
