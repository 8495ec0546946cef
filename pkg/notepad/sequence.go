package notepad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/kv"
)

// sequence loads and persists a whole []T stored as JSON under one key.
type sequence[T record[T]] struct {
	store kv.Store
	clock Clock
	log   *zap.Logger
}

// load returns the stored items, or an empty slice if key was never written.
func (s sequence[T]) load(ctx context.Context, key string) ([]T, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &StorageError{Op: "decode", Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// persist overwrites key with the full sequence.
func (s sequence[T]) persist(ctx context.Context, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	s.log.Debug("sequence persisted", zap.String("key", key), zap.Int("count", len(items)))
	return nil
}

func (s sequence[T]) today() string {
	return s.clock().Format(DateLayout)
}

// place stamps item and either replaces items[*editIndex] or appends it.
// A replaced element keeps its id; an appended one gets a fresh id.
// items is never modified; the result is a new slice.
func (s sequence[T]) place(items []T, item T, editIndex *int) ([]T, error) {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)

	if editIndex != nil {
		i := *editIndex
		if i < 0 || i >= len(out) {
			return nil, indexError(i, len(out))
		}
		id := out[i].identity()
		if id == uuid.Nil {
			id = uuid.New()
		}
		out[i] = item.stamped(id, s.today())
		return out, nil
	}

	return append(out, item.stamped(uuid.New(), s.today())), nil
}

// removeAt returns items without the element at index.
func removeAt[T any](items []T, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return nil, indexError(index, len(items))
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// indexOf translates a stable id into the element's current position.
func indexOf[T record[T]](items []T, id uuid.UUID) (int, error) {
	for i, item := range items {
		if item.identity() == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no item with id %s", ErrNotFound, id)
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func nowIfNil(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
