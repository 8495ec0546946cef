package notepad

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nin/pkg/kv"
)

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

const today = "Sun Oct 18 2026"

func intPtr(i int) *int { return &i }

// failingStore wraps a store and fails Get or Set on demand.
type failingStore struct {
	kv.Store
	failGet bool
	failSet bool
	sets    int
}

var errDisk = errors.New("disk on fire")

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errDisk
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	f.sets++
	if f.failSet {
		return errDisk
	}
	return f.Store.Set(ctx, key, value)
}

// seed writes raw JSON under key.
func seed(t *testing.T, s kv.Store, key, raw string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), key, raw))
}

// stored reads the raw value under key.
func stored(t *testing.T, s kv.Store, key string) string {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "expected key %q to be stored", key)
	return v
}

type scheduled struct {
	title, body string
	at          time.Time
}

// fakeNotifier records ScheduleOneShot calls.
type fakeNotifier struct {
	mu          sync.Mutex
	status      PermissionStatus
	statusErr   error
	scheduleErr error
	statusReads int
	calls       []scheduled
}

func (f *fakeNotifier) PermissionStatus(ctx context.Context) (PermissionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusReads++
	return f.status, f.statusErr
}

func (f *fakeNotifier) ScheduleOneShot(ctx context.Context, title, body string, at time.Time) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.calls = append(f.calls, scheduled{title, body, at})
	return Handle("h-" + title), nil
}
