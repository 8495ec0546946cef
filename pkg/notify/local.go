// Package notify delivers one-shot reminder notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/kv"
	"github.com/unowned-ai/nin/pkg/notepad"
)

const DefaultKey = "reminders"

// Notification is one pending reminder.
type Notification struct {
	Handle    notepad.Handle `json:"handle"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	At        time.Time      `json:"at"`
	CreatedAt time.Time      `json:"created_at"`
}

// Sink shows a due notification to the user. A notification whose Sink
// returns an error stays pending and is retried on the next poll.
type Sink func(ctx context.Context, n Notification) error

type Options struct {
	Key        string
	Permission notepad.PermissionStatus
	Sink       Sink
	Clock      notepad.Clock
	Logger     *zap.Logger
}

// LocalNotifier keeps pending notifications in the key-value store so that
// one process can schedule them and another can deliver them.
type LocalNotifier struct {
	store      kv.Store
	key        string
	permission notepad.PermissionStatus
	sink       Sink
	clock      notepad.Clock
	log        *zap.Logger

	mu sync.Mutex
}

var _ notepad.Notifier = (*LocalNotifier)(nil)

func New(store kv.Store, opts Options) *LocalNotifier {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Permission == "" {
		opts.Permission = notepad.PermissionUndetermined
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &LocalNotifier{
		store:      store,
		key:        opts.Key,
		permission: opts.Permission,
		sink:       opts.Sink,
		clock:      opts.Clock,
		log:        opts.Logger.Named("notify"),
	}
}

func (l *LocalNotifier) PermissionStatus(ctx context.Context) (notepad.PermissionStatus, error) {
	return l.permission, nil
}

// ScheduleOneShot queues a notification for at.
func (l *LocalNotifier) ScheduleOneShot(ctx context.Context, title, body string, at time.Time) (notepad.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	n := Notification{
		Handle:    notepad.Handle(uuid.NewString()),
		Title:     title,
		Body:      body,
		At:        at,
		CreatedAt: l.clock(),
	}
	pending = append(pending, n)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].At.Before(pending[j].At) })

	if err := l.persist(ctx, pending); err != nil {
		return "", err
	}
	l.log.Debug("notification queued", zap.String("handle", string(n.Handle)), zap.Time("at", at))
	return n.Handle, nil
}

// Pending lists queued notifications, soonest first.
func (l *LocalNotifier) Pending(ctx context.Context) ([]Notification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// DeliverDue hands every notification due by now to the sink and removes the
// delivered ones. It returns how many were delivered.
func (l *LocalNotifier) DeliverDue(ctx context.Context) (int, error) {
	if l.sink == nil {
		return 0, fmt.Errorf("notifier has no sink")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pending, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	now := l.clock()
	delivered := 0
	remaining := make([]Notification, 0, len(pending))
	for _, n := range pending {
		if n.At.After(now) {
			remaining = append(remaining, n)
			continue
		}
		if err := l.sink(ctx, n); err != nil {
			l.log.Warn("notification delivery failed", zap.String("handle", string(n.Handle)), zap.Error(err))
			remaining = append(remaining, n)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return 0, nil
	}
	// Delivered entries are recorded even when ctx was cancelled meanwhile.
	if err := l.persist(context.WithoutCancel(ctx), remaining); err != nil {
		return 0, err
	}
	l.log.Info("notifications delivered", zap.Int("count", delivered), zap.Int("pending", len(remaining)))
	return delivered, nil
}

// Run polls for due notifications every interval until ctx is done.
func (l *LocalNotifier) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := l.DeliverDue(ctx); err != nil && ctx.Err() == nil {
			l.log.Error("reminder poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (l *LocalNotifier) load(ctx context.Context) ([]Notification, error) {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, &notepad.StorageError{Op: "get", Key: l.key, Err: err}
	}
	if !ok || raw == "" {
		return []Notification{}, nil
	}
	var pending []Notification
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, &notepad.StorageError{Op: "decode", Key: l.key, Err: err}
	}
	return pending, nil
}

func (l *LocalNotifier) persist(ctx context.Context, pending []Notification) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return &notepad.StorageError{Op: "encode", Key: l.key, Err: err}
	}
	if err := l.store.Set(ctx, l.key, string(raw)); err != nil {
		return &notepad.StorageError{Op: "set", Key: l.key, Err: err}
	}
	return nil
}
