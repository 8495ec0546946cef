package notepad

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PermissionStatus is the notification permission the user has granted.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Handle identifies a scheduled notification.
type Handle string

// Notifier is the platform's local notification facility.
type Notifier interface {
	PermissionStatus(ctx context.Context) (PermissionStatus, error)
	ScheduleOneShot(ctx context.Context, title, body string, at time.Time) (Handle, error)
}

// ScheduleStatus says what Schedule did with a note.
type ScheduleStatus int

const (
	// ScheduleSkipped means the note had no reminder.
	ScheduleSkipped ScheduleStatus = iota
	ScheduleScheduled
)

func (s ScheduleStatus) String() string {
	if s == ScheduleScheduled {
		return "scheduled"
	}
	return "skipped"
}

type ScheduleOutcome struct {
	Status ScheduleStatus
	Handle Handle
	At     time.Time
}

// ComposeReminder combines the calendar day of date with the hour and minute
// of timeOfDay. Both are read as wall-clock values in loc (time.Local when
// nil) and the result is that wall-clock instant in loc, seconds zeroed.
func ComposeReminder(date, timeOfDay time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	d := date.In(loc)
	t := timeOfDay.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// DraftState tracks which pickers were confirmed while editing a note.
type DraftState int

const (
	DraftIdle DraftState = iota
	DraftDatePicked
	DraftTimePicked
)

// ReminderDraft holds the optional picker results for one note save.
type ReminderDraft struct {
	Date *time.Time
	Time *time.Time
}

func (d *ReminderDraft) PickDate(t time.Time) { d.Date = &t }
func (d *ReminderDraft) PickTime(t time.Time) { d.Time = &t }

func (d ReminderDraft) State() DraftState {
	switch {
	case d.Time != nil:
		return DraftTimePicked
	case d.Date != nil:
		return DraftDatePicked
	default:
		return DraftIdle
	}
}

// Compose returns the reminder instant, or nil if neither picker was used.
// An unpicked half defaults to now, as both pickers start at the current time.
func (d ReminderDraft) Compose(now time.Time, loc *time.Location) *time.Time {
	if d.State() == DraftIdle {
		return nil
	}
	date, tod := now, now
	if d.Date != nil {
		date = *d.Date
	}
	if d.Time != nil {
		tod = *d.Time
	}
	at := ComposeReminder(date, tod, loc)
	return &at
}

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	Clock  Clock
	Logger *zap.Logger
}

// Scheduler registers one notification per saved reminder. It never tracks,
// cancels or reschedules notifications for edited or deleted notes.
type Scheduler struct {
	notifier Notifier
	clock    Clock
	log      *zap.Logger
}

func NewScheduler(n Notifier, opts SchedulerOptions) *Scheduler {
	return &Scheduler{
		notifier: n,
		clock:    nowIfNil(opts.Clock),
		log:      nopIfNil(opts.Logger).Named("scheduler"),
	}
}

// Schedule registers a notification for note.Reminder. Notes without a
// reminder are skipped. Permission is read on every call; when it is not
// granted a *PermissionError is returned and nothing is scheduled.
func (s *Scheduler) Schedule(ctx context.Context, note TopLevelNote) (ScheduleOutcome, error) {
	if note.Reminder == nil {
		return ScheduleOutcome{Status: ScheduleSkipped}, nil
	}
	if s.notifier == nil {
		return ScheduleOutcome{}, &PermissionError{Status: PermissionUndetermined}
	}

	status, err := s.notifier.PermissionStatus(ctx)
	if err != nil {
		return ScheduleOutcome{}, fmt.Errorf("read notification permission: %w", err)
	}
	if status != PermissionGranted {
		s.log.Warn("reminder not scheduled, permission missing", zap.String("status", string(status)))
		return ScheduleOutcome{}, &PermissionError{Status: status}
	}

	at := *note.Reminder
	if !at.After(s.clock()) {
		return ScheduleOutcome{}, &ValidationError{Field: "reminder", Message: "reminder time " + at.Format(time.RFC3339) + " is not in the future"}
	}

	h, err := s.notifier.ScheduleOneShot(ctx, note.Title, note.Description, at)
	if err != nil {
		return ScheduleOutcome{}, fmt.Errorf("schedule notification: %w", err)
	}
	s.log.Info("reminder scheduled", zap.String("handle", string(h)), zap.Time("at", at))
	return ScheduleOutcome{Status: ScheduleScheduled, Handle: h, At: at}, nil
}

// Layouts accepted by ParseReminder.
const (
	ReminderDateLayout = "2006-01-02"
	ReminderTimeLayout = "15:04"
)

// ParseReminder builds a reminder from optional "YYYY-MM-DD" and "HH:MM"
// strings the way the pickers would: both empty means no reminder.
func ParseReminder(date, timeOfDay string, now time.Time, loc *time.Location) (*time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	var d ReminderDraft
	if date != "" {
		t, err := time.ParseInLocation(ReminderDateLayout, date, loc)
		if err != nil {
			return nil, &ValidationError{Field: "reminder", Message: "date must look like " + ReminderDateLayout}
		}
		d.PickDate(t)
	}
	if timeOfDay != "" {
		t, err := time.ParseInLocation(ReminderTimeLayout, timeOfDay, loc)
		if err != nil {
			return nil, &ValidationError{Field: "reminder", Message: "time must look like " + ReminderTimeLayout}
		}
		d.PickTime(t)
	}
	return d.Compose(now, loc), nil
}
