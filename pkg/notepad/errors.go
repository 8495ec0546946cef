package notepad

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrProtected  = errors.New("protected entity")
	ErrPermission = errors.New("notification permission not granted")
	ErrStorage    = errors.New("storage failure")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a missing or invalid field. Nothing was persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ProtectedEntityError is returned when deleting or renaming the default folder.
type ProtectedEntityError struct {
	Title string
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("folder %q is the default folder and cannot be deleted or renamed", e.Title)
}

func (e *ProtectedEntityError) Is(target error) bool { return target == ErrProtected }

// PermissionError means the notifier refused to schedule because the user has
// not granted notification permission. The note itself is still saved.
type PermissionError struct {
	Status PermissionStatus
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("if you want a notification, please grant the notification permission first (status: %s)", e.Status)
}

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

// StorageError wraps a failed read, write or (de)serialization of key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func indexError(index, length int) error {
	return &ValidationError{
		Field:   "index",
		Message: fmt.Sprintf("index %d is out of range (have %d items)", index, length),
	}
}
