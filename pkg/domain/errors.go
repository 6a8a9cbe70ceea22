package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors for uniform handling by callers.
type ErrorKind string

// Error kinds reported through DomainError.
const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindInvalidID  ErrorKind = "invalid_id"
	ErrorKindDuplicate  ErrorKind = "duplicate_id"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindStorage    ErrorKind = "storage"
)

// DomainError is implemented by every error the records system raises on
// purpose. Presentation layers can catch it to display the message as-is.
type DomainError interface {
	error
	Kind() ErrorKind
}

var (
	_ DomainError = (*ValidationError)(nil)
	_ DomainError = (*InvalidIDError)(nil)
	_ DomainError = (*DuplicateIDError)(nil)
	_ DomainError = (*NotFoundError)(nil)
	_ DomainError = (*StorageError)(nil)
)

// ValidationError reports a single violated field constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Kind implements DomainError.
func (e *ValidationError) Kind() ErrorKind { return ErrorKindValidation }

// InvalidIDError is the validation failure raised when an id does not match
// the required format. It unwraps to the underlying *ValidationError.
type InvalidIDError struct {
	ID  string
	Err *ValidationError
}

func (e *InvalidIDError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Invalid student ID: %q", e.ID)
	}
	return "Invalid student ID: " + e.Err.Message
}

// Kind implements DomainError.
func (e *InvalidIDError) Kind() ErrorKind { return ErrorKindInvalidID }

func (e *InvalidIDError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// DuplicateIDError is returned when inserting a record whose id is taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("Student with ID %s already exists.", e.ID)
}

// Kind implements DomainError.
func (e *DuplicateIDError) Kind() ErrorKind { return ErrorKindDuplicate }

// NotFoundError is returned when an operation targets an unknown id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Student with ID %s does not exist.", e.ID)
}

// Kind implements DomainError.
func (e *NotFoundError) Kind() ErrorKind { return ErrorKindNotFound }

// Storage operations named in StorageError messages.
const (
	StorageOpLoad = "loading"
	StorageOpSave = "saving"
)

// StorageError wraps any read, parse, or write failure of a snapshot store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	op := e.Op
	if op == "" {
		op = "accessing"
	}
	if e.Err == nil {
		return fmt.Sprintf("Error %s student data", op)
	}
	return fmt.Sprintf("Error %s student data: %s", op, e.Err.Error())
}

// Kind implements DomainError.
func (e *StorageError) Kind() ErrorKind { return ErrorKindStorage }

func (e *StorageError) Unwrap() error { return e.Err }

// NewLoadError wraps err as a StorageError for a failed load. A nil err yields
// nil and an existing StorageError is returned unchanged.
func NewLoadError(err error) error {
	return wrapStorage(StorageOpLoad, err)
}

// NewSaveError wraps err as a StorageError for a failed save.
func NewSaveError(err error) error {
	return wrapStorage(StorageOpSave, err)
}

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
