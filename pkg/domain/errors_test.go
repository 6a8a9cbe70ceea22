package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidIDErrorIsValidationError(t *testing.T) {
	err := error(&InvalidIDError{ID: "x", Err: &ValidationError{Field: "id", Message: "Student ID must be alphanumeric and 5-10 characters long"}})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "id", ve.Field)
	assert.Equal(t, "Invalid student ID: Student ID must be alphanumeric and 5-10 characters long", err.Error())

	var de DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ErrorKindInvalidID, de.Kind())
}

func TestDomainErrorMessages(t *testing.T) {
	assert.Equal(t, "Student with ID ABC12 already exists.", (&DuplicateIDError{ID: "ABC12"}).Error())
	assert.Equal(t, "Student with ID ABC12 does not exist.", (&NotFoundError{ID: "ABC12"}).Error())
}

func TestStorageErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := NewSaveError(fmt.Errorf("write snapshot: %w", cause))
	require.Error(t, err)
	assert.Equal(t, "Error saving student data: write snapshot: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	// already wrapped errors pass through untouched
	assert.Same(t, err, NewLoadError(err))
	assert.NoError(t, NewLoadError(nil))

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrorKindStorage, se.Kind())
	assert.Equal(t, StorageOpSave, se.Op)
}
