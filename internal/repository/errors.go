package repository

import (
	"errors"
	"fmt"

	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

// ErrNotFound is returned when an entity does not exist for the owner.
type ErrNotFound struct {
	Resource string
	ID       string
	OwnerID  string
}

func (e ErrNotFound) Error() string {
	if e.OwnerID != "" {
		return fmt.Sprintf("%s with ID '%s' not found for owner '%s'", e.Resource, e.ID, e.OwnerID)
	}
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// IsNotFound reports whether err is, or wraps, an ErrNotFound.
func IsNotFound(err error) bool {
	var target ErrNotFound
	return errors.As(err, &target)
}

// ErrConflict is returned when a write loses an optimistic check or would
// duplicate an existing entity.
type ErrConflict struct {
	Resource string
	ID       string
	Reason   string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("conflict with %s '%s': %s", e.Resource, e.ID, e.Reason)
}

// IsConflict reports whether err is, or wraps, an ErrConflict.
func IsConflict(err error) bool {
	var target ErrConflict
	return errors.As(err, &target)
}

// ErrInvalidQuery is returned for malformed query parameters.
type ErrInvalidQuery struct {
	Field  string
	Reason string
}

func (e ErrInvalidQuery) Error() string {
	return fmt.Sprintf("invalid query for field '%s': %s", e.Field, e.Reason)
}

// IsInvalidQuery reports whether err is, or wraps, an ErrInvalidQuery.
func IsInvalidQuery(err error) bool {
	var target ErrInvalidQuery
	return errors.As(err, &target)
}

func NewNotFound(resource, id, ownerID string) ErrNotFound {
	return ErrNotFound{Resource: resource, ID: id, OwnerID: ownerID}
}

func NewConflict(resource, id, reason string) ErrConflict {
	return ErrConflict{Resource: resource, ID: id, Reason: reason}
}

func NewInvalidQuery(field, reason string) ErrInvalidQuery {
	return ErrInvalidQuery{Field: field, Reason: reason}
}

// VersionMismatch builds the conflict returned when an optimistic update
// sees a different stored version than the caller expected.
func VersionMismatch(resource, id string, expected, actual int) ErrConflict {
	return NewConflict(resource, id, fmt.Sprintf("expected version %d, found %d", expected, actual))
}

// ToAppError maps store errors onto application errors so handlers can pick
// a status code. Application errors pass through; anything else becomes
// internal with msg as context.
func ToAppError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if appErrors.GetAppError(err) != nil {
		return err
	}
	var nf ErrNotFound
	if errors.As(err, &nf) {
		return appErrors.NewNotFound(fmt.Sprintf("%s not found", nf.Resource))
	}
	var conflict ErrConflict
	if errors.As(err, &conflict) {
		return appErrors.NewConflict(conflict.Error())
	}
	var invalid ErrInvalidQuery
	if errors.As(err, &invalid) {
		return appErrors.NewValidation(invalid.Error())
	}
	return appErrors.NewInternal(msg, err)
}
