package service

import "errors"

// Messages carried by the domain errors the service returns
const (
	MsgResourceNotFound     = "Resource not found"
	MsgReferentialIntegrity = "Referential integrity violation"
)

var (
	// ErrResourceNotFound matches every *ResourceNotFoundError
	ErrResourceNotFound = errors.New("resource not found")
	// ErrDatabaseIntegrity matches every *DatabaseError
	ErrDatabaseIntegrity = errors.New("database integrity violation")
)

// ResourceNotFoundError reports that the requested identifier does not exist
type ResourceNotFoundError struct {
	Message string
}

func (e *ResourceNotFoundError) Error() string { return e.Message }

func (e *ResourceNotFoundError) Is(target error) bool { return target == ErrResourceNotFound }

// DatabaseError reports a write rejected by the database because of the
// state of other records
type DatabaseError struct {
	Message string
}

func (e *DatabaseError) Error() string { return e.Message }

func (e *DatabaseError) Is(target error) bool { return target == ErrDatabaseIntegrity }

// NewResourceNotFoundError creates a ResourceNotFoundError
func NewResourceNotFoundError(message string) error {
	return &ResourceNotFoundError{Message: message}
}

// NewDatabaseError creates a DatabaseError
func NewDatabaseError(message string) error {
	return &DatabaseError{Message: message}
}
