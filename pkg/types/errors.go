package types

import (
	"errors"
	"fmt"
)

// Failure classes. Typed errors below match these with errors.Is.
var (
	ErrProvisioning = errors.New("provisioning failed")
	ErrConnection   = errors.New("database connection failed")
	ErrQuery        = errors.New("query failed")
	ErrWrite        = errors.New("write failed")
)

// Input errors.
var (
	ErrInvalidCriteria = errors.New("unknown criteria field")
	ErrInvalidRecord   = errors.New("record must carry a national ID")
	ErrNotFound        = errors.New("record not found")
)

// ProvisioningError reports that the bundled dataset could not be resolved
// or copied to Path.
type ProvisioningError struct {
	Op   string
	Path string
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

func (e *ProvisioningError) Is(target error) bool { return target == ErrProvisioning }

// ConnectionError reports that a provisioned database could not be opened.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open database %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// QueryError reports a failed lookup.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// WriteError reports a failed write transaction. Nothing from the
// transaction is committed when it is returned.
type WriteError struct {
	Op         string
	NationalID string
	Err        error
}

func (e *WriteError) Error() string {
	if e.NationalID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s dni %s: %v", e.Op, e.NationalID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
