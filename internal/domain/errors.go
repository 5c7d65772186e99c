package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSignature rejects a webhook before any persistence happens.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// ErrTenantNotFound is returned when a tenant id or domain resolves to nothing.
var ErrTenantNotFound = errors.New("tenant not found")

// ConnectivityError means the external store API could not be reached or
// refused our credentials. It aborts the sync for one entity kind; other
// kinds still run.
type ConnectivityError struct {
	Op    string
	Shop  string
	Cause error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("store api %s for %s: %v", e.Op, e.Shop, e.Cause)
}

func (e *ConnectivityError) Unwrap() error { return e.Cause }

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// MappingError means one external record could not be converted to its local
// shape. It is counted against the batch and never aborts it.
type MappingError struct {
	Entity     string
	ExternalID int64
	Cause      error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map %s %d: %v", e.Entity, e.ExternalID, e.Cause)
}

func (e *MappingError) Unwrap() error { return e.Cause }
