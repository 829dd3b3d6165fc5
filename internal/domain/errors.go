// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrResolutionFailed is returned when the resolver errors or reports Success == false.
	ErrResolutionFailed = errors.New("track resolution failed")

	// ErrEmptyPlaylist is returned when navigation is attempted without tracks.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrCycleExhausted signals that every track of a no-repeat cycle has been played.
	ErrCycleExhausted = errors.New("shuffle cycle exhausted")

	// ErrTransitionInProgress is reported when a transition is dropped by the guard.
	ErrTransitionInProgress = errors.New("transition already in progress")

	// ErrInvalidIndex is returned when a playlist index is out of bounds.
	ErrInvalidIndex = errors.New("invalid playlist index")

	// ErrInvalidVolume is returned when the volume is out of valid range (0-100).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0 and 100")

	// ErrInvalidPosition is returned when seeking to an invalid position.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrNoTrackLoaded is returned when a transport command needs loaded audio.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrAlreadyInitialized is returned when attempting to initialize an already initialized component.
	ErrAlreadyInitialized = errors.New("component already initialized")

	// ErrSessionClosed is returned by session operations after Shutdown.
	ErrSessionClosed = errors.New("session closed")
)

// ResolutionError carries the reference and purpose of a failed resolution.
type ResolutionError struct {
	Reference string
	Purpose   ResolvePurpose
	Err       error // Underlying error (nil when the resolver reported Success == false)
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s for %s: %v", e.Reference, e.Purpose, e.Err)
	}
	return fmt.Sprintf("resolve %s for %s: resolver reported failure", e.Reference, e.Purpose)
}

// Unwrap exposes both ErrResolutionFailed and the underlying cause.
func (e *ResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResolutionFailed}
	}
	return []error{ErrResolutionFailed, e.Err}
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(reference string, purpose ResolvePurpose, err error) *ResolutionError {
	return &ResolutionError{
		Reference: reference,
		Purpose:   purpose,
		Err:       err,
	}
}

// TransportError represents an error from the audio transport.
// This wraps low-level audio library errors with additional context.
type TransportError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	Code    int    // Error code from an underlying library
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %s (code: %d)", e.Op, e.Message, e.Code)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(op string, code int, message string, err error) *TransportError {
	return &TransportError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
	Err     error  // Sentinel the failure maps to (optional)
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "SessionService", "PreferenceService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
