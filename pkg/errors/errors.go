package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeStorage represents state store errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotification represents notification delivery errors
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// MonitorError represents a monitoring-pipeline error tied to a target
type MonitorError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *MonitorError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeStorage, ErrorTypeNotification:
		return true
	default:
		return false
	}
}

// New creates a new MonitorError
func New(errType ErrorType, target, message string, err error) *MonitorError {
	return &MonitorError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(target, message string, err error) *MonitorError {
	return New(ErrorTypeNetwork, target, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *MonitorError {
	return New(ErrorTypeParsing, target, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, duration time.Duration) *MonitorError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, target, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(target, message string, err error) *MonitorError {
	return New(ErrorTypeStorage, target, message, err)
}

// NewNotification creates a new notification error
func NewNotification(target, message string, err error) *MonitorError {
	return New(ErrorTypeNotification, target, message, err)
}

// NewValidation creates a new validation error
func NewValidation(target, message string) *MonitorError {
	return New(ErrorTypeValidation, target, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *MonitorError {
	return New(ErrorTypeConfiguration, "", message, err)
}
