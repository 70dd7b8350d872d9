package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError by the subsystem that raised it
type ErrorType int

const (
	ErrorTypeConfig ErrorType = iota
	ErrorTypeFileSystem
	ErrorTypeWatcher
	ErrorTypeSize
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeConfig:     "config",
	ErrorTypeFileSystem: "filesystem",
	ErrorTypeWatcher:    "watcher",
	ErrorTypeSize:       "size",
}

func (et ErrorType) String() string {
	if name, ok := errorTypeNames[et]; ok {
		return name
	}
	return "unknown"
}

// AppError carries the failed operation and, when known, the path involved
type AppError struct {
	Type      ErrorType
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	where := e.Operation
	if e.Path != "" {
		where = fmt.Sprintf("%s [%s]", e.Operation, e.Path)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, where, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, operation, path, message string, err error) *AppError {
	return &AppError{Type: t, Operation: operation, Path: path, Message: message, Err: err}
}

// NewConfigError reports a bad setting or an unreadable config file
func NewConfigError(operation, message string, err error) *AppError {
	return newError(ErrorTypeConfig, operation, "", message, err)
}

// NewFileSystemError reports a directory or entry that could not be read
func NewFileSystemError(operation, path, message string, err error) *AppError {
	return newError(ErrorTypeFileSystem, operation, path, message, err)
}

func NewWatcherError(operation, path, message string, err error) *AppError {
	return newError(ErrorTypeWatcher, operation, path, message, err)
}

func NewSizeError(operation, path, message string, err error) *AppError {
	return newError(ErrorTypeSize, operation, path, message, err)
}

// IsType reports whether any error in err's chain is an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

func IsFileSystem(err error) bool {
	return IsType(err, ErrorTypeFileSystem)
}

func IsWatcher(err error) bool {
	return IsType(err, ErrorTypeWatcher)
}
