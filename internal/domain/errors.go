package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies failures surfaced to tool callers.
type Code string

const (
	CodeInvalidParameter   Code = "INVALID_PARAMETER"
	CodeUnknownPlatform    Code = "UNKNOWN_PLATFORM"
	CodeSourceFetchFailure Code = "SOURCE_FETCH_FAILURE"
	CodeCorpusUnavailable  Code = "CORPUS_UNAVAILABLE"
	CodeUnknownTool        Code = "UNKNOWN_TOOL"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Error is a classified failure with an optional hint for the caller.
type Error struct {
	Code       Code
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidParameter builds a CodeInvalidParameter error.
func InvalidParameter(message, suggestion string) *Error {
	return &Error{Code: CodeInvalidParameter, Message: message, Suggestion: suggestion}
}

// InvalidParameterf formats the message.
func InvalidParameterf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

// UnknownPlatform reports platform ids that are not configured.
func UnknownPlatform(ids, supported []string) *Error {
	return &Error{
		Code:       CodeUnknownPlatform,
		Message:    "unknown platforms: " + strings.Join(ids, ", "),
		Suggestion: "supported platforms: " + strings.Join(supported, ", "),
	}
}

// CorpusUnavailable wraps a storage failure.
func CorpusUnavailable(err error) *Error {
	return &Error{
		Code:       CodeCorpusUnavailable,
		Message:    "news corpus is not reachable",
		Suggestion: "check storage settings or run a crawl with save_to_local=true",
		Err:        err,
	}
}

// CodeOf returns the code carried by err, or CodeInternal when err is unclassified.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
