// Unified error handling for the tool change organizer
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Storage errors (line source and line sink)
	ErrIO ErrorCode = "IO"

	// Structural errors in the G-code stream
	ErrFormat ErrorCode = "FORMAT"
	ErrBounds ErrorCode = "BOUNDS"

	// Tool select errors
	ErrParse     ErrorCode = "PARSE"
	ErrToolRange ErrorCode = "TOOL_RANGE"

	// Configuration errors
	ErrConfig ErrorCode = "CONFIG"

	// Run aborted by its context
	ErrCanceled ErrorCode = "CANCELED"
)

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageRead        Stage = "read"
	StageReorder     Stage = "reorder"
	StageDeduplicate Stage = "deduplicate"
	StageWrite       Stage = "write"
)

// Error is the unified error type for the organizer
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Stage is the pipeline stage, set by the pipeline when it surfaces the error
	Stage Stage

	// Path is the file involved (if any)
	Path string

	// Line is the 1-based line number in the input (0 if unknown)
	Line int

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(string(e.Code))
	if e.Stage != "" {
		sb.WriteByte(':')
		sb.WriteString(string(e.Stage))
	}
	sb.WriteString("] ")
	sb.WriteString(e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " (%s)", e.Path)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// SetStage sets the pipeline stage
func (e *Error) SetStage(stage Stage) *Error {
	e.Stage = stage
	return e
}

// SetPath sets the file path
func (e *Error) SetPath(path string) *Error {
	e.Path = path
	return e
}

// SetLine sets the line number
func (e *Error) SetLine(line int) *Error {
	e.Line = line
	return e
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IOError creates an error for an unreadable source or unwritable sink
func IOError(path string, op string, err error) *Error {
	return Wrap(err, ErrIO, fmt.Sprintf("cannot %s file", op)).SetPath(path)
}

// FormatError creates an error for input lacking the expected markers
func FormatError(reason string) *Error {
	return New(ErrFormat, reason)
}

// BoundsError creates an error for a scan that ran off the end of the input
func BoundsError(marker string, lines int) *Error {
	return New(ErrBounds, fmt.Sprintf("reached end of input after %d lines without %q", lines, marker))
}

// ParseError creates an error for a tool select with a non-integer suffix
func ParseError(line string, lineNum int, err error) *Error {
	return Wrap(err, ErrParse, fmt.Sprintf("invalid tool select %q", line)).SetLine(lineNum)
}

// ToolRangeError creates an error for a tool ID outside the extruder range
func ToolRangeError(tool, extruders, lineNum int) *Error {
	return New(ErrToolRange, fmt.Sprintf("tool %d outside [0, %d)", tool, extruders)).SetLine(lineNum)
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrConfig, message)
}

// WithStage tags err with a stage if it is an *Error, otherwise wraps it as
// an IO error of that stage.
func WithStage(err error, stage Stage) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		e.SetStage(stage)
		return e
	}
	return Wrap(err, ErrIO, "unexpected failure").SetStage(stage)
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// StageOf returns the stage recorded on err, or "" if none.
func StageOf(err error) Stage {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// IsStructural checks if error is a malformed-input error
func IsStructural(err error) bool {
	return Is(err, ErrFormat) ||
		Is(err, ErrBounds) ||
		Is(err, ErrParse) ||
		Is(err, ErrToolRange)
}
