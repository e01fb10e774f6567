package core

// # Error Codes Reference
//
// User-facing error messages carry a code for support reference. When users
// encounter errors, they can quote the code to support staff for faster
// diagnosis. Codes are grouped by category:
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Connection refused: Unable to reach the catalog database
//	         Patterns: "connection refused"
//	CAT002 - Connection reset: Catalog connection was interrupted
//	         Patterns: "connection reset"
//	CAT003 - Timeout: A catalog lookup timed out
//	         Patterns: "timeout"
//	CAT004 - Lookup failed: A catalog batch failed
//	         Patterns: "conversion failed", "catalog: fetch"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid layout: Unknown export layout
//	         Patterns: "invalid layout"
//	VAL002 - Invalid parameter: A query parameter has an invalid value
//	         Patterns: "invalid parameter"
//	VAL004 - Missing column: Required column is missing from CSV
//	         Patterns: "missing required column"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the size limit
//	          Patterns: "file too large"
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Patterns: "invalid csv"
//	FILE004 - No file: No file was provided
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The file has no data rows
//	          Patterns: "empty file"
//
// # Conversion Errors (CNV001-CNV099)
//
//	CNV001 - System busy: Too many conversions in progress
//	         Patterns: "too many concurrent conversions"
//	CNV002 - Result expired: Conversion not found
//	         Patterns: "conversion not found"
//	CNV003 - Request cancelled
//	         Patterns: "context canceled"
//	CNV004 - Request timeout
//	         Patterns: "context deadline exceeded"
//	CNV005 - No failure export: The conversion ran without one
//	         Patterns: "failure export not requested"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the technical error.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	// Catalog connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the card catalog",
			Action:  "Please try again in a few moments",
			Code:    "CAT001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Card catalog connection was interrupted",
			Action:  "Please try again",
			Code:    "CAT002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Card catalog lookup timed out",
			Action:  "Try converting a smaller file or try again later",
			Code:    "CAT003",
		},
	},

	// Conversion lifecycle
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "System is busy processing other conversions",
			Action:  "Please wait a moment and try again",
			Code:    "CNV001",
		},
	},
	{
		pattern: "conversion not found",
		msg: UserMessage{
			Message: "Conversion not found",
			Action:  "The result may have expired. Please convert the file again",
			Code:    "CNV002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "CNV003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try converting a smaller file or check your connection",
			Code:    "CNV004",
		},
	},
	{
		pattern: "failure export not requested",
		msg: UserMessage{
			Message: "This conversion has no failure export",
			Action:  "Convert again with failures=true to download failed rows",
			Code:    "CNV005",
		},
	},
	{
		pattern: "conversion failed",
		msg: UserMessage{
			Message: "Card catalog lookup failed",
			Action:  "Please try again or contact support",
			Code:    "CAT004",
		},
	},
	{
		pattern: "catalog: fetch",
		msg: UserMessage{
			Message: "Card catalog lookup failed",
			Action:  "Please try again or contact support",
			Code:    "CAT004",
		},
	},

	// Validation
	{
		pattern: "invalid layout",
		msg: UserMessage{
			Message: "Unknown export layout",
			Action:  "Choose one of full, sku or quick",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "A request parameter has an invalid value",
			Action:  "Use failures=true|false and a non-negative errors count",
			Code:    "VAL002",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Check that the Name, Set code and Collector number columns are present",
			Code:    "VAL004",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the collection into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Export the collection again as comma-separated values",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Please select a collection CSV to convert",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no data rows",
			Action:  "Please provide a CSV file with at least one card",
			Code:    "FILE005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
