package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("conversion failed: fetch groups: catalog: fetch groups: dial tcp: connection refused"),
			wantCode:    "CAT001",
			wantMessage: "Unable to reach the card catalog",
		},
		{
			name:        "timeout wins over deadline",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "CAT003",
			wantMessage: "Card catalog lookup timed out",
		},
		{
			name:        "system error falls back to catalog failure",
			err:         &SystemError{Op: "fetch variants", Err: errors.New("no such table: skus")},
			wantCode:    "CAT004",
			wantMessage: "Card catalog lookup failed",
		},
		{
			name:        "limiter rejection maps correctly",
			err:         ErrTooManyConversions,
			wantCode:    "CNV001",
			wantMessage: "System is busy processing other conversions",
		},
		{
			name:        "expired result maps correctly",
			err:         ErrResultNotFound,
			wantCode:    "CNV002",
			wantMessage: "Conversion not found",
		},
		{
			name:        "missing column maps correctly",
			err:         fmt.Errorf("%w: Set code", ErrMissingColumns),
			wantCode:    "VAL004",
			wantMessage: "Required column is missing from CSV",
		},
		{
			name:        "invalid layout maps correctly",
			err:         fmt.Errorf("%w \"xml\"", ErrInvalidLayout),
			wantCode:    "VAL001",
			wantMessage: "Unknown export layout",
		},
		{
			name:        "file too large maps correctly",
			err:         fmt.Errorf("%w: limit is 10 bytes", ErrInputTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "empty input maps correctly",
			err:         ErrEmptyInput,
			wantCode:    "FILE005",
			wantMessage: "The file has no data rows",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV: bare quote"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyInput)

	expected := "The file has no data rows (Code: FILE005). Please provide a CSV file with at least one card"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrInvalidCSV,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &SystemError{Op: "fetch groups", Err: errors.New("connection reset by peer")}
		userErr := NewUserError(techErr)

		if userErr.Error() != "Card catalog connection was interrupted" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
