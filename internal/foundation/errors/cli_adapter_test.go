package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "not found error", err: NotFoundError("missing").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "template error", err: TemplateError("no {content}").Build(), expected: 7},
		{name: "content error", err: ContentError("stem collision").Build(), expected: 11},
		{name: "listing error", err: ListingError("prefix mismatch").Build(), expected: 11},
		{name: "filesystem error", err: FileSystemError("write failed").Build(), expected: 11},
		{name: "server error", err: ServerError("listen failed").Build(), expected: 12},
		{name: "internal error", err: InternalError("boom").Build(), expected: 10},
		{name: "wrapped classified error", err: fmt.Errorf("outer: %w", ContentError("x").Build()), expected: 11},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{
			name:     "classified error shows message only",
			err:      WrapError(&customError{msg: "low level"}, CategoryTemplate, "template is missing {content}").Build(),
			expected: "Error: template is missing {content}",
		},
		{
			name:     "path context is appended",
			err:      FileSystemError("cannot read content file").WithContext("path", "content/a.md").Build(),
			expected: "Error: cannot read content file (content/a.md)",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.FormatError(tt.err); got != tt.expected {
				t.Errorf("FormatError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_VerboseIncludesCause(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := WrapError(&customError{msg: "permission denied"}, CategoryFileSystem, "cannot write page").Build()

	got := adapter.FormatError(err)
	if !strings.Contains(got, "permission denied") {
		t.Errorf("verbose FormatError() = %q, want cause included", got)
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(true, logger)
	adapter.out = &out

	code := adapter.Report(ListingError("prefix mismatch").WithContext("prefix", "./build/").Build())

	if code != 11 {
		t.Errorf("Report() = %d, want 11", code)
	}
	if !strings.Contains(out.String(), "prefix mismatch") {
		t.Errorf("stderr output %q does not mention the message", out.String())
	}
	if !strings.Contains(logs.String(), "category=listing") {
		t.Errorf("log output %q is missing the category", logs.String())
	}
	if !strings.Contains(logs.String(), "retry=never") {
		t.Errorf("log output %q is missing the retry strategy", logs.String())
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
