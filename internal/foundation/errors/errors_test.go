package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "justhtml.toml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "justhtml.toml" {
			t.Errorf("expected context file=justhtml.toml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("build: %w", TemplateError("missing placeholder").Build())

		classified, ok := AsClassified(err)
		if !ok {
			t.Fatal("expected error to be classified")
		}
		if !HasCategory(err, CategoryTemplate) {
			t.Error("expected error to have template category")
		}
		if !classified.IsFatal() {
			t.Error("expected error to be fatal")
		}
		if HasCategory(errors.New("plain"), CategoryInternal) {
			t.Error("expected plain errors to carry no category")
		}
	})

	t.Run("Error string includes cause", func(t *testing.T) {
		err := WrapError(errors.New("no such file"), CategoryFileSystem, "cannot read template").Build()
		want := "[filesystem:error] cannot read template: no such file"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := WrapError(originalErr, CategoryFileSystem, "cannot write page").
			WithSeverity(SeverityWarning).
			Immediate().
			WithContext("path", "content/a.md").
			WithContext("line", 3).
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if err.RetryStrategy() != RetryImmediate {
			t.Errorf("expected retry strategy %s, got %s", RetryImmediate, err.RetryStrategy())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if !err.CanRetry() {
			t.Error("expected immediate retry to be retryable")
		}
		line, _ := err.Context().Get("line")
		if line != 3 {
			t.Errorf("expected line context 3, got %v", line)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryUserAction},
			{"TemplateError", TemplateError("test"), CategoryTemplate, SeverityFatal, RetryUserAction},
			{"ContentError", ContentError("test"), CategoryContent, SeverityFatal, RetryUserAction},
			{"ListingError", ListingError("test"), CategoryListing, SeverityFatal, RetryNever},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal, RetryImmediate},
			{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityFatal, RetryUserAction},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime, SeverityFatal, RetryNever},
			{"ServerError", ServerError("test"), CategoryServer, SeverityFatal, RetryNever},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestClassifiedError_WithContextDoesNotMutate(t *testing.T) {
	base := ContentError("stem collision").WithContext("stem", "post").Build()
	derived := base.WithContext("other", "post.markdown")

	if _, ok := base.Context().Get("other"); ok {
		t.Error("WithContext mutated the original error")
	}
	if v, _ := derived.Context().GetString("stem"); v != "post" {
		t.Errorf("derived error lost existing context, got %q", v)
	}
}

func TestErrorContext(t *testing.T) {
	t.Run("Context merge", func(t *testing.T) {
		ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
		ctx2 := ErrorContext{}.Set("key2", "value2").Set("shared", "overridden")

		merged := ctx1.Merge(ctx2)

		value1, _ := merged.GetString("key1")
		value2, _ := merged.GetString("key2")
		shared, _ := merged.GetString("shared")

		if value1 != "value1" || value2 != "value2" {
			t.Errorf("merge lost keys: %v", merged)
		}
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
	})

	t.Run("Nil context", func(t *testing.T) {
		var ctx ErrorContext
		if _, ok := ctx.Get("missing"); ok {
			t.Error("expected nil context lookup to miss")
		}
		ctx = ctx.Set("k", "v")
		if v, _ := ctx.GetString("k"); v != "v" {
			t.Errorf("Set on nil context = %q", v)
		}
	})
}
