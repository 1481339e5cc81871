// Package errors provides the classified error primitives used across justhtml.
//
// Every fatal condition of a build (unreadable content, a template without its
// {content} placeholder, a stem collision, a listing prefix mismatch, an output
// directory that cannot be created) is reported as a *ClassifiedError so the
// CLI can choose an exit code and log it with the right level.
//
//	err := errors.TemplateError("template is missing {content}").
//		WithContext("path", path).
//		WithCause(templates.ErrMissingContentPlaceholder).
//		Build()
package errors
