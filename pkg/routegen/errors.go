package routegen

import (
	"fmt"
	"strings"
)

// BuildErrorType categorizes build errors. It implements error so callers
// can match a category with errors.Is.
type BuildErrorType string

func (t BuildErrorType) Error() string {
	return string(t)
}

const (
	// ErrorInvalidDirective indicates a directive without a parseable key type.
	// Example: //nav:route  or  //nav:route []Profile
	ErrorInvalidDirective BuildErrorType = "INVALID_DIRECTIVE"

	// ErrorInvalidPresentation indicates an unknown presentation kind.
	// Example: //nav:route Profile popover
	ErrorInvalidPresentation BuildErrorType = "INVALID_PRESENTATION"

	// ErrorNotPlainFunc indicates a directive on a method or generic function.
	ErrorNotPlainFunc BuildErrorType = "NOT_PLAIN_FUNC"

	// ErrorLocalKeyType indicates a key type declared inside a function body.
	ErrorLocalKeyType BuildErrorType = "LOCAL_KEY_TYPE"

	// ErrorInterfaceKeyType indicates a key type that is an interface.
	ErrorInterfaceKeyType BuildErrorType = "INTERFACE_KEY_TYPE"

	// ErrorUnresolvedKeyType indicates a key type that names nothing visible.
	ErrorUnresolvedKeyType BuildErrorType = "UNRESOLVED_KEY_TYPE"

	// ErrorBadSignature indicates parameters that match no invocation strategy.
	// Example: func ProfileScreen(id int) for //nav:route Profile
	ErrorBadSignature BuildErrorType = "BAD_SIGNATURE"

	// ErrorDuplicateKey indicates two handlers for the same key type.
	ErrorDuplicateKey BuildErrorType = "DUPLICATE_KEY"

	// ErrorResultMismatch indicates handlers that return different types.
	ErrorResultMismatch BuildErrorType = "RESULT_MISMATCH"

	// ErrorImportConflict indicates one alias bound to two import paths.
	ErrorImportConflict BuildErrorType = "IMPORT_CONFLICT"
)

// BuildError is one problem found while building the route table.
type BuildError struct {
	// Type is the error category
	Type BuildErrorType

	// Message is the human-readable error message
	Message string

	// Handler is the offending function, or every function for duplicates
	Handler string

	// File, Line and Column locate the problem
	File   string
	Line   int
	Column int

	// Details contains additional error-specific information
	Details string
}

func (e BuildError) Error() string {
	loc := ""
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d:%d: ", e.File, e.Line, e.Column)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s%s: %s (%s)", loc, e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s%s: %s", loc, e.Type, e.Message)
}

// Is matches the error's category.
func (e BuildError) Is(target error) bool {
	t, ok := target.(BuildErrorType)
	return ok && t == e.Type
}

// MultiBuildError wraps every build error found in one run.
type MultiBuildError struct {
	Errors []BuildError
}

func (e *MultiBuildError) Error() string {
	if len(e.Errors) == 0 {
		return "no build errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route build errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *MultiBuildError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// FormatBuildError formats a build error for display:
//
//	ERROR: Duplicate route for screens.Settings
//	  settings.go:12:1 → SettingsScreen
//	  Details: handlers SettingsScreen, SettingsDialog
func FormatBuildError(err BuildError) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ERROR: %s\n", err.Message))
	if err.File != "" {
		sb.WriteString(fmt.Sprintf("  %s:%d:%d → %s\n", err.File, err.Line, err.Column, err.Handler))
	}
	if err.Details != "" {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", err.Details))
	}
	return sb.String()
}
