package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category groups related error codes.
type Category string

const (
	CategoryBuild  Category = "build"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
	CategoryStore  Category = "store"
)

// Location is a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// NavError is a coded error with an optional source location and fix hint.
type NavError struct {
	// Code identifies the error, e.g. "E101".
	Code string

	Category Category

	// Message is the one-line summary.
	Message string

	// Detail is the longer explanation.
	Detail string

	Location *Location

	// Context holds the source lines around Location, starting at
	// ContextStart.
	Context      []string
	ContextStart int

	// Handler names the route handler involved, if any.
	Handler string

	Suggestion string
	Example    string
	DocURL     string

	Wrapped error
}

func (e *NavError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *NavError) Unwrap() error {
	return e.Wrapped
}

// WithLocation records where the error happened and reads a few lines of
// surrounding source when the file is readable.
func (e *NavError) WithLocation(file string, line, column int) *NavError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.ContextStart = readContextLines(file, line, 2)
	return e
}

func (e *NavError) WithSuggestion(s string) *NavError {
	e.Suggestion = s
	return e
}

func (e *NavError) WithExample(ex string) *NavError {
	e.Example = ex
	return e
}

func (e *NavError) WithDetail(d string) *NavError {
	e.Detail = d
	return e
}

func (e *NavError) WithHandler(name string) *NavError {
	e.Handler = name
	return e
}

func (e *NavError) Wrap(err error) *NavError {
	e.Wrapped = err
	return e
}

// readContextLines returns up to radius lines on each side of target and the
// number of the first returned line.
func readContextLines(filename string, target, radius int) ([]string, int) {
	if target <= 0 {
		return nil, 0
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer f.Close()

	first := max(target-radius, 1)
	last := target + radius

	var lines []string
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if n > last {
			break
		}
		if n >= first {
			lines = append(lines, scanner.Text())
		}
	}
	if len(lines) == 0 {
		return nil, 0
	}
	return lines, first
}

// New creates a NavError from a registered code.
func New(code string) *NavError {
	t, ok := registry[code]
	if !ok {
		return &NavError{Code: code, Message: "Unknown error"}
	}
	return &NavError{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
		DocURL:     t.DocURL,
	}
}

// Newf creates an uncoded NavError.
func Newf(category Category, format string, args ...any) *NavError {
	return &NavError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps err under code unless it already is a NavError.
func FromError(err error, code string) *NavError {
	if err == nil {
		return nil
	}
	if ne, ok := err.(*NavError); ok {
		return ne
	}
	return New(code).Wrap(err)
}
