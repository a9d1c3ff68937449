package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	redStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	blueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	cyanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	whiteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	grayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// colorEnabled controls whether styles are applied.
var colorEnabled = true

// DisableColors turns off styled output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors turns styled output back on.
func EnableColors() {
	colorEnabled = true
}

func paint(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

func red(text string) string   { return paint(redStyle, text) }
func blue(text string) string  { return paint(blueStyle, text) }
func cyan(text string) string  { return paint(cyanStyle, text) }
func white(text string) string { return paint(whiteStyle, text) }
func gray(text string) string  { return paint(grayStyle, text) }
func bold(text string) string  { return paint(boldStyle, text) }

// Format renders the error for a terminal, with source context when known.
func (e *NavError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(red(bold("ERROR")))
	if e.Code != "" {
		b.WriteString(white(bold(" " + e.Code)))
	}
	b.WriteString(white(bold(": ")))
	b.WriteString(white(e.Message))
	b.WriteString("\n\n")

	if e.Location != nil {
		b.WriteString("  ")
		b.WriteString(cyan(e.Location.String()))
		if e.Handler != "" {
			b.WriteString(gray(" in "))
			b.WriteString(e.Handler)
		}
		b.WriteString("\n\n")
		e.writeContext(&b)
	} else if e.Handler != "" {
		b.WriteString("  ")
		b.WriteString(gray("handler "))
		b.WriteString(e.Handler)
		b.WriteString("\n\n")
	}

	for _, line := range wrapText(e.Detail, 70) {
		b.WriteString("  " + line + "\n")
	}
	if e.Detail != "" {
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", cyan("Hint: "), e.Suggestion)
	}
	if e.Example != "" {
		b.WriteString("  " + cyan("Example:") + "\n")
		for _, line := range strings.Split(e.Example, "\n") {
			b.WriteString("    " + line + "\n")
		}
		b.WriteString("\n")
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", gray("Learn more: "), blue(e.DocURL))
	}
	return b.String()
}

func (e *NavError) writeContext(b *strings.Builder) {
	if len(e.Context) == 0 {
		return
	}
	for i, line := range e.Context {
		n := e.ContextStart + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gray(" │ "), line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", red("→ "), n, gray(" │ "), line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", gray("│ "), strings.Repeat(" ", e.Location.Column-1), red("^"))
		}
	}
	b.WriteString("\n")
}

// FormatCompact returns location, code and message on one line, in the
// shape editors and CI annotators expect.
func (e *NavError) FormatCompact() string {
	prefix := ""
	if e.Location != nil {
		prefix = e.Location.String() + ": "
	}
	return prefix + e.Error()
}

// FormatJSON returns the error as a JSON object.
func (e *NavError) FormatJSON() string {
	type location struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column,omitempty"`
	}
	out := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category,omitempty"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Handler    string    `json:"handler,omitempty"`
		Location   *location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
		DocURL     string    `json:"docUrl,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Handler:    e.Handler,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Location != nil {
		out.Location = &location{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// wrapText breaks text on spaces into lines of at most width bytes. Single
// words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to w, formatted when it is a NavError.
func PrintError(w io.Writer, err error) {
	if ne, ok := err.(*NavError); ok {
		fmt.Fprint(w, ne.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
}
