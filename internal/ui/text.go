package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter renders a class of CLI output. With color it paints the text,
// without color it wraps the text in its plain decoration instead.
type Formatter struct {
	color *color.Color
	open  string
	close string
}

func newFormatter(attr color.Attribute, open, close string) Formatter {
	return Formatter{color: color.New(attr), open: open, close: close}
}

// Sprint formats the arguments like fmt.Sprint.
func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.open + text + f.close
	}
	return f.color.Sprint(text)
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s
	}
	return s + "\n"
}

// noColor honours NO_COLOR (https://no-color.org/) as well as fatih/color's
// own terminal detection.
func noColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code is for commands the user can run: `datacard card import`.
	Code = newFormatter(color.FgYellow, "`", "`")

	// Path is for image files, archive members and config locations.
	Path = newFormatter(color.FgYellow, "", "")

	Success = newFormatter(color.FgGreen, "", "")
	Error   = newFormatter(color.FgRed, "", "")
	Warning = newFormatter(color.FgYellow, "", "")
	Info    = newFormatter(color.FgCyan, "", "")

	// Highlight is for values the user typed or will need again, such as
	// card ids, config keys and image formats. Quoted without color.
	Highlight = newFormatter(color.FgCyan, "'", "'")

	// Muted is for secondary detail like sizes and dates. Parenthesised
	// without color.
	Muted = newFormatter(color.FgHiBlack, "(", ")")
)

// Status marks that lead a spinner's final message.
func Done() string    { return Success.Sprint("✓") }
func Failed() string  { return Error.Sprint("✗") }
func Caution() string { return Warning.Sprint("⚠") }
func Note() string    { return Info.Sprint("ℹ") }

// Hint marks a follow-up suggestion line.
func Hint() string { return Info.Sprint("→") }
