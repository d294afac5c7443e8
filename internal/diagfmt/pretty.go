package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

// Pretty renders diagnostics one per block:
//
//	<path>:<line>:<col>: <SEVERITY> <CODE>: <message>
//	    <line> | <source text>
//	           | ^~~~
//
// The caller is expected to bag.Sort() first when stable order matters.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, end := fs.Resolve(d.Primary)
	file := fs.Get(d.Primary.File)

	sev := severityColor(d.Severity, opts.Color)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		displayPath(file.Path, opts.PathMode), start.Line, start.Col,
		sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)

	if opts.ShowSource {
		printSourceLine(w, file, start, end, sev)
	}
	if opts.ShowNotes {
		for _, note := range d.Notes {
			noteStart, _ := fs.Resolve(note.Span)
			noteFile := fs.Get(note.Span.File)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n",
				displayPath(noteFile.Path, opts.PathMode),
				noteStart.Line, noteStart.Col, note.Msg)
		}
	}
}

func printSourceLine(w io.Writer, file *source.File, start, end source.LineCol, sev *color.Color) {
	line := file.GetLine(start.Line)
	if line == "" || int(start.Col) > len(line)+1 {
		return
	}
	fmt.Fprintf(w, "%5d | %s\n", start.Line, line)

	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	}
	if rest := len(line) - int(start.Col) + 1; width > rest && rest > 0 {
		width = rest
	}
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "      | %s%s\n", strings.Repeat(" ", int(start.Col)-1), sev.Sprint(marker))
}

func displayPath(path string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// severityColor picks the label style. Color is forced on or off by the
// caller so output stays deterministic regardless of TTY detection.
func severityColor(sev diag.Severity, enable bool) *color.Color {
	var c *color.Color
	switch sev {
	case diag.SevInternal:
		c = color.New(color.FgHiRed, color.Bold)
	case diag.SevError:
		c = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgCyan)
	}
	if enable {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Summary renders the closing "N errors, M warnings" line, empty when
// the bag is clean.
func Summary(bag *diag.Bag) string {
	errs, warns := 0, 0
	for _, d := range bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	switch {
	case errs > 0 && warns > 0:
		return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
	case errs > 0:
		return plural(errs, "error")
	case warns > 0:
		return plural(warns, "warning")
	}
	return ""
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
