package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"buildcheck/internal/diag"
	"buildcheck/internal/source"
)

// Pretty renders a bag in human-readable form. It walks bag.Items() in
// order (callers run bag.Sort() first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a caret underline covering the span,
// then notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) diagnostic(d diag.Diagnostic) {
	p.header(d.Primary, p.severity(d.Severity), d.Code.ID(), d.Message)
	p.sourceLine(d.Primary)
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		p.header(n.Span, "note", "", n.Msg)
		p.sourceLine(n.Span)
	}
}

func (p *prettyPrinter) header(sp source.Span, sev, code, msg string) {
	start, _ := p.fs.Resolve(sp)
	path := formatPath(p.fs.Get(sp.File), p.opts.PathMode)
	if code != "" {
		fmt.Fprintf(p.w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, msg)
		return
	}
	fmt.Fprintf(p.w, "%s:%d:%d: %s: %s\n", path, start.Line, start.Col, sev, msg)
}

// sourceLine prints the first line of the span with a caret underline.
// Wide runes in the prefix are measured so the caret stays aligned.
func (p *prettyPrinter) sourceLine(sp source.Span) {
	if sp.Empty() && sp.Start == 0 {
		return
	}
	start, end := p.fs.Resolve(sp)
	line := p.fs.Get(sp.File).GetLine(start.Line)
	if line == "" {
		return
	}
	line = strings.ReplaceAll(line, "\t", " ")
	if p.opts.Width > 0 && len(line) > p.opts.Width {
		line = line[:p.opts.Width]
	}
	fmt.Fprintf(p.w, "  %s\n", line)

	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	pad := runewidth.StringWidth(line[:col])
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		to := int(end.Col) - 1
		if to > len(line) {
			to = len(line)
		}
		width = runewidth.StringWidth(line[col:to])
		if width < 1 {
			width = 1
		}
	}
	underline := "^" + strings.Repeat("~", width-1)
	if p.opts.Color {
		underline = color.New(color.FgHiGreen).Sprint(underline)
	}
	fmt.Fprintf(p.w, "  %s%s\n", strings.Repeat(" ", pad), underline)
}

func (p *prettyPrinter) severity(sev diag.Severity) string {
	s := sev.String()
	if !p.opts.Color {
		return s
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(s)
	default:
		return color.New(color.FgCyan).Sprint(s)
	}
}

func formatPath(f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
	case PathModeRelative:
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, f.Path); err == nil && !strings.HasPrefix(rel, "..") {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	return f.Path
}
