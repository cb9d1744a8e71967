package diag

import (
	"buildcheck/internal/source"
)

// Note is a secondary span with extra context ("declared here").
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is the central record produced by every analysis phase.
// Props is an optional structured property bag consumed by automated
// fixers and by extension filters; keys are stable per Code.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Props    map[string]string
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithProp sets one property-bag entry, allocating the map on first use.
func (d Diagnostic) WithProp(key, value string) Diagnostic {
	if d.Props == nil {
		d.Props = make(map[string]string, 2)
	}
	d.Props[key] = value
	return d
}
