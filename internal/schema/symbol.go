package schema

import (
	"buildcheck/internal/source"
)

// SymbolKind says what namespace a symbol lives in.
type SymbolKind uint8

const (
	SymProperty SymbolKind = iota
	SymItem
	SymMetadata
	SymTask
	SymTarget
	SymTaskParameter
)

func (s SymbolKind) String() string {
	switch s {
	case SymProperty:
		return "property"
	case SymItem:
		return "item"
	case SymMetadata:
		return "metadata"
	case SymTask:
		return "task"
	case SymTarget:
		return "target"
	case SymTaskParameter:
		return "task parameter"
	}
	return "symbol"
}

// CustomType is the optional capability declaring a constrained value set.
// An empty Values list with AllowUnknown=true only supplies a BaseKind.
type CustomType struct {
	Values       []string
	AllowUnknown bool
	BaseKind     ValueKind
}

// Symbol is the unifying typed descriptor for properties, items,
// metadata, tasks, targets and task parameters. Optional capabilities
// (deprecation, default value, custom type) are fields rather than
// separate interfaces so providers stay plain data.
type Symbol struct {
	Name        string
	Description string
	SymKind     SymbolKind
	Kind        ValueKind

	Required bool
	Reserved bool
	ReadOnly bool

	// Deprecation carries the deprecation message; empty means current.
	Deprecation string

	// DefaultValue is meaningful only when HasDefault is set, so an
	// empty-string default stays representable.
	DefaultValue string
	HasDefault   bool

	CustomType *CustomType

	// GuidFormat optionally pins a Guid-kinded symbol to one exact shape:
	// "B" means braced ({...}), "D" means bare. Empty accepts either.
	GuidFormat string

	// Parameters holds a task's declared parameters, keyed by
	// lower-cased name. Only set for SymTask.
	Parameters map[string]*Symbol

	// IsOutput marks a task parameter usable in an Output element.
	IsOutput bool

	// DeclaredAt is the declaration site for document-inferred symbols;
	// zero for symbols from static schemas.
	DeclaredAt source.Span
}

// Deprecated reports whether the deprecation capability is present.
func (s *Symbol) Deprecated() bool {
	return s != nil && s.Deprecation != ""
}

// Parameter looks up a task parameter by name, case-insensitive.
func (s *Symbol) Parameter(name string) *Symbol {
	if s == nil || s.Parameters == nil {
		return nil
	}
	return s.Parameters[FoldName(name)]
}

// FoldName lower-cases an ASCII symbol name for case-insensitive keying.
func FoldName(name string) string {
	hasUpper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if 'A' <= c && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return name
	}
	b := []byte(name)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
