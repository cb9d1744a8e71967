package validate

import (
	"path/filepath"
	"strings"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema/infer"
	"buildcheck/internal/source"
	"buildcheck/internal/xmltree"
)

// DocKind classifies a document by its role, which changes which rules
// apply (default-value redundancy only fires in project files).
type DocKind uint8

const (
	DocOther DocKind = iota
	DocProject
	DocProps
	DocTargets
)

func (k DocKind) String() string {
	switch k {
	case DocProject:
		return "project"
	case DocProps:
		return "props"
	case DocTargets:
		return "targets"
	}
	return "other"
}

// DocKindForPath derives the document kind from the file extension.
func DocKindForPath(path string) DocKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csproj", ".vbproj", ".fsproj", ".proj", ".ilproj", ".esproj":
		return DocProject
	case ".props":
		return DocProps
	case ".targets":
		return DocTargets
	}
	return DocOther
}

// Document owns all per-pass state: the parsed tree, the append-only
// diagnostic bag and the inferred schema. Exactly one validation pass
// owns a Document; nothing here is shared or mutated incrementally.
type Document struct {
	File     *source.File
	Kind     DocKind
	Root     *xmltree.Element
	Bag      *diag.Bag
	Inferred *infer.DocSchema
}

// NewDocument parses the file and runs the inference pass. Markup
// problems land in the document's bag; the tree is always best-effort.
func NewDocument(f *source.File, maxDiagnostics int) *Document {
	bag := diag.NewBag(maxDiagnostics)
	root := xmltree.Parse(f, diag.BagReporter{Bag: bag})
	return &Document{
		File:     f,
		Kind:     DocKindForPath(f.Path),
		Root:     root,
		Bag:      bag,
		Inferred: infer.Infer(root),
	}
}
