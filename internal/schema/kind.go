package schema

import (
	"buildcheck/internal/expr"
)

// ValueKind is the type tag constraining what a value may contain. The
// low bits carry the base kind; high bits are modifiers for list and
// expression legality.
type ValueKind uint32

const (
	KindUnknown ValueKind = iota
	// KindData is free-form text, not validated.
	KindData
	KindBool
	KindInt
	KindString
	KindGuid
	KindUrl
	KindVersion
	KindNuGetVersion
	KindNuGetVersionRange
	KindTargetFramework
	KindTargetFrameworkVersion
	KindTargetFrameworkProfile
	KindTargetFrameworkIdentifier
	KindCulture
	KindLcid
	KindClrNamespace
	KindClrType
	KindClrTypeName
	KindRuntimeIdentifier
	KindFile
	KindFolder
	KindFileOrFolder
	KindCondition
	KindTargetName
	KindItemName
	KindPropertyName
	KindMetadataName
	KindTaskName
	KindTaskFactory
	KindTaskParameterType
	KindImportance
	KindCustom
)

// Modifiers.
const (
	// ListSemicolon allows semicolon-delimited lists.
	ListSemicolon ValueKind = 1 << 24
	// ListComma additionally allows comma-delimited lists.
	ListComma ValueKind = 1 << 25
	// LiteralOnly forbids embedded expressions; the value must be a
	// plain literal.
	LiteralOnly ValueKind = 1 << 26

	modifierMask ValueKind = ListSemicolon | ListComma | LiteralOnly
)

// WithoutModifiers strips list/expression modifiers, leaving the base tag.
func (k ValueKind) WithoutModifiers() ValueKind {
	return k &^ modifierMask
}

// List returns the kind with the semicolon-list modifier.
func (k ValueKind) List() ValueKind {
	return k | ListSemicolon
}

// CommaList returns the kind with both list modifiers.
func (k ValueKind) CommaList() ValueKind {
	return k | ListSemicolon | ListComma
}

// Literal returns the kind with the no-expressions modifier.
func (k ValueKind) Literal() ValueKind {
	return k | LiteralOnly
}

func (k ValueKind) AllowsLists() bool {
	return k&(ListSemicolon|ListComma) != 0
}

func (k ValueKind) AllowsCommaLists() bool {
	return k&ListComma != 0
}

func (k ValueKind) AllowsExpressions() bool {
	return k&LiteralOnly == 0
}

// ExprOptions derives the expression-parser feature set from the kind.
// List parsing is enabled strictly by the list modifiers: a kind without
// them keeps separator characters inside one literal. That asymmetry is
// deliberate for single-valued symbols whose values may contain
// semicolons (see KindRuntimeIdentifier).
func (k ValueKind) ExprOptions() expr.Options {
	var o expr.Options
	if k&ListSemicolon != 0 {
		o |= expr.Lists
	}
	if k&ListComma != 0 {
		o |= expr.CommaLists
	}
	if k.AllowsExpressions() {
		o |= expr.Items | expr.Metadata | expr.Transforms
	}
	return o
}

func (k ValueKind) String() string {
	base := k.WithoutModifiers()
	name, ok := kindNames[base]
	if !ok {
		name = "Unknown"
	}
	return name
}

var kindNames = map[ValueKind]string{
	KindUnknown:                   "Unknown",
	KindData:                      "Data",
	KindBool:                      "Bool",
	KindInt:                       "Int",
	KindString:                    "String",
	KindGuid:                      "Guid",
	KindUrl:                       "Url",
	KindVersion:                   "Version",
	KindNuGetVersion:              "NuGetVersion",
	KindNuGetVersionRange:         "NuGetVersionRange",
	KindTargetFramework:           "TargetFramework",
	KindTargetFrameworkVersion:    "TargetFrameworkVersion",
	KindTargetFrameworkProfile:    "TargetFrameworkProfile",
	KindTargetFrameworkIdentifier: "TargetFrameworkIdentifier",
	KindCulture:                   "Culture",
	KindLcid:                      "Lcid",
	KindClrNamespace:              "ClrNamespace",
	KindClrType:                   "ClrType",
	KindClrTypeName:               "ClrTypeName",
	KindRuntimeIdentifier:         "RuntimeIdentifier",
	KindFile:                      "File",
	KindFolder:                    "Folder",
	KindFileOrFolder:              "FileOrFolder",
	KindCondition:                 "Condition",
	KindTargetName:                "TargetName",
	KindItemName:                  "ItemName",
	KindPropertyName:              "PropertyName",
	KindMetadataName:              "MetadataName",
	KindTaskName:                  "TaskName",
	KindTaskFactory:               "TaskFactory",
	KindTaskParameterType:         "TaskParameterType",
	KindImportance:                "Importance",
	KindCustom:                    "Custom",
}

// kindByName supports user schema files that name kinds textually.
var kindByName = func() map[string]ValueKind {
	m := make(map[string]ValueKind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()
