package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Expression parsing (embedded macro language)
	ExprInfo          Code = 1000
	InvalidExpression Code = 1001
	UnexpectedList       Code = 1002
	UnexpectedExpression Code = 1003

	// Markup resolution
	MarkupInfo               Code = 2000
	UnknownElement           Code = 2001
	UnknownAttribute         Code = 2002
	MissingRequiredAttribute Code = 2003
	MarkupSyntax             Code = 2004

	// Semantic rules
	SemInfo          Code = 3000
	DeprecatedSymbol Code = 3001

	// UsingTask legality
	UsingTaskMustHaveAssembly                Code = 3101
	TaskFactoryMustHaveOneAssemblyOnly       Code = 3102
	TaskFactoryMustHaveAssemblyFile          Code = 3103
	TaskBodyMustHaveFactory                  Code = 3104
	ParameterGroupMustHaveFactory            Code = 3105
	TaskFactoryMustHaveBody                  Code = 3106
	RoslynCodeTaskFactoryRequiresCodeElement Code = 3107
	RoslynCodeTaskFactoryParameterGroupIgnored Code = 3108
	InvalidTaskName                          Code = 3109
	FullyQualifiedTaskName                   Code = 3110
	UnresolvedAssemblyTask                   Code = 3111
	UnresolvedInferredTask                   Code = 3112

	// Import consistency
	ImportVersionRequiresSdk    Code = 3151
	ImportMinVersionRequiresSdk Code = 3152

	// Item attribute legality
	ItemUpdateNotAllowedInTarget     Code = 3201
	KeepMetadataOnlyAllowedInTarget  Code = 3202
	RemoveMetadataOnlyAllowedInTarget Code = 3203
	KeepDuplicatesOnlyAllowedInTarget Code = 3204
	ItemMustHaveInclude              Code = 3205
	OutputMustHavePropertyOrItemName Code = 3211

	// Unused / unwritten symbols
	UnreadItem        Code = 3221
	UnreadProperty    Code = 3222
	UnreadMetadata    Code = 3223
	UnwrittenItem     Code = 3224
	UnwrittenProperty Code = 3225
	UnwrittenMetadata Code = 3226

	// Value validation
	InvalidBool              Code = 3301
	InvalidGuid              Code = 3302
	GuidFormatMismatch       Code = 3303
	InvalidInteger           Code = 3304
	InvalidUrl               Code = 3305
	InvalidVersion           Code = 3306
	InvalidNuGetVersion      Code = 3307
	InvalidNuGetVersionRange Code = 3308

	UnknownTargetFrameworkIdentifier Code = 3311
	UnknownTargetFrameworkVersion    Code = 3312
	UnknownTargetPlatform            Code = 3313
	UnknownTargetPlatformVersion     Code = 3314
	UnknownTargetFrameworkProfile    Code = 3315

	InvalidCulture      Code = 3321
	UnknownCulture      Code = 3322
	InvalidLcid         Code = 3323
	UnknownLcid         Code = 3324
	InvalidClrNamespace Code = 3325
	InvalidClrType      Code = 3326
	InvalidClrTypeName  Code = 3327

	UnknownValue          Code = 3330
	DefaultValueRedundant Code = 3331

	// Task parameter validation
	UnknownTaskParameter       Code = 3401
	EmptyRequiredTaskParameter Code = 3402
	MissingRequiredTaskParameter Code = 3403
	NonOutputTaskParameter     Code = 3404

	// Structural ordering
	OnErrorMustBeLastInTarget  Code = 3501
	OtherwiseMustBeLastInChoose Code = 3502
	NoTargets                  Code = 3503

	// Property write legality
	PropertyWriteReserved Code = 3601
	PropertyWriteReadonly Code = 3602

	// Internal faults
	InternalError Code = 9000
	IOError       Code = 9001
)

var codeName = map[Code]string{
	UnknownCode:                              "Unknown",
	ExprInfo:                                 "ExprInfo",
	InvalidExpression:                        "InvalidExpression",
	UnexpectedList:                           "UnexpectedList",
	UnexpectedExpression:                     "UnexpectedExpression",
	MarkupInfo:                               "MarkupInfo",
	UnknownElement:                           "UnknownElement",
	UnknownAttribute:                         "UnknownAttribute",
	MissingRequiredAttribute:                 "MissingRequiredAttribute",
	MarkupSyntax:                             "MarkupSyntax",
	SemInfo:                                  "SemInfo",
	DeprecatedSymbol:                         "Deprecated",
	UsingTaskMustHaveAssembly:                "UsingTaskMustHaveAssembly",
	TaskFactoryMustHaveOneAssemblyOnly:       "TaskFactoryMustHaveOneAssemblyOnly",
	TaskFactoryMustHaveAssemblyFile:          "TaskFactoryMustHaveAssemblyFile",
	TaskBodyMustHaveFactory:                  "TaskBodyMustHaveFactory",
	ParameterGroupMustHaveFactory:            "ParameterGroupMustHaveFactory",
	TaskFactoryMustHaveBody:                  "TaskFactoryMustHaveBody",
	RoslynCodeTaskFactoryRequiresCodeElement: "RoslynCodeTaskFactoryRequiresCodeElement",
	RoslynCodeTaskFactoryParameterGroupIgnored: "RoslynCodeTaskFactoryParameterGroupIgnored",
	InvalidTaskName:                          "InvalidTaskName",
	FullyQualifiedTaskName:                   "FullyQualifiedTaskName",
	UnresolvedAssemblyTask:                   "UnresolvedAssemblyTask",
	UnresolvedInferredTask:                   "UnresolvedInferredTask",
	ImportVersionRequiresSdk:                 "ImportVersionRequiresSdk",
	ImportMinVersionRequiresSdk:              "ImportMinVersionRequiresSdk",
	ItemUpdateNotAllowedInTarget:             "ItemUpdateNotAllowedInTarget",
	KeepMetadataOnlyAllowedInTarget:          "KeepMetadataOnlyAllowedInTarget",
	RemoveMetadataOnlyAllowedInTarget:        "RemoveMetadataOnlyAllowedInTarget",
	KeepDuplicatesOnlyAllowedInTarget:        "KeepDuplicatesOnlyAllowedInTarget",
	ItemMustHaveInclude:                      "ItemMustHaveInclude",
	OutputMustHavePropertyOrItemName:         "OutputMustHavePropertyOrItemName",
	UnreadItem:                               "UnreadItem",
	UnreadProperty:                           "UnreadProperty",
	UnreadMetadata:                           "UnreadMetadata",
	UnwrittenItem:                            "UnwrittenItem",
	UnwrittenProperty:                        "UnwrittenProperty",
	UnwrittenMetadata:                        "UnwrittenMetadata",
	InvalidBool:                              "InvalidBool",
	InvalidGuid:                              "InvalidGuid",
	GuidFormatMismatch:                       "GuidFormatMismatch",
	InvalidInteger:                           "InvalidInteger",
	InvalidUrl:                               "InvalidUrl",
	InvalidVersion:                           "InvalidVersion",
	InvalidNuGetVersion:                      "InvalidNuGetVersion",
	InvalidNuGetVersionRange:                 "InvalidNuGetVersionRange",
	UnknownTargetFrameworkIdentifier:         "UnknownTargetFrameworkIdentifier",
	UnknownTargetFrameworkVersion:            "UnknownTargetFrameworkVersion",
	UnknownTargetPlatform:                    "UnknownTargetPlatform",
	UnknownTargetPlatformVersion:             "UnknownTargetPlatformVersion",
	UnknownTargetFrameworkProfile:            "UnknownTargetFrameworkProfile",
	InvalidCulture:                           "InvalidCulture",
	UnknownCulture:                           "UnknownCulture",
	InvalidLcid:                              "InvalidLcid",
	UnknownLcid:                              "UnknownLcid",
	InvalidClrNamespace:                      "InvalidClrNamespace",
	InvalidClrType:                           "InvalidClrType",
	InvalidClrTypeName:                       "InvalidClrTypeName",
	UnknownValue:                             "UnknownValue",
	DefaultValueRedundant:                    "DefaultValueRedundant",
	UnknownTaskParameter:                     "UnknownTaskParameter",
	EmptyRequiredTaskParameter:               "EmptyRequiredTaskParameter",
	MissingRequiredTaskParameter:             "MissingRequiredTaskParameter",
	NonOutputTaskParameter:                   "NonOutputTaskParameter",
	OnErrorMustBeLastInTarget:                "OnErrorMustBeLastInTarget",
	OtherwiseMustBeLastInChoose:              "OtherwiseMustBeLastInChoose",
	NoTargets:                                "NoTargets",
	PropertyWriteReserved:                    "PropertyWriteReserved",
	PropertyWriteReadonly:                    "PropertyWriteReadonly",
	InternalError:                            "InternalError",
	IOError:                                  "IOError",
}

// ID returns the stable short identifier used in rendered output.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MUP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 9000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

// Name returns the symbolic name used by extension filters and JSON output.
func (c Code) Name() string {
	name, ok := codeName[c]
	if !ok {
		return codeName[UnknownCode]
	}
	return name
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Name())
}

// CodeByName resolves a symbolic name back to its Code. Used when filters
// and config files address diagnostics by name.
func CodeByName(name string) (Code, bool) {
	for code, n := range codeName {
		if n == name {
			return code, true
		}
	}
	return UnknownCode, false
}
