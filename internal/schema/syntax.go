package schema

// ElementKind is the closed tag set the validator dispatches on. Exactly
// one handler fires per kind.
type ElementKind uint8

const (
	ElemUnknown ElementKind = iota
	ElemProject
	ElemPropertyGroup
	ElemItemGroup
	ElemItemDefinitionGroup
	ElemItem
	ElemItemDefinition
	ElemProperty
	ElemMetadata
	ElemTarget
	ElemTask
	ElemOutput
	ElemUsingTask
	ElemParameterGroup
	ElemParameter
	ElemUsingTaskBody
	ElemImport
	ElemImportGroup
	ElemChoose
	ElemWhen
	ElemOtherwise
	ElemOnError
	ElemSdk
	ElemProjectExtensions
)

func (k ElementKind) String() string {
	switch k {
	case ElemProject:
		return "Project"
	case ElemPropertyGroup:
		return "PropertyGroup"
	case ElemItemGroup:
		return "ItemGroup"
	case ElemItemDefinitionGroup:
		return "ItemDefinitionGroup"
	case ElemItem:
		return "Item"
	case ElemItemDefinition:
		return "ItemDefinition"
	case ElemProperty:
		return "Property"
	case ElemMetadata:
		return "Metadata"
	case ElemTarget:
		return "Target"
	case ElemTask:
		return "Task"
	case ElemOutput:
		return "Output"
	case ElemUsingTask:
		return "UsingTask"
	case ElemParameterGroup:
		return "ParameterGroup"
	case ElemParameter:
		return "Parameter"
	case ElemUsingTaskBody:
		return "UsingTaskBody"
	case ElemImport:
		return "Import"
	case ElemImportGroup:
		return "ImportGroup"
	case ElemChoose:
		return "Choose"
	case ElemWhen:
		return "When"
	case ElemOtherwise:
		return "Otherwise"
	case ElemOnError:
		return "OnError"
	case ElemSdk:
		return "Sdk"
	case ElemProjectExtensions:
		return "ProjectExtensions"
	}
	return "Unknown"
}

// AttributeSyntax describes one attribute position on an element.
type AttributeSyntax struct {
	Name        string
	Kind        ValueKind
	Required    bool
	Deprecation string
}

// ElementSyntax describes one element position. Abstract syntaxes match
// any element name in their slot (items, properties, metadata, tasks,
// task parameters); concrete ones match by name.
type ElementSyntax struct {
	Name        string // "" for abstract syntaxes
	Kind        ElementKind
	Abstract    bool
	Attrs       []AttributeSyntax
	Deprecation string
}

// Attribute finds the declared attribute syntax, case-insensitive, or nil.
func (e *ElementSyntax) Attribute(name string) *AttributeSyntax {
	if e == nil {
		return nil
	}
	folded := FoldName(name)
	for i := range e.Attrs {
		if FoldName(e.Attrs[i].Name) == folded {
			return &e.Attrs[i]
		}
	}
	return nil
}

var condAttr = AttributeSyntax{Name: "Condition", Kind: KindCondition}
var labelAttr = AttributeSyntax{Name: "Label", Kind: KindString.Literal()}

var projectSyntax = &ElementSyntax{
	Name: "Project",
	Kind: ElemProject,
	Attrs: []AttributeSyntax{
		{Name: "Sdk", Kind: KindString.CommaList().Literal()},
		{Name: "DefaultTargets", Kind: KindTargetName.List().Literal()},
		{Name: "InitialTargets", Kind: KindTargetName.List().Literal()},
		{Name: "TreatAsLocalProperty", Kind: KindPropertyName.List()},
		{Name: "ToolsVersion", Kind: KindString.Literal(),
			Deprecation: "ToolsVersion is ignored in current build tooling"},
		{Name: "xmlns", Kind: KindUrl.Literal()},
	},
}

var propertyGroupSyntax = &ElementSyntax{
	Name:  "PropertyGroup",
	Kind:  ElemPropertyGroup,
	Attrs: []AttributeSyntax{condAttr, labelAttr},
}

var itemGroupSyntax = &ElementSyntax{
	Name:  "ItemGroup",
	Kind:  ElemItemGroup,
	Attrs: []AttributeSyntax{condAttr, labelAttr},
}

var itemDefinitionGroupSyntax = &ElementSyntax{
	Name:  "ItemDefinitionGroup",
	Kind:  ElemItemDefinitionGroup,
	Attrs: []AttributeSyntax{condAttr, labelAttr},
}

var itemSyntax = &ElementSyntax{
	Kind:     ElemItem,
	Abstract: true,
	Attrs: []AttributeSyntax{
		{Name: "Include", Kind: KindFileOrFolder.List()},
		{Name: "Exclude", Kind: KindFileOrFolder.List()},
		{Name: "Remove", Kind: KindFileOrFolder.List()},
		{Name: "Update", Kind: KindFileOrFolder.List()},
		{Name: "KeepMetadata", Kind: KindMetadataName.List()},
		{Name: "RemoveMetadata", Kind: KindMetadataName.List()},
		{Name: "KeepDuplicates", Kind: KindBool},
		condAttr, labelAttr,
	},
}

var itemDefinitionSyntax = &ElementSyntax{
	Kind:     ElemItemDefinition,
	Abstract: true,
	Attrs:    []AttributeSyntax{condAttr},
}

var propertySyntax = &ElementSyntax{
	Kind:     ElemProperty,
	Abstract: true,
	Attrs:    []AttributeSyntax{condAttr, labelAttr},
}

var metadataSyntax = &ElementSyntax{
	Kind:     ElemMetadata,
	Abstract: true,
	Attrs:    []AttributeSyntax{condAttr},
}

var targetSyntax = &ElementSyntax{
	Name: "Target",
	Kind: ElemTarget,
	Attrs: []AttributeSyntax{
		{Name: "Name", Kind: KindTargetName.Literal(), Required: true},
		{Name: "DependsOnTargets", Kind: KindTargetName.List()},
		{Name: "BeforeTargets", Kind: KindTargetName.List()},
		{Name: "AfterTargets", Kind: KindTargetName.List()},
		{Name: "Inputs", Kind: KindFileOrFolder.List()},
		{Name: "Outputs", Kind: KindFileOrFolder.List()},
		{Name: "Returns", Kind: KindData.List()},
		{Name: "KeepDuplicateOutputs", Kind: KindBool},
		condAttr, labelAttr,
	},
}

var taskSyntax = &ElementSyntax{
	Kind:     ElemTask,
	Abstract: true,
	Attrs: []AttributeSyntax{
		{Name: "ContinueOnError", Kind: KindData},
		{Name: "Architecture", Kind: KindString},
		{Name: "Runtime", Kind: KindString},
		condAttr,
	},
}

var outputSyntax = &ElementSyntax{
	Name: "Output",
	Kind: ElemOutput,
	Attrs: []AttributeSyntax{
		{Name: "TaskParameter", Kind: KindString.Literal(), Required: true},
		{Name: "ItemName", Kind: KindItemName.Literal()},
		{Name: "PropertyName", Kind: KindPropertyName.Literal()},
		condAttr,
	},
}

var usingTaskSyntax = &ElementSyntax{
	Name: "UsingTask",
	Kind: ElemUsingTask,
	Attrs: []AttributeSyntax{
		{Name: "TaskName", Kind: KindTaskName.Literal(), Required: true},
		{Name: "AssemblyName", Kind: KindString},
		{Name: "AssemblyFile", Kind: KindFile},
		{Name: "TaskFactory", Kind: KindTaskFactory.Literal()},
		{Name: "Architecture", Kind: KindString},
		{Name: "Runtime", Kind: KindString},
		condAttr,
	},
}

var parameterGroupSyntax = &ElementSyntax{
	Name: "ParameterGroup",
	Kind: ElemParameterGroup,
}

var parameterSyntax = &ElementSyntax{
	Kind:     ElemParameter,
	Abstract: true,
	Attrs: []AttributeSyntax{
		{Name: "ParameterType", Kind: KindTaskParameterType.Literal()},
		{Name: "Output", Kind: KindBool.Literal()},
		{Name: "Required", Kind: KindBool.Literal()},
	},
}

var usingTaskBodySyntax = &ElementSyntax{
	Name: "Task",
	Kind: ElemUsingTaskBody,
	Attrs: []AttributeSyntax{
		{Name: "Evaluate", Kind: KindBool},
	},
}

var importSyntax = &ElementSyntax{
	Name: "Import",
	Kind: ElemImport,
	Attrs: []AttributeSyntax{
		{Name: "Project", Kind: KindFile, Required: true},
		{Name: "Sdk", Kind: KindString.Literal()},
		{Name: "Version", Kind: KindNuGetVersionRange.Literal()},
		{Name: "MinimumVersion", Kind: KindNuGetVersion.Literal()},
		condAttr, labelAttr,
	},
}

var importGroupSyntax = &ElementSyntax{
	Name:  "ImportGroup",
	Kind:  ElemImportGroup,
	Attrs: []AttributeSyntax{condAttr, labelAttr},
}

var chooseSyntax = &ElementSyntax{
	Name:  "Choose",
	Kind:  ElemChoose,
	Attrs: []AttributeSyntax{labelAttr},
}

var whenSyntax = &ElementSyntax{
	Name: "When",
	Kind: ElemWhen,
	Attrs: []AttributeSyntax{
		{Name: "Condition", Kind: KindCondition, Required: true},
	},
}

var otherwiseSyntax = &ElementSyntax{
	Name: "Otherwise",
	Kind: ElemOtherwise,
}

var onErrorSyntax = &ElementSyntax{
	Name: "OnError",
	Kind: ElemOnError,
	Attrs: []AttributeSyntax{
		{Name: "ExecuteTargets", Kind: KindTargetName.List(), Required: true},
		condAttr,
	},
}

var sdkSyntax = &ElementSyntax{
	Name: "Sdk",
	Kind: ElemSdk,
	Attrs: []AttributeSyntax{
		{Name: "Name", Kind: KindString.Literal(), Required: true},
		{Name: "Version", Kind: KindNuGetVersionRange.Literal()},
		{Name: "MinimumVersion", Kind: KindNuGetVersion.Literal()},
	},
}

var projectExtensionsSyntax = &ElementSyntax{
	Name: "ProjectExtensions",
	Kind: ElemProjectExtensions,
}

func named(syntaxes ...*ElementSyntax) map[string]*ElementSyntax {
	m := make(map[string]*ElementSyntax, len(syntaxes))
	for _, s := range syntaxes {
		m[FoldName(s.Name)] = s
	}
	return m
}

var projectChildren = named(
	propertyGroupSyntax, itemGroupSyntax, itemDefinitionGroupSyntax,
	targetSyntax, usingTaskSyntax, importSyntax, importGroupSyntax,
	chooseSyntax, sdkSyntax, projectExtensionsSyntax,
)

var groupChildren = named(propertyGroupSyntax, itemGroupSyntax, chooseSyntax)

// ResolveRoot matches the document root element.
func ResolveRoot(name string) *ElementSyntax {
	if FoldName(name) == "project" {
		return projectSyntax
	}
	return nil
}

// ResolveElement matches a child element name against the parent's
// permitted slot set. Returns nil for names that have no syntax in this
// position; abstract slots (items, properties, tasks...) match any name.
func ResolveElement(parent *ElementSyntax, name string) *ElementSyntax {
	if parent == nil {
		return nil
	}
	folded := FoldName(name)
	switch parent.Kind {
	case ElemProject:
		return projectChildren[folded]
	case ElemPropertyGroup:
		return propertySyntax
	case ElemItemGroup:
		return itemSyntax
	case ElemItemDefinitionGroup:
		return itemDefinitionSyntax
	case ElemItem, ElemItemDefinition:
		return metadataSyntax
	case ElemTarget:
		switch folded {
		case "onerror":
			return onErrorSyntax
		case "propertygroup":
			return propertyGroupSyntax
		case "itemgroup":
			return itemGroupSyntax
		}
		return taskSyntax
	case ElemTask:
		if folded == "output" {
			return outputSyntax
		}
		return nil
	case ElemUsingTask:
		switch folded {
		case "parametergroup":
			return parameterGroupSyntax
		case "task":
			return usingTaskBodySyntax
		}
		return nil
	case ElemParameterGroup:
		return parameterSyntax
	case ElemChoose:
		switch folded {
		case "when":
			return whenSyntax
		case "otherwise":
			return otherwiseSyntax
		}
		return nil
	case ElemWhen, ElemOtherwise:
		return groupChildren[folded]
	case ElemImportGroup:
		if folded == "import" {
			return importSyntax
		}
		return nil
	case ElemUsingTaskBody, ElemProjectExtensions:
		// Free-form content; validated only where specific rules apply.
		return freeFormSyntax
	}
	return nil
}

// freeFormSyntax matches arbitrary content inside UsingTask bodies and
// ProjectExtensions without emitting UnknownElement.
var freeFormSyntax = &ElementSyntax{
	Kind:     ElemUnknown,
	Abstract: true,
}
