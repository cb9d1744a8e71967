package schema

// Builtin returns the static provider with the curated well-known symbol
// set: reserved engine properties, common project properties, item types
// with their metadata, the stock task library and standard target names.
func Builtin() *StaticProvider {
	p := NewStaticProvider()
	addReservedProperties(p)
	addCommonProperties(p)
	addItems(p)
	addWellKnownMetadata(p)
	addTasks(p)
	addTargets(p)
	return p
}

func addReservedProperties(p *StaticProvider) {
	reserved := []string{
		"MSBuildProjectDirectory",
		"MSBuildProjectFile",
		"MSBuildProjectExtension",
		"MSBuildProjectFullPath",
		"MSBuildProjectName",
		"MSBuildThisFile",
		"MSBuildThisFileDirectory",
		"MSBuildThisFileFullPath",
		"MSBuildThisFileName",
		"MSBuildBinPath",
		"MSBuildStartupDirectory",
	}
	for _, name := range reserved {
		p.AddProperty(&Symbol{Name: name, Kind: KindFolder, Reserved: true, ReadOnly: true})
	}
	readOnly := []struct {
		name string
		kind ValueKind
	}{
		{"MSBuildToolsVersion", KindVersion},
		{"MSBuildVersion", KindVersion},
		{"MSBuildRuntimeType", KindString},
	}
	for _, r := range readOnly {
		p.AddProperty(&Symbol{Name: r.name, Kind: r.kind, ReadOnly: true})
	}
}

func addCommonProperties(p *StaticProvider) {
	for _, s := range []*Symbol{
		{Name: "Configuration", Kind: KindString,
			CustomType: &CustomType{Values: []string{"Debug", "Release"}, AllowUnknown: true},
			DefaultValue: "Debug", HasDefault: true},
		{Name: "Platform", Kind: KindString,
			CustomType: &CustomType{Values: []string{"AnyCPU", "x86", "x64", "ARM64"}, AllowUnknown: true},
			DefaultValue: "AnyCPU", HasDefault: true},
		{Name: "OutputType", Kind: KindString,
			CustomType: &CustomType{Values: []string{"Library", "Exe", "WinExe", "Module"}}},
		{Name: "TargetFramework", Kind: KindTargetFramework},
		{Name: "TargetFrameworks", Kind: KindTargetFramework.List()},
		{Name: "TargetFrameworkVersion", Kind: KindTargetFrameworkVersion},
		{Name: "TargetFrameworkProfile", Kind: KindTargetFrameworkProfile},
		{Name: "TargetFrameworkIdentifier", Kind: KindTargetFrameworkIdentifier},
		{Name: "OutputPath", Kind: KindFolder},
		{Name: "BaseOutputPath", Kind: KindFolder},
		{Name: "IntermediateOutputPath", Kind: KindFolder},
		{Name: "AssemblyName", Kind: KindString},
		{Name: "RootNamespace", Kind: KindClrNamespace},
		{Name: "LangVersion", Kind: KindString,
			CustomType: &CustomType{Values: []string{"latest", "preview", "default"}, AllowUnknown: true}},
		{Name: "Nullable", Kind: KindString,
			CustomType: &CustomType{Values: []string{"enable", "disable", "warnings", "annotations"}}},
		{Name: "ImplicitUsings", Kind: KindString,
			CustomType: &CustomType{Values: []string{"enable", "disable", "true", "false"}}},
		{Name: "ProjectGuid", Kind: KindGuid, GuidFormat: "B"},
		{Name: "GenerateDocumentationFile", Kind: KindBool},
		{Name: "SignAssembly", Kind: KindBool},
		{Name: "DebugSymbols", Kind: KindBool},
		{Name: "Optimize", Kind: KindBool},
		{Name: "Deterministic", Kind: KindBool, DefaultValue: "true", HasDefault: true},
		{Name: "TreatWarningsAsErrors", Kind: KindBool, DefaultValue: "false", HasDefault: true},
		{Name: "NoWarn", Kind: KindString.List()},
		{Name: "WarningsAsErrors", Kind: KindString.List()},
		{Name: "DefineConstants", Kind: KindString.List()},
		{Name: "PackageId", Kind: KindString},
		{Name: "PackageVersion", Kind: KindNuGetVersion},
		{Name: "Version", Kind: KindNuGetVersion},
		{Name: "AssemblyVersion", Kind: KindVersion},
		{Name: "FileVersion", Kind: KindVersion},
		{Name: "PackageProjectUrl", Kind: KindUrl},
		{Name: "PackageLicenseUrl", Kind: KindUrl,
			Deprecation: "Use PackageLicenseExpression or PackageLicenseFile instead"},
		{Name: "PackageIconUrl", Kind: KindUrl,
			Deprecation: "Use PackageIcon instead"},
		{Name: "PackageLicenseExpression", Kind: KindString},
		{Name: "RepositoryUrl", Kind: KindUrl},
		{Name: "NeutralLanguage", Kind: KindCulture},
		{Name: "SatelliteResourceLanguages", Kind: KindCulture.List()},
		{Name: "UICulture", Kind: KindCulture},
		{Name: "ApplicationIcon", Kind: KindFile},
		{Name: "StartupObject", Kind: KindClrType},
		// Single-RID property: semicolons are kept as one literal because
		// the declared kind carries no list modifier. RuntimeIdentifiers
		// below shares the base kind and the same no-list declaration its
		// upstream schema has always had; keep the asymmetry as-is.
		{Name: "RuntimeIdentifier", Kind: KindRuntimeIdentifier.Literal()},
		{Name: "RuntimeIdentifiers", Kind: KindRuntimeIdentifier.Literal()},
		{Name: "RoslynCodeTaskFactory", Kind: KindFile, ReadOnly: true},
		{Name: "SelfContained", Kind: KindBool},
		{Name: "PublishTrimmed", Kind: KindBool},
		{Name: "InvariantGlobalization", Kind: KindBool},
	} {
		p.AddProperty(s)
	}
}

func addItems(p *StaticProvider) {
	for _, s := range []*Symbol{
		{Name: "Compile", Kind: KindFile.List()},
		{Name: "Content", Kind: KindFile.List()},
		{Name: "None", Kind: KindFile.List()},
		{Name: "EmbeddedResource", Kind: KindFile.List()},
		{Name: "Reference", Kind: KindString.List()},
		{Name: "PackageReference", Kind: KindString.List()},
		{Name: "ProjectReference", Kind: KindFile.List()},
		{Name: "Folder", Kind: KindFolder.List()},
		{Name: "Using", Kind: KindClrNamespace.List()},
		{Name: "InternalsVisibleTo", Kind: KindString.List()},
	} {
		p.AddItem(s)
	}

	p.AddMetadata("PackageReference", &Symbol{Name: "Version", Kind: KindNuGetVersionRange})
	p.AddMetadata("PackageReference", &Symbol{Name: "PrivateAssets", Kind: KindString.List()})
	p.AddMetadata("PackageReference", &Symbol{Name: "IncludeAssets", Kind: KindString.List()})
	p.AddMetadata("PackageReference", &Symbol{Name: "ExcludeAssets", Kind: KindString.List()})
	p.AddMetadata("Reference", &Symbol{Name: "HintPath", Kind: KindFile})
	p.AddMetadata("Reference", &Symbol{Name: "Private", Kind: KindBool})
	p.AddMetadata("Reference", &Symbol{Name: "SpecificVersion", Kind: KindBool})
	p.AddMetadata("ProjectReference", &Symbol{Name: "ReferenceOutputAssembly", Kind: KindBool})
	p.AddMetadata("ProjectReference", &Symbol{Name: "Private", Kind: KindBool})
	p.AddMetadata("Content", &Symbol{Name: "CopyToOutputDirectory", Kind: KindString,
		CustomType: &CustomType{Values: []string{"Never", "Always", "PreserveNewest"}}})
	p.AddMetadata("None", &Symbol{Name: "CopyToOutputDirectory", Kind: KindString,
		CustomType: &CustomType{Values: []string{"Never", "Always", "PreserveNewest"}}})
	p.AddMetadata("EmbeddedResource", &Symbol{Name: "LogicalName", Kind: KindString})
	p.AddMetadata("Compile", &Symbol{Name: "DependentUpon", Kind: KindFile})
}

func addWellKnownMetadata(p *StaticProvider) {
	wellKnown := []string{
		"FullPath", "RootDir", "Filename", "Extension", "RelativeDir",
		"Directory", "RecursiveDir", "Identity", "ModifiedTime",
		"CreatedTime", "AccessedTime", "DefiningProjectDirectory",
		"DefiningProjectFullPath", "DefiningProjectName",
	}
	for _, name := range wellKnown {
		p.AddMetadata("", &Symbol{Name: name, Kind: KindString, Reserved: true, ReadOnly: true})
	}
	// Assignable well-known metadata.
	p.AddMetadata("", &Symbol{Name: "Link", Kind: KindFile})
	p.AddMetadata("", &Symbol{Name: "Visible", Kind: KindBool})
}

func taskParams(params ...*Symbol) map[string]*Symbol {
	m := make(map[string]*Symbol, len(params))
	for _, s := range params {
		s.SymKind = SymTaskParameter
		m[FoldName(s.Name)] = s
	}
	return m
}

func addTasks(p *StaticProvider) {
	importanceType := &CustomType{Values: []string{"high", "normal", "low"}}

	p.AddTask(&Symbol{Name: "Message", Parameters: taskParams(
		&Symbol{Name: "Text", Kind: KindString, Required: true},
		&Symbol{Name: "Importance", Kind: KindImportance, CustomType: importanceType},
	)})
	p.AddTask(&Symbol{Name: "Error", Parameters: taskParams(
		&Symbol{Name: "Text", Kind: KindString},
		&Symbol{Name: "Code", Kind: KindString},
		&Symbol{Name: "File", Kind: KindFile},
		&Symbol{Name: "HelpKeyword", Kind: KindString},
	)})
	p.AddTask(&Symbol{Name: "Warning", Parameters: taskParams(
		&Symbol{Name: "Text", Kind: KindString},
		&Symbol{Name: "Code", Kind: KindString},
		&Symbol{Name: "File", Kind: KindFile},
	)})
	p.AddTask(&Symbol{Name: "Copy", Parameters: taskParams(
		&Symbol{Name: "SourceFiles", Kind: KindFile.List(), Required: true},
		&Symbol{Name: "DestinationFolder", Kind: KindFolder},
		&Symbol{Name: "DestinationFiles", Kind: KindFile.List()},
		&Symbol{Name: "OverwriteReadOnlyFiles", Kind: KindBool},
		&Symbol{Name: "SkipUnchangedFiles", Kind: KindBool},
		&Symbol{Name: "Retries", Kind: KindInt},
		&Symbol{Name: "RetryDelayMilliseconds", Kind: KindInt},
		&Symbol{Name: "CopiedFiles", Kind: KindFile.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "Delete", Parameters: taskParams(
		&Symbol{Name: "Files", Kind: KindFile.List(), Required: true},
		&Symbol{Name: "TreatErrorsAsWarnings", Kind: KindBool},
		&Symbol{Name: "DeletedFiles", Kind: KindFile.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "MakeDir", Parameters: taskParams(
		&Symbol{Name: "Directories", Kind: KindFolder.List(), Required: true},
		&Symbol{Name: "DirectoriesCreated", Kind: KindFolder.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "RemoveDir", Parameters: taskParams(
		&Symbol{Name: "Directories", Kind: KindFolder.List(), Required: true},
		&Symbol{Name: "RemovedDirectories", Kind: KindFolder.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "Exec", Parameters: taskParams(
		&Symbol{Name: "Command", Kind: KindString, Required: true},
		&Symbol{Name: "WorkingDirectory", Kind: KindFolder},
		&Symbol{Name: "IgnoreExitCode", Kind: KindBool},
		&Symbol{Name: "EnvironmentVariables", Kind: KindString.List()},
		&Symbol{Name: "StandardOutputImportance", Kind: KindImportance, CustomType: importanceType},
		&Symbol{Name: "StandardErrorImportance", Kind: KindImportance, CustomType: importanceType},
		&Symbol{Name: "ExitCode", Kind: KindInt, IsOutput: true},
		&Symbol{Name: "ConsoleOutput", Kind: KindString.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "Touch", Parameters: taskParams(
		&Symbol{Name: "Files", Kind: KindFile.List(), Required: true},
		&Symbol{Name: "AlwaysCreate", Kind: KindBool},
		&Symbol{Name: "TouchedFiles", Kind: KindFile.List(), IsOutput: true},
	)})
	p.AddTask(&Symbol{Name: "WriteLinesToFile", Parameters: taskParams(
		&Symbol{Name: "File", Kind: KindFile, Required: true},
		&Symbol{Name: "Lines", Kind: KindString.List()},
		&Symbol{Name: "Overwrite", Kind: KindBool},
		&Symbol{Name: "Encoding", Kind: KindString},
	)})
}

func addTargets(p *StaticProvider) {
	for _, name := range []string{
		"Build", "Rebuild", "Clean", "Restore", "Pack", "Publish",
		"BeforeBuild", "AfterBuild",
	} {
		p.AddTarget(&Symbol{Name: name, Kind: KindData})
	}
}
