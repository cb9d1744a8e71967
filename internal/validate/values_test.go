package validate

import (
	"fmt"
	"testing"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
)

// propDoc wraps one property assignment in a minimal targets file so the
// value checks run without unrelated structural noise.
func propDoc(t *testing.T, name, value string) *Document {
	t.Helper()
	src := fmt.Sprintf(`<Project>
  <PropertyGroup>
    <%s>%s</%s>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`, name, value, name)
	return checkSource(t, "test.targets", src, builtinOpts())
}

func TestCheckBool(t *testing.T) {
	tests := []struct {
		value       string
		wantInvalid bool
		replacement string
	}{
		{"true", false, ""},
		{"False", false, ""},
		{"TRUE", false, ""},
		{"yes", true, "true"},
		{"on", true, "true"},
		{"1", true, "true"},
		{"enabled", true, "true"},
		{"no", true, "false"},
		{"off", true, "false"},
		{"0", true, "false"},
		{"maybe", true, ""},
	}
	for _, tt := range tests {
		doc := propDoc(t, "Deterministic", tt.value)
		if !tt.wantInvalid {
			if hasCode(doc, diag.InvalidBool) {
				t.Errorf("%q flagged as invalid bool", tt.value)
			}
			continue
		}
		d := findCode(t, doc, diag.InvalidBool)
		if d.Props["replacement"] != tt.replacement {
			t.Errorf("%q replacement = %q, want %q", tt.value, d.Props["replacement"], tt.replacement)
		}
	}
}

func TestCheckGuid(t *testing.T) {
	const bare = "8400ADCA-35F0-4F54-9752-1B8A75EA2123"
	tests := []struct {
		value string
		want  diag.Code
	}{
		{"{" + bare + "}", 0},
		{bare, diag.GuidFormatMismatch},
		{"{not-a-guid}", diag.InvalidGuid},
		{"8400ADCA", diag.InvalidGuid},
	}
	for _, tt := range tests {
		doc := propDoc(t, "ProjectGuid", tt.value)
		switch tt.want {
		case 0:
			if hasCode(doc, diag.InvalidGuid) || hasCode(doc, diag.GuidFormatMismatch) {
				t.Errorf("%q flagged: %v", tt.value, codes(doc))
			}
		default:
			if !hasCode(doc, tt.want) {
				t.Errorf("%q: want %v, got %v", tt.value, tt.want, codes(doc))
			}
		}
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		value   string
		invalid bool
	}{
		{"1.0", false},
		{"1.2.3", false},
		{"1.2.3.4", false},
		{"1", true},
		{"1.2.3.4.5", true},
		{"1.x", true},
	}
	for _, tt := range tests {
		doc := propDoc(t, "AssemblyVersion", tt.value)
		if got := hasCode(doc, diag.InvalidVersion); got != tt.invalid {
			t.Errorf("%q invalid = %v, want %v", tt.value, got, tt.invalid)
		}
	}
}

func TestCheckNuGetVersion(t *testing.T) {
	tests := []struct {
		value   string
		invalid bool
	}{
		{"1.2.3", false},
		{"1.2.3-beta.1", false},
		{"1.2.3+build.5", false},
		{"1.2.3.4.5", true},
		{"1.2.3-", true},
	}
	for _, tt := range tests {
		doc := propDoc(t, "PackageVersion", tt.value)
		if got := hasCode(doc, diag.InvalidNuGetVersion); got != tt.invalid {
			t.Errorf("%q invalid = %v, want %v", tt.value, got, tt.invalid)
		}
	}
}

func TestCheckUrl(t *testing.T) {
	if doc := propDoc(t, "PackageProjectUrl", "https://example.com/project"); hasCode(doc, diag.InvalidUrl) {
		t.Error("absolute URL flagged")
	}
	if doc := propDoc(t, "PackageProjectUrl", "docs/readme.md"); !hasCode(doc, diag.InvalidUrl) {
		t.Error("relative URL accepted")
	}
}

func TestCheckTargetFramework(t *testing.T) {
	tests := []struct {
		value string
		want  diag.Code
	}{
		{"net8.0", 0},
		{"netstandard2.1", 0},
		{"net48", 0},
		{"net8.0-windows10.0.19041.0", 0},
		{"net35-client", 0},
		{"funkyfw1.0", diag.UnknownTargetFrameworkIdentifier},
		{"net8.5", diag.UnknownTargetFrameworkVersion},
		{"net8.0-solaris", diag.UnknownTargetPlatform},
		{"net8.0-windows99banana", diag.UnknownTargetPlatformVersion},
		{"net8.0-android33.0-extra", diag.UnknownTargetPlatformVersion},
		{"net48-client", diag.UnknownTargetFrameworkProfile},
	}
	for _, tt := range tests {
		doc := propDoc(t, "TargetFramework", tt.value)
		if tt.want == 0 {
			for _, code := range []diag.Code{
				diag.UnknownTargetFrameworkIdentifier, diag.UnknownTargetFrameworkVersion,
				diag.UnknownTargetPlatform, diag.UnknownTargetPlatformVersion,
				diag.UnknownTargetFrameworkProfile,
			} {
				if hasCode(doc, code) {
					t.Errorf("%q flagged with %v", tt.value, code)
				}
			}
			continue
		}
		if !hasCode(doc, tt.want) {
			t.Errorf("%q: want %v, got %v", tt.value, tt.want, codes(doc))
		}
	}
}

func TestCheckTargetFrameworkVersionCrossCheck(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <TargetFramework>net6.0</TargetFramework>
    <TargetFrameworkVersion>v9.9</TargetFrameworkVersion>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	doc := checkSource(t, "test.targets", src, builtinOpts())
	d := findCode(t, doc, diag.UnknownTargetFrameworkVersion)
	if got := spanText(t, doc, d.Primary); got != "v9.9" {
		t.Errorf("diagnostic at %q", got)
	}
}

func TestCheckTargetFrameworkVersionNoDeclaredMatch(t *testing.T) {
	// 8.0 is a perfectly good net version in general, but this document
	// declares net6.0 only.
	src := `<Project>
  <PropertyGroup>
    <TargetFramework>net6.0</TargetFramework>
    <TargetFrameworkVersion>v8.0</TargetFrameworkVersion>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	doc := checkSource(t, "test.targets", src, builtinOpts())
	if !hasCode(doc, diag.UnknownTargetFrameworkVersion) {
		t.Errorf("UnknownTargetFrameworkVersion missing: %v", codes(doc))
	}
}

func TestCheckTargetFrameworkVersionMatchesAnyDeclared(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <TargetFrameworks>net48;net8.0</TargetFrameworks>
    <TargetFrameworkVersion>v4.8</TargetFrameworkVersion>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	doc := checkSource(t, "test.targets", src, builtinOpts())
	if hasCode(doc, diag.UnknownTargetFrameworkVersion) {
		t.Errorf("version matching a non-first declared framework flagged: %v", codes(doc))
	}
}

func TestCheckTargetFrameworkProfileAnyDeclared(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <TargetFrameworks>net8.0;net3.5</TargetFrameworks>
    <TargetFrameworkProfile>Client</TargetFrameworkProfile>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	doc := checkSource(t, "test.targets", src, builtinOpts())
	if hasCode(doc, diag.UnknownTargetFrameworkProfile) {
		t.Errorf("profile valid for a declared framework flagged: %v", codes(doc))
	}

	src = `<Project>
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <TargetFrameworkProfile>Client</TargetFrameworkProfile>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	doc = checkSource(t, "test.targets", src, builtinOpts())
	if !hasCode(doc, diag.UnknownTargetFrameworkProfile) {
		t.Errorf("UnknownTargetFrameworkProfile missing: %v", codes(doc))
	}
}

func TestCheckTargetFrameworkVersionNegativeCoerced(t *testing.T) {
	// Negative versions are coerced to zero, not rejected outright.
	doc := propDoc(t, "TargetFrameworkVersion", "v-1")
	if hasCode(doc, diag.InvalidVersion) {
		t.Errorf("negative version treated as malformed: %v", codes(doc))
	}
}

func TestCheckTargetFrameworkVersionMalformed(t *testing.T) {
	doc := propDoc(t, "TargetFrameworkVersion", "vX")
	if !hasCode(doc, diag.InvalidVersion) {
		t.Errorf("InvalidVersion missing: %v", codes(doc))
	}
}

func TestCheckCulture(t *testing.T) {
	if doc := propDoc(t, "NeutralLanguage", "en-US"); hasCode(doc, diag.InvalidCulture) || hasCode(doc, diag.UnknownCulture) {
		t.Errorf("en-US flagged: %v", codes(doc))
	}
	if doc := propDoc(t, "NeutralLanguage", "en_US"); !hasCode(doc, diag.InvalidCulture) {
		t.Error("structurally invalid culture accepted")
	}
	doc := propDoc(t, "NeutralLanguage", "zz-ZZ")
	if hasCode(doc, diag.InvalidCulture) {
		t.Error("well-formed culture reported as structurally invalid")
	}
	if !hasCode(doc, diag.UnknownCulture) {
		t.Errorf("unknown culture not flagged: %v", codes(doc))
	}
}

func TestCheckClrTypes(t *testing.T) {
	if doc := propDoc(t, "RootNamespace", "Acme.Build.Tools"); hasCode(doc, diag.InvalidClrNamespace) {
		t.Error("valid namespace flagged")
	}
	if doc := propDoc(t, "RootNamespace", "Acme..Tools"); !hasCode(doc, diag.InvalidClrNamespace) {
		t.Error("double-dot namespace accepted")
	}
	if doc := propDoc(t, "StartupObject", "Acme.App.Program"); hasCode(doc, diag.InvalidClrType) {
		t.Error("valid type name flagged")
	}
	if doc := propDoc(t, "StartupObject", "1Acme.Program"); !hasCode(doc, diag.InvalidClrType) {
		t.Error("digit-leading type name accepted")
	}
}

func TestLcidAndKnownValues(t *testing.T) {
	user, err := schema.ParseUserSchema(`
[properties.InstallLocale]
kind = "Lcid"

[properties.BuildMode]
values = ["fast", "careful"]

[properties.Channel]
values = ["stable", "beta"]
allowUnknown = true
`)
	if err != nil {
		t.Fatalf("ParseUserSchema: %v", err)
	}
	opts := Options{Schemas: []schema.Provider{user, schema.Builtin()}}

	run := func(name, value string) *Document {
		src := fmt.Sprintf(`<Project>
  <PropertyGroup>
    <%s>%s</%s>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`, name, value, name)
		return checkSource(t, "test.targets", src, opts)
	}

	if doc := run("InstallLocale", "1033"); hasCode(doc, diag.InvalidLcid) || hasCode(doc, diag.UnknownLcid) {
		t.Errorf("1033 flagged: %v", codes(doc))
	}
	if doc := run("InstallLocale", "abc"); !hasCode(doc, diag.InvalidLcid) {
		t.Error("non-numeric LCID accepted")
	}
	if doc := run("InstallLocale", "9999"); !hasCode(doc, diag.UnknownLcid) {
		t.Error("unknown LCID not flagged")
	}

	if doc := run("BuildMode", "FAST"); hasCode(doc, diag.UnknownValue) {
		t.Error("case-folded known value flagged")
	}
	if doc := run("BuildMode", "reckless"); !hasCode(doc, diag.UnknownValue) {
		t.Error("unknown value in closed set accepted")
	}
	if doc := run("Channel", "nightly"); hasCode(doc, diag.UnknownValue) {
		t.Error("open value set flagged an unknown value")
	}
}

func TestLiteralOnlyRejectsExpressions(t *testing.T) {
	doc := checkSource(t, "app.csproj", `<Project Sdk="$(SdkName)">
  <PropertyGroup/>
</Project>`, builtinOpts())
	if !hasCode(doc, diag.UnexpectedExpression) {
		t.Fatalf("UnexpectedExpression missing: %v", codes(doc))
	}
	// One diagnostic only: the illegal reference is not also
	// cross-referenced as an unwritten property.
	if hasCode(doc, diag.UnwrittenProperty) {
		t.Errorf("literal-only expression cascaded: %v", codes(doc))
	}
}

func TestUnexpectedList(t *testing.T) {
	doc := propDoc(t, "Deterministic", "true;false")
	if !hasCode(doc, diag.UnexpectedList) {
		t.Fatalf("UnexpectedList missing: %v", codes(doc))
	}
	// The combined text is not re-checked as one boolean literal.
	if hasCode(doc, diag.InvalidBool) {
		t.Errorf("list value also type-checked as a literal: %v", codes(doc))
	}
}

func TestListKindChecksEachElement(t *testing.T) {
	doc := propDoc(t, "SatelliteResourceLanguages", "en-US;de_DE")
	if countCode(doc, diag.InvalidCulture) != 1 {
		t.Errorf("per-element check wrong: %v", codes(doc))
	}
}

func TestInvalidExpression(t *testing.T) {
	doc := propDoc(t, "OutputPath", "$(Broken")
	if !hasCode(doc, diag.InvalidExpression) {
		t.Errorf("InvalidExpression missing: %v", codes(doc))
	}
}

func TestBlankValueSkipped(t *testing.T) {
	doc := propDoc(t, "Deterministic", "   ")
	if hasCode(doc, diag.InvalidBool) {
		t.Errorf("blank value type-checked: %v", codes(doc))
	}
}
