package validate

import (
	"context"
	"testing"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
)

func builtinOpts() Options {
	return Options{Schemas: []schema.Provider{schema.Builtin()}}
}

func checkSource(t *testing.T, path, src string, opts Options) *Document {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual(path, []byte(src)))
	doc := NewDocument(f, 100)
	if err := Validate(context.Background(), doc, opts); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return doc
}

func codes(doc *Document) []diag.Code {
	out := make([]diag.Code, 0, doc.Bag.Len())
	for _, d := range doc.Bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func countCode(doc *Document, code diag.Code) int {
	n := 0
	for _, d := range doc.Bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func hasCode(doc *Document, code diag.Code) bool {
	return countCode(doc, code) > 0
}

func findCode(t *testing.T, doc *Document, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range doc.Bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("diagnostic %v not found in %v", code, codes(doc))
	return diag.Diagnostic{}
}

func TestValidateUnknownRoot(t *testing.T) {
	doc := checkSource(t, "test.csproj", `<Blueprint/>`, builtinOpts())
	d := findCode(t, doc, diag.UnknownElement)
	if d.Severity != diag.SevError {
		t.Errorf("unknown root severity = %v, want error", d.Severity)
	}
}

func TestValidateUnknownElementDoesNotCascade(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Bogus>
    <AlsoBogus>
      <EvenDeeper/>
    </AlsoBogus>
  </Bogus>
</Project>`, builtinOpts())
	if got := countCode(doc, diag.UnknownElement); got != 1 {
		t.Errorf("UnknownElement count = %d, want 1 (children must not cascade): %v", got, codes(doc))
	}
	if findCode(t, doc, diag.UnknownElement).Severity != diag.SevWarning {
		t.Error("unknown non-root element should be a warning")
	}
}

func TestValidateMissingRequiredAttribute(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Target/>
</Project>`, builtinOpts())
	d := findCode(t, doc, diag.MissingRequiredAttribute)
	if d.Props["attribute"] != "Name" {
		t.Errorf("attribute prop = %q, want Name", d.Props["attribute"])
	}
}

func TestValidateUnknownAttribute(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <PropertyGroup Flavor="spicy"/>
</Project>`, builtinOpts())
	if !hasCode(doc, diag.UnknownAttribute) {
		t.Errorf("UnknownAttribute missing: %v", codes(doc))
	}
}

func TestValidateDeprecatedSyntaxAttribute(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project ToolsVersion="15.0">
  <Target Name="Build"/>
</Project>`, builtinOpts())
	if !hasCode(doc, diag.DeprecatedSymbol) {
		t.Errorf("ToolsVersion deprecation missing: %v", codes(doc))
	}
}

func TestValidateCancelledContext(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.csproj", []byte(`<Project><PropertyGroup/></Project>`)))
	doc := NewDocument(f, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Validate(ctx, doc, builtinOpts()); err == nil {
		t.Fatal("cancelled context must surface as an error")
	}
}

func TestValidateDeterministic(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <Mystery>$(Nowhere)</Mystery>
  </PropertyGroup>
  <ItemGroup>
    <Lonely Include="a.txt"/>
  </ItemGroup>
</Project>`
	first := codes(checkSource(t, "test.targets", src, builtinOpts()))
	second := codes(checkSource(t, "test.targets", src, builtinOpts()))
	if len(first) != len(second) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("runs differ at %d: %v vs %v", i, first, second)
		}
	}
}

func TestValidateNoTargets(t *testing.T) {
	doc := checkSource(t, "app.csproj", `<Project>
  <PropertyGroup/>
</Project>`, builtinOpts())
	if !hasCode(doc, diag.NoTargets) {
		t.Errorf("NoTargets missing: %v", codes(doc))
	}
}

func TestValidateNoTargetsSuppressedBySdk(t *testing.T) {
	doc := checkSource(t, "app.csproj", `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup/>
</Project>`, builtinOpts())
	if hasCode(doc, diag.NoTargets) {
		t.Errorf("Sdk project flagged for NoTargets: %v", codes(doc))
	}
}

func TestValidateNoTargetsOnlyInProjects(t *testing.T) {
	doc := checkSource(t, "common.props", `<Project>
  <PropertyGroup/>
</Project>`, builtinOpts())
	if hasCode(doc, diag.NoTargets) {
		t.Errorf("props fragment flagged for NoTargets: %v", codes(doc))
	}
}

func TestValidateOnErrorMustBeLast(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Target Name="Build">
    <OnError ExecuteTargets="Cleanup"/>
    <Message Text="after"/>
  </Target>
</Project>`, builtinOpts())
	d := findCode(t, doc, diag.OnErrorMustBeLastInTarget)
	// The diagnostic points at the element following OnError.
	if got := spanText(t, doc, d.Primary); got != "Message" {
		t.Errorf("diagnostic at %q, want the Message element", got)
	}
}

func TestValidateOnErrorLastIsLegal(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Target Name="Build">
    <Message Text="before"/>
    <OnError ExecuteTargets="Cleanup"/>
  </Target>
</Project>`, builtinOpts())
	if hasCode(doc, diag.OnErrorMustBeLastInTarget) {
		t.Errorf("trailing OnError flagged: %v", codes(doc))
	}
}

func TestValidateOtherwiseMustBeLast(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Choose>
    <Otherwise>
      <PropertyGroup/>
    </Otherwise>
    <When Condition="'$(Configuration)'=='Debug'">
      <PropertyGroup/>
    </When>
  </Choose>
  <Target Name="Build"/>
</Project>`, builtinOpts())
	if !hasCode(doc, diag.OtherwiseMustBeLastInChoose) {
		t.Errorf("OtherwiseMustBeLastInChoose missing: %v", codes(doc))
	}
}

func TestValidateImportVersionRequiresSdk(t *testing.T) {
	doc := checkSource(t, "test.targets", `<Project>
  <Import Project="shared.props" Version="1.0"/>
  <Import Project="other.props" MinimumVersion="2.0"/>
  <Import Project="Sdk.props" Sdk="Acme.Sdk" Version="[1.0,2.0)"/>
</Project>`, builtinOpts())
	if countCode(doc, diag.ImportVersionRequiresSdk) != 1 {
		t.Errorf("ImportVersionRequiresSdk count wrong: %v", codes(doc))
	}
	if countCode(doc, diag.ImportMinVersionRequiresSdk) != 1 {
		t.Errorf("ImportMinVersionRequiresSdk count wrong: %v", codes(doc))
	}
}

func spanText(t *testing.T, doc *Document, sp source.Span) string {
	t.Helper()
	return string(doc.File.Content[sp.Start:sp.End])
}
