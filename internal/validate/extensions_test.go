package validate

import (
	"context"
	"strings"
	"testing"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
)

const analyzerFixture = `<Project>
  <PropertyGroup>
    <DeployTarget>staging</DeployTarget>
    <DeployTarget>production</DeployTarget>
  </PropertyGroup>
  <Target Name="Build">
    <Message Text="$(DeployTarget)"/>
  </Target>
</Project>`

func runAnalyzers(t *testing.T, src string, analyzers ...*Analyzer) *Document {
	t.Helper()
	return checkSource(t, "test.targets", src, Options{
		Schemas:   []schema.Provider{schema.Builtin()},
		Analyzers: analyzers,
	})
}

func TestAnalyzerObservesWrites(t *testing.T) {
	var events []WriteEvent
	a := &Analyzer{
		Name: "deploy-audit",
		WriteTargets: []WriteTarget{
			{Kind: schema.SymProperty, Name: "deploytarget"},
		},
		OnWrite: func(c *AnalysisContext, ev WriteEvent) {
			events = append(events, ev)
		},
	}
	runAnalyzers(t, analyzerFixture, a)
	if len(events) != 2 {
		t.Fatalf("events = %d, want one per write", len(events))
	}
	for _, ev := range events {
		if ev.Element == nil || ev.Element.Name != "DeployTarget" {
			t.Errorf("event element = %+v", ev.Element)
		}
		if ev.Span.Empty() {
			t.Error("event span empty")
		}
	}
}

func TestAnalyzerReportStampsName(t *testing.T) {
	a := &Analyzer{
		Name: "deploy-audit",
		WriteTargets: []WriteTarget{
			{Kind: schema.SymProperty, Name: "DeployTarget"},
		},
		OnWrite: func(c *AnalysisContext, ev WriteEvent) {
			c.Report(diag.New(diag.SevWarning, diag.SemInfo, ev.Span, "deploy target pinned"))
		},
	}
	doc := runAnalyzers(t, analyzerFixture, a)
	d := findCode(t, doc, diag.SemInfo)
	if d.Props["analyzer"] != "deploy-audit" {
		t.Errorf("analyzer prop = %q", d.Props["analyzer"])
	}
}

func TestAnalyzerPanicContainedAndDisabled(t *testing.T) {
	calls := 0
	bad := &Analyzer{
		Name: "flaky",
		WriteTargets: []WriteTarget{
			{Kind: schema.SymProperty, Name: "DeployTarget"},
		},
		OnWrite: func(c *AnalysisContext, ev WriteEvent) {
			calls++
			panic("boom")
		},
	}
	goodEvents := 0
	good := &Analyzer{
		Name: "steady",
		WriteTargets: []WriteTarget{
			{Kind: schema.SymProperty, Name: "DeployTarget"},
		},
		OnWrite: func(c *AnalysisContext, ev WriteEvent) {
			goodEvents++
		},
	}
	doc := runAnalyzers(t, analyzerFixture, bad, good)
	if calls != 1 {
		t.Errorf("failed analyzer called %d times, want 1 (disabled after failure)", calls)
	}
	if goodEvents != 2 {
		t.Errorf("healthy analyzer events = %d, want 2", goodEvents)
	}
	if got := countCode(doc, diag.InternalError); got != 1 {
		t.Errorf("InternalError count = %d, want 1: %v", got, codes(doc))
	}
}

func TestFilterSuppressesCode(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <NeverUsed>x</NeverUsed>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	a := &Analyzer{
		Name: "quiet",
		Filters: []DiagnosticFilter{
			{Code: diag.UnreadProperty},
		},
	}
	if doc := runAnalyzers(t, src); !hasCode(doc, diag.UnreadProperty) {
		t.Fatal("fixture does not produce UnreadProperty")
	}
	if doc := runAnalyzers(t, src, a); hasCode(doc, diag.UnreadProperty) {
		t.Errorf("filter did not suppress: %v", codes(doc))
	}
}

func TestFilterPredicateScopesSuppression(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <NeverUsed>x</NeverUsed>
    <AlsoUnused>y</AlsoUnused>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	a := &Analyzer{
		Name: "selective",
		Filters: []DiagnosticFilter{
			{
				Code: diag.UnreadProperty,
				Suppress: func(doc *Document, d diag.Diagnostic) bool {
					return strings.Contains(d.Message, "NeverUsed")
				},
			},
		},
	}
	doc := runAnalyzers(t, src, a)
	if got := countCode(doc, diag.UnreadProperty); got != 1 {
		t.Fatalf("UnreadProperty count = %d, want 1: %v", got, codes(doc))
	}
	if !strings.Contains(findCode(t, doc, diag.UnreadProperty).Message, "AlsoUnused") {
		t.Error("wrong diagnostic suppressed")
	}
}

func TestFilterPanicKeepsDiagnostic(t *testing.T) {
	src := `<Project>
  <PropertyGroup>
    <NeverUsed>x</NeverUsed>
  </PropertyGroup>
  <Target Name="Build"/>
</Project>`
	a := &Analyzer{
		Name: "broken-filter",
		Filters: []DiagnosticFilter{
			{
				Code: diag.UnreadProperty,
				Suppress: func(doc *Document, d diag.Diagnostic) bool {
					panic("filter bug")
				},
			},
		},
	}
	doc := runAnalyzers(t, src, a)
	if !hasCode(doc, diag.UnreadProperty) {
		t.Errorf("failing filter suppressed the diagnostic: %v", codes(doc))
	}
}

func TestFiltersCannotAddDiagnostics(t *testing.T) {
	src := `<Project>
  <Target Name="Build"/>
</Project>`
	before := checkSource(t, "test.targets", src, builtinOpts()).Bag.Len()
	a := &Analyzer{
		Name:    "noop",
		Filters: []DiagnosticFilter{{Code: diag.UnknownElement}},
	}
	after := runAnalyzers(t, src, a).Bag.Len()
	if after > before {
		t.Errorf("filters grew the bag: %d > %d", after, before)
	}
}

func TestAnalyzerLoggerReceivesFailure(t *testing.T) {
	var logged []string
	logger := logFunc(func(format string, args ...any) {
		logged = append(logged, format)
	})
	a := &Analyzer{
		Name: "flaky",
		WriteTargets: []WriteTarget{
			{Kind: schema.SymProperty, Name: "DeployTarget"},
		},
		OnWrite: func(c *AnalysisContext, ev WriteEvent) {
			panic("boom")
		},
	}
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.targets", []byte(analyzerFixture)))
	doc := NewDocument(f, 100)
	err := Validate(context.Background(), doc, Options{
		Schemas:   []schema.Provider{schema.Builtin()},
		Analyzers: []*Analyzer{a},
		Log:       logger,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(logged) == 0 {
		t.Error("contained failure not logged")
	}
}

type logFunc func(format string, args ...any)

func (f logFunc) Logf(format string, args ...any) { f(format, args...) }
