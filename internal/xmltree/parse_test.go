package xmltree

import (
	"strings"
	"testing"

	"buildcheck/internal/diag"
	"buildcheck/internal/source"
)

func parseDoc(t *testing.T, src string) (*Element, *source.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.proj", []byte(src))
	f := fs.Get(id)
	bag := diag.NewBag(100)
	root := Parse(f, diag.BagReporter{Bag: bag})
	return root, f, bag
}

func spanText(t *testing.T, f *source.File, sp source.Span) string {
	t.Helper()
	return string(f.Content[sp.Start:sp.End])
}

func TestParseEmptyDocument(t *testing.T) {
	root, _, bag := parseDoc(t, "  \n")
	if root != nil {
		t.Fatalf("root = %v, want nil", root)
	}
	if bag.Len() != 0 {
		t.Fatalf("diagnostics = %d, want 0", bag.Len())
	}
}

func TestParseSimpleTree(t *testing.T) {
	src := `<Project><PropertyGroup><Foo>bar</Foo></PropertyGroup></Project>`
	root, f, bag := parseDoc(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if root == nil || root.Name != "Project" {
		t.Fatalf("root = %+v", root)
	}
	if got := spanText(t, f, root.Span); got != src {
		t.Errorf("root span text = %q, want whole document", got)
	}
	if got := spanText(t, f, root.NameSpan); got != "Project" {
		t.Errorf("root name span = %q", got)
	}
	pg := root.Child("propertygroup")
	if pg == nil {
		t.Fatal("case-insensitive Child lookup failed")
	}
	foo := pg.Child("Foo")
	if foo == nil {
		t.Fatal("missing Foo child")
	}
	if foo.Parent != pg || pg.Parent != root {
		t.Error("parent links wrong")
	}
	if got := foo.JoinedText(); got != "bar" {
		t.Errorf("JoinedText = %q, want %q", got, "bar")
	}
	if got := spanText(t, f, foo.Text[0].Span); got != "bar" {
		t.Errorf("text span = %q", got)
	}
	if !foo.Closed {
		t.Error("Foo should be marked closed")
	}
}

func TestParseAttributes(t *testing.T) {
	src := `<Import Project="a.props" Condition='$(X)'/>`
	root, f, bag := parseDoc(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if !root.Closed {
		t.Error("self-closing element not marked closed")
	}
	a := root.Attr("project")
	if a == nil {
		t.Fatal("case-insensitive Attr lookup failed")
	}
	if a.RawValue != "a.props" {
		t.Errorf("RawValue = %q", a.RawValue)
	}
	if got := spanText(t, f, a.ValueSpan); got != "a.props" {
		t.Errorf("ValueSpan covers %q", got)
	}
	if got := spanText(t, f, a.NameSpan); got != "Project" {
		t.Errorf("NameSpan covers %q", got)
	}
	c := root.Attr("Condition")
	if c == nil || c.RawValue != "$(X)" {
		t.Fatalf("single-quoted attribute = %+v", c)
	}
	if root.Attr("Missing") != nil {
		t.Error("Attr on absent name should be nil")
	}
}

func TestParseProlog(t *testing.T) {
	src := "<?xml version=\"1.0\"?>\n<!-- comment -->\n<Project/>"
	root, _, bag := parseDoc(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if root == nil || root.Name != "Project" {
		t.Fatalf("root = %+v", root)
	}
}

func TestParseCDATA(t *testing.T) {
	src := `<Code><![CDATA[if (a < b) { }]]></Code>`
	root, _, bag := parseDoc(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if got := root.JoinedText(); got != "if (a < b) { }" {
		t.Errorf("JoinedText = %q", got)
	}
}

func TestParseJoinedTextAcrossRuns(t *testing.T) {
	src := `<T>a<!-- x -->b</T>`
	root, _, _ := parseDoc(t, src)
	if len(root.Text) != 2 {
		t.Fatalf("text runs = %d, want 2", len(root.Text))
	}
	if got := root.JoinedText(); got != "ab" {
		t.Errorf("JoinedText = %q, want %q", got, "ab")
	}
}

func TestParseImplicitClose(t *testing.T) {
	src := `<Project><ItemGroup><Compile Include="a.cs"></Project>`
	root, _, bag := parseDoc(t, src)
	if root == nil || root.Name != "Project" {
		t.Fatalf("root = %+v", root)
	}
	ig := root.Child("ItemGroup")
	if ig == nil || ig.Child("Compile") == nil {
		t.Fatal("implicitly closed children lost from tree")
	}
	want := []string{
		"element 'Compile' is implicitly closed by 'Project'",
		"element 'ItemGroup' is implicitly closed by 'Project'",
	}
	items := bag.Items()
	if len(items) != len(want) {
		t.Fatalf("diagnostics = %v, want %d", items, len(want))
	}
	for i, d := range items {
		if d.Code != diag.MarkupSyntax {
			t.Errorf("diagnostic %d code = %v", i, d.Code)
		}
		if d.Message != want[i] {
			t.Errorf("diagnostic %d message = %q, want %q", i, d.Message, want[i])
		}
	}
}

func TestParseUnclosedAtEOF(t *testing.T) {
	src := `<Project><PropertyGroup>`
	root, f, bag := parseDoc(t, src)
	if root == nil {
		t.Fatal("root missing")
	}
	if root.Closed || root.Child("PropertyGroup").Closed {
		t.Error("unterminated elements must not be marked closed")
	}
	if root.Span.End != uint32(len(f.Content)) {
		t.Errorf("root span end = %d, want %d", root.Span.End, len(f.Content))
	}
	var msgs []string
	for _, d := range bag.Items() {
		msgs = append(msgs, d.Message)
	}
	joined := strings.Join(msgs, "\n")
	for _, name := range []string{"PropertyGroup", "Project"} {
		if !strings.Contains(joined, "element '"+name+"' is never closed") {
			t.Errorf("missing never-closed diagnostic for %s in %q", name, joined)
		}
	}
}

func TestParseStrayCloseTag(t *testing.T) {
	src := `<Project></ItemGroup></Project>`
	root, _, bag := parseDoc(t, src)
	if root == nil || !root.Closed {
		t.Fatalf("root = %+v", root)
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	if got := bag.Items()[0].Message; !strings.Contains(got, "no matching open element") {
		t.Errorf("message = %q", got)
	}
}

func TestParseMultipleRoots(t *testing.T) {
	src := `<A/><B/>`
	root, _, bag := parseDoc(t, src)
	if root == nil || root.Name != "A" {
		t.Fatalf("root = %+v", root)
	}
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, "multiple root elements") {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
}

func TestParseUnquotedAttribute(t *testing.T) {
	src := `<Import Project=a.props />`
	root, _, bag := parseDoc(t, src)
	a := root.Attr("Project")
	if a == nil || a.RawValue != "a.props" {
		t.Fatalf("attribute = %+v", a)
	}
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, "not quoted") {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
}

func TestParseValuelessAttribute(t *testing.T) {
	src := `<T Flag></T>`
	root, _, bag := parseDoc(t, src)
	a := root.Attr("Flag")
	if a == nil || a.RawValue != "" {
		t.Fatalf("attribute = %+v", a)
	}
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, "has no value") {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
}

func TestParseUnterminatedAttributeValue(t *testing.T) {
	src := "<T A=\"broken\n</T>"
	root, _, bag := parseDoc(t, src)
	a := root.Attr("A")
	if a == nil || a.RawValue != "broken" {
		t.Fatalf("attribute = %+v", a)
	}
	found := false
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, "not terminated") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing not-terminated diagnostic: %v", bag.Items())
	}
}

func TestParseUnterminatedComment(t *testing.T) {
	src := `<Project/><!-- never ends`
	_, _, bag := parseDoc(t, src)
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, "unterminated section") {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
}

func TestParseWhitespaceTextDropped(t *testing.T) {
	src := "<Project>\n  <ItemGroup/>\n</Project>"
	root, _, _ := parseDoc(t, src)
	if len(root.Text) != 0 {
		t.Errorf("whitespace-only runs kept: %v", root.Text)
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"<", "<>", "</", "</>", "<a", "<a ", "<a b", "<a b=", "<a b='", "<a/><",
		"<!", "<!--", "<![CDATA[", "<?", "<a><b></c></a>", "=\"x\"", "<a b=\"x",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse(%q) panicked: %v", in, r)
				}
			}()
			parseDoc(t, in)
		}()
	}
}
