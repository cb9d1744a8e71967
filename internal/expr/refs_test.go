package expr

import (
	"testing"

	"buildcheck/internal/source"
)

func TestFindReferences(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind NodeKind
		sym  string
		want int
	}{
		{"property twice", "$(Foo)/$(foo)", KindProperty, "Foo", 2},
		{"property among others", "$(Foo);$(Bar);$(Foo)", KindProperty, "Foo", 2},
		{"no match", "$(Bar)", KindProperty, "Foo", 0},
		{"item", "@(Src);@(src)", KindItem, "Src", 2},
		{"item via metadata qualifier", "@(Src);%(Src.Ext)", KindItem, "Src", 2},
		{"metadata", "%(Ext);%(Src.Ext)", KindMetadata, "Ext", 2},
		{"text is not a reference", "Foo $(Foo)", KindProperty, "Foo", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Literal(tt.text, source.Span{Start: 0, End: uint32(len(tt.text))})
			root := Parse(v, All)
			got := FindReferences(root, v, tt.kind, tt.sym)
			if len(got) != tt.want {
				t.Errorf("FindReferences(%q, %v, %q) = %d spans, want %d",
					tt.text, tt.kind, tt.sym, len(got), tt.want)
			}
		})
	}
}

func TestFindReferencesSevenOccurrences(t *testing.T) {
	// Item "Foo" appears seven times across direct references, metadata
	// qualifiers and a transform; every span must cover the name exactly
	// as written, case included.
	text := "@(Foo);%(Foo.Ext);x @(foo) y;@(Bar);%(FOO.Name);@(Foo)->'%(Ext)';@(Foo);@(foo)"
	v := Literal(text, source.Span{Start: 0, End: uint32(len(text))})
	got := FindReferences(Parse(v, All), v, KindItem, "Foo")

	want := []source.Span{
		{Start: 2, End: 5},
		{Start: 9, End: 12},
		{Start: 22, End: 25},
		{Start: 38, End: 41},
		{Start: 50, End: 53},
		{Start: 67, End: 70},
		{Start: 74, End: 77},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d spans, want %d: %v", len(got), len(want), got)
	}
	for i, sp := range got {
		if sp != want[i] {
			t.Errorf("span[%d] = %v, want %v", i, sp, want[i])
		}
		if name := text[sp.Start:sp.End]; !equalFoldASCII(name, "Foo") {
			t.Errorf("span[%d] covers %q, want a Foo spelling", i, name)
		}
	}
}

func TestFindReferencesSpansCoverName(t *testing.T) {
	text := "pre $(Foo) post"
	v := Literal(text, source.Span{Start: 0, End: uint32(len(text))})
	spans := FindReferences(Parse(v, All), v, KindProperty, "Foo")
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := text[spans[0].Start:spans[0].End]; got != "Foo" {
		t.Errorf("span covers %q, want Foo", got)
	}
}
