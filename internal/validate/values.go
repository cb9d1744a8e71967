package validate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"buildcheck/internal/diag"
	"buildcheck/internal/expr"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
	"buildcheck/internal/xmltree"
)

// validateAttribute checks one declared attribute's value against its
// syntax-level kind. Attributes with a richer symbol (task parameters,
// metadata) are routed through validateValue by their own handlers
// instead.
func (v *Validator) validateAttribute(el *xmltree.Element, attr *xmltree.Attribute, as *schema.AttributeSyntax, st visitState) {
	v.validateValue(as.Kind, nil, attr.RawValue, attr.ValueSpan)
}

// validateElementText runs value validation over each text run of an
// element. Runs are independent: markup between them already failed
// resolution, so an expression never spans two runs.
func (v *Validator) validateElementText(el *xmltree.Element, kind schema.ValueKind, sym *schema.Symbol) {
	for _, run := range el.Text {
		v.validateValue(kind, sym, run.Raw, run.Span)
	}
}

// validateValue is the single funnel for typed value checking: parse the
// embedded expression language, report malformed constructs, enforce
// list and expression legality for the kind, cross-reference every
// symbol the expression mentions, and finally type-check pure literals.
func (v *Validator) validateValue(kind schema.ValueKind, sym *schema.Symbol, raw string, span source.Span) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	// A custom type may refine the base kind while the syntax-level
	// modifiers still govern list and expression legality.
	if sym != nil && sym.CustomType != nil && sym.CustomType.BaseKind != schema.KindUnknown {
		kind = sym.CustomType.BaseKind | (kind &^ kind.WithoutModifiers())
	}
	val := expr.Unescape(raw, span)
	root := expr.Parse(val, kind.ExprOptions())

	v.reportExprErrors(root, val)

	// A literal-only kind with embedded expressions gets exactly one
	// diagnostic; cross-referencing the illegal references would cascade.
	if !kind.AllowsExpressions() && expr.HasReferences(root) {
		v.reportFirstReference(root, val)
		return
	}
	v.checkReferences(root, val)

	if kind.AllowsExpressions() && !kind.AllowsLists() && singleValued(kind) {
		if v.checkUnexpectedList(kind, val) {
			// The combined text is not one value of the kind; checking it
			// as a literal would only add a bogus type error.
			return
		}
	}

	if expr.HasReferences(root) {
		return
	}
	v.validateLiterals(kind, sym, root, val)
}

// reportExprErrors turns every error node of the parse into a
// diagnostic. The parser already confined each error to its list item,
// so one malformed segment never suppresses its siblings.
func (v *Validator) reportExprErrors(root *expr.Node, val expr.Value) {
	expr.Walk(root, func(n *expr.Node) {
		if n.Kind != expr.KindError {
			return
		}
		sp := val.SpanOf(n.Offset, n.End())
		v.report(diag.NewError(diag.InvalidExpression, sp,
			fmt.Sprintf("invalid expression: %s", n.Err)))
	})
}

// checkReferences cross-references every property, item and metadata
// reference against the schema chain: unknown symbols that the document
// never writes are reported, deprecated ones flagged.
func (v *Validator) checkReferences(root *expr.Node, val expr.Value) {
	expr.Walk(root, func(n *expr.Node) {
		switch n.Kind {
		case expr.KindProperty:
			sp := val.SpanOf(n.NameOffset, n.NameOffset+len(n.Name))
			sym := v.resolver.Property(n.Name)
			if sym == nil {
				v.report(diag.New(diag.SevWarning, diag.UnwrittenProperty, sp,
					fmt.Sprintf("property '%s' is never written", n.Name)))
				return
			}
			v.checkDeprecatedRef(sym, sp)
		case expr.KindItem:
			sp := val.SpanOf(n.NameOffset, n.NameOffset+len(n.Name))
			sym := v.resolver.Item(n.Name)
			if sym == nil {
				v.report(diag.New(diag.SevWarning, diag.UnwrittenItem, sp,
					fmt.Sprintf("item '%s' is never written", n.Name)))
				return
			}
			v.checkDeprecatedRef(sym, sp)
		case expr.KindMetadata:
			sp := val.SpanOf(n.NameOffset, n.NameOffset+len(n.Name))
			sym := v.resolver.Metadata(n.ItemName, n.Name)
			if sym == nil {
				v.report(diag.New(diag.SevWarning, diag.UnwrittenMetadata, sp,
					fmt.Sprintf("metadata '%s' is never written", n.Name)))
				return
			}
			v.checkDeprecatedRef(sym, sp)
		}
	})
}

func (v *Validator) checkDeprecatedRef(sym *schema.Symbol, sp source.Span) {
	if sym.Deprecated() {
		v.report(diag.New(diag.SevWarning, diag.DeprecatedSymbol, sp,
			fmt.Sprintf("%s '%s' is deprecated: %s", sym.SymKind, sym.Name, sym.Deprecation)))
	}
}

// reportFirstReference flags the first embedded expression of a
// literal-only value; the rest of the value is left alone.
func (v *Validator) reportFirstReference(root *expr.Node, val expr.Value) {
	var first *expr.Node
	expr.Walk(root, func(n *expr.Node) {
		if first != nil {
			return
		}
		switch n.Kind {
		case expr.KindProperty, expr.KindItem, expr.KindMetadata:
			first = n
		}
	})
	if first == nil {
		return
	}
	v.report(diag.NewError(diag.UnexpectedExpression,
		val.SpanOf(first.Offset, first.End()),
		"expressions are not allowed in this value"))
}

// singleValued reports whether a kind is an inherently scalar value for
// which a list separator is suspicious. Free-form kinds keep semicolons
// as ordinary text. KindRuntimeIdentifier never fires here: RIDs are
// literal-only, so they cannot reach this check.
func singleValued(kind schema.ValueKind) bool {
	switch kind.WithoutModifiers() {
	case schema.KindBool, schema.KindInt, schema.KindGuid, schema.KindUrl,
		schema.KindVersion, schema.KindNuGetVersion,
		schema.KindTargetFramework, schema.KindTargetFrameworkVersion,
		schema.KindTargetFrameworkProfile, schema.KindTargetFrameworkIdentifier,
		schema.KindCulture, schema.KindLcid, schema.KindClrNamespace,
		schema.KindClrType, schema.KindClrTypeName, schema.KindImportance:
		return true
	}
	return false
}

// checkUnexpectedList looks for a textual list separator in a
// single-valued kind. The parser never produced list nodes here, so the
// scan is over the unescaped text; the diagnostic covers everything
// after the first element.
func (v *Validator) checkUnexpectedList(kind schema.ValueKind, val expr.Value) bool {
	idx := strings.IndexByte(val.Text, ';')
	if idx < 0 {
		return false
	}
	v.report(diag.New(diag.SevWarning, diag.UnexpectedList,
		val.SpanOf(idx, len(val.Text)),
		fmt.Sprintf("%s values do not support lists", kind)))
	return true
}

// validateLiterals type-checks a fully literal parse. List kinds check
// each element, everything else checks the whole text.
func (v *Validator) validateLiterals(kind schema.ValueKind, sym *schema.Symbol, root *expr.Node, val expr.Value) {
	if root.Kind == expr.KindList {
		for _, item := range root.Children {
			if item.Kind == expr.KindText {
				v.validateLiteral(kind, sym, item.Name, val.SpanOf(item.Offset, item.End()))
			}
		}
		return
	}
	if root.Kind == expr.KindText {
		v.validateLiteral(kind, sym, root.Name, val.SpanOf(root.Offset, root.End()))
	}
}

func (v *Validator) validateLiteral(kind schema.ValueKind, sym *schema.Symbol, text string, sp source.Span) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	switch kind.WithoutModifiers() {
	case schema.KindBool:
		v.checkBool(text, sp)
	case schema.KindInt, schema.KindLcid:
		v.checkInt(kind, text, sp)
	case schema.KindGuid:
		v.checkGuid(sym, text, sp)
	case schema.KindUrl:
		v.checkUrl(text, sp)
	case schema.KindVersion:
		v.checkVersion(text, sp)
	case schema.KindNuGetVersion:
		if !isNuGetVersion(text) {
			v.report(diag.NewError(diag.InvalidNuGetVersion, sp,
				fmt.Sprintf("'%s' is not a valid package version", text)))
		}
	case schema.KindNuGetVersionRange:
		if !isNuGetVersionRange(text) {
			v.report(diag.NewError(diag.InvalidNuGetVersionRange, sp,
				fmt.Sprintf("'%s' is not a valid package version range", text)))
		}
	case schema.KindTargetFramework:
		v.checkTargetFramework(text, sp)
	case schema.KindTargetFrameworkVersion:
		v.checkTargetFrameworkVersion(text, sp)
	case schema.KindTargetFrameworkProfile:
		v.checkTargetFrameworkProfile(text, sp)
	case schema.KindTargetFrameworkIdentifier:
		if !schema.IsKnownIdentifier(text) {
			v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkIdentifier, sp,
				fmt.Sprintf("unknown target framework identifier '%s'", text)))
		}
	case schema.KindCulture:
		v.checkCulture(text, sp)
	case schema.KindClrNamespace:
		if !isClrNamespace(text) {
			v.report(diag.NewError(diag.InvalidClrNamespace, sp,
				fmt.Sprintf("'%s' is not a valid namespace", text)))
		}
	case schema.KindClrType:
		if !isClrNamespace(text) {
			v.report(diag.NewError(diag.InvalidClrType, sp,
				fmt.Sprintf("'%s' is not a valid fully qualified type name", text)))
		}
	case schema.KindClrTypeName:
		if !isClrIdent(text) {
			v.report(diag.NewError(diag.InvalidClrTypeName, sp,
				fmt.Sprintf("'%s' is not a valid type name", text)))
		}
	}

	v.checkKnownValue(sym, text, sp)
	v.checkDefaultRedundancy(sym, text, sp)
}

// checkBool accepts true/false in any case. Near-miss spellings carry a
// machine-readable replacement in the property bag.
func (v *Validator) checkBool(text string, sp source.Span) {
	folded := schema.FoldName(text)
	if folded == "true" || folded == "false" {
		return
	}
	d := diag.NewError(diag.InvalidBool, sp,
		fmt.Sprintf("'%s' is not a valid boolean", text))
	switch folded {
	case "yes", "on", "1", "enable", "enabled":
		d = d.WithProp("replacement", "true")
	case "no", "off", "0", "disable", "disabled":
		d = d.WithProp("replacement", "false")
	}
	v.report(d)
}

func (v *Validator) checkInt(kind schema.ValueKind, text string, sp source.Span) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		code := diag.InvalidInteger
		if kind.WithoutModifiers() == schema.KindLcid {
			code = diag.InvalidLcid
		}
		v.report(diag.NewError(code, sp,
			fmt.Sprintf("'%s' is not a valid integer", text)))
		return
	}
	if kind.WithoutModifiers() == schema.KindLcid {
		if _, ok := knownLcids[n]; !ok {
			v.report(diag.New(diag.SevWarning, diag.UnknownLcid, sp,
				fmt.Sprintf("unknown locale ID %d", n)))
		}
	}
}

func (v *Validator) checkGuid(sym *schema.Symbol, text string, sp source.Span) {
	braced := len(text) >= 2 && text[0] == '{' && text[len(text)-1] == '}'
	inner := text
	if braced {
		inner = text[1 : len(text)-1]
	}
	if !isGuid(inner) {
		v.report(diag.NewError(diag.InvalidGuid, sp,
			fmt.Sprintf("'%s' is not a valid GUID", text)))
		return
	}
	if sym == nil || sym.GuidFormat == "" {
		return
	}
	want := sym.GuidFormat == "B"
	if braced != want {
		shape := "'{xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}'"
		if !want {
			shape = "'xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx'"
		}
		v.report(diag.New(diag.SevWarning, diag.GuidFormatMismatch, sp,
			fmt.Sprintf("GUID must use the %s format", shape)))
	}
}

func (v *Validator) checkUrl(text string, sp source.Span) {
	u, err := url.Parse(text)
	if err != nil || !u.IsAbs() || u.Host == "" && u.Scheme != "file" {
		v.report(diag.NewError(diag.InvalidUrl, sp,
			fmt.Sprintf("'%s' is not a valid absolute URL", text)))
	}
}

// checkVersion accepts 2 to 4 dot-separated numeric components.
func (v *Validator) checkVersion(text string, sp source.Span) {
	parts := strings.Split(text, ".")
	ok := len(parts) >= 2 && len(parts) <= 4
	if ok {
		for _, p := range parts {
			if !isDigits(p) {
				ok = false
				break
			}
		}
	}
	if !ok {
		v.report(diag.NewError(diag.InvalidVersion, sp,
			fmt.Sprintf("'%s' is not a valid version; expected 2 to 4 numeric components", text)))
	}
}

// checkTargetFramework validates the five components of a short
// framework name independently, so one bad part yields one precise
// diagnostic instead of a blanket rejection.
func (v *Validator) checkTargetFramework(text string, sp source.Span) {
	c := schema.ParseFramework(text)
	if !schema.IsKnownIdentifier(c.Identifier) {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkIdentifier, sp,
			fmt.Sprintf("unknown target framework identifier '%s'", c.Identifier)))
		return
	}
	if !schema.IsKnownFrameworkVersion(c.Identifier, c.Version) {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkVersion, sp,
			fmt.Sprintf("unknown version '%s' for target framework '%s'", c.Version, c.Identifier)))
		return
	}
	if c.Platform != "" && !schema.IsKnownPlatform(c.Platform) {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetPlatform, sp,
			fmt.Sprintf("unknown target platform '%s'", c.Platform)))
		return
	}
	if c.PlatformVersion != "" && !isVersionDigits(c.PlatformVersion) {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetPlatformVersion, sp,
			fmt.Sprintf("'%s' is not a valid version for target platform '%s'", c.PlatformVersion, c.Platform)))
		return
	}
	if c.Profile != "" && !schema.HasProfile(c.Identifier, c.Version, c.Profile) {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkProfile, sp,
			fmt.Sprintf("unknown profile '%s' for target framework '%s%s'", c.Profile, c.Identifier, c.Version)))
	}
}

// checkTargetFrameworkVersion cross-checks a "vX.Y" version against the
// frameworks the document declares, citing the first declared framework.
func (v *Validator) checkTargetFrameworkVersion(text string, sp source.Span) {
	ver := text
	if len(ver) > 0 && (ver[0] == 'v' || ver[0] == 'V') {
		ver = ver[1:]
	}
	if len(ver) > 0 && ver[0] == '-' {
		// Upstream tooling coerces negatives to zero instead of failing.
		ver = "0"
	}
	if ver == "" || !isVersionDigits(ver) {
		v.report(diag.NewError(diag.InvalidVersion, sp,
			fmt.Sprintf("'%s' is not a valid framework version", text)))
		return
	}
	frameworks := v.doc.Inferred.Frameworks
	if len(frameworks) == 0 {
		return
	}
	for _, fw := range frameworks {
		if schema.ParseFramework(fw).Version == ver {
			return
		}
	}
	v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkVersion, sp,
		fmt.Sprintf("version '%s' matches none of the declared target frameworks; the first declared is '%s'", text, frameworks[0])))
}

// checkTargetFrameworkProfile accepts a profile valid for at least one
// declared framework.
func (v *Validator) checkTargetFrameworkProfile(text string, sp source.Span) {
	frameworks := v.doc.Inferred.Frameworks
	if len(frameworks) == 0 {
		return
	}
	known := false
	for _, fw := range frameworks {
		c := schema.ParseFramework(fw)
		if !schema.IsKnownIdentifier(c.Identifier) {
			continue
		}
		known = true
		if schema.HasProfile(c.Identifier, c.Version, text) {
			return
		}
	}
	if known {
		v.report(diag.New(diag.SevWarning, diag.UnknownTargetFrameworkProfile, sp,
			fmt.Sprintf("unknown profile '%s' for target framework '%s'", text, frameworks[0])))
	}
}

// checkCulture distinguishes structurally invalid names from well-formed
// but unrecognized ones: only the former is an error.
func (v *Validator) checkCulture(text string, sp source.Span) {
	if !isCultureShaped(text) {
		v.report(diag.NewError(diag.InvalidCulture, sp,
			fmt.Sprintf("'%s' is not a valid culture name", text)))
		return
	}
	if _, err := language.Parse(text); err != nil {
		v.report(diag.New(diag.SevWarning, diag.UnknownCulture, sp,
			fmt.Sprintf("unknown culture '%s'", text)))
	}
}

// checkKnownValue applies the closed/open value-set capability. Only a
// closed set turns an unknown literal into a diagnostic.
func (v *Validator) checkKnownValue(sym *schema.Symbol, text string, sp source.Span) {
	if sym == nil {
		return
	}
	match, _ := schema.KnownValue(sym, text)
	if match == schema.UnknownError {
		v.report(diag.New(diag.SevWarning, diag.UnknownValue, sp,
			fmt.Sprintf("'%s' is not a known value for %s '%s'", text, sym.SymKind, sym.Name)))
	}
}

// checkDefaultRedundancy notes values that restate the symbol's default.
// Shared props/targets files legitimately pin defaults, so this only
// fires in project documents.
func (v *Validator) checkDefaultRedundancy(sym *schema.Symbol, text string, sp source.Span) {
	if v.doc.Kind != DocProject || sym == nil || !sym.HasDefault {
		return
	}
	if schema.FoldName(text) == schema.FoldName(sym.DefaultValue) {
		v.report(diag.New(diag.SevInfo, diag.DefaultValueRedundant, sp,
			fmt.Sprintf("'%s' is the default value of '%s'", text, sym.Name)).
			WithProp("default", sym.DefaultValue))
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isVersionDigits(s string) bool {
	for _, p := range strings.Split(s, ".") {
		if !isDigits(p) {
			return false
		}
	}
	return true
}

func isGuid(s string) bool {
	// 8-4-4-4-12 hex groups.
	groups := [5]int{8, 4, 4, 4, 12}
	pos := 0
	for i, n := range groups {
		if i > 0 {
			if pos >= len(s) || s[pos] != '-' {
				return false
			}
			pos++
		}
		for j := 0; j < n; j++ {
			if pos >= len(s) || !isHex(s[pos]) {
				return false
			}
			pos++
		}
	}
	return pos == len(s)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// isNuGetVersion accepts major[.minor[.patch[.revision]]] with an
// optional prerelease label and build metadata.
func isNuGetVersion(s string) bool {
	base := s
	if plus := strings.IndexByte(base, '+'); plus >= 0 {
		base = base[:plus]
	}
	if dash := strings.IndexByte(base, '-'); dash >= 0 {
		pre := base[dash+1:]
		base = base[:dash]
		if pre == "" || !isIdentLabel(pre) {
			return false
		}
	}
	parts := strings.Split(base, ".")
	if len(parts) < 1 || len(parts) > 4 {
		return false
	}
	for _, p := range parts {
		if !isDigits(p) {
			return false
		}
	}
	return true
}

func isIdentLabel(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '.' || c == '-') {
			return false
		}
	}
	return true
}

// isNuGetVersionRange accepts a bare version (minimum-inclusive), a
// floating version (1.0.*) or interval notation like [1.0,2.0).
func isNuGetVersionRange(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if s[0] == '[' || s[0] == '(' {
		last := s[len(s)-1]
		if last != ']' && last != ')' {
			return false
		}
		inner := s[1 : len(s)-1]
		parts := strings.Split(inner, ",")
		if len(parts) > 2 {
			return false
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" && !isNuGetVersion(p) {
				return false
			}
		}
		return true
	}
	if strings.HasSuffix(s, "*") {
		prefix := strings.TrimSuffix(s, "*")
		prefix = strings.TrimSuffix(prefix, ".")
		return prefix == "" || isVersionDigits(prefix)
	}
	return isNuGetVersion(s)
}

// isCultureShaped is the structural pre-check: alphanumeric groups of
// 1..8 characters joined by single dashes.
func isCultureShaped(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, "-") {
		if part == "" || len(part) > 8 {
			return false
		}
		for i := 0; i < len(part); i++ {
			c := part[i]
			alpha := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
			digit := '0' <= c && c <= '9'
			if !alpha && !digit {
				return false
			}
		}
	}
	return true
}

func isClrNamespace(s string) bool {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if !isClrIdent(p) {
			return false
		}
	}
	return len(parts) > 0
}

func isClrIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
		digit := '0' <= c && c <= '9'
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !digit {
			return false
		}
	}
	return true
}

// knownLcids covers the common Windows locale IDs; completeness is not
// the goal, catching obvious typos is.
var knownLcids = map[int64]struct{}{
	1025: {}, 1028: {}, 1029: {}, 1030: {}, 1031: {}, 1032: {}, 1033: {},
	1034: {}, 1035: {}, 1036: {}, 1038: {}, 1040: {}, 1041: {}, 1042: {},
	1043: {}, 1044: {}, 1045: {}, 1046: {}, 1049: {}, 1053: {}, 1055: {},
	1058: {}, 1060: {}, 1066: {}, 2052: {}, 2057: {}, 2070: {}, 3082: {},
}
