package diag

import "testing"

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{InvalidExpression, "EXP1001"},
		{UnknownElement, "MUP2001"},
		{DeprecatedSymbol, "SEM3001"},
		{UnknownTaskParameter, "SEM3401"},
		{InternalError, "INT9000"},
		{IOError, "INT9001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestCodeName(t *testing.T) {
	if got := UnknownElement.Name(); got != "UnknownElement" {
		t.Errorf("Name = %q", got)
	}
	if got := DeprecatedSymbol.Name(); got != "Deprecated" {
		t.Errorf("Name = %q", got)
	}
	if got := Code(4321).Name(); got != "Unknown" {
		t.Errorf("unmapped code Name = %q", got)
	}
}

func TestCodeByName(t *testing.T) {
	code, ok := CodeByName("NoTargets")
	if !ok || code != NoTargets {
		t.Errorf("CodeByName(NoTargets) = %v, %v", code, ok)
	}
	if _, ok := CodeByName("NotACode"); ok {
		t.Error("CodeByName accepted an unknown name")
	}
}

func TestCodeNamesUnique(t *testing.T) {
	seen := make(map[string]Code)
	for code, name := range codeName {
		if prev, dup := seen[name]; dup {
			t.Errorf("name %q used by both %d and %d", name, prev, code)
		}
		seen[name] = code
	}
}

func TestSeverityString(t *testing.T) {
	for sev, want := range map[Severity]string{
		SevInfo:    "INFO",
		SevWarning: "WARNING",
		SevError:   "ERROR",
	} {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
