// Package diagfmt renders finished diagnostic bags for people and for
// tools. Renderers never mutate the bag; callers sort it first.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses the path as stored in the file set.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	// Width caps the rendered source line; 0 means unlimited.
	Width int
}

// JSONOpts configures machine-readable output.
type JSONOpts struct {
	// IncludePositions adds line/col to every location.
	IncludePositions bool
	PathMode         PathMode
	// Max truncates the output; the bag itself is untouched.
	Max          int
	IncludeNotes bool
	IncludeProps bool
}

// SarifRunMeta provides tool metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
