package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths exactly as they were loaded.
	PathModeAuto PathMode = iota
	// PathModeAbsolute resolves paths against the working directory.
	PathModeAbsolute
	// PathModeBasename strips directories.
	PathModeBasename
)

// PrettyOpts configures human-readable diagnostic output.
type PrettyOpts struct {
	Color      bool
	PathMode   PathMode
	ShowSource bool // print the offending line with a caret underline
	ShowNotes  bool
}

// JSONOpts configures machine-readable diagnostic output.
type JSONOpts struct {
	IncludePositions bool // add line/col next to byte offsets
	IncludeNotes     bool
	PathMode         PathMode
	Max              int // output truncation; the bag itself is untouched
}
