package fs

// Error categories raised by path validation.
//
// These are distinct from the top-level relgit categories because the fs
// package is a leaf; callers in `unpack` re-tag breakouts as extraction
// errors before they cross the module's outer boundary.
const (
	ErrBreakout = "fs-breakout"
)
