/*
	Small value types for paths handled while unpacking archives and
	shuffling trees around.

	Archive member names are attacker-controlled input; the only way one
	becomes a RelPath is through ParseRelPath, which rejects anything that
	would land outside the directory it is later joined onto.
*/
package fs

import (
	"path"
	"strings"

	. "github.com/warpfork/go-errcat"
)

// RelPath is a cleaned path which is known to be relative and known to
// stay at-or-below its anchor when joined.  The zero value is ".".
type RelPath struct {
	path string
}

/*
	Parse an archive member name (or any other untrusted path string) into
	a RelPath.

	May return errors of category:

	  - `fs.ErrBreakout` -- if the path is absolute, empty, or would
	    escape upwards after lexical cleaning.
*/
func ParseRelPath(p string) (RelPath, error) {
	if p == "" {
		return RelPath{}, Errorf(ErrBreakout, "empty path")
	}
	if strings.ContainsRune(p, '\\') {
		// Windows-built zips occasionally carry backslash separators.
		p = strings.ReplaceAll(p, "\\", "/")
	}
	if strings.HasPrefix(p, "/") {
		return RelPath{}, Errorf(ErrBreakout, "absolute path %q not allowed", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return RelPath{}, Errorf(ErrBreakout, "path %q would escape the destination", p)
	}
	if clean == "." {
		return RelPath{}, nil
	}
	return RelPath{clean}, nil
}

// MustRelPath is ParseRelPath for trusted, programmer-supplied strings.
// Panics on rejection.
func MustRelPath(p string) RelPath {
	rp, err := ParseRelPath(p)
	if err != nil {
		panic(err)
	}
	return rp
}

func (p RelPath) String() string {
	if p.path == "" {
		return "."
	}
	return p.path
}

func (p RelPath) Dir() RelPath {
	i := strings.LastIndexByte(p.path, '/')
	if i < 0 {
		return RelPath{}
	}
	return RelPath{p.path[:i]}
}

