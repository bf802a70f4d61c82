package history

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"hash"
	"os"
	"strings"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/catalog"
)

// Digest algorithms appended to every commit message, in this order.
var digestAlgorithms = []struct {
	name string
	new  func() hash.Hash
}{
	{"md5", md5.New},
	{"sha1", sha1.New},
}

/*
	Compose the commit message for a version.

	The body is the most recent release's history entry for the version,
	verbatim, when one exists (with a blank separator line inserted after
	the subject line if it isn't already there); otherwise a synthesized
	one-line "version  date" header, or the bare version string when no
	date resolves at all.  A blank line and the archive's digests under
	each algorithm follow, computed over the raw bytes of the original
	archive file -- not the extracted contents.

	May return errors of category:

	  - `relgit.ErrFS` -- the original archive cannot be read back.
*/
func ComposeMessage(h Histories, cat *catalog.Catalog, version, archivePath string) (_ string, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	entry, hasEntry := h[cat.Latest()][version]
	ce, _ := cat.Entry(version)

	var lines []string
	if hasEntry {
		lines = append(lines, entry.Lines...)
		if len(lines) > 1 && lines[1] != "" {
			// Normalize spacing for downstream changelog tooling: the
			// subject line gets its own paragraph.
			lines = append(lines[:1], append([]string{""}, lines[1:]...)...)
		}
	} else if date, ok := LookupDate(h, cat, version); ok {
		lines = append(lines, fmt.Sprintf("%-14s %s", version, date))
	} else {
		lines = append(lines, version)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return "", Errorf(relgit.ErrFS, "cannot read archive for digesting: %s", err)
	}
	lines = append(lines, "")
	for _, alg := range digestAlgorithms {
		hasher := alg.new()
		hasher.Write(data)
		lines = append(lines, fmt.Sprintf("%s: %x %s", alg.name, hasher.Sum(nil), ce.Filename))
	}

	return strings.Join(lines, "\n"), nil
}
