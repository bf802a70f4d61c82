/*
	The catalog is the map of what releases we have on the shelf.

	It scans a directory for filenames matching the SDK's release-archive
	naming convention, derives a normalized version identifier for each,
	and fixes the ascending order in which every later stage walks them.
	Built once at startup; read-only afterwards.
*/
package catalog

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
)

// Container format of an archive, decided once at catalog-build time;
// the extractor dispatches on this instead of re-sniffing filenames.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarBz2 Format = "tar.bz2"
	FormatTarXz  Format = "tar.xz"
	Format7z     Format = "7z"
)

// One archive on the shelf.
type Entry struct {
	Version  string // normalized "<major>.<minor>" identifier
	Filename string // bare filename, relative to the scanned dir
	Format   Format
	numeric  int // digit group as scanned; sole ordering key
}

type Catalog struct {
	byVersion map[string]Entry
	order     []string // versions ascending by numeric value
}

// Archive naming convention: `lzma<digits>.<container>`, digits >= 3,
// case-sensitive.  The digit group over 100 is the version number.
var archiveNamePattern = regexp.MustCompile(`^lzma(\d{3,})\.(zip|tar\.bz2|tar\.xz|7z)$`)

/*
	Scan a directory and build the catalog.

	Filenames not matching the naming convention are ignored without
	comment; an empty catalog is a valid result.

	May return errors of category:

	  - `relgit.ErrCatalogConflict` -- if two files derive the same
	    version identifier (e.g. `lzma905.zip` and `lzma0905.7z`).
	  - `relgit.ErrFS` -- if the directory cannot be listed.
*/
func Scan(dir string) (_ *Catalog, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, Errorf(relgit.ErrFS, "cannot list archive directory: %s", err)
	}

	cat := &Catalog{byVersion: map[string]Entry{}}
	for _, dirent := range listing {
		if dirent.IsDir() {
			continue
		}
		m := archiveNamePattern.FindStringSubmatch(dirent.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, Errorf(relgit.ErrUsage, "unusable version digits in %q: %s", dirent.Name(), err)
		}
		entry := Entry{
			Version:  FormatVersion(n),
			Filename: m[0],
			Format:   Format(m[2]),
			numeric:  n,
		}
		if prior, exists := cat.byVersion[entry.Version]; exists {
			return nil, ErrorDetailed(relgit.ErrCatalogConflict,
				fmt.Sprintf("both %q and %q resolve to version %s", prior.Filename, entry.Filename, entry.Version),
				map[string]string{
					"version": entry.Version,
					"file1":   prior.Filename,
					"file2":   entry.Filename,
				})
		}
		cat.byVersion[entry.Version] = entry
		cat.order = append(cat.order, entry.Version)
	}
	sort.Slice(cat.order, func(i, j int) bool {
		return cat.byVersion[cat.order[i]].numeric < cat.byVersion[cat.order[j]].numeric
	})
	return cat, nil
}

// FormatVersion renders the embedded digit group as a version identifier:
// the integer divided by 100, with exactly two fractional digits
// (1805 -> "18.05", 905 -> "9.05").
func FormatVersion(n int) string {
	return fmt.Sprintf("%d.%02d", n/100, n%100)
}

// Versions returns all version identifiers, ascending by numeric value.
// Callers must not mutate the returned slice.
func (c *Catalog) Versions() []string {
	return c.order
}

func (c *Catalog) Entry(version string) (Entry, bool) {
	e, ok := c.byVersion[version]
	return e, ok
}

func (c *Catalog) Has(version string) bool {
	_, ok := c.byVersion[version]
	return ok
}

// Latest returns the highest version identifier, or "" for an empty catalog.
func (c *Catalog) Latest() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[len(c.order)-1]
}

func (c *Catalog) Len() int {
	return len(c.order)
}
