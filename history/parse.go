/*
	Parsing and reconciliation of the SDK's bundled changelog documents.

	Each release ships a free-text history document listing entries not
	just for itself but for every earlier release its author knew about.
	That redundancy is the whole point: the same historical entry for
	version V should appear verbatim in every later release's document,
	which makes the records cross-checkable (see CheckConsistency) and
	lets the newest document serve as the authority for dates and commit
	messages of all earlier releases.
*/
package history

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	. "github.com/warpfork/go-errcat"
	"golang.org/x/text/encoding/charmap"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/catalog"
)

/*
	One changelog entry: the record a *recording release*'s document keeps
	about a *subject version* (possibly itself, possibly an earlier one).
*/
type Entry struct {
	Subject string   // version identifier the entry describes
	Date    string   // ISO 8601 calendar date, as written
	Lines   []string // body lines, heading first, common indent stripped
}

// Histories holds every parsed entry: histories[recording][subject].
// A release whose staging tree has no changelog document has no key.
type Histories map[string]map[string]Entry

// Conventional locations of the changelog inside a release's tree.
var changelogPaths = []string{
	"history.txt",
	filepath.Join("DOC", "lzma-history.txt"),
}

// A heading line opens a new entry: optional "Version" keyword, a
// major.minor number, optional filler, a trailing ISO date.
var headingPattern = regexp.MustCompile(`(?i)^\s*(?:Version\s+)?(\d+\.\d+)\s+(?:.*?\s+)?(\d{4}-\d{2}-\d{2})\s*$`)

// Everything after this banner line is prose about the LZMA format
// itself, not release history.
const historyBanner = "history of the lzma"

/*
	Parse one release's changelog document into its entry set.

	Returns an empty (nil) set without error when the release ships no
	changelog document at either conventional path.

	May return errors of category:

	  - `relgit.ErrUnknownVersion` -- a heading names a version with no
	    archive in the catalog.
	  - `relgit.ErrFS` -- the document exists but cannot be read.
*/
func ParseRelease(cat *catalog.Catalog, stagingDir string) (_ map[string]Entry, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	raw, found, err := readChangelog(stagingDir)
	if err != nil || !found {
		return nil, err
	}

	// The documents are legacy single-byte text; decode as windows-1252
	// so the occasional typographic character survives.
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, Errorf(relgit.ErrFS, "cannot decode changelog: %s", err)
	}

	entries := map[string]Entry{}

	// Line-oriented state machine with two states: outside an entry
	// (cur == nil) and inside one.  A heading line flips to inside;
	// the banner line or end of document finalizes whatever is open.
	var cur *Entry
	finalize := func() {
		if cur == nil {
			return
		}
		cur.Lines = stripCommonIndent(cur.Lines)
		entries[cur.Subject] = *cur // last occurrence of a subject wins
		cur = nil
	}

	for _, line := range strings.Split(string(decoded), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		if tokensEqualFold(line, historyBanner) {
			break
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			finalize()
			subject, date := m[1], m[2]
			if !cat.Has(subject) {
				return nil, Errorf(relgit.ErrUnknownVersion,
					"changelog entry for version %s, but no such archive is cataloged", subject)
			}
			cur = &Entry{Subject: subject, Date: date, Lines: []string{line}}
			continue
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}
	finalize()
	return entries, nil
}

/*
	Parse every cataloged release's changelog into one Histories map,
	walking releases in ascending version order.
*/
func ParseAll(ctx context.Context, cat *catalog.Catalog, stagingBase string) (Histories, error) {
	h := Histories{}
	for _, version := range cat.Versions() {
		if ctx.Err() != nil {
			return nil, Errorf(relgit.ErrCancelled, "cancelled")
		}
		entries, err := ParseRelease(cat, filepath.Join(stagingBase, version))
		if err != nil {
			return nil, err
		}
		if entries != nil {
			h[version] = entries
		}
	}
	return h, nil
}

func readChangelog(stagingDir string) ([]byte, bool, error) {
	for _, rel := range changelogPaths {
		raw, err := os.ReadFile(filepath.Join(stagingDir, rel))
		if err == nil {
			return raw, true, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, Errorf(relgit.ErrFS, "cannot read changelog: %s", err)
		}
	}
	return nil, false, nil
}

// Strip the minimum common leading whitespace from every line, so the
// entry's base indentation goes away but nested indentation survives.
func stripCommonIndent(lines []string) []string {
	common := -1
	for _, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return lines
	}
	stripped := make([]string, len(lines))
	for i, line := range lines {
		stripped[i] = line[common:]
	}
	return stripped
}

// Report whether the line's whitespace-separated tokens equal the
// phrase's, ignoring case.
func tokensEqualFold(line, phrase string) bool {
	lineTokens := strings.Fields(strings.ToLower(line))
	phraseTokens := strings.Fields(phrase)
	if len(lineTokens) != len(phraseTokens) {
		return false
	}
	for i := range lineTokens {
		if lineTokens[i] != phraseTokens[i] {
			return false
		}
	}
	return true
}
