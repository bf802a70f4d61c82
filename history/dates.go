package history

import (
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/catalog"
)

// Authoritative publication dates for releases whose self-reported
// history is missing, wrong, or absent entirely.  Takes precedence over
// anything the changelog documents claim.
var knownDates = map[string]string{
	"4.62":  "2008-12-02",
	"9.07":  "2009-08-29",
	"9.10":  "2009-12-22",
	"9.20":  "2010-11-18",
	"9.22":  "2011-04-19",
	"15.05": "2015-06-14",
	"15.06": "2015-08-16",
	"15.07": "2015-09-21",
	"15.08": "2015-10-05",
}

/*
	Look up the canonical release date for a version: the override table
	first, then the most recent release's recorded history entry for it.
	The second return is false when neither source knows the version.
*/
func LookupDate(h Histories, cat *catalog.Catalog, version string) (string, bool) {
	if date, ok := knownDates[version]; ok {
		return date, true
	}
	if entry, ok := h[cat.Latest()][version]; ok {
		return entry.Date, true
	}
	return "", false
}

/*
	Like LookupDate, but a missing date is fatal: every version slated for
	commit must resolve to a date, since undated commits are not permitted.

	May return errors of category:

	  - `relgit.ErrMissingDate`
*/
func ResolveDate(h Histories, cat *catalog.Catalog, version string) (string, error) {
	date, ok := LookupDate(h, cat, version)
	if !ok {
		return "", Errorf(relgit.ErrMissingDate, "no release date known for version %s", version)
	}
	return date, nil
}
