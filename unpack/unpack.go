/*
	Extraction of release archives into per-version staging directories.

	Each catalog entry carries its container format, decided once at
	catalog-build time; dispatch here is over that tag, not over the
	filename.  Every member path is validated *before* anything is
	written, for all formats alike -- a hostile archive must not be able
	to drop files outside its staging directory.
*/
package unpack

import (
	"context"
	"os"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/catalog"
)

/*
	Extract the archive into its staging directory.

	Idempotent: if the staging directory already exists the extraction is
	skipped, unless `refresh` is set, in which case the directory is
	removed and rebuilt.  On any extraction failure the partial staging
	directory is removed, so the existence check stays trustworthy for
	the next run.

	May return errors of category:

	  - `relgit.ErrExtraction` -- corrupt archive, or unsafe member path.
	  - `relgit.ErrFS` -- trouble creating or writing the staging area.
	  - `relgit.ErrCancelled` -- context cancelled mid-extraction.
*/
func Extract(ctx context.Context, entry catalog.Entry, archivePath, stagingDir string, refresh bool) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	switch _, statErr := os.Stat(stagingDir); {
	case statErr == nil:
		if !refresh {
			return nil
		}
		if err := os.RemoveAll(stagingDir); err != nil {
			return Errorf(relgit.ErrFS, "cannot clear staging dir: %s", err)
		}
	case !os.IsNotExist(statErr):
		return Errorf(relgit.ErrFS, "cannot stat staging dir: %s", statErr)
	}
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return Errorf(relgit.ErrFS, "cannot create staging dir: %s", err)
	}

	switch entry.Format {
	case catalog.FormatZip:
		err = extractZip(ctx, archivePath, stagingDir)
	case catalog.FormatTarBz2:
		err = extractTarBz2(ctx, archivePath, stagingDir)
	case catalog.FormatTarXz:
		err = extractTarXz(ctx, archivePath, stagingDir)
	case catalog.Format7z:
		err = extract7z(ctx, archivePath, stagingDir)
	default:
		err = Errorf(relgit.ErrUsage, "unsupported container format %q", entry.Format)
	}
	if err != nil {
		os.RemoveAll(stagingDir)
		return err
	}
	return nil
}
