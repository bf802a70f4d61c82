package unpack

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/fs"
)

func extractZip(ctx context.Context, archivePath, stagingDir string) error {
	name := filepath.Base(archivePath)
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return Errorf(relgit.ErrExtraction, "%s is not a valid zip archive: %s", name, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if ctx.Err() != nil {
			return Errorf(relgit.ErrCancelled, "cancelled")
		}
		rel, err := fs.ParseRelPath(zf.Name)
		if err != nil {
			return Errorf(relgit.ErrExtraction, "unsafe member path in %s: %s", name, err)
		}
		info := zf.FileInfo()
		switch {
		case info.IsDir():
			if err := placeDir(stagingDir, rel, info.Mode().Perm()); err != nil {
				return err
			}
		case info.Mode()&os.ModeSymlink != 0:
			linkTarget, err := readLinkTarget(zf)
			if err != nil {
				return Errorf(relgit.ErrExtraction, "corrupt zip %s: %s", name, err)
			}
			if err := placeSymlink(stagingDir, rel, linkTarget); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			rc, err := zf.Open()
			if err != nil {
				return Errorf(relgit.ErrExtraction, "corrupt zip %s: %s", name, err)
			}
			err = placeFile(stagingDir, rel, info.Mode().Perm(), zf.Modified, rc)
			rc.Close()
			if err != nil {
				return err
			}
		default:
			return Errorf(relgit.ErrExtraction, "%s: member %q has unsupported type %s", name, zf.Name, info.Mode())
		}
	}
	return nil
}

// A zip symlink's body is its target path.
func readLinkTarget(zf *zip.File) (string, error) {
	rc, err := zf.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
