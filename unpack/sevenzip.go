package unpack

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/fs"
)

func extract7z(ctx context.Context, archivePath, stagingDir string) error {
	name := filepath.Base(archivePath)
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return Errorf(relgit.ErrExtraction, "%s is not a valid 7z archive: %s", name, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if ctx.Err() != nil {
			return Errorf(relgit.ErrCancelled, "cancelled")
		}
		rel, err := fs.ParseRelPath(f.Name)
		if err != nil {
			return Errorf(relgit.ErrExtraction, "unsafe member path in %s: %s", name, err)
		}
		info := f.FileInfo()
		switch {
		case info.IsDir():
			if err := placeDir(stagingDir, rel, info.Mode().Perm()); err != nil {
				return err
			}
		case info.Mode()&os.ModeSymlink != 0:
			return Errorf(relgit.ErrExtraction, "%s: member %q has unsupported type %s", name, f.Name, info.Mode())
		case info.Mode().IsRegular():
			rc, err := f.Open()
			if err != nil {
				return Errorf(relgit.ErrExtraction, "corrupt 7z %s: %s", name, err)
			}
			err = placeFile(stagingDir, rel, info.Mode().Perm(), f.Modified, rc)
			rc.Close()
			if err != nil {
				return err
			}
		default:
			return Errorf(relgit.ErrExtraction, "%s: member %q has unsupported type %s", name, f.Name, info.Mode())
		}
	}
	return nil
}
