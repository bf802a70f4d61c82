package unpack

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/fs"
)

// Archives built on Windows frequently record zero modes; substitute
// something sane rather than producing unreadable files.
const (
	defaultDirPerms  os.FileMode = 0755
	defaultFilePerms os.FileMode = 0644
)

func placeDir(stagingDir string, rel fs.RelPath, perms os.FileMode) error {
	if perms == 0 {
		perms = defaultDirPerms
	}
	target := filepath.Join(stagingDir, filepath.FromSlash(rel.String()))
	if err := os.MkdirAll(target, perms|0700); err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	return nil
}

func placeFile(stagingDir string, rel fs.RelPath, perms os.FileMode, mtime time.Time, body io.Reader) error {
	if perms == 0 {
		perms = defaultFilePerms
	}
	target := filepath.Join(stagingDir, filepath.FromSlash(rel.String()))
	// Conjure implicit parent dirs; tar and zip both allow omitting them.
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerms); err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perms)
	if err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	_, err = io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(target, mtime, mtime); err != nil {
			return Errorf(relgit.ErrFS, "error while extracting: %s", err)
		}
	}
	return nil
}

func placeSymlink(stagingDir string, rel fs.RelPath, linkTarget string) error {
	// The link may only point at paths inside the staging dir: resolve it
	// relative to the link's own parent and run the same breakout check
	// member names get.
	if path.IsAbs(linkTarget) {
		return Errorf(relgit.ErrExtraction, "symlink %q points at absolute path %q", rel, linkTarget)
	}
	if _, err := fs.ParseRelPath(path.Join(rel.Dir().String(), linkTarget)); err != nil {
		return Errorf(relgit.ErrExtraction, "symlink %q would escape the staging dir: %s", rel, err)
	}
	target := filepath.Join(stagingDir, filepath.FromSlash(rel.String()))
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerms); err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	if err := os.Symlink(linkTarget, target); err != nil {
		return Errorf(relgit.ErrFS, "error while extracting: %s", err)
	}
	return nil
}
