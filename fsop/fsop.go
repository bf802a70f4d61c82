/*
	Tree-level filesystem operations for swapping a release's extracted
	contents into the repository working tree.

	Plain ol' recursive copy; modes and mtimes are preserved, symlinks
	are recreated, anything fancier (devices, fifos) is rejected.
*/
package fsop

import (
	"io"
	"os"
	"path/filepath"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
)

/*
	Remove every child of dir except the named survivors (used to wipe a
	working tree while leaving `.git` standing).

	May return errors of category:

	  - `relgit.ErrFS`
*/
func ClearTree(dir string, keep ...string) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	listing, err := os.ReadDir(dir)
	if err != nil {
		return Errorf(relgit.ErrFS, "cannot list %s: %s", dir, err)
	}
	for _, dirent := range listing {
		if contains(keep, dirent.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, dirent.Name())); err != nil {
			return Errorf(relgit.ErrFS, "cannot clear %s: %s", dir, err)
		}
	}
	return nil
}

/*
	Copy the contents of srcDir into dstDir (which must exist).

	A source entry named `.git` is refused outright: release archives have
	no business carrying version-control metadata into the working tree.

	May return errors of category:

	  - `relgit.ErrFS`
*/
func CopyTree(srcDir, dstDir string) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	listing, err := os.ReadDir(srcDir)
	if err != nil {
		return Errorf(relgit.ErrFS, "cannot list %s: %s", srcDir, err)
	}
	for _, dirent := range listing {
		if dirent.Name() == ".git" {
			return Errorf(relgit.ErrFS, "refusing to copy %q from %s", dirent.Name(), srcDir)
		}
		if err := copyNode(
			filepath.Join(srcDir, dirent.Name()),
			filepath.Join(dstDir, dirent.Name()),
		); err != nil {
			return err
		}
	}
	return nil
}

func copyNode(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return Errorf(relgit.ErrFS, "copy error: %s", err)
	}
	switch {
	case info.Mode().IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
			return Errorf(relgit.ErrFS, "copy error: %s", err)
		}
		listing, err := os.ReadDir(src)
		if err != nil {
			return Errorf(relgit.ErrFS, "copy error: %s", err)
		}
		for _, dirent := range listing {
			if err := copyNode(
				filepath.Join(src, dirent.Name()),
				filepath.Join(dst, dirent.Name()),
			); err != nil {
				return err
			}
		}
		return nil
	case info.Mode().IsRegular():
		return copyFile(src, dst, info)
	case info.Mode()&os.ModeSymlink != 0:
		linkTarget, err := os.Readlink(src)
		if err != nil {
			return Errorf(relgit.ErrFS, "copy error: %s", err)
		}
		if err := os.Symlink(linkTarget, dst); err != nil {
			return Errorf(relgit.ErrFS, "copy error: %s", err)
		}
		return nil
	default:
		return Errorf(relgit.ErrFS, "cannot copy %s: unsupported file type %s", src, info.Mode())
	}
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return Errorf(relgit.ErrFS, "copy error: %s", err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return Errorf(relgit.ErrFS, "copy error: %s", err)
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Errorf(relgit.ErrFS, "copy error: %s", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return Errorf(relgit.ErrFS, "copy error: %s", err)
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
