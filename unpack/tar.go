package unpack

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"io"
	"os"
	"path/filepath"

	. "github.com/warpfork/go-errcat"
	"github.com/xi2/xz"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/fs"
)

func extractTarBz2(ctx context.Context, archivePath, stagingDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return Errorf(relgit.ErrFS, "cannot open archive: %s", err)
	}
	defer f.Close()
	return extractTarStream(ctx, filepath.Base(archivePath), bzip2.NewReader(f), stagingDir)
}

func extractTarXz(ctx context.Context, archivePath, stagingDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return Errorf(relgit.ErrFS, "cannot open archive: %s", err)
	}
	defer f.Close()
	xr, err := xz.NewReader(f, 0)
	if err != nil {
		return Errorf(relgit.ErrExtraction, "%s is not a valid xz stream: %s", filepath.Base(archivePath), err)
	}
	return extractTarStream(ctx, filepath.Base(archivePath), xr, stagingDir)
}

func extractTarStream(ctx context.Context, name string, r io.Reader, stagingDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break // end of archive.
		}
		if err != nil {
			return Errorf(relgit.ErrExtraction, "%s is not a valid tar archive: %s", name, err)
		}
		if ctx.Err() != nil {
			return Errorf(relgit.ErrCancelled, "cancelled")
		}
		rel, err := fs.ParseRelPath(hdr.Name)
		if err != nil {
			return Errorf(relgit.ErrExtraction, "unsafe member path in %s: %s", name, err)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := placeDir(stagingDir, rel, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := placeFile(stagingDir, rel, hdr.FileInfo().Mode().Perm(), hdr.ModTime, tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := placeSymlink(stagingDir, rel, hdr.Linkname); err != nil {
				return err
			}
		default:
			return Errorf(relgit.ErrExtraction, "%s: member %q has unsupported type %q", name, hdr.Name, hdr.Typeflag)
		}
	}
	return nil
}
