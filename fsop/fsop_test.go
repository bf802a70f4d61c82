package fsop

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/testutil"
)

func TestClearTree(t *testing.T) {
	Convey("ClearTree:", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			testutil.PlaceFiles(tmpDir, map[string]string{
				"a.txt":        "a",
				"sub/b.txt":    "b",
				".git/HEAD":    "ref: refs/heads/master",
				".git/objects": "",
			})
			So(ClearTree(tmpDir, ".git"), ShouldBeNil)

			listing, err := os.ReadDir(tmpDir)
			So(err, ShouldBeNil)
			So(len(listing), ShouldEqual, 1)
			So(listing[0].Name(), ShouldEqual, ".git")
		})
	})
}

func TestCopyTree(t *testing.T) {
	Convey("CopyTree:", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			src := filepath.Join(tmpDir, "src")
			dst := filepath.Join(tmpDir, "dst")
			So(os.MkdirAll(dst, 0755), ShouldBeNil)

			Convey("files, dirs, and symlinks should copy", func() {
				testutil.PlaceFiles(src, map[string]string{
					"top.txt":       "top",
					"sub/inner.txt": "inner",
				})
				So(os.Symlink("top.txt", filepath.Join(src, "lnk")), ShouldBeNil)

				So(CopyTree(src, dst), ShouldBeNil)

				body, err := os.ReadFile(filepath.Join(dst, "sub", "inner.txt"))
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, "inner")
				linkTarget, err := os.Readlink(filepath.Join(dst, "lnk"))
				So(err, ShouldBeNil)
				So(linkTarget, ShouldEqual, "top.txt")
			})
			Convey("a source tree carrying .git should be refused", func() {
				testutil.PlaceFiles(src, map[string]string{
					"ok.txt":    "x",
					".git/HEAD": "gotcha",
				})
				So(CopyTree(src, dst), errcat.ErrorShouldHaveCategory, relgit.ErrFS)
			})
		})
	})
}
