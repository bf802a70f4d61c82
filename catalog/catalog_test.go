package catalog

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/testutil"
)

func TestFormatVersion(t *testing.T) {
	Convey("FormatVersion:", t, func() {
		So(FormatVersion(1805), ShouldEqual, "18.05")
		So(FormatVersion(1508), ShouldEqual, "15.08")
		So(FormatVersion(905), ShouldEqual, "9.05")
		So(FormatVersion(920), ShouldEqual, "9.20")
		So(FormatVersion(462), ShouldEqual, "4.62")
		So(FormatVersion(100), ShouldEqual, "1.00")
	})
}

func TestScan(t *testing.T) {
	Convey("Catalog scanning:", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			Convey("matching archives should catalog in ascending numeric order", func() {
				testutil.PlaceFiles(tmpDir, map[string]string{
					"lzma1805.7z":     "",
					"lzma465.tar.bz2": "",
					"lzma920.tar.bz2": "",
					"lzma438.zip":     "",
				})
				cat, err := Scan(tmpDir)
				So(err, ShouldBeNil)
				So(cat.Versions(), ShouldResemble, []string{"4.38", "4.65", "9.20", "18.05"})
				So(cat.Latest(), ShouldEqual, "18.05")

				e, ok := cat.Entry("4.65")
				So(ok, ShouldBeTrue)
				So(e.Filename, ShouldEqual, "lzma465.tar.bz2")
				So(e.Format, ShouldEqual, FormatTarBz2)
			})
			Convey("non-matching names should be ignored", func() {
				testutil.PlaceFiles(tmpDir, map[string]string{
					"lzma920.tar.bz2": "",
					"LZMA930.zip":     "", // case-sensitive
					"lzma94.zip":      "", // too few digits
					"lzma940.rar":     "", // unknown container
					"lzma-notes.txt":  "",
				})
				cat, err := Scan(tmpDir)
				So(err, ShouldBeNil)
				So(cat.Versions(), ShouldResemble, []string{"9.20"})
			})
			Convey("an empty directory should yield a valid empty catalog", func() {
				cat, err := Scan(tmpDir)
				So(err, ShouldBeNil)
				So(cat.Len(), ShouldEqual, 0)
				So(cat.Latest(), ShouldEqual, "")
			})
			Convey("two archives deriving the same version should be fatal", func() {
				testutil.PlaceFiles(tmpDir, map[string]string{
					"lzma905.zip": "",
					"lzma0905.7z": "",
				})
				_, err := Scan(tmpDir)
				So(err, errcat.ErrorShouldHaveCategory, relgit.ErrCatalogConflict)
			})
		})
	})
}
