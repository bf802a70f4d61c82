package testutil

import (
	"os"
	"path/filepath"

	"github.com/smartystreets/goconvey/convey"
)

/*
	Run the function with a scratch dir, which is removed afterward.

	Keeping the `RELGIT_TEST_KEEPTMP` env var set skips the removal,
	for post-mortem inspection.
*/
func WithTmpdir(fn func(tmpDir string)) {
	tmpDir, err := os.MkdirTemp("", "relgit-test-*")
	convey.So(err, convey.ShouldBeNil)
	if os.Getenv("RELGIT_TEST_KEEPTMP") == "" {
		defer os.RemoveAll(tmpDir)
	}
	fn(tmpDir)
}

// Write a set of files (path -> content) under dir, making parent dirs as needed.
func PlaceFiles(dir string, files map[string]string) {
	for name, content := range files {
		pth := filepath.Join(dir, name)
		convey.So(os.MkdirAll(filepath.Dir(pth), 0755), convey.ShouldBeNil)
		convey.So(os.WriteFile(pth, []byte(content), 0644), convey.ShouldBeNil)
	}
}
