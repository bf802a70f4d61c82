package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/polydawn/refmt"
	"github.com/polydawn/refmt/json"
	. "github.com/smartystreets/goconvey/convey"
	git "gopkg.in/src-d/go-git.v4"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/testutil"
)

func TestWithoutArgs(t *testing.T) {
	Convey("relgit: usage printed to stderr", t, func() {
		args := []string{"relgit"}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		stdin := &bytes.Buffer{}
		ctx := context.Background()
		exitCode := Main(ctx, args, stdin, stdout, stderr)
		t.Log(string(stdout.Bytes()))
		t.Log(string(stderr.Bytes()))
		So(string(stdout.Bytes()), ShouldBeBlank)
		So(string(stderr.Bytes()), ShouldNotBeBlank)
		So(exitCode, ShouldEqual, relgit.ExitUsage)
	})
}

func writeFixtureZip(t *testing.T, pth string, members map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pth, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func placeFixtureShelf(t *testing.T, tmpDir string) {
	writeFixtureZip(t, filepath.Join(tmpDir, "lzma1800.zip"), map[string]string{
		"lzma.txt": "LZMA SDK 18.00",
	})
	writeFixtureZip(t, filepath.Join(tmpDir, "lzma1801.zip"), map[string]string{
		"lzma.txt": "LZMA SDK 18.01",
		"history.txt": "" +
			"Version 18.01  2018-01-28\n" +
			"    - Some fixes.\n" +
			"\n" +
			"Version 18.00  2018-01-10\n" +
			"    - First release of the year.\n",
	})
}

func TestUpdateCommand(t *testing.T) {
	Convey("relgit update: archives become commits", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			placeFixtureShelf(t, tmpDir)
			repoPath := filepath.Join(tmpDir, "lzma-sdk.git")
			args := []string{
				"relgit",
				"--dir", tmpDir,
				"--staging", filepath.Join(tmpDir, "extracted"),
				"--repo", repoPath,
				"update",
			}
			ctx := context.Background()

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			stdin := &bytes.Buffer{}
			exitCode := Main(ctx, args, stdin, stdout, stderr)
			t.Log(string(stdout.Bytes()))
			t.Log(string(stderr.Bytes()))
			So(exitCode, ShouldEqual, relgit.ExitSuccess)
			So(string(stdout.Bytes()), ShouldEqual, "committed 18.00\ncommitted 18.01\n")

			Convey("The repository has both tags", func() {
				repo, err := git.PlainOpen(repoPath)
				So(err, ShouldBeNil)
				_, err = repo.Tag("18.00")
				So(err, ShouldBeNil)
				_, err = repo.Tag("18.01")
				So(err, ShouldBeNil)
			})

			Convey("The json format emits a decodable result event", func() {
				jsonArgs := append([]string{"relgit", "--format", "json"}, args[1:]...)
				stdout := &bytes.Buffer{}
				stderr := &bytes.Buffer{}
				exitCode := Main(ctx, jsonArgs, stdin, stdout, stderr)
				t.Log(string(stdout.Bytes()))
				So(exitCode, ShouldEqual, relgit.ExitSuccess)

				ev := Event{}
				err := refmt.NewUnmarshallerAtlased(json.DecodeOptions{}, stdout, Atlas).Unmarshal(&ev)
				So(err, ShouldBeNil)
				So(ev.Committed, ShouldBeEmpty) // everything tagged by the dumb run above
				So(ev.Skipped, ShouldResemble, []string{"18.00", "18.01"})
				So(ev.Error, ShouldBeBlank)
			})
			Convey("A second run commits nothing", func() {
				stdout := &bytes.Buffer{}
				stderr := &bytes.Buffer{}
				exitCode := Main(ctx, args, stdin, stdout, stderr)
				So(exitCode, ShouldEqual, relgit.ExitSuccess)
				So(string(stdout.Bytes()), ShouldEqual, "no new versions\n")
			})
		})
	})
}

func TestVerifyCommand(t *testing.T) {
	Convey("relgit verify: checks without touching the repo", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			placeFixtureShelf(t, tmpDir)
			repoPath := filepath.Join(tmpDir, "lzma-sdk.git")
			args := []string{
				"relgit",
				"--dir", tmpDir,
				"--staging", filepath.Join(tmpDir, "extracted"),
				"--repo", repoPath,
				"verify",
			}
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			stdin := &bytes.Buffer{}
			exitCode := Main(context.Background(), args, stdin, stdout, stderr)
			t.Log(string(stderr.Bytes()))
			So(exitCode, ShouldEqual, relgit.ExitSuccess)
			So(string(stdout.Bytes()), ShouldEqual, "ok\n")
			_, err := os.Stat(repoPath)
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}

func TestShowCommand(t *testing.T) {
	Convey("relgit show: prints composed changelogs", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			placeFixtureShelf(t, tmpDir)
			args := []string{
				"relgit",
				"--dir", tmpDir,
				"--staging", filepath.Join(tmpDir, "extracted"),
				"--repo", filepath.Join(tmpDir, "lzma-sdk.git"),
				"show", "18.01",
			}
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			stdin := &bytes.Buffer{}
			exitCode := Main(context.Background(), args, stdin, stdout, stderr)
			t.Log(string(stdout.Bytes()))
			So(exitCode, ShouldEqual, relgit.ExitSuccess)
			So(string(stdout.Bytes()), ShouldStartWith, "18.01\nVersion 18.01  2018-01-28\n")
			So(string(stdout.Bytes()), ShouldContainSubstring, "md5: ")
			So(string(stdout.Bytes()), ShouldContainSubstring, "sha1: ")
		})
	})
}

func TestShowUnknownVersion(t *testing.T) {
	Convey("relgit show: unknown version is a usage error", t, func() {
		testutil.WithTmpdir(func(tmpDir string) {
			placeFixtureShelf(t, tmpDir)
			args := []string{
				"relgit",
				"--dir", tmpDir,
				"--staging", filepath.Join(tmpDir, "extracted"),
				"--repo", filepath.Join(tmpDir, "lzma-sdk.git"),
				"show", "99.99",
			}
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			stdin := &bytes.Buffer{}
			exitCode := Main(context.Background(), args, stdin, stdout, stderr)
			So(exitCode, ShouldEqual, relgit.ExitUsage)
			So(string(stderr.Bytes()), ShouldContainSubstring, "99.99")
		})
	})
}
