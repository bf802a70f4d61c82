/*
	Helpers for loading contextual config.

	Config for relgit means "things that are the operator's concerns" --
	where the staging area and the destination repository live, and what
	author identity goes on the reconstructed commits -- as opposed to
	parameters of an individual run, which travel as function arguments.
*/
package config

import (
	"os"
	"path/filepath"
)

/*
	Return the path under which per-version staging directories are made.

	The default value is `"./extracted"` (relative to the current working
	directory, like the archives themselves); this can be overridden by
	the `RELGIT_STAGING` environment variable.
*/
func GetStagingBasePath() string {
	pth := os.Getenv("RELGIT_STAGING")
	if pth == "" {
		pth = "extracted"
	}
	return mustAbs(pth)
}

/*
	Return the path of the destination repository.

	The default value is `"./lzma-sdk.git"`; this can be overridden by
	the `RELGIT_REPO` environment variable.
*/
func GetRepoPath() string {
	pth := os.Getenv("RELGIT_REPO")
	if pth == "" {
		pth = "lzma-sdk.git"
	}
	return mustAbs(pth)
}

/*
	Return the author identity stamped on every reconstructed commit.

	Defaults to the SDK's actual author, `Igor Pavlov <support@7-zip.org>`;
	overridable by `RELGIT_AUTHOR_NAME` and `RELGIT_AUTHOR_EMAIL`.
*/
func GetAuthor() (name, email string) {
	name = os.Getenv("RELGIT_AUTHOR_NAME")
	if name == "" {
		name = "Igor Pavlov"
	}
	email = os.Getenv("RELGIT_AUTHOR_EMAIL")
	if email == "" {
		email = "support@7-zip.org"
	}
	return
}

func mustAbs(pth string) string {
	pth, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return pth
}
