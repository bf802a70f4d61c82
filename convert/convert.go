/*
	The run orchestrations: scan, extract, parse, reconcile, commit.

	Strictly sequential -- every release is extracted, parsed, and
	committed one at a time in ascending version order, and the destination
	repository's working tree is owned exclusively by the commit loop.
	All fatal conditions abort immediately; since each commit is atomic,
	a partial run always leaves a consistent prefix of applied releases.
*/
package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/catalog"
	"go.polydawn.net/relgit/gitrepo"
	"go.polydawn.net/relgit/history"
	"go.polydawn.net/relgit/unpack"
)

type Config struct {
	ArchiveDir  string    // where the release archives sit
	StagingBase string    // per-version staging dirs are made under here
	RepoPath    string    // the destination repository
	AuthorName  string    // identity stamped on reconstructed commits
	AuthorEmail string
	Refresh     bool      // re-extract even when staging dirs exist
	Progress    io.Writer // verbose progress sink; nil silences it
}

type Result struct {
	Committed []string // versions committed this run, in commit order
	Skipped   []string // versions already tagged before this run
}

type VersionChangelog struct {
	Version string
	Message string
}

/*
	Run the full pipeline: catalog the shelf, extract and parse every
	release, cross-check the histories, then commit and tag each release
	not already present in the repository, ascending; repack once at the
	end if anything was committed.

	An empty catalog, or a catalog fully applied already, is a normal
	successful outcome.
*/
func Run(ctx context.Context, cfg Config) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	cat, h, err := prepare(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	if cat.Len() == 0 {
		cfg.logf("no archives matched")
		return Result{}, nil
	}

	repo, err := gitrepo.Open(cfg.RepoPath)
	if err != nil {
		return Result{}, err
	}
	tags, err := repo.Tags()
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	for _, version := range cat.Versions() {
		if ctx.Err() != nil {
			return res, Errorf(relgit.ErrCancelled, "cancelled")
		}
		if _, tagged := tags[version]; tagged {
			cfg.logf("%s is already in repository", version)
			res.Skipped = append(res.Skipped, version)
			continue
		}
		entry, _ := cat.Entry(version)
		date, err := history.ResolveDate(h, cat, version)
		if err != nil {
			return res, err
		}
		message, err := history.ComposeMessage(h, cat, version, filepath.Join(cfg.ArchiveDir, entry.Filename))
		if err != nil {
			return res, err
		}
		cfg.logf("committing %s (released %s)", version, date)
		if err := repo.Apply(ctx, version, filepath.Join(cfg.StagingBase, version), message, date, cfg.AuthorName, cfg.AuthorEmail); err != nil {
			return res, err
		}
		tags[version] = struct{}{}
		res.Committed = append(res.Committed, version)
	}

	if len(res.Committed) > 0 {
		cfg.logf("repacking repository")
		if err := repo.Repack(); err != nil {
			return res, err
		}
	} else {
		cfg.logf("no new versions")
	}
	return res, nil
}

/*
	Extract and parse everything and run the consistency check, without
	touching the repository.  The integrity half of Run, for dry runs.
*/
func Verify(ctx context.Context, cfg Config) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	cat, _, err := prepare(ctx, cfg)
	if err != nil {
		return err
	}
	cfg.logf("%d archives verified", cat.Len())
	return nil
}

/*
	Compose the changelog for one version (or, with version == "", every
	cataloged version, ascending) without touching the repository.

	May additionally return errors of category:

	  - `relgit.ErrUsage` -- the requested version is not cataloged.
*/
func Changelogs(ctx context.Context, cfg Config, version string) (_ []VersionChangelog, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	cat, h, err := prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	versions := cat.Versions()
	if version != "" {
		if !cat.Has(version) {
			return nil, Errorf(relgit.ErrUsage, "version %s is not in the catalog", version)
		}
		versions = []string{version}
	}
	var out []VersionChangelog
	for _, v := range versions {
		entry, _ := cat.Entry(v)
		message, err := history.ComposeMessage(h, cat, v, filepath.Join(cfg.ArchiveDir, entry.Filename))
		if err != nil {
			return nil, err
		}
		out = append(out, VersionChangelog{Version: v, Message: message})
	}
	return out, nil
}

// Catalog the shelf, extract every release, parse every changelog, and
// cross-check the results.  Shared front half of all the orchestrations.
func prepare(ctx context.Context, cfg Config) (*catalog.Catalog, history.Histories, error) {
	cat, err := catalog.Scan(cfg.ArchiveDir)
	if err != nil {
		return nil, nil, err
	}
	for _, version := range cat.Versions() {
		entry, _ := cat.Entry(version)
		cfg.logf("extracting %s from %s", version, entry.Filename)
		err := unpack.Extract(ctx,
			entry,
			filepath.Join(cfg.ArchiveDir, entry.Filename),
			filepath.Join(cfg.StagingBase, version),
			cfg.Refresh,
		)
		if err != nil {
			return nil, nil, err
		}
	}
	h, err := history.ParseAll(ctx, cat, cfg.StagingBase)
	if err != nil {
		return nil, nil, err
	}
	if err := history.CheckConsistency(h); err != nil {
		return nil, nil, err
	}
	return cat, h, nil
}

func (cfg Config) logf(format string, args ...interface{}) {
	if cfg.Progress == nil {
		return
	}
	fmt.Fprintf(cfg.Progress, format+"\n", args...)
}
