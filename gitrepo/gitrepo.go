/*
	The destination repository, driven through go-git.

	One Repo handle owns the working tree for the whole run; no other
	component touches it.  Per release the working tree is replaced
	wholesale, staged, committed with the composed changelog and the
	resolved authored date, and tagged with the version identifier.
*/
package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/warpfork/go-errcat"
	"gopkg.in/src-d/go-billy.v4/osfs"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/cache"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
	"gopkg.in/src-d/go-git.v4/storage/filesystem"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/fsop"
)

// Reconstructed commits are authored at noon UTC on the release date;
// the documents record no time of day.
const commitHour = 12

type Repo struct {
	path string
	repo *git.Repository
}

/*
	Open the destination repository, creating it (and its directory) if
	absent.  Idempotent.

	May return errors of category:

	  - `relgit.ErrRepoBackend`
	  - `relgit.ErrFS`
*/
func Open(path string) (_ *Repo, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, Errorf(relgit.ErrFS, "cannot create repository dir: %s", err)
	}
	if _, statErr := os.Stat(filepath.Join(path, ".git")); os.IsNotExist(statErr) {
		repo, err := git.PlainInit(path, false)
		if err != nil {
			return nil, Errorf(relgit.ErrRepoBackend, "cannot init repository: %s", err)
		}
		return &Repo{path: path, repo: repo}, nil
	}
	store := filesystem.NewStorage(osfs.New(filepath.Join(path, ".git")), cache.NewObjectLRUDefault())
	repo, err := git.Open(store, osfs.New(path))
	if err != nil {
		return nil, Errorf(relgit.ErrRepoBackend, "cannot open repository: %s", err)
	}
	return &Repo{path: path, repo: repo}, nil
}

/*
	List the names of all existing tags.  Read once at the start of a run;
	the caller keeps the set current in memory as it creates new tags.
*/
func (r *Repo) Tags() (_ map[string]struct{}, err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, Errorf(relgit.ErrRepoBackend, "cannot list tags: %s", err)
	}
	tags := map[string]struct{}{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags[ref.Name().Short()] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, Errorf(relgit.ErrRepoBackend, "cannot list tags: %s", err)
	}
	return tags, nil
}

/*
	Materialize one release: replace the working tree's contents (except
	the control metadata) with the given extracted tree, stage everything,
	commit with the given message and authored date, and tag the commit
	with the version identifier.

	`date` is an ISO calendar date; when empty, the commit is authored at
	the current time instead.

	May return errors of category:

	  - `relgit.ErrRepoBackend`
	  - `relgit.ErrFS`
	  - `relgit.ErrCancelled`
*/
func (r *Repo) Apply(ctx context.Context, version, treePath, message, date, authorName, authorEmail string) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	if ctx.Err() != nil {
		return Errorf(relgit.ErrCancelled, "cancelled")
	}
	if err := fsop.ClearTree(r.path, ".git"); err != nil {
		return err
	}
	if err := fsop.CopyTree(treePath, r.path); err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return Errorf(relgit.ErrRepoBackend, "cannot open worktree: %s", err)
	}
	if _, err := wt.Add("."); err != nil {
		return Errorf(relgit.ErrRepoBackend, "cannot stage release %s: %s", version, err)
	}
	commit, err := wt.Commit(message, &git.CommitOptions{
		All: true, // removals from the previous release must stage too
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  authoredWhen(date),
		},
	})
	if err != nil {
		return Errorf(relgit.ErrRepoBackend, "cannot commit release %s: %s", version, err)
	}
	if _, err := r.repo.CreateTag(version, commit, nil); err != nil {
		return Errorf(relgit.ErrRepoBackend, "cannot tag release %s: %s", version, err)
	}
	return nil
}

// Repack the repository's object store.  Run once at the end of a run,
// and only when at least one release was committed.
func (r *Repo) Repack() (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	if err := r.repo.RepackObjects(&git.RepackConfig{}); err != nil {
		return Errorf(relgit.ErrRepoBackend, "cannot repack repository: %s", err)
	}
	return nil
}

func authoredWhen(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Now()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), commitHour, 0, 0, 0, time.UTC)
}
