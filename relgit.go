/*
	relgit turns a shelf of historical LZMA SDK release archives into a git
	repository: one commit per release, tagged with the version identifier,
	authored on the release's original publication date, with a commit
	message reconstructed from the SDK's own bundled changelog documents
	plus content digests of the original archive.

	The packages underneath are arranged by concern:

	  - `catalog` scans the archive shelf and derives version identifiers;
	  - `unpack` extracts each archive into a per-version staging dir;
	  - `history` parses the bundled changelogs, cross-checks them for
	    consistency, and composes dates and commit messages;
	  - `gitrepo` drives the destination repository;
	  - `convert` strings all of the above into the actual runs;
	  - `cmd/relgit` is the CLI.
*/
package relgit

/*
	ErrorCategory is the category tag type for all errors raised by relgit.

	All errors crossing a package boundary in this module are expected to
	be tagged with one of these categories (and boundary functions assert
	as much).  See the `errcat` library for the tagging mechanism.
*/
type ErrorCategory string

const (
	// ErrUsage means invalid arguments or flags; not a runtime failure.
	ErrUsage ErrorCategory = "relgit-usage-error"

	// ErrCatalogConflict means two different archive files derived the
	// same version identifier.  The run cannot pick one; it aborts.
	ErrCatalogConflict ErrorCategory = "relgit-catalog-conflict"

	// ErrExtraction means an archive was not a valid instance of the
	// format implied by its extension, or contained a member whose path
	// would escape the staging directory.
	ErrExtraction ErrorCategory = "relgit-extraction-error"

	// ErrUnknownVersion means a changelog heading referenced a version
	// with no archive in the catalog (a typo, or a release not yet
	// downloaded).
	ErrUnknownVersion ErrorCategory = "relgit-unknown-version"

	// ErrHistoryInconsistency means two releases' changelogs disagree on
	// the text of a shared historical entry.
	ErrHistoryInconsistency ErrorCategory = "relgit-history-inconsistency"

	// ErrMissingDate means no publication date could be resolved for a
	// version slated for commit.  Undated commits are not permitted.
	ErrMissingDate ErrorCategory = "relgit-missing-date"

	// ErrRepoBackend means the version-control backend refused an
	// init, stage, commit, tag, or repack operation.
	ErrRepoBackend ErrorCategory = "relgit-repo-backend-error"

	// ErrFS is the catchall for local filesystem trouble (staging dirs,
	// tree copies, archive reads).
	ErrFS ErrorCategory = "relgit-fs-error"

	// ErrCancelled is raised when a context cancelled a run part-way.
	ErrCancelled ErrorCategory = "relgit-cancelled"
)

type ExitCode int

const (
	ExitSuccess     ExitCode = 0
	ExitError       ExitCode = 1
	ExitUsage       ExitCode = 2
	ExitIntegrity   ExitCode = 4
	ExitRepoBackend ExitCode = 5
	ExitCancelled   ExitCode = 130
)

// Map an error category onto the process exit code.
// Unrecognized categories (including untagged errors) report as ExitError.
func ExitCodeForCategory(category interface{}) ExitCode {
	switch category {
	case nil:
		return ExitSuccess
	case ErrUsage:
		return ExitUsage
	case ErrCatalogConflict, ErrUnknownVersion, ErrHistoryInconsistency, ErrMissingDate:
		return ExitIntegrity
	case ErrRepoBackend:
		return ExitRepoBackend
	case ErrCancelled:
		return ExitCancelled
	default:
		return ExitError
	}
}
