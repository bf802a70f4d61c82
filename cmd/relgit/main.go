package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/polydawn/refmt"
	"github.com/polydawn/refmt/json"
	"github.com/polydawn/refmt/obj/atlas"
	. "github.com/warpfork/go-errcat"
	"gopkg.in/alecthomas/kingpin.v2"

	"go.polydawn.net/relgit"
	"go.polydawn.net/relgit/config"
	"go.polydawn.net/relgit/convert"
)

/*
	Output serialization formats
*/
const (
	FmtJson = "json"
	FmtDumb = "dumb"
)

type baseCLI struct {
	Verbose     bool   // Emit per-step progress to stderr yes/no
	Format      string // Output format, eg. json
	ArchiveDir  string // Directory holding the release archives
	StagingBase string // Base dir for per-version staging trees
	RepoPath    string // Destination repository path
	UpdateCLI   struct {
		Refresh bool // Re-extract even when staging dirs exist
	}
	ShowCLI struct {
		Version string // Single version to show; empty means all
	}
}

// The result event emitted at the end of every command.
type Event struct {
	Committed  []string
	Skipped    []string
	Changelogs []convert.VersionChangelog
	Error      string
}

var Atlas = atlas.MustBuild(
	atlas.BuildEntry(Event{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(convert.VersionChangelog{}).StructMap().Autogenerate().Complete(),
)

/*
	Blocks until a sigint is received, then calls cancel.
*/
func CancelOnInterrupt(cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	<-signalChan
	cancel()
	close(signalChan)
}

func main() {
	ctx := context.Background()
	exitCode := Main(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(int(exitCode))
}

func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) relgit.ExitCode {
	ctx, cancel := context.WithCancel(ctx)
	go CancelOnInterrupt(cancel)

	cli := baseCLI{}

	app := kingpin.New("relgit", "Turn LZMA SDK release archives into git history")
	app.HelpFlag.Short('h')

	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	app.Flag("verbose", "Emit progress and diagnostics to stderr").
		Short('v').
		BoolVar(&cli.Verbose)
	app.Flag("format", "Output format").
		Default(FmtDumb).
		EnumVar(&cli.Format, FmtJson, FmtDumb)
	app.Flag("dir", "Directory holding the release archives").
		Default(".").
		StringVar(&cli.ArchiveDir)
	app.Flag("staging", "Base dir for per-version staging trees").
		StringVar(&cli.StagingBase)
	app.Flag("repo", "Destination repository path").
		StringVar(&cli.RepoPath)

	appUpdate := app.Command("update", "extract, cross-check, and commit any new releases")
	appUpdate.Flag("refresh", "Re-extract all archives even if staging dirs exist").
		BoolVar(&cli.UpdateCLI.Refresh)

	appVerify := app.Command("verify", "extract and cross-check histories without committing")

	appShow := app.Command("show", "print composed changelogs")
	appShow.Arg("version", "Version to show (default: all)").
		StringVar(&cli.ShowCLI.Version)

	var termErr error
	app.Terminate(func(status int) {
		termErr = fmt.Errorf("parsing error: %d\n", status)
	})
	cmd, err := app.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return relgit.ExitUsage
	}
	if termErr != nil {
		fmt.Fprintln(stderr, termErr)
		return relgit.ExitUsage
	}

	cfg, err := assembleConfig(cli, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return relgit.ExitUsage
	}

	ev := Event{}
	switch cmd {
	case appUpdate.FullCommand():
		cfg.Refresh = cli.UpdateCLI.Refresh
		var res convert.Result
		res, err = convert.Run(ctx, cfg)
		ev.Committed, ev.Skipped = res.Committed, res.Skipped
	case appVerify.FullCommand():
		err = convert.Verify(ctx, cfg)
	case appShow.FullCommand():
		ev.Changelogs, err = convert.Changelogs(ctx, cfg, cli.ShowCLI.Version)
	}
	SerializeResult(cli.Format, cmd, ev, err, stdout, stderr)
	return relgit.ExitCodeForCategory(Category(err))
}

func assembleConfig(cli baseCLI, stderr io.Writer) (convert.Config, error) {
	archiveDir, err := filepath.Abs(cli.ArchiveDir)
	if err != nil {
		return convert.Config{}, err
	}
	cfg := convert.Config{
		ArchiveDir:  archiveDir,
		StagingBase: cli.StagingBase,
		RepoPath:    cli.RepoPath,
	}
	if cfg.StagingBase == "" {
		cfg.StagingBase = config.GetStagingBasePath()
	}
	if cfg.RepoPath == "" {
		cfg.RepoPath = config.GetRepoPath()
	}
	cfg.AuthorName, cfg.AuthorEmail = config.GetAuthor()
	if cli.Verbose {
		cfg.Progress = stderr
	}
	return cfg, nil
}

func SerializeResult(format, cmd string, ev Event, resultErr error, stdout, stderr io.Writer) {
	if resultErr != nil {
		ev.Error = resultErr.Error()
	}
	switch format {
	case FmtJson:
		marshaller := refmt.NewMarshallerAtlased(json.EncodeOptions{}, stdout, Atlas)
		err := marshaller.Marshal(&ev)
		if err != nil {
			panic(err)
		}
	case FmtDumb:
		if resultErr != nil {
			fmt.Fprintln(stderr, resultErr)
			return
		}
		switch cmd {
		case "update":
			for _, version := range ev.Committed {
				fmt.Fprintf(stdout, "committed %s\n", version)
			}
			if len(ev.Committed) == 0 {
				fmt.Fprintln(stdout, "no new versions")
			}
		case "verify":
			fmt.Fprintln(stdout, "ok")
		case "show":
			for _, cl := range ev.Changelogs {
				fmt.Fprintf(stdout, "%s\n%s\n\n", cl.Version, cl.Message)
			}
		}
	default:
		panic(fmt.Errorf("relgit: invalid format %s", format))
	}
}
