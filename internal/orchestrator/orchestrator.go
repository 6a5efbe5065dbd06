// Package orchestrator implements C9: the top-level dispatch tree that
// turns a raw argv into either a module listing, a remote-fallback
// subprocess invocation, or a local whole-file transfer.
//
// Grounded on internal/maincmd/clientmaincmd.go's rsyncMain, which
// computes a daemonConnection discriminant from checkForHostspec results
// on both the source and dest operand before picking a code path;
// generalized from that three-way (no daemon / daemon via shell / daemon
// via socket) split into the operand-classification-driven dispatch
// SPEC_FULL describes, since this module's operand package fully replaces
// checkForHostspec's role.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oferchen/rsync-sub001/internal/clierr"
	"github.com/oferchen/rsync-sub001/internal/cliflags"
	"github.com/oferchen/rsync-sub001/internal/daemonclient"
	"github.com/oferchen/rsync-sub001/internal/fallback"
	"github.com/oferchen/rsync-sub001/internal/filelist"
	"github.com/oferchen/rsync-sub001/internal/localpipeline"
	"github.com/oferchen/rsync-sub001/internal/operand"
	"github.com/oferchen/rsync-sub001/internal/outformat"
	"github.com/oferchen/rsync-sub001/internal/progress"
	"github.com/oferchen/rsync-sub001/internal/restrict"
	"github.com/oferchen/rsync-sub001/internal/rlog"
)

// Env carries the I/O and process-exec seams tests substitute.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	// RunFallback executes a fallback.Plan; defaults to actually running
	// the subprocess via fallback.NewCommand when nil.
	RunFallback func(plan *fallback.Plan) error
	// DisableSandbox skips the landlock restriction step before a local
	// transfer. A real process sandboxes exactly once per invocation (one
	// CLI run performs one transfer); tests exercising Run repeatedly in a
	// single process, each against a different temp directory, must set
	// this, since landlock restrictions only ever narrow and accumulate
	// for the life of the process.
	DisableSandbox bool
}

func (e *Env) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Env) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}

// Result summarizes a completed run for the caller (cmd/'s exit-code
// mapping and, when --stats was requested, the summary block to print).
type Result struct {
	ExitCode   int
	Stats      *outformat.Stats
	StatsBlock string
}

// Run parses argv, dispatches to the correct transfer path, and returns
// once the transfer (or module listing, or remote fallback subprocess)
// has completed.
func Run(ctx context.Context, argv []string, env Env) (*Result, error) {
	if hasRawFlag(argv, "--server") {
		return runPassthrough(argv, env)
	}
	if hasRawFlag(argv, "--daemon") {
		return runPassthrough(argv, env)
	}

	parsed, err := cliflags.Parse(argv)
	if err != nil {
		return nil, err
	}
	cfg := parsed.Cfg
	operands := cfg.Operands()

	if err := validateConfiguration(parsed, operands); err != nil {
		return nil, err
	}

	if operand.IsModuleListing(operands, parsed.FilesFrom) {
		return runModuleListing(operands[0], env)
	}

	if operand.RequiresFallback(operands, parsed.FilesFrom) {
		return runFallback(parsed, env)
	}

	return runLocal(ctx, parsed, env)
}

// hasRawFlag scans argv for an exact token before any flag parsing has
// happened. --server and --daemon must be recognized ahead of
// cliflags.Parse per the dispatch order: this process never implements
// server-side protocol servicing or daemon module/auth logic itself, so
// both modes are handed to the fallback binary with argv forwarded
// unchanged and stdio wired straight through, rather than reinterpreted
// through the client-facing flag table.
func hasRawFlag(argv []string, name string) bool {
	for _, a := range argv {
		if a == name {
			return true
		}
	}
	return false
}

// runPassthrough builds a raw fallback.Plan (argv untouched) and forwards
// the parent's stdio streams to it, used for both --server and --daemon
// dispatch.
func runPassthrough(argv []string, env Env) (*Result, error) {
	plan, err := fallback.RawPlan(argv)
	if err != nil {
		return nil, err
	}

	run := env.RunFallback
	if run == nil {
		run = func(p *fallback.Plan) error {
			cmd := fallback.NewCommand(p)
			cmd.Stdout = env.stdout()
			cmd.Stderr = env.stderr()
			if env.Stdin != nil {
				cmd.Stdin = env.Stdin
			}
			return cmd.Run()
		}
	}
	if err := run(plan); err != nil {
		return &Result{ExitCode: 1}, err
	}
	return &Result{ExitCode: 0}, nil
}

// validateConfiguration checks the cross-flag ConfigurationError cases that
// don't belong to any single path (module listing, fallback, or local):
// a password-file supplied for a transfer that never talks to a daemon,
// and the files-from=- / password-file=- stdin collision.
func validateConfiguration(parsed *cliflags.Parsed, operands []string) error {
	cfg := parsed.Cfg
	if cfg.PasswordFile() != "" && !anyDaemonOperand(operands) {
		return clierr.New(clierr.KindConfiguration,
			"--password-file may only be used when talking to an rsync daemon")
	}
	if cfg.PasswordFile() == "-" {
		for _, f := range parsed.FilesFrom {
			if f == "-" {
				return clierr.New(clierr.KindConfiguration,
					"--files-from=- cannot be combined with --password-file=-")
			}
		}
	}
	return nil
}

func anyDaemonOperand(operands []string) bool {
	for _, op := range operands {
		if operand.Classify(op).Kind == operand.KindRemoteDaemon {
			return true
		}
	}
	return false
}

func runModuleListing(hostspec string, env Env) (*Result, error) {
	c := operand.Classify(hostspec)
	if c.Kind != operand.KindRemoteDaemon {
		return nil, fmt.Errorf("%q does not classify as a daemon module-listing request", hostspec)
	}
	session, err := daemonclient.Dial(c.Host, 0, 0)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	modules, err := session.ListModules()
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		fmt.Fprintf(env.stdout(), "%-15s\t%s\n", m.Name, m.Comment)
	}
	return &Result{ExitCode: 0}, nil
}

func runFallback(parsed *cliflags.Parsed, env Env) (*Result, error) {
	req := fallback.Request{
		Cfg:             parsed.Cfg,
		FilterTextLines: parsed.FilterTextLines,
		FilterShortcut:  parsed.FilterShortcut,
		InfoTokens:      parsed.InfoTokens,
		DebugTokens:     parsed.DebugTokens,
		RemoteShellCmd:  parsed.RemoteShellCmd,
	}
	if len(parsed.FilesFrom) > 0 {
		data, err := readFilesFrom(parsed.FilesFrom, parsed.FilesFromZero)
		if err != nil {
			return nil, err
		}
		req.FilesFromRaw = data
		req.FilesFromZeroed = parsed.FilesFromZero
	}

	plan, err := fallback.Build(req)
	if err != nil {
		return nil, err
	}

	run := env.RunFallback
	if run == nil {
		run = func(p *fallback.Plan) error {
			cmd := fallback.NewCommand(p)
			cmd.Stdout = env.stdout()
			cmd.Stderr = env.stderr()
			return cmd.Run()
		}
	}
	if err := run(plan); err != nil {
		return &Result{ExitCode: 1}, err
	}
	return &Result{ExitCode: 0}, nil
}

func runLocal(ctx context.Context, parsed *cliflags.Parsed, env Env) (*Result, error) {
	cfg := parsed.Cfg
	operands := cfg.Operands()
	if len(operands) < 2 {
		return nil, fmt.Errorf("local transfer requires at least one source and one destination operand, got %d", len(operands))
	}
	if len(parsed.RemoteOnlyFlags) > 0 {
		return nil, clierr.New(clierr.KindConfiguration,
			"%s: remote-only option used on a purely local transfer", parsed.RemoteOnlyFlags[0])
	}
	sources := operands[:len(operands)-1]
	dest := operands[len(operands)-1]
	if len(sources) != 1 {
		return nil, fmt.Errorf("local transfer with multiple source operands is not supported")
	}

	if !cfg.DryRun() && !env.DisableSandbox {
		if err := restrict.MaybeFileSystem(sources, []string{dest}); err != nil {
			return nil, fmt.Errorf("sandboxing filesystem access: %w", err)
		}
	}

	var listedEntries []string
	if len(parsed.FilesFrom) > 0 {
		src := filelist.Source{Stdin: env.Stdin}
		entries, err := src.Load(parsed.FilesFrom, parsed.FilesFromZero)
		if err != nil {
			return nil, err
		}
		listedEntries = entries
	}

	opts := localpipeline.Options{
		Source:        sources[0],
		Dest:          dest,
		Rules:         cfg.FilterRules(),
		DryRun:        cfg.DryRun(),
		Delete:        cfg.DeleteEnabled(),
		PreserveUID:   cfg.PreserveOwner(),
		PreserveGID:   cfg.PreserveGroup(),
		PreservePerms: cfg.PreservePerms() || cfg.Archive(),
		Entries:       listedEntries,
	}

	rlog.Printf("starting local transfer: %s -> %s", sources[0], dest)

	var observer *progress.Observer
	progressMode := progress.ModeNone
	if cfg.Progress() {
		progressMode = progress.ModeOverall
		observer = progress.New(env.stdout(), progressMode, progress.HumanReadable(cfg.HumanReadable()), time.Now())
	}

	result, err := localpipeline.Run(ctx, opts)
	if err != nil {
		rlog.Printf("local transfer failed: %v", err)
		return nil, err
	}

	if observer != nil {
		var transferred int64
		for _, e := range result.Entries {
			transferred += e.BytesXfer
			observer.OverallUpdate(transferred, result.Stats.TotalSize, time.Now())
		}
		observer.Finish()
	}

	verboseNames := cfg.ItemizeChanges()
	for _, e := range result.Entries {
		if verboseNames {
			fmt.Fprintln(env.stdout(), outformat.Render(outformat.DefaultItemizeTemplate, e))
		}
	}

	// Summary emission ordering: live progress is finalized above; a blank
	// line separates the summary from what came before whenever progress
	// or verbose name output was printed; the --stats block, when requested, precedes the final
	// sent/received line (which Stats.Render already appends last).
	if observer != nil || verboseNames {
		fmt.Fprintln(env.stdout())
	}

	res := &Result{ExitCode: 0, Stats: &result.Stats}
	if cfg.Stats() {
		block := result.Stats.Render()
		res.StatsBlock = block
		fmt.Fprint(env.stdout(), block)
	} else {
		fmt.Fprintln(env.stdout(), result.Stats.SummaryLine())
	}
	return res, nil
}

func readFilesFrom(paths []string, zero bool) ([]byte, error) {
	var out []byte
	for _, p := range paths {
		if p == "-" {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
			continue
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
