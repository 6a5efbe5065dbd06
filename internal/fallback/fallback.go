// Package fallback builds the argument vector handed to the fallback rsync
// binary when an operand requires remote transport (C10). Grounded on the
// teacher's doCmd/serverOptions shell-out shape (internal/maincmd's RSH
// tokenizing via github.com/google/shlex, and its command-line
// reassembly), generalized from "reconstruct the server side's own flags"
// to "reconstruct the full user-facing flag set for a subprocess that
// speaks the real rsync CLI."
package fallback

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/oferchen/rsync-sub001/internal/clientconfig"
)

// EnvFallbackOverride is the environment variable that can redirect which
// binary serves as the fallback, or disable fallback entirely when set to
// DisableSentinel.
const EnvFallbackOverride = "RSYNC_SUB001_FALLBACK_RSYNC"

// DisableSentinel, when EnvFallbackOverride is set to this value, disables
// fallback entirely.
const DisableSentinel = "-"

// Request carries the resolved configuration plus the fields that only
// make sense at the fallback boundary (password bytes, canonical bandwidth
// form, etc.), separated from clientconfig.Config because they describe
// how to invoke a subprocess, not the transfer itself.
type Request struct {
	Cfg              *clientconfig.Config
	FilterTextLines  []string // raw --filter argument text, forwarded verbatim
	FilterShortcut   int      // count of -F occurrences (0, 1, or 2)
	FilesFromRaw     []byte   // raw bytes read from files-from=-, if any
	FilesFromZeroed  bool
	InfoTokens       []string
	DebugTokens      []string
	RemoteShellCmd   string // --rsh / $RSYNC_RSH override, empty means default
}

// Plan is the built argument vector plus stdio wiring instructions.
type Plan struct {
	Binary string
	Args   []string
	// StdinPayload, when non-nil, must be written to the child's stdin
	// (used for --files-from=-).
	StdinPayload []byte
}

// Build implements §4.9's ordered argument construction.
func Build(req Request) (*Plan, error) {
	cfg := req.Cfg
	var args []string

	switch req.FilterShortcut {
	case 1:
		args = append(args, "-F")
	case 2:
		args = append(args, "-F", "-F")
	}

	for _, line := range req.FilterTextLines {
		args = append(args, "--filter", line)
	}

	args = append(args, bwlimitArgs(cfg)...)
	args = append(args, compressArgs(cfg)...)
	args = append(args, deleteArgs(cfg)...)
	args = append(args, backupArgs(cfg)...)

	switch cfg.AddressFamily() {
	case clientconfig.AddressFamilyIPv4:
		args = append(args, "--ipv4")
	case clientconfig.AddressFamilyIPv6:
		args = append(args, "--ipv6")
	}

	args = append(args, wholeFileArgs(cfg)...)

	if v := cfg.PasswordFile(); v != "" {
		args = append(args, "--password-file", v)
	}
	if v := cfg.ProtocolCap(); v != 0 {
		args = append(args, "--protocol", strconv.Itoa(v))
	}

	for _, tok := range req.InfoTokens {
		args = append(args, "--info="+tok)
	}
	for _, tok := range req.DebugTokens {
		args = append(args, "--debug="+tok)
	}

	var stdinPayload []byte
	if len(req.FilesFromRaw) > 0 {
		args = append(args, "--files-from=-")
		if req.FilesFromZeroed {
			args = append(args, "--from0")
		}
		stdinPayload = req.FilesFromRaw
	}

	args = append(args, cfg.Operands()...)

	binary, err := resolveBinary()
	if err != nil {
		return nil, err
	}

	return &Plan{Binary: binary, Args: args, StdinPayload: stdinPayload}, nil
}

// ResolveBinary exposes the fallback binary resolution (env override, or
// "rsync") to callers that invoke it directly with a raw argv rather than
// through Build.
func ResolveBinary() (string, error) {
	return resolveBinary()
}

// RawPlan forwards argv unchanged to the fallback binary. Used for
// --server/--daemon passthrough, where the orchestrator must not
// reinterpret flags it doesn't implement server-side itself.
func RawPlan(argv []string) (*Plan, error) {
	binary, err := resolveBinary()
	if err != nil {
		return nil, err
	}
	return &Plan{Binary: binary, Args: append([]string(nil), argv...)}, nil
}

func resolveBinary() (string, error) {
	override := os.Getenv(EnvFallbackOverride)
	if override == DisableSentinel {
		return "", fmt.Errorf("remote fallback disabled via %s", EnvFallbackOverride)
	}
	if override != "" {
		return override, nil
	}
	return "rsync", nil
}

// bwlimitArgs re-emits the already-normalized bytes-per-second limit
// verbatim (plus an optional burst byte count), per spec.md §4.9/§8
// scenario 3: --bwlimit=1M:64K must reach the subprocess as
// --bwlimit=1048576:65536, not a KiB-scaled approximation.
func bwlimitArgs(cfg *clientconfig.Config) []string {
	bps := cfg.BandwidthLimitBps()
	if bps == 0 {
		return nil
	}
	arg := strconv.FormatInt(bps, 10)
	if burst := cfg.BandwidthBurstBytes(); burst > 0 {
		arg += ":" + strconv.FormatInt(burst, 10)
	}
	return []string{"--bwlimit=" + arg}
}

func compressArgs(cfg *clientconfig.Config) []string {
	c := cfg.Compression()
	if c.EmitLevelZeroAsDisabled() {
		return []string{"--no-compress", "--compress-level=0"}
	}
	if c.Enabled {
		args := []string{"--compress"}
		if c.Level != 0 {
			args = append(args, "--compress-level="+strconv.Itoa(c.Level))
		}
		return args
	}
	return nil
}

func deleteArgs(cfg *clientconfig.Config) []string {
	var args []string
	switch cfg.DeleteMode() {
	case clientconfig.DeleteBefore:
		args = append(args, "--delete-before")
	case clientconfig.DeleteDuring:
		args = append(args, "--delete")
	case clientconfig.DeleteDelay:
		args = append(args, "--delete-delay")
	case clientconfig.DeleteAfter:
		args = append(args, "--delete-after")
	}
	if cfg.DeleteExcluded() {
		args = append(args, "--delete-excluded")
	}
	if n, set := cfg.MaxDelete(); set {
		args = append(args, "--max-delete="+strconv.FormatInt(n, 10))
	}
	return args
}

func backupArgs(cfg *clientconfig.Config) []string {
	if !cfg.Backup() {
		return nil
	}
	args := []string{"--backup"}
	if d := cfg.BackupDir(); d != "" {
		args = append(args, "--backup-dir="+d)
	}
	if s := cfg.BackupSuffix(); s != "" {
		args = append(args, "--suffix="+s)
	}
	return args
}

func wholeFileArgs(cfg *clientconfig.Config) []string {
	if !cfg.WholeFileExplicit() {
		return []string{"--whole-file"}
	}
	if cfg.WholeFile() {
		return []string{"--whole-file"}
	}
	return []string{"--no-whole-file"}
}

// SplitRemoteShellCommand tokenizes an --rsh/$RSYNC_RSH value the way the
// teacher's doCmd does, via shlex rather than a hand-rolled shell grammar.
func SplitRemoteShellCommand(cmd string) ([]string, error) {
	if cmd == "" {
		cmd = "ssh"
		if e := os.Getenv("RSYNC_RSH"); e != "" {
			cmd = e
		}
	}
	return shlex.Split(cmd)
}

// NewCommand builds an *exec.Cmd ready to run with the given plan's stdio
// wired: stdout/stderr stream through to the parent, stdin carries
// StdinPayload when present.
func NewCommand(plan *Plan) *exec.Cmd {
	cmd := exec.Command(plan.Binary, plan.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if plan.StdinPayload != nil {
		cmd.Stdin = strings.NewReader(string(plan.StdinPayload))
	} else {
		cmd.Stdin = os.Stdin
	}
	return cmd
}
