// Package cliflags adapts a raw argv into a clientconfig.Config via
// github.com/DavidGamba/go-getoptions, the option parser internal/rsyncd's
// legacy per-connection flag decoder already uses (with
// getoptions.Bundling, matching rsync's own popt-style short-option
// bundling such as "-logDtpr"). This package generalizes that one-shot,
// server-side flag subset into the full client-facing flag table
// SPEC_FULL's clientconfig.Builder exposes.
package cliflags

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/DavidGamba/go-getoptions"

	"github.com/oferchen/rsync-sub001/internal/clientconfig"
	"github.com/oferchen/rsync-sub001/internal/filterrules"
)

// Parsed is the outcome of parsing a raw argv: a built Config plus the
// pieces the fallback/orchestrator layers need that aren't part of
// Config's data model (raw filter text, files-from operands, rsh text).
type Parsed struct {
	Cfg             *clientconfig.Config
	FilterShortcut  int
	FilterTextLines []string
	FilesFrom       []string
	FilesFromZero   bool
	RemoteShellCmd  string
	InfoTokens      []string
	DebugTokens     []string
	RsyncPath       string
	RemoteOptions   []string
	ConnectProgram  string
	// RemoteOnlyFlags names which remote-only options (--rsync-path,
	// --remote-option, --protocol, --password-file, --connect-program)
	// were actually supplied, for C9 step 6's local-transfer validation.
	RemoteOnlyFlags []string
}

// Parse builds a Config from argv (excluding argv[0]).
func Parse(argv []string) (*Parsed, error) {
	argv, filterShortcutCount := extractFilterShortcut(argv)

	opt := getoptions.New()
	opt.SetMode(getoptions.Bundling)

	archive := opt.Bool("archive", false, opt.Alias("a"))
	recursive := opt.Bool("recursive", false, opt.Alias("r"))
	relative := opt.Bool("relative", false, opt.Alias("R"))
	links := opt.Bool("links", false, opt.Alias("l"))
	copyLinks := opt.Bool("copy-links", false, opt.Alias("L"))
	copyUnsafeLinks := opt.Bool("copy-unsafe-links", false)
	safeLinks := opt.Bool("safe-links", false)
	copyDirlinks := opt.Bool("copy-dirlinks", false, opt.Alias("k"))
	keepDirlinks := opt.Bool("keep-dirlinks", false, opt.Alias("K"))
	perms := opt.Bool("perms", false, opt.Alias("p"))
	executability := opt.Bool("executability", false, opt.Alias("E"))
	owner := opt.Bool("owner", false, opt.Alias("o"))
	group := opt.Bool("group", false, opt.Alias("g"))
	devices := opt.Bool("devices", false)
	specials := opt.Bool("specials", false)
	dFlag := opt.Bool("D", false)
	times := opt.Bool("times", false, opt.Alias("t"))
	omitDirTimes := opt.Bool("omit-dir-times", false, opt.Alias("O"))
	hardLinks := opt.Bool("hard-links", false, opt.Alias("H"))
	oneFileSystem := opt.Bool("one-file-system", false, opt.Alias("x"))

	dryRun := opt.Bool("dry-run", false, opt.Alias("n"))
	update := opt.Bool("update", false, opt.Alias("u"))
	checksum := opt.Bool("checksum", false, opt.Alias("c"))
	sizeOnly := opt.Bool("size-only", false)
	ignoreExisting := opt.Bool("ignore-existing", false)
	ignoreMissingArgs := opt.Bool("ignore-missing-args", false)
	existing := opt.Bool("existing", false)
	removeSourceFiles := opt.Bool("remove-source-files", false)
	deleteOpt := opt.Bool("delete", false)
	deleteBefore := opt.Bool("delete-before", false)
	deleteDuring := opt.Bool("delete-during", false, opt.Alias("del"))
	deleteDelay := opt.Bool("delete-delay", false)
	deleteAfter := opt.Bool("delete-after", false)
	deleteExcluded := opt.Bool("delete-excluded", false)
	maxDelete := opt.Int("max-delete", 0)
	minSize := opt.String("min-size", "")
	maxSize := opt.String("max-size", "")
	partial := opt.Bool("partial", false)
	partialDir := opt.String("partial-dir", "")
	delayUpdates := opt.Bool("delay-updates", false)
	preallocate := opt.Bool("preallocate", false)
	inplace := opt.Bool("inplace", false)
	appendOpt := opt.Bool("append", false)
	appendVerify := opt.Bool("append-verify", false)
	wholeFile := opt.Bool("whole-file", false, opt.Alias("W"))
	noWholeFile := opt.Bool("no-whole-file", false)
	sparse := opt.Bool("sparse", false, opt.Alias("S"))
	backup := opt.Bool("backup", false, opt.Alias("b"))
	backupDir := opt.String("backup-dir", "")
	suffix := opt.String("suffix", "")
	tempDir := opt.String("temp-dir", "", opt.Alias("T"))
	linkDest := opt.StringSlice("link-dest", 1, 1)
	compareDest := opt.StringSlice("compare-dest", 1, 1)
	copyDest := opt.StringSlice("copy-dest", 1, 1)

	compress := opt.Bool("compress", false, opt.Alias("z"))
	compressLevel := opt.Int("compress-level", -1)
	compressChoice := opt.String("compress-choice", "")
	skipCompress := opt.String("skip-compress", "")

	bwlimit := opt.String("bwlimit", "")
	timeout := opt.Int("timeout", 0)
	connectTimeout := opt.Int("contimeout", 0)
	modifyWindow := opt.Int("modify-window", 0)
	ipv4 := opt.Bool("ipv4", false, opt.Alias("4"))
	ipv6 := opt.Bool("ipv6", false, opt.Alias("6"))
	checksumChoice := opt.String("checksum-choice", "")
	numericIDs := opt.Bool("numeric-ids", false)
	chown := opt.String("chown", "")
	chmod := opt.StringSlice("chmod", 1, 1)
	passwordFile := opt.String("password-file", "")
	protocol := opt.Int("protocol", 0)
	outFormat := opt.String("out-format", "")
	itemizeChanges := opt.Bool("itemize-changes", false, opt.Alias("i"))
	stats := opt.Bool("stats", false)
	human := opt.Bool("human-readable", false, opt.Alias("h"))
	msgsToStderr := opt.Bool("msgs2stderr", false)
	listOnly := opt.Bool("list-only", false)
	mkpath := opt.Bool("mkpath", false)
	pruneEmptyDirs := opt.Bool("prune-empty-dirs", false, opt.Alias("m"))
	progress := opt.Bool("progress", false)
	partialProgress := opt.Bool("partial-progress", false, opt.Alias("P"))

	filterArgs := opt.StringSlice("filter", 1, 1, opt.Alias("f"))
	excludeArgs := opt.StringSlice("exclude", 1, 1)
	includeArgs := opt.StringSlice("include", 1, 1)
	excludeFrom := opt.StringSlice("exclude-from", 1, 1)
	includeFrom := opt.StringSlice("include-from", 1, 1)
	cvsExclude := opt.Bool("cvs-exclude", false, opt.Alias("C"))
	filesFrom := opt.StringSlice("files-from", 1, 1)
	from0 := opt.Bool("from0", false, opt.Alias("0"))

	rsh := opt.String("rsh", "", opt.Alias("e"))
	info := opt.StringSlice("info", 1, 1)
	debug := opt.StringSlice("debug", 1, 1)

	rsyncPath := opt.String("rsync-path", "")
	remoteOption := opt.StringSlice("remote-option", 1, 1, opt.Alias("M"))
	connectProgram := opt.String("connect-program", "")

	remaining, err := opt.Parse(argv)
	if err != nil {
		return nil, fmt.Errorf("parsing arguments: %w", err)
	}

	b := clientconfig.NewBuilder()
	b.Operands(remaining)
	b.DryRun(*dryRun)
	b.ListOnly(*listOnly)
	b.Archive(*archive)
	b.Recursive(*recursive)
	b.Relative(*relative || *archive)
	b.HardLinks(*hardLinks)
	b.Sparse(*sparse)
	b.CopyLinks(*copyLinks)
	b.CopyUnsafeLinks(*copyUnsafeLinks)
	b.SafeLinks(*safeLinks)
	b.CopyDirlinks(*copyDirlinks)
	b.KeepDirlinks(*keepDirlinks)
	b.Devices(*devices || *dFlag)
	b.Specials(*specials || *dFlag)
	b.OneFileSystem(*oneFileSystem)
	b.Mkpath(*mkpath)
	b.PruneEmptyDirs(*pruneEmptyDirs)
	b.Partial(*partial || *partialProgress)
	b.PartialDir(*partialDir)
	b.Progress(*progress || *partialProgress)
	b.Preallocate(*preallocate)
	b.DelayUpdates(*delayUpdates)
	b.Inplace(*inplace)
	b.Append(*appendOpt)
	b.AppendVerify(*appendVerify)
	b.Backup(*backup)
	b.BackupDir(*backupDir)
	b.BackupSuffix(*suffix)
	b.TempDir(*tempDir)
	b.LinkDests(*linkDest)
	b.CompareDests(*compareDest)
	b.CopyDests(*copyDest)
	b.RemoveSourceFiles(*removeSourceFiles)
	b.Stats(*stats)
	b.MsgsToStderr(*msgsToStderr)
	b.ItemizeChanges(*itemizeChanges)
	b.Checksum(*checksum)
	b.SizeOnly(*sizeOnly)
	b.UpdateOnly(*update)
	b.IgnoreExisting(*ignoreExisting || *existing)
	b.IgnoreMissingArgs(*ignoreMissingArgs)
	b.NumericIDs(*numericIDs)
	b.ChownOverride(*chown)
	b.ChmodModifiers(*chmod)
	b.PasswordFile(*passwordFile)
	if *protocol != 0 {
		b.ProtocolCap(*protocol)
	}
	if *outFormat != "" {
		b.OutFormat(*outFormat)
	}
	b.ModifyWindow(*modifyWindow)

	b.PreserveLinks(*links || *archive)
	b.PreservePerms(*perms || *archive)
	b.Executability(*executability)
	b.PreserveOwner(*owner || *archive)
	b.PreserveGroup(*group || *archive)
	b.PreserveTimes(*times || *archive)
	b.OmitDirTimes(*omitDirTimes)

	if *ipv4 {
		b.AddressFamily(clientconfig.AddressFamilyIPv4)
	} else if *ipv6 {
		b.AddressFamily(clientconfig.AddressFamilyIPv6)
	}

	if *wholeFile {
		b.WholeFile(true)
	} else if *noWholeFile {
		b.WholeFile(false)
	}

	deleteMode, err := resolveDeleteMode(*deleteOpt, *deleteBefore, *deleteDuring, *deleteDelay, *deleteAfter)
	if err != nil {
		return nil, err
	}
	if deleteMode != clientconfig.DeleteNone {
		b.DeleteMode(deleteMode)
	}
	b.DeleteExcluded(*deleteExcluded)
	if *maxDelete != 0 {
		b.MaxDelete(int64(*maxDelete))
	}

	min, max, err := parseSizeRange(*minSize, *maxSize)
	if err != nil {
		return nil, err
	}
	if min != 0 || max != 0 {
		b.SizeRange(min, max)
	}

	if *bwlimit != "" {
		bps, burst, err := parseBwlimit(*bwlimit)
		if err != nil {
			return nil, err
		}
		b.BandwidthLimit(bps, burst)
	}
	if *timeout != 0 {
		b.Timeout(*timeout)
	}
	if *connectTimeout != 0 {
		b.ConnectTimeout(*connectTimeout)
	}

	algo := *checksumChoice
	if algo == "" && *checksum {
		algo = "auto"
	}
	if algo != "" {
		b.ChecksumAlgorithm(algo)
	}

	b.Compression(*compress, normalizeLevel(*compressLevel), *compressChoice, *skipCompress)

	if *human {
		b.HumanReadable(clientconfig.HumanReadableEnabled)
	}

	rules, textLines, err := buildFilterRules(*filterArgs, *excludeArgs, *includeArgs, *excludeFrom, *includeFrom, *cvsExclude)
	if err != nil {
		return nil, err
	}
	if filterShortcutCount >= 1 {
		rules.Append(filterrules.Entry{Kind: filterrules.KindDirMerge, Pattern: ".rsync-filter"})
	}
	if filterShortcutCount >= 2 {
		rules.Append(filterrules.Entry{Kind: filterrules.KindExclude, Pattern: ".rsync-filter"})
	}
	b.FilterRules(rules)

	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}

	var remoteOnly []string
	if *rsyncPath != "" {
		remoteOnly = append(remoteOnly, "--rsync-path")
	}
	if len(*remoteOption) > 0 {
		remoteOnly = append(remoteOnly, "--remote-option")
	}
	if *protocol != 0 {
		remoteOnly = append(remoteOnly, "--protocol")
	}
	if *passwordFile != "" {
		remoteOnly = append(remoteOnly, "--password-file")
	}
	if *connectProgram != "" {
		remoteOnly = append(remoteOnly, "--connect-program")
	}

	return &Parsed{
		Cfg:             cfg,
		FilterShortcut:  filterShortcutCount,
		FilterTextLines: textLines,
		FilesFrom:       *filesFrom,
		FilesFromZero:   *from0,
		RemoteShellCmd:  *rsh,
		InfoTokens:      *info,
		DebugTokens:     *debug,
		RsyncPath:       *rsyncPath,
		RemoteOptions:   *remoteOption,
		ConnectProgram:  *connectProgram,
		RemoteOnlyFlags: remoteOnly,
	}, nil
}

// extractFilterShortcut pulls "-F" (and bundled "-FF") tokens out of argv
// before handoff to go-getoptions, since -F is a repeatable counting flag
// (1x = dir-merge .rsync-filter, 2x = also --exclude .rsync-filter) rather
// than a value-carrying option getoptions models directly.
func extractFilterShortcut(argv []string) ([]string, int) {
	var out []string
	count := 0
	for _, a := range argv {
		switch {
		case a == "-F":
			count++
		case a == "-FF":
			count += 2
		default:
			out = append(out, a)
		}
	}
	return out, count
}

func normalizeLevel(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func resolveDeleteMode(del, before, during, delay, after bool) (clientconfig.DeleteMode, error) {
	set := 0
	var mode clientconfig.DeleteMode
	if before {
		mode, set = clientconfig.DeleteBefore, set+1
	}
	if during || del {
		mode, set = clientconfig.DeleteDuring, set+1
	}
	if delay {
		mode, set = clientconfig.DeleteDelay, set+1
	}
	if after {
		mode, set = clientconfig.DeleteAfter, set+1
	}
	if set > 1 {
		return clientconfig.DeleteNone, fmt.Errorf("only one of --delete-before/--delete-during/--delete-delay/--delete-after may be given")
	}
	return mode, nil
}

func parseSizeRange(min, max string) (int64, int64, error) {
	var lo, hi int64
	var err error
	if min != "" {
		lo, err = parseSizeSuffix(min)
		if err != nil {
			return 0, 0, fmt.Errorf("--min-size: %w", err)
		}
	}
	if max != "" {
		hi, err = parseSizeSuffix(max)
		if err != nil {
			return 0, 0, fmt.Errorf("--max-size: %w", err)
		}
	}
	return lo, hi, nil
}

func parseSizeSuffix(v string) (int64, error) {
	v = strings.TrimSpace(v)
	mult := int64(1)
	switch {
	case strings.HasSuffix(v, "K") || strings.HasSuffix(v, "k"):
		mult, v = 1024, v[:len(v)-1]
	case strings.HasSuffix(v, "M") || strings.HasSuffix(v, "m"):
		mult, v = 1024*1024, v[:len(v)-1]
	case strings.HasSuffix(v, "G") || strings.HasSuffix(v, "g"):
		mult, v = 1024*1024*1024, v[:len(v)-1]
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * mult, nil
}

// parseBwlimit parses --bwlimit's rate[:burst] form straight into
// bytes-per-second, per spec.md §4.9/§8 scenario 3 (--bwlimit=1M:64K must
// resolve to 1048576:65536). 0 disables the limit; any other value under
// 512 bytes/s is rejected as too small to be useful.
func parseBwlimit(v string) (int64, int64, error) {
	parts := strings.SplitN(v, ":", 2)
	bps, err := parseSizeSuffix(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("--bwlimit: %w", err)
	}
	if bps != 0 && bps < 512 {
		return 0, 0, fmt.Errorf("--bwlimit: rate %d is too small (minimum 512 bytes/s)", bps)
	}
	var burst int64
	if len(parts) == 2 {
		burst, err = parseSizeSuffix(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("--bwlimit: %w", err)
		}
	}
	return bps, burst, nil
}

func buildFilterRules(filters, excludes, includes, excludeFrom, includeFrom []string, cvs bool) (*filterrules.RuleSet, []string, error) {
	rs := filterrules.NewRuleSet(nil)
	var textLines []string

	if cvs {
		rs.Append(filterrules.Entry{Kind: filterrules.KindDirMerge, Pattern: ".cvsignore"})
	}
	for _, pat := range excludes {
		rs.Append(filterrules.Entry{Kind: filterrules.KindExclude, Pattern: pat})
	}
	for _, pat := range includes {
		rs.Append(filterrules.Entry{Kind: filterrules.KindInclude, Pattern: pat})
	}
	for _, f := range excludeFrom {
		pats, err := readPatternFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("--exclude-from=%s: %w", f, err)
		}
		for _, p := range pats {
			rs.Append(filterrules.Entry{Kind: filterrules.KindExclude, Pattern: p})
		}
		textLines = append(textLines, "merge,- "+f)
	}
	for _, f := range includeFrom {
		pats, err := readPatternFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("--include-from=%s: %w", f, err)
		}
		for _, p := range pats {
			rs.Append(filterrules.Entry{Kind: filterrules.KindInclude, Pattern: p})
		}
		textLines = append(textLines, "merge,+ "+f)
	}
	for _, raw := range filters {
		d, err := filterrules.ParseDirective(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("--filter %q: %w", raw, err)
		}
		if d.Rule != nil {
			if d.Rule.Kind == filterrules.KindClear {
				rs.Clear()
				continue
			}
			rs.Append(filterrules.Entry{Kind: d.Rule.Kind, Pattern: d.Rule.Pattern})
		}
		textLines = append(textLines, raw)
	}
	return rs, textLines, nil
}

func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var pats []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		pats = append(pats, line)
	}
	return pats, sc.Err()
}
