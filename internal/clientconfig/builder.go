package clientconfig

import (
	"fmt"
	"time"

	"github.com/oferchen/rsync-sub001/internal/checksum"
	"github.com/oferchen/rsync-sub001/internal/compressopt"
	"github.com/oferchen/rsync-sub001/internal/filterrules"
)

// Builder accumulates client settings before a single, immutable Config is
// produced by Build. Mirrors the teacher's NewOptions()-then-mutate
// pattern, but Build returns a value the rest of the program can never
// mutate again, per the spec's immutability requirement.
type Builder struct {
	cfg Config
	err error
}

// NewBuilder seeds a Builder with the same defaults rsyncopts.NewOptions
// assigns the teacher's Options: human-readable on, implied-dirs on,
// whole-file left unset (auto), protocol capped at 27.
func NewBuilder() *Builder {
	b := &Builder{}
	b.cfg.humanReadable = HumanReadableEnabled
	b.cfg.impliedDirs = true
	b.cfg.protocolCap = 27
	b.cfg.addressFamily = AddressFamilyAny
	b.cfg.compression = compressopt.Default()
	b.cfg.outFormat = "%i %n%L"
	return b
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *Builder) Operands(operands []string) *Builder {
	b.cfg.operands = append([]string(nil), operands...)
	return b
}

func (b *Builder) DryRun(v bool) *Builder    { b.cfg.dryRun = v; return b }
func (b *Builder) ListOnly(v bool) *Builder  { b.cfg.listOnly = v; return b }
func (b *Builder) Recursive(v bool) *Builder { b.cfg.recursive = v; return b }
func (b *Builder) Archive(v bool) *Builder {
	b.cfg.archive = v
	if v {
		b.cfg.relative = true
		b.cfg.devices = true
		b.cfg.specials = true
		b.cfg.hardLinks = false
		b.cfg.copyLinks = false
		b.cfg.preserveLinks = true
		b.cfg.preservePerms = true
		b.cfg.preserveOwner = true
		b.cfg.preserveGroup = true
		b.cfg.preserveTimes = true
	}
	return b
}

func (b *Builder) PreserveLinks(v bool) *Builder { b.cfg.preserveLinks = v; return b }
func (b *Builder) PreservePerms(v bool) *Builder { b.cfg.preservePerms = v; return b }
func (b *Builder) Executability(v bool) *Builder { b.cfg.executability = v; return b }
func (b *Builder) PreserveOwner(v bool) *Builder  { b.cfg.preserveOwner = v; return b }
func (b *Builder) PreserveGroup(v bool) *Builder  { b.cfg.preserveGroup = v; return b }
func (b *Builder) PreserveTimes(v bool) *Builder  { b.cfg.preserveTimes = v; return b }
func (b *Builder) OmitDirTimes(v bool) *Builder   { b.cfg.omitDirTimes = v; return b }

func (b *Builder) DeleteMode(m DeleteMode) *Builder { b.cfg.deleteMode = m; return b }
func (b *Builder) DeleteExcluded(v bool) *Builder {
	b.cfg.deleteExcluded = v
	if v && b.cfg.deleteMode == DeleteNone {
		b.cfg.deleteMode = DeleteDuring
	}
	return b
}

func (b *Builder) Checksum(v bool) *Builder         { b.cfg.checksum = v; return b }
func (b *Builder) SizeOnly(v bool) *Builder         { b.cfg.sizeOnly = v; return b }
func (b *Builder) UpdateOnly(v bool) *Builder       { b.cfg.updateOnly = v; return b }
func (b *Builder) IgnoreExisting(v bool) *Builder   { b.cfg.ignoreExisting = v; return b }
func (b *Builder) IgnoreMissingArgs(v bool) *Builder { b.cfg.ignoreMissingArgs = v; return b }
func (b *Builder) NumericIDs(v bool) *Builder       { b.cfg.numericIDs = v; return b }
func (b *Builder) HardLinks(v bool) *Builder        { b.cfg.hardLinks = v; return b }
func (b *Builder) Sparse(v bool) *Builder           { b.cfg.sparse = v; return b }
func (b *Builder) CopyLinks(v bool) *Builder        { b.cfg.copyLinks = v; return b }
func (b *Builder) CopyUnsafeLinks(v bool) *Builder  { b.cfg.copyUnsafeLinks = v; return b }
func (b *Builder) SafeLinks(v bool) *Builder        { b.cfg.safeLinks = v; return b }
func (b *Builder) CopyDirlinks(v bool) *Builder     { b.cfg.copyDirlinks = v; return b }
func (b *Builder) KeepDirlinks(v bool) *Builder     { b.cfg.keepDirlinks = v; return b }
func (b *Builder) Devices(v bool) *Builder          { b.cfg.devices = v; return b }
func (b *Builder) Specials(v bool) *Builder         { b.cfg.specials = v; return b }
func (b *Builder) Relative(v bool) *Builder         { b.cfg.relative = v; return b }
func (b *Builder) OneFileSystem(v bool) *Builder    { b.cfg.oneFileSystem = v; return b }
func (b *Builder) ImpliedDirs(v bool) *Builder      { b.cfg.impliedDirs = v; return b }
func (b *Builder) Mkpath(v bool) *Builder           { b.cfg.mkpath = v; return b }
func (b *Builder) PruneEmptyDirs(v bool) *Builder   { b.cfg.pruneEmptyDirs = v; return b }
func (b *Builder) Partial(v bool) *Builder          { b.cfg.partial = v; return b }
func (b *Builder) Preallocate(v bool) *Builder      { b.cfg.preallocate = v; return b }
func (b *Builder) DelayUpdates(v bool) *Builder     { b.cfg.delayUpdates = v; return b }
func (b *Builder) Inplace(v bool) *Builder          { b.cfg.inplace = v; return b }
func (b *Builder) Append(v bool) *Builder           { b.cfg.appendMode = v; return b }
func (b *Builder) AppendVerify(v bool) *Builder {
	b.cfg.appendVerify = v
	if v {
		b.cfg.appendMode = true
	}
	return b
}

func (b *Builder) WholeFile(v bool) *Builder {
	b.cfg.wholeFile = v
	b.cfg.wholeFileSet = true
	return b
}

func (b *Builder) Backup(v bool) *Builder           { b.cfg.backup = v; return b }
func (b *Builder) RemoveSourceFiles(v bool) *Builder { b.cfg.removeSourceFiles = v; return b }
func (b *Builder) Stats(v bool) *Builder            { b.cfg.stats = v; return b }
func (b *Builder) HumanReadable(h HumanReadable) *Builder { b.cfg.humanReadable = h; return b }
func (b *Builder) MsgsToStderr(v bool) *Builder     { b.cfg.msgsToStderr = v; return b }
func (b *Builder) ItemizeChanges(v bool) *Builder   { b.cfg.itemizeChanges = v; return b }
func (b *Builder) ForceEventCollection(v bool) *Builder { b.cfg.forceEventCollect = v; return b }
func (b *Builder) Progress(v bool) *Builder          { b.cfg.progress = v; return b }

func (b *Builder) AddressFamily(f AddressFamily) *Builder { b.cfg.addressFamily = f; return b }

func (b *Builder) ChecksumAlgorithm(name string) *Builder {
	a, err := checksum.Parse(name)
	if err != nil {
		b.fail("checksum algorithm: %w", err)
		return b
	}
	b.cfg.checksumAlgorithm = a
	return b
}

// BandwidthLimit accepts a value already normalized to bytes-per-second (by
// the caller, per C10's canonicalization rule) and an optional burst size.
func (b *Builder) BandwidthLimit(bps, burst int64) *Builder {
	if bps < 0 {
		b.fail("bandwidth limit must not be negative, got %d", bps)
		return b
	}
	b.cfg.bandwidthLimitBps = bps
	b.cfg.bandwidthBurst = burst
	return b
}

func (b *Builder) Timeout(seconds int) *Builder {
	if seconds < 0 {
		b.fail("--timeout must not be negative, got %d", seconds)
		return b
	}
	b.cfg.timeout = time.Duration(seconds) * time.Second
	return b
}

func (b *Builder) ConnectTimeout(seconds int) *Builder {
	if seconds < 0 {
		b.fail("--contimeout must not be negative, got %d", seconds)
		return b
	}
	b.cfg.connectTimeout = time.Duration(seconds) * time.Second
	return b
}

func (b *Builder) SizeRange(min, max int64) *Builder {
	if min < 0 || max < 0 {
		b.fail("size limits must not be negative")
		return b
	}
	if max != 0 && min > max {
		b.fail("--min-size (%d) exceeds --max-size (%d)", min, max)
		return b
	}
	b.cfg.sizeMin = min
	b.cfg.sizeMax = max
	return b
}

func (b *Builder) MaxDelete(n int64) *Builder {
	b.cfg.maxDelete = n
	b.cfg.maxDeleteSet = true
	if b.cfg.deleteMode == DeleteNone {
		b.cfg.deleteMode = DeleteDuring
	}
	return b
}

func (b *Builder) ModifyWindow(seconds int) *Builder {
	b.cfg.modifyWindow = time.Duration(seconds) * time.Second
	return b
}

func (b *Builder) Compression(enabled bool, level int, choice string, skipSuffixes string) *Builder {
	b.cfg.compression.Enabled = enabled
	b.cfg.compression.Level = level
	b.cfg.compression.Choice = choice
	if skipSuffixes != "" {
		b.cfg.compression.SkipSuffixes = compressopt.ParseSkipCompress(skipSuffixes)
	}
	return b
}

func (b *Builder) ChownOverride(v string) *Builder    { b.cfg.chownOverride = v; return b }
func (b *Builder) ChmodModifiers(v []string) *Builder { b.cfg.chmodMods = append([]string(nil), v...); return b }
func (b *Builder) BackupDir(v string) *Builder        { b.cfg.backupDir = v; if v != "" { b.cfg.backup = true }; return b }
func (b *Builder) BackupSuffix(v string) *Builder     { b.cfg.backupSuffix = v; if v != "" { b.cfg.backup = true }; return b }
func (b *Builder) PartialDir(v string) *Builder       { b.cfg.partialDir = v; return b }
func (b *Builder) TempDir(v string) *Builder          { b.cfg.tempDir = v; return b }
func (b *Builder) LinkDests(v []string) *Builder      { b.cfg.linkDests = append([]string(nil), v...); return b }
func (b *Builder) CompareDests(v []string) *Builder   { b.cfg.compareDests = append([]string(nil), v...); return b }
func (b *Builder) CopyDests(v []string) *Builder      { b.cfg.copyDests = append([]string(nil), v...); return b }
func (b *Builder) PasswordFile(v string) *Builder     { b.cfg.passwordFile = v; return b }
func (b *Builder) ProtocolCap(v int) *Builder         { b.cfg.protocolCap = v; return b }
func (b *Builder) OutFormat(v string) *Builder {
	if v != "" {
		b.cfg.outFormat = v
	}
	return b
}

func (b *Builder) FilterRules(rs *filterrules.RuleSet) *Builder { b.cfg.filterRules = rs; return b }

// Build validates accumulated cross-field invariants and returns the
// immutable Config, or the first error recorded by a setter.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.cfg.appendVerify && b.cfg.wholeFileSet && !b.cfg.wholeFile {
		return nil, fmt.Errorf("--append-verify requires whole-file transfer")
	}
	if b.cfg.filterRules == nil {
		b.cfg.filterRules = filterrules.NewRuleSet(nil)
	}
	cfg := b.cfg
	return &cfg, nil
}
