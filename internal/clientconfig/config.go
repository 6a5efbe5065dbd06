// Package clientconfig implements the immutable client configuration
// snapshot (the teacher's rsyncopts.Options, reshaped as a builder-produced
// value type per the spec's immutability requirement rather than a
// mutable struct parsed in place).
package clientconfig

import (
	"time"

	"github.com/oferchen/rsync-sub001/internal/checksum"
	"github.com/oferchen/rsync-sub001/internal/compressopt"
	"github.com/oferchen/rsync-sub001/internal/filterrules"
)

// DeleteMode enumerates the mutually exclusive delete-timing choices.
type DeleteMode int

const (
	DeleteNone DeleteMode = iota
	DeleteBefore
	DeleteDuring
	DeleteDelay
	DeleteAfter
)

// AddressFamily narrows a connection to IPv4 or IPv6.
type AddressFamily int

const (
	AddressFamilyAny AddressFamily = iota
	AddressFamilyIPv4
	AddressFamilyIPv6
)

// HumanReadable selects how byte counts and rates are rendered.
type HumanReadable int

const (
	HumanReadableDisabled HumanReadable = iota
	HumanReadableEnabled
	HumanReadableCombined
)

// Config is the immutable, fully resolved client configuration handed to
// the transfer engine. All fields are unexported; access goes through the
// accessor methods below, mirroring the teacher's Options accessor idiom.
type Config struct {
	operands []string

	dryRun             bool
	listOnly           bool
	archive            bool
	recursive          bool
	deleteMode         DeleteMode
	deleteExcluded     bool
	checksum           bool
	sizeOnly           bool
	updateOnly         bool
	ignoreExisting     bool
	ignoreMissingArgs  bool
	numericIDs         bool
	hardLinks          bool
	sparse             bool
	preserveLinks      bool
	preservePerms      bool
	executability      bool
	preserveOwner      bool
	preserveGroup      bool
	preserveTimes      bool
	omitDirTimes       bool
	copyLinks          bool
	copyUnsafeLinks    bool
	safeLinks          bool
	copyDirlinks       bool
	keepDirlinks       bool
	devices            bool
	specials           bool
	relative           bool
	oneFileSystem      bool
	impliedDirs        bool
	mkpath             bool
	pruneEmptyDirs     bool
	partial            bool
	preallocate        bool
	delayUpdates       bool
	inplace            bool
	appendMode         bool
	appendVerify       bool
	wholeFile          bool
	wholeFileSet       bool
	backup             bool
	removeSourceFiles  bool
	stats              bool
	humanReadable      HumanReadable
	msgsToStderr       bool
	itemizeChanges     bool
	forceEventCollect  bool
	progress           bool

	addressFamily     AddressFamily
	checksumAlgorithm checksum.Algorithm

	bandwidthLimitBps int64
	bandwidthBurst    int64
	timeout           time.Duration
	connectTimeout    time.Duration
	sizeMin           int64
	sizeMax           int64
	maxDelete         int64
	maxDeleteSet      bool
	modifyWindow      time.Duration

	compression compressopt.Setting

	chownOverride string
	chmodMods     []string
	backupDir     string
	backupSuffix  string
	partialDir    string
	tempDir       string
	linkDests     []string
	compareDests  []string
	copyDests     []string
	passwordFile  string
	protocolCap   int
	outFormat     string

	filterRules *filterrules.RuleSet
}

func (c *Config) Operands() []string { return append([]string(nil), c.operands...) }

func (c *Config) DryRun() bool            { return c.dryRun }
func (c *Config) ListOnly() bool          { return c.listOnly }
func (c *Config) Archive() bool           { return c.archive }
func (c *Config) Recursive() bool         { return c.recursive || c.archive }
func (c *Config) DeleteMode() DeleteMode  { return c.deleteMode }
func (c *Config) DeleteEnabled() bool     { return c.deleteMode != DeleteNone }
func (c *Config) DeleteExcluded() bool    { return c.deleteExcluded }
func (c *Config) Checksum() bool          { return c.checksum }
func (c *Config) SizeOnly() bool          { return c.sizeOnly }
func (c *Config) UpdateOnly() bool        { return c.updateOnly }
func (c *Config) IgnoreExisting() bool    { return c.ignoreExisting }
func (c *Config) IgnoreMissingArgs() bool { return c.ignoreMissingArgs }
func (c *Config) NumericIDs() bool        { return c.numericIDs }
func (c *Config) HardLinks() bool         { return c.hardLinks }
func (c *Config) Sparse() bool            { return c.sparse }
func (c *Config) PreserveLinks() bool     { return c.preserveLinks }
func (c *Config) PreservePerms() bool     { return c.preservePerms }
func (c *Config) Executability() bool     { return c.executability }
func (c *Config) PreserveOwner() bool     { return c.preserveOwner }
func (c *Config) PreserveGroup() bool     { return c.preserveGroup }
func (c *Config) PreserveTimes() bool     { return c.preserveTimes }
func (c *Config) OmitDirTimes() bool      { return c.omitDirTimes }
func (c *Config) CopyLinks() bool         { return c.copyLinks }
func (c *Config) CopyUnsafeLinks() bool   { return c.copyUnsafeLinks }
func (c *Config) SafeLinks() bool         { return c.safeLinks }
func (c *Config) CopyDirlinks() bool      { return c.copyDirlinks }
func (c *Config) KeepDirlinks() bool      { return c.keepDirlinks }
func (c *Config) Devices() bool           { return c.devices }
func (c *Config) Specials() bool          { return c.specials }
func (c *Config) Relative() bool          { return c.relative }
func (c *Config) OneFileSystem() bool     { return c.oneFileSystem }
func (c *Config) ImpliedDirs() bool       { return c.impliedDirs }
func (c *Config) Mkpath() bool            { return c.mkpath }
func (c *Config) PruneEmptyDirs() bool    { return c.pruneEmptyDirs }
func (c *Config) Partial() bool           { return c.partial }
func (c *Config) Preallocate() bool       { return c.preallocate }
func (c *Config) DelayUpdates() bool      { return c.delayUpdates }
func (c *Config) Inplace() bool           { return c.inplace }
func (c *Config) Append() bool            { return c.appendMode }
func (c *Config) AppendVerify() bool      { return c.appendVerify }
func (c *Config) WholeFile() bool         { return c.wholeFile }
func (c *Config) WholeFileExplicit() bool { return c.wholeFileSet }
func (c *Config) Backup() bool            { return c.backup }
func (c *Config) RemoveSourceFiles() bool { return c.removeSourceFiles }
func (c *Config) Stats() bool             { return c.stats }
func (c *Config) HumanReadable() HumanReadable { return c.humanReadable }
func (c *Config) MsgsToStderr() bool      { return c.msgsToStderr }
func (c *Config) ItemizeChanges() bool    { return c.itemizeChanges }
func (c *Config) ForceEventCollection() bool { return c.forceEventCollect }
func (c *Config) Progress() bool          { return c.progress }

func (c *Config) AddressFamily() AddressFamily         { return c.addressFamily }
func (c *Config) ChecksumAlgorithm() checksum.Algorithm { return c.checksumAlgorithm }

func (c *Config) BandwidthLimitBps() int64   { return c.bandwidthLimitBps }
func (c *Config) BandwidthBurstBytes() int64 { return c.bandwidthBurst }
func (c *Config) Timeout() time.Duration        { return c.timeout }
func (c *Config) ConnectTimeout() time.Duration { return c.connectTimeout }
func (c *Config) SizeMin() int64    { return c.sizeMin }
func (c *Config) SizeMax() int64    { return c.sizeMax }
func (c *Config) MaxDelete() (int64, bool) { return c.maxDelete, c.maxDeleteSet }
func (c *Config) ModifyWindow() time.Duration { return c.modifyWindow }

func (c *Config) Compression() compressopt.Setting { return c.compression }

func (c *Config) ChownOverride() string { return c.chownOverride }
func (c *Config) ChmodModifiers() []string { return append([]string(nil), c.chmodMods...) }
func (c *Config) BackupDir() string    { return c.backupDir }
func (c *Config) BackupSuffix() string { return c.backupSuffix }
func (c *Config) PartialDir() string   { return c.partialDir }
func (c *Config) TempDir() string      { return c.tempDir }
func (c *Config) LinkDests() []string  { return append([]string(nil), c.linkDests...) }
func (c *Config) CompareDests() []string { return append([]string(nil), c.compareDests...) }
func (c *Config) CopyDests() []string  { return append([]string(nil), c.copyDests...) }
func (c *Config) PasswordFile() string { return c.passwordFile }
func (c *Config) ProtocolCap() int     { return c.protocolCap }
func (c *Config) OutFormat() string    { return c.outFormat }

func (c *Config) FilterRules() *filterrules.RuleSet { return c.filterRules }
