// Package localpipeline implements the local-to-local transfer path C9
// falls back to when neither operand requires remote transport: a
// sequential tree walk whose whole-file copies (delta-transfer internals
// are out of scope) run concurrently, filtered through
// internal/filterrules and reported through internal/outformat.
//
// Grounded on internal/receiver/do.go's deleteFiles walk (filepath.Walk
// plus golang.org/x/sync/errgroup for concurrent fan-out) and
// generatorsymlink.go's use of github.com/google/renameio/v2 for
// crash-safe symlink creation, generalized from "delete files absent from
// the remote file list" to "copy files present in the source tree,"
// re-using the same walk-and-compare shape.
package localpipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"

	"github.com/oferchen/rsync-sub001/internal/filterrules"
	"github.com/oferchen/rsync-sub001/internal/outformat"
)

// Options configures a Run.
type Options struct {
	Source      string
	Dest        string
	Rules       *filterrules.RuleSet
	DryRun      bool
	Delete      bool
	PreserveUID bool
	PreserveGID bool
	PreservePerms bool
	Concurrency int
	// Entries, when non-empty, restricts the transfer to exactly these
	// paths (relative to Source) instead of a full tree walk — the
	// --files-from operand list, already loaded by internal/filelist.
	// A directory entry is walked recursively; a file entry is taken as-is.
	Entries []string
}

// Result aggregates the outcome of a Run.
type Result struct {
	Entries []outformat.Entry
	Stats   outformat.Stats
}

// walkEntry is one file or directory discovered under Source, relative to
// it, carrying enough fs.FileInfo to decide how to replicate it.
type walkEntry struct {
	relPath string
	info    fs.FileInfo
}

// Run walks Source, consults Rules for every entry, and replicates
// included regular files, directories, and symlinks into Dest
// concurrently. It returns once every discovered entry has been
// dispatched and processed.
func Run(ctx context.Context, opts Options) (*Result, error) {
	var (
		entries []walkEntry
		err     error
	)
	if len(opts.Entries) > 0 {
		entries, err = discoverFromList(opts.Source, opts.Entries, opts.Rules)
	} else {
		entries, err = discover(opts.Source, opts.Rules)
	}
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result Result
	)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	for _, e := range entries {
		e := e
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			entry, err := replicate(opts, e)
			if err != nil {
				return fmt.Errorf("%s: %w", e.relPath, err)
			}
			mu.Lock()
			result.Entries = append(result.Entries, entry)
			accumulate(&result.Stats, e.info, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return &result, err
	}

	if opts.Delete {
		deleted, err := pruneExtraneous(opts, entries)
		if err != nil {
			return &result, err
		}
		result.Stats.FilesDeleted += deleted
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].RelPath < result.Entries[j].RelPath
	})
	return &result, nil
}

// discover walks Source in lexical order, keeping every entry Rules does
// not exclude; an excluded directory is dropped together with its
// subtree.
func discover(root string, rules *filterrules.RuleSet) ([]walkEntry, error) {
	var out []walkEntry
	err := filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if excluded(rules, rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		out = append(out, walkEntry{relPath: rel, info: info})
		return nil
	})
	return out, err
}

// discoverFromList resolves an explicit --files-from operand list instead
// of a full tree walk: a directory entry is walked recursively (same rule
// evaluation as discover), a file entry is taken as-is. Entries are
// deduplicated since an explicit list can repeat or overlap a directory
// already expanded.
func discoverFromList(root string, relPaths []string, rules *filterrules.RuleSet) ([]walkEntry, error) {
	var out []walkEntry
	seen := make(map[string]bool)
	for _, rel := range relPaths {
		rel = filepath.Clean(rel)
		full := filepath.Join(root, rel)
		info, err := os.Lstat(full)
		if err != nil {
			return nil, fmt.Errorf("files-from entry %q: %w", rel, err)
		}
		if !info.IsDir() {
			if seen[rel] {
				continue
			}
			if excluded(rules, rel, false) {
				continue
			}
			seen[rel] = true
			out = append(out, walkEntry{relPath: rel, info: info})
			continue
		}
		err = filepath.Walk(full, func(path string, fi fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			r, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if seen[r] {
				return nil
			}
			if excluded(rules, r, fi.IsDir()) {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			seen[r] = true
			out = append(out, walkEntry{relPath: r, info: fi})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func excluded(rules *filterrules.RuleSet, rel string, isDir bool) bool {
	if rules == nil {
		return false
	}
	return rules.Evaluate(rel, isDir, filterrules.EvalContext{Side: filterrules.SideSender}) == filterrules.DecisionExclude
}

func replicate(opts Options, e walkEntry) (outformat.Entry, error) {
	src := filepath.Join(opts.Source, e.relPath)
	dst := filepath.Join(opts.Dest, e.relPath)
	entry := outformat.Entry{
		RelPath: e.relPath,
		Length:  e.info.Size(),
		ModTime: e.info.ModTime(),
		Mode:    uint32(e.info.Mode()),
		Operation: outformat.OpSend,
	}

	switch {
	case e.info.IsDir():
		if !opts.DryRun {
			if err := os.MkdirAll(dst, e.info.Mode().Perm()); err != nil {
				return entry, err
			}
		}
		entry.Itemized = "cd+++++++++"
	case e.info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return entry, err
		}
		entry.SymlinkTarget = target
		if !opts.DryRun {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return entry, err
			}
			os.Remove(dst)
			if err := renameio.Symlink(target, dst); err != nil {
				return entry, err
			}
		}
		entry.Itemized = "cL+++++++++"
	default:
		n, err := copyRegular(src, dst, e.info, opts)
		if err != nil {
			return entry, err
		}
		entry.BytesXfer = n
		entry.Itemized = ">f+++++++++"
	}
	return entry, nil
}

// copyRegular whole-file-copies src to dst via a renameio pending file, so
// a crash mid-copy never leaves a partially written destination in place.
func copyRegular(src, dst string, info fs.FileInfo, opts Options) (int64, error) {
	if opts.DryRun {
		return info.Size(), nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	t, err := renameio.TempFile("", dst)
	if err != nil {
		return 0, err
	}
	defer t.Cleanup()

	n, err := io.Copy(t, in)
	if err != nil {
		return n, err
	}
	if opts.PreservePerms {
		if err := t.Chmod(info.Mode().Perm()); err != nil {
			return n, err
		}
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return n, err
	}
	return n, nil
}

// pruneExtraneous removes files present under Dest but absent from the
// included-entries set, mirroring internal/receiver/do.go's deleteFiles
// name-comparison walk.
func pruneExtraneous(opts Options, kept []walkEntry) (int, error) {
	present := make(map[string]bool, len(kept))
	for _, e := range kept {
		present[e.relPath] = true
	}
	deleted := 0
	err := filepath.Walk(opts.Dest, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.Dest, path)
		if err != nil || rel == "." {
			return nil
		}
		if present[rel] {
			return nil
		}
		if opts.DryRun {
			if info.IsDir() {
				return filepath.SkipDir
			}
			deleted++
			return nil
		}
		if info.IsDir() {
			if err := os.RemoveAll(path); err != nil {
				return err
			}
			deleted++
			return filepath.SkipDir
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		deleted++
		return nil
	})
	return deleted, err
}

func accumulate(stats *outformat.Stats, info fs.FileInfo, entry outformat.Entry) {
	switch {
	case info.IsDir():
		stats.Directories++
	case info.Mode()&os.ModeSymlink != 0:
		stats.Symlinks++
	default:
		stats.RegularFiles++
		stats.RegularFilesTransferred++
		stats.TotalSize += entry.Length
		stats.LiteralData += entry.BytesXfer
	}
	stats.FilesCreated++
	stats.BytesSent += entry.BytesXfer
}
