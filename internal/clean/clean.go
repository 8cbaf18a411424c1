// Package clean removes files generated by the TeX toolchain.
package clean

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// Options controls what Plan collects.
type Options struct {
	Root       string   // project root
	SourceDir  string   // relative to Root, default "src"
	BuildDir   string   // relative to Root or absolute, default "build"
	Extensions []string // generated suffixes, e.g. ".aux", ".synctex.gz"
	Keep       []string // base names never removed, e.g. ".gitkeep"
	All        bool     // remove every build directory entry except Keep
}

// Entry is one file or directory scheduled for removal.
type Entry struct {
	Path string
	Dir  bool
	Size int64
}

// Plan is the set of entries Apply would remove.
type Plan struct {
	Entries   []Entry
	TotalSize int64
}

// HumanSize renders TotalSize for display.
func (p *Plan) HumanSize() string { return humanize.Bytes(uint64(p.TotalSize)) }

// Empty reports whether nothing would be removed.
func (p *Plan) Empty() bool { return len(p.Entries) == 0 }

// Failure records an entry that could not be removed.
type Failure struct {
	Path string
	Err  error
}

// Outcome is the result of Apply.
type Outcome struct {
	Removed   []Entry
	Failed    []Failure
	FreedSize int64
}

// NewPlan walks the source and build directories and collects generated files,
// plus _minted-* directories at the project root and in the source directory.
func NewPlan(opts Options) (*Plan, error) {
	opts = withDefaults(opts)
	seen := map[string]bool{}
	plan := &Plan{}

	add := func(path string, dir bool) {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			return
		}
		if keep(opts.Keep, abs) {
			return
		}
		seen[abs] = true
		size := sizeOf(abs, dir)
		plan.Entries = append(plan.Entries, Entry{Path: abs, Dir: dir, Size: size})
		plan.TotalSize += size
	}

	srcDir := resolve(opts.Root, opts.SourceDir)
	buildDir := resolve(opts.Root, opts.BuildDir)

	for _, dir := range []string{opts.Root, srcDir} {
		matches, _ := filepath.Glob(filepath.Join(dir, "_minted-*"))
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.IsDir() {
				add(m, true)
			}
		}
	}

	if opts.All {
		entries, err := os.ReadDir(buildDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			add(filepath.Join(buildDir, e.Name()), e.IsDir())
		}
	}

	for _, dir := range []string{srcDir, buildDir} {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if seen[mustAbs(path)] && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if Generated(d.Name(), opts.Extensions) {
				add(path, false)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(plan.Entries, func(i, j int) bool { return plan.Entries[i].Path < plan.Entries[j].Path })
	return plan, nil
}

// Apply removes every planned entry. A failure is recorded and the remaining
// entries are still attempted.
func Apply(plan *Plan) Outcome {
	var out Outcome
	for _, e := range plan.Entries {
		var err error
		if e.Dir {
			err = os.RemoveAll(e.Path)
		} else {
			err = os.Remove(e.Path)
		}
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove generated file", logfields.Path(e.Path), logfields.Error(err))
			out.Failed = append(out.Failed, Failure{Path: e.Path, Err: err})
			continue
		}
		out.Removed = append(out.Removed, e)
		out.FreedSize += e.Size
	}
	slog.Debug("Clean finished", logfields.Count(len(out.Removed)), slog.Int("failed", len(out.Failed)))
	return out
}

// Generated reports whether name ends with one of the generated suffixes.
// Compound suffixes such as ".synctex.gz" are matched as suffixes.
func Generated(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func withDefaults(opts Options) Options {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.SourceDir == "" {
		opts.SourceDir = "src"
	}
	if opts.BuildDir == "" {
		opts.BuildDir = "build"
	}
	if opts.Keep == nil {
		opts.Keep = []string{".gitkeep"}
	}
	return opts
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func keep(names []string, path string) bool {
	base := filepath.Base(path)
	for _, k := range names {
		if base == k {
			return true
		}
	}
	return false
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func sizeOf(path string, dir bool) int64 {
	if !dir {
		if fi, err := os.Stat(path); err == nil {
			return fi.Size()
		}
		return 0
	}
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return total
}
