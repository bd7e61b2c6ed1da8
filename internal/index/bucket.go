// Package index implements the on-demand symbol-definition index: a
// per-dialect bucket engine holding a cheap top-level candidate mapping
// and a lazily-filled definition mapping, queried through a chain of
// fallback strategies, plus the coordinator that partitions work across
// dialect buckets.
package index

import (
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lsi/internal/classpath"
	"github.com/standardbeagle/lsi/internal/debug"
	lsierrors "github.com/standardbeagle/lsi/internal/errors"
	"github.com/standardbeagle/lsi/internal/types"
	"github.com/standardbeagle/lsi/pkg/pathutil"
)

// DefaultMaxAltDepth bounds recursion through alternative symbols.
const DefaultMaxAltDepth = 5

// SourceScanner is the source-indexing capability the bucket consumes: a
// cheap top-level scan for eager registration and a full scan producing
// every definition with ranges.
type SourceScanner interface {
	TopLevels(path string, content []byte, dialect types.Dialect) ([]types.Symbol, []types.OverrideEdge, error)
	ScanAll(path string, content []byte, dialect types.Dialect) (*types.TextDocument, error)
}

// AlternativeGenerator supplies related identifiers tried as a last
// resort. Implementations must be finite and never echo their input.
type AlternativeGenerator interface {
	AlternativesFor(sym types.Symbol) []types.Symbol
}

// OverrideConsumer receives override edges discovered while indexing a
// file. The bucket passes them through and never stores them.
type OverrideConsumer func(path string, edges []types.OverrideEdge)

// BucketOptions configures optional bucket collaborators.
type BucketOptions struct {
	// Alternatives drives the last query fallback. Nil disables it.
	Alternatives AlternativeGenerator
	// ModuleNamer enables the module-qualified path guess for archives
	// that nest entries under a module directory. Nil disables it.
	ModuleNamer classpath.ModuleNamer
	// Overrides receives override edges per indexed file.
	Overrides OverrideConsumer
	// MaxAltDepth caps alternative recursion; 0 means DefaultMaxAltDepth.
	MaxAltDepth int
}

// Bucket is the index of one dialect. It holds two mappings: top-level
// symbol to defining paths (filled eagerly, cheap) and symbol to ranged
// definition locations (filled lazily by full scans). All operations are
// safe for concurrent use; redundant concurrent scans of the same file
// are tolerated and converge to the same entries.
type Bucket struct {
	dialect     types.Dialect
	cp          *classpath.Classpath
	scanner     SourceScanner
	alternates  AlternativeGenerator
	namer       classpath.ModuleNamer
	onOverrides OverrideConsumer
	maxAltDepth int

	toplevels   *ShardedMap[types.Symbol, []string]
	definitions *ShardedMap[types.Symbol, []types.SourceLocation]
	byPath      *ShardedMap[string, []types.Symbol]
	deepScanned *ShardedMap[string, uint64]

	stats counters
}

// NewBucket creates a bucket for one dialect over a shared classpath.
func NewBucket(dialect types.Dialect, cp *classpath.Classpath, scanner SourceScanner, opts BucketOptions) *Bucket {
	depth := opts.MaxAltDepth
	if depth <= 0 {
		depth = DefaultMaxAltDepth
	}
	return &Bucket{
		dialect:     dialect,
		cp:          cp,
		scanner:     scanner,
		alternates:  opts.Alternatives,
		namer:       opts.ModuleNamer,
		onOverrides: opts.Overrides,
		maxAltDepth: depth,
		toplevels:   NewShardedMap[types.Symbol, []string](),
		definitions: NewShardedMap[types.Symbol, []types.SourceLocation](),
		byPath:      NewShardedMap[string, []types.Symbol](),
		deepScanned: NewShardedMap[string, uint64](),
	}
}

// Dialect returns the bucket's dialect.
func (b *Bucket) Dialect() types.Dialect {
	return b.dialect
}

// AddFile eagerly indexes the top-level symbols of one source file.
// Symbols that follow the file-name convention are omitted because the
// path-guess fallback recovers them without an entry; script files are
// exempt from that filtering. Recoverable scan errors are retried once.
func (b *Bucket) AddFile(path string, content []byte) (types.IndexingResult, error) {
	b.stats.scannedFiles.Add(1)

	symbols, overrides, err := b.topLevelsRetrying(path, content)
	if err != nil {
		return types.IndexingResult{Path: path}, err
	}

	script := types.IsScriptPath(path)
	for _, sym := range symbols {
		if !script && definedAtTrivialPath(sym, path) {
			continue
		}
		b.record(sym, path)
	}

	if b.onOverrides != nil && len(overrides) > 0 {
		b.onOverrides(path, overrides)
	}

	return types.IndexingResult{
		Path:            path,
		TopLevelSymbols: symbols,
		Overrides:       overrides,
	}, nil
}

func (b *Bucket) topLevelsRetrying(path string, content []byte) ([]types.Symbol, []types.OverrideEdge, error) {
	symbols, overrides, err := b.scanner.TopLevels(path, content, b.dialect)
	if err == nil {
		return symbols, overrides, nil
	}
	var ie *lsierrors.IndexingError
	if stderrors.As(err, &ie) && ie.IsRecoverable() {
		debug.LogIndexing("retrying %s after: %v\n", path, err)
		return b.scanner.TopLevels(path, content, b.dialect)
	}
	return nil, nil, err
}

// MergePrebuilt registers top-level entries loaded from a pre-built
// archive index. Entry names are relative to the archive; no scan runs
// and no ranges are available until a query forces a full scan.
func (b *Bucket) MergePrebuilt(jarPath string, toplevels map[types.Symbol][]string) {
	for sym, entries := range toplevels {
		if !sym.IsGlobal() || sym.IsPackage() {
			continue
		}
		for _, entry := range entries {
			b.record(sym, pathutil.JoinJar(jarPath, entry))
		}
	}
}

// record adds one symbol-at-path fact to the candidate mapping and the
// reverse index, atomically and idempotently.
func (b *Bucket) record(sym types.Symbol, path string) {
	b.toplevels.Compute(sym, func(old []string, _ bool) ([]string, bool) {
		for _, p := range old {
			if p == path {
				return old, true
			}
		}
		updated := make([]string, len(old), len(old)+1)
		copy(updated, old)
		return append(updated, path), true
	})
	b.indexPathSymbol(path, sym)
}

func (b *Bucket) indexPathSymbol(path string, sym types.Symbol) {
	b.byPath.Compute(path, func(old []types.Symbol, _ bool) ([]types.Symbol, bool) {
		for _, s := range old {
			if s == sym {
				return old, true
			}
		}
		updated := make([]types.Symbol, len(old), len(old)+1)
		copy(updated, old)
		return append(updated, sym), true
	})
}

// ToplevelSymbols returns a snapshot of the indexed top-level symbols.
func (b *Bucket) ToplevelSymbols() []types.Symbol {
	return b.toplevels.Keys()
}

// Snapshot copies the candidate mapping, the basis for writing pre-built
// archive indexes.
func (b *Bucket) Snapshot() map[types.Symbol][]string {
	out := make(map[types.Symbol][]string)
	b.toplevels.Range(func(sym types.Symbol, paths []string) bool {
		copied := make([]string, len(paths))
		copy(copied, paths)
		out[sym] = copied
		return true
	})
	return out
}

// Stats returns a snapshot of the bucket's counters and sizes.
func (b *Bucket) Stats() Stats {
	return Stats{
		Dialect:         b.dialect.String(),
		TopLevelEntries: b.toplevels.Len(),
		Definitions:     b.definitions.Len(),
		ScannedFiles:    b.stats.scannedFiles.Load(),
		DeepScans:       b.stats.deepScans.Load(),
		Queries:         b.stats.queries.Load(),
		FallbackScans:   b.stats.fallbackScans.Load(),
		Invalidated:     b.stats.invalidated.Load(),
	}
}

// Query resolves a symbol to its definitions, trying strategies in order:
// stale-entry invalidation, direct hit, expansion of the recorded files of
// the symbol or its top-level owner, path guessing for unrecorded
// top-levels, companion mapping, and finally alternative symbols. The
// returned definitions preserve the originally queried symbol.
func (b *Bucket) Query(sym types.Symbol) []types.SymbolDefinition {
	if !sym.IsGlobal() || sym.IsPackage() {
		return nil
	}
	b.stats.queries.Add(1)
	visited := make(map[types.Symbol]struct{})
	return b.query(sym, sym, visited, 0)
}

func (b *Bucket) query(queried, sym types.Symbol, visited map[types.Symbol]struct{}, depth int) []types.SymbolDefinition {
	if depth > b.maxAltDepth {
		return nil
	}
	if _, seen := visited[sym]; seen {
		return nil
	}
	visited[sym] = struct{}{}

	b.invalidate(sym)
	owner := sym.TopLevelOwner()
	if owner != sym {
		b.invalidate(owner)
	}

	// Direct hit against the definition mapping.
	if defs := b.definitionsFor(queried, sym); defs != nil {
		return defs
	}

	// Expand the recorded files of the symbol or its top-level owner.
	expanded := b.expandRecorded(sym)
	if owner != sym && b.expandRecorded(owner) {
		expanded = true
	}
	if expanded {
		if defs := b.definitionsFor(queried, sym); defs != nil {
			return defs
		}
	}

	// A recorded top-level whose file a full scan could not pin down
	// (unreadable, or a prebuilt entry that no longer parses) still
	// answers with its range-less paths. A scan that succeeded without
	// finding the symbol disproves the entry instead, so only paths the
	// memo never admitted qualify.
	if sym.IsTopLevel() {
		if paths, ok := b.toplevels.Get(sym); ok {
			var unscanned []string
			for _, path := range paths {
				if _, scanned := b.deepScanned.Get(path); !scanned {
					unscanned = append(unscanned, path)
				}
			}
			if len(unscanned) > 0 {
				return b.bareLocations(queried, sym, unscanned)
			}
		}
	}

	// Path guessing for a top-level owner with no entry: the omitted
	// trivial symbols are recovered here.
	if _, known := b.toplevels.Get(owner); !known {
		if b.scanGuessedPaths(owner) {
			if defs := b.definitionsFor(queried, sym); defs != nil {
				return defs
			}
		}
	}

	// Companion mapping: the definition may sit in the companion's file.
	if comp := companionOf(sym); comp != "" {
		b.invalidate(comp)
		expanded := b.expandRecorded(comp)
		if compOwner := comp.TopLevelOwner(); compOwner != comp && b.expandRecorded(compOwner) {
			expanded = true
		}
		if expanded {
			if defs := b.definitionsFor(queried, sym); defs != nil {
				return defs
			}
		}
	}

	// Alternative symbols, recursively, bounded by depth and visited set.
	// Results of every productive alternative concatenate.
	if b.alternates != nil {
		var all []types.SymbolDefinition
		for _, alt := range b.alternates.AlternativesFor(sym) {
			all = append(all, b.query(queried, alt, visited, depth+1)...)
		}
		if len(all) > 0 {
			return all
		}
	}

	debug.LogQuery("no definitions for %s (as %s, depth %d)\n", queried, sym, depth)
	return nil
}

// definitionsFor snapshots the definition mapping for sym as query
// results attributed to the originally queried symbol.
func (b *Bucket) definitionsFor(queried, sym types.Symbol) []types.SymbolDefinition {
	locs, ok := b.definitions.Get(sym)
	if !ok || len(locs) == 0 {
		return nil
	}
	defs := make([]types.SymbolDefinition, 0, len(locs))
	for _, loc := range locs {
		var r *types.Range
		if loc.Range != nil {
			copied := *loc.Range
			r = &copied
		}
		defs = append(defs, types.SymbolDefinition{
			QueriedSymbol:  queried,
			ResolvedSymbol: sym,
			Path:           loc.Path,
			Dialect:        b.dialect,
			Range:          r,
		})
	}
	return defs
}

func (b *Bucket) bareLocations(queried, sym types.Symbol, paths []string) []types.SymbolDefinition {
	defs := make([]types.SymbolDefinition, 0, len(paths))
	for _, path := range paths {
		defs = append(defs, types.SymbolDefinition{
			QueriedSymbol:  queried,
			ResolvedSymbol: sym,
			Path:           path,
			Dialect:        b.dialect,
		})
	}
	return defs
}

// expandRecorded deep-scans the files recorded for sym in the candidate
// mapping, filling the definition mapping. It reports whether sym had an
// entry at all.
func (b *Bucket) expandRecorded(sym types.Symbol) bool {
	paths, ok := b.toplevels.Get(sym)
	if !ok {
		return false
	}
	for _, path := range paths {
		b.deepScan(path)
	}
	return true
}

// deepScan runs the full per-file scan once per content version; the
// content hash memo makes repeated expansion of the same file free.
func (b *Bucket) deepScan(path string) {
	content, err := b.cp.ReadFile(path)
	if err != nil {
		// Stale or unreadable; invalidation cleans the entry up.
		debug.LogIndexing("deep scan read %s: %v\n", path, err)
		return
	}
	sum := xxhash.Sum64(content)
	if prev, ok := b.deepScanned.Get(path); ok && prev == sum {
		return
	}

	doc, err := b.scanner.ScanAll(path, content, b.dialect)
	if err != nil {
		var ie *lsierrors.IndexingError
		if stderrors.As(err, &ie) && ie.IsRecoverable() {
			doc, err = b.scanner.ScanAll(path, content, b.dialect)
		}
		if err != nil {
			debug.LogIndexing("deep scan %s: %v\n", path, err)
			return
		}
	}
	b.stats.deepScans.Add(1)

	for _, occ := range doc.GlobalDefinitions() {
		r := occ.Range
		loc := types.SourceLocation{Path: path, Range: &r}
		b.definitions.Compute(occ.Symbol, func(old []types.SourceLocation, _ bool) ([]types.SourceLocation, bool) {
			for _, existing := range old {
				if existing.SameAs(loc) {
					return old, true
				}
			}
			updated := make([]types.SourceLocation, len(old), len(old)+1)
			copy(updated, old)
			return append(updated, loc), true
		})
		b.indexPathSymbol(path, occ.Symbol)
	}
	b.deepScanned.Compute(path, func(uint64, bool) (uint64, bool) { return sum, true })
}

// scanGuessedPaths derives candidate file paths from the identifier of an
// unrecorded top-level symbol, resolves them against every registered
// root, and indexes whatever exists. Reports whether any file was scanned.
func (b *Bucket) scanGuessedPaths(owner types.Symbol) bool {
	base := owner.TrivialPaths(b.guessExtensions()...)
	if len(base) == 0 {
		return false
	}
	guesses := base
	if b.namer != nil {
		for _, module := range b.namer.ModuleNamesFor(owner) {
			for _, guess := range base {
				guesses = append(guesses, module+"/"+guess)
			}
		}
	}

	scanned := false
	for _, guess := range guesses {
		for _, path := range b.cp.ResolveAll(guess) {
			content, err := b.cp.ReadFile(path)
			if err != nil {
				continue
			}
			b.stats.fallbackScans.Add(1)
			if _, err := b.AddFile(path, content); err != nil {
				debug.LogQuery("guessed path %s: %v\n", path, err)
				continue
			}
			b.deepScan(path)
			scanned = true
		}
	}
	return scanned
}

// guessExtensions returns the extensions used for path guessing: the
// dialect's canonical extension only, never script extensions. A file
// with another dialect's extension would be misparsed by this bucket's
// grammar anyway; covering every source extension is the coordinator's
// job, which queries one bucket per dialect.
func (b *Bucket) guessExtensions() []string {
	exts := b.dialect.Extensions()
	if len(exts) == 0 {
		return nil
	}
	return exts[:1]
}

// invalidate drops every entry backed by a file that no longer exists,
// checking the paths recorded for sym in both mappings. Removal purges
// the path across all symbols it contributed to.
func (b *Bucket) invalidate(sym types.Symbol) {
	seen := make(map[string]struct{})
	check := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		if !b.cp.Exists(path) {
			b.removePath(path)
		}
	}

	if paths, ok := b.toplevels.Get(sym); ok {
		for _, p := range paths {
			check(p)
		}
	}
	if locs, ok := b.definitions.Get(sym); ok {
		for _, loc := range locs {
			check(loc.Path)
		}
	}
}

// removePath erases one file's contribution from both mappings.
func (b *Bucket) removePath(path string) {
	syms, _ := b.byPath.Get(path)
	for _, sym := range syms {
		b.toplevels.Compute(sym, func(old []string, exists bool) ([]string, bool) {
			if !exists {
				return nil, false
			}
			kept := old[:0:0]
			for _, p := range old {
				if p != path {
					kept = append(kept, p)
				}
			}
			return kept, len(kept) > 0
		})
		b.definitions.Compute(sym, func(old []types.SourceLocation, exists bool) ([]types.SourceLocation, bool) {
			if !exists {
				return nil, false
			}
			kept := old[:0:0]
			for _, loc := range old {
				if loc.Path != path {
					kept = append(kept, loc)
				}
			}
			return kept, len(kept) > 0
		})
	}
	b.byPath.Delete(path)
	b.deepScanned.Delete(path)
	b.stats.invalidated.Add(1)
	debug.LogIndexing("invalidated %s\n", path)
}

// companionOf returns the companion sibling of a type or module symbol,
// or "" when the symbol has none.
func companionOf(sym types.Symbol) types.Symbol {
	if sym.IsType() {
		return sym.ToTerm()
	}
	if sym.IsTerm() && !sym.IsMethod() && !sym.IsPackage() {
		return sym.ToType()
	}
	return ""
}

// definedAtTrivialPath reports whether the file path already encodes the
// symbol per the file-name convention, making an index entry redundant.
// Jar entries compare by their in-archive name.
func definedAtTrivialPath(sym types.Symbol, path string) bool {
	entryPath := path
	if jar, entry := pathutil.SplitJar(path); jar != "" && entry != "" {
		entryPath = entry
	}
	slash := filepath.ToSlash(entryPath)
	for _, guess := range sym.TrivialPaths(types.SourceExtensions()...) {
		if slash == guess || strings.HasSuffix(slash, "/"+guess) {
			return true
		}
	}
	return false
}
