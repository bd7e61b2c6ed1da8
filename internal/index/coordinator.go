package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lsi/internal/classpath"
	"github.com/standardbeagle/lsi/internal/debug"
	"github.com/standardbeagle/lsi/internal/types"
	"github.com/standardbeagle/lsi/internal/walker"
	"github.com/standardbeagle/lsi/pkg/pathutil"
)

// DefaultWorkers bounds the file-scanning parallelism of the add-source
// operations when no explicit worker count is configured.
const DefaultWorkers = 8

// Scanner extends SourceScanner with resource cleanup.
type Scanner interface {
	SourceScanner
	Close()
}

// Options configures an OnDemandIndex.
type Options struct {
	// Scanner is required; the coordinator owns it and closes it.
	Scanner Scanner
	// Alternatives drives the last query fallback. Nil disables it.
	Alternatives AlternativeGenerator
	// Overrides receives override edges per indexed file.
	Overrides OverrideConsumer
	// Walker filters directory walks; nil uses default filters.
	Walker *walker.Walker
	// Workers bounds scan parallelism; 0 means DefaultWorkers.
	Workers int
	// MaxAltDepth caps alternative recursion; 0 means DefaultMaxAltDepth.
	MaxAltDepth int
	// ModuleNameGuess enables the module-qualified path guess backed by
	// archive manifests.
	ModuleNameGuess bool
}

// OnDemandIndex is the coordinator over one classpath and per-dialect
// buckets. Source roots register with the classpath exactly once;
// indexing work is dispatched to the bucket of each file's dialect.
type OnDemandIndex struct {
	cp      *classpath.Classpath
	scanner Scanner
	walker  *walker.Walker
	workers int

	buckets map[types.Dialect]*Bucket
	order   []types.Dialect
}

// New creates an index with buckets for both dialects.
func New(opts Options) *OnDemandIndex {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	w := opts.Walker
	if w == nil {
		w = walker.New(walker.Options{})
	}

	cp := classpath.New()
	var namer classpath.ModuleNamer
	if opts.ModuleNameGuess {
		namer = classpath.NewManifestModuleNamer(cp)
	}

	ix := &OnDemandIndex{
		cp:      cp,
		scanner: opts.Scanner,
		walker:  w,
		workers: workers,
		buckets: make(map[types.Dialect]*Bucket),
		order:   []types.Dialect{types.DialectScala, types.DialectJava},
	}
	for _, d := range ix.order {
		ix.buckets[d] = NewBucket(d, cp, opts.Scanner, BucketOptions{
			Alternatives: opts.Alternatives,
			ModuleNamer:  namer,
			Overrides:    opts.Overrides,
			MaxAltDepth:  opts.MaxAltDepth,
		})
	}
	return ix
}

// Classpath exposes the shared source-root registry.
func (ix *OnDemandIndex) Classpath() *classpath.Classpath {
	return ix.cp
}

// Bucket returns the bucket of one dialect.
func (ix *OnDemandIndex) Bucket(d types.Dialect) *Bucket {
	return ix.buckets[d]
}

// AddSourceDirectory registers a directory root and eagerly indexes the
// top-level symbols of every source file under it. Re-adding a root is a
// no-op. Per-file failures skip the file, never the operation.
func (ix *OnDemandIndex) AddSourceDirectory(ctx context.Context, dir string) ([]types.IndexingResult, error) {
	if !ix.cp.AddEntry(dir) {
		return nil, nil
	}
	paths, err := ix.walker.Walk(dir)
	if err != nil {
		return nil, err
	}
	return ix.indexFiles(ctx, paths, func(path string) ([]byte, error) {
		return os.ReadFile(path)
	})
}

// AddSourceJar registers a source archive and eagerly indexes every
// source entry in it. A corrupted archive yields no results and no
// error; its root stays registered but serves nothing.
func (ix *OnDemandIndex) AddSourceJar(ctx context.Context, jar string) ([]types.IndexingResult, error) {
	jar = absPath(jar)
	if !ix.cp.AddEntry(jar) {
		return nil, nil
	}
	return ix.scanJarEntries(ctx, jar)
}

// AddIndexedSourceJar registers a source archive whose top-level mapping
// may be served by a pre-built sidecar file, skipping the eager scan.
// The archive is opened either way so that queries can read entries.
// Without a usable sidecar it degrades to a full scan.
func (ix *OnDemandIndex) AddIndexedSourceJar(ctx context.Context, jar string) ([]types.IndexingResult, error) {
	jar = absPath(jar)
	added := ix.cp.AddEntry(jar)
	if _, err := ix.cp.OpenJar(jar); err != nil {
		debug.LogArchive("indexed jar %s unusable: %v\n", jar, err)
		return nil, nil
	}
	if !added {
		return nil, nil
	}

	pre, err := LoadPrebuilt(jar + PrebuiltSuffix)
	if err != nil {
		debug.LogArchive("no prebuilt index for %s: %v\n", jar, err)
		return ix.scanJarEntries(ctx, jar)
	}
	for d, toplevels := range pre.SplitByDialect() {
		if bucket := ix.buckets[d]; bucket != nil {
			bucket.MergePrebuilt(jar, toplevels)
		}
	}
	return nil, nil
}

func (ix *OnDemandIndex) scanJarEntries(ctx context.Context, jar string) ([]types.IndexingResult, error) {
	entries, err := ix.cp.JarEntries(jar)
	if err != nil {
		debug.LogArchive("scanning %s: %v\n", jar, err)
		return nil, nil
	}
	var paths []string
	for _, entry := range entries {
		if types.IsSourcePath(entry) {
			paths = append(paths, pathutil.JoinJar(jar, entry))
		}
	}
	return ix.indexFiles(ctx, paths, ix.cp.ReadFile)
}

// indexFiles fans the eager scan out over a bounded worker group. Each
// file goes to the bucket of its dialect; read and scan failures are
// logged and skipped.
func (ix *OnDemandIndex) indexFiles(ctx context.Context, paths []string, read func(string) ([]byte, error)) ([]types.IndexingResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)

	var mu sync.Mutex
	var results []types.IndexingResult

	for _, path := range paths {
		path := path
		bucket := ix.buckets[types.DialectForPath(path)]
		if bucket == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := read(path)
			if err != nil {
				debug.LogIndexing("reading %s: %v\n", path, err)
				return nil
			}
			result, err := bucket.AddFile(path, content)
			if err != nil {
				debug.LogIndexing("indexing %s: %v\n", path, err)
				return nil
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Lookup parses a raw symbol and queries the dialect buckets in order.
// A malformed or local symbol yields empty results, not an error.
func (ix *OnDemandIndex) Lookup(raw string) []types.SymbolDefinition {
	sym, err := types.ParseSymbol(raw)
	if err != nil {
		debug.LogQuery("rejecting %q: %v\n", raw, err)
		return nil
	}
	return ix.Query(sym)
}

// Query resolves a parsed symbol across the dialect buckets, first match
// wins in dialect order.
func (ix *OnDemandIndex) Query(sym types.Symbol) []types.SymbolDefinition {
	if !sym.IsGlobal() || sym.IsPackage() {
		return nil
	}
	for _, d := range ix.order {
		if defs := ix.buckets[d].Query(sym); len(defs) > 0 {
			return defs
		}
	}
	return nil
}

// ToplevelSymbols returns a snapshot of all indexed top-level symbols
// across buckets, the candidate pool for suggestions.
func (ix *OnDemandIndex) ToplevelSymbols() []types.Symbol {
	var syms []types.Symbol
	for _, d := range ix.order {
		syms = append(syms, ix.buckets[d].ToplevelSymbols()...)
	}
	return syms
}

// Stats returns per-bucket snapshots followed by an aggregate.
func (ix *OnDemandIndex) Stats() []Stats {
	total := Stats{Dialect: "total"}
	out := make([]Stats, 0, len(ix.order)+1)
	for _, d := range ix.order {
		s := ix.buckets[d].Stats()
		total.merge(s)
		out = append(out, s)
	}
	return append(out, total)
}

// absPath keeps jar-entry paths keyed by the jar's absolute location so
// that snapshots and the classpath registry agree.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Close releases the scanner and every open archive handle.
func (ix *OnDemandIndex) Close() error {
	if ix.scanner != nil {
		ix.scanner.Close()
	}
	return ix.cp.Close()
}
