package index

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/lsi/internal/alternatives"
	"github.com/standardbeagle/lsi/internal/scanner"
	"github.com/standardbeagle/lsi/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestIndex(t *testing.T) *OnDemandIndex {
	t.Helper()
	ix := New(Options{
		Scanner:      scanner.New(),
		Alternatives: alternatives.NewTextualGenerator(),
	})
	t.Cleanup(func() {
		require.NoError(t, ix.Close())
	})
	return ix
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestAddSourceDirectoryIdempotent(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nobject Helper\n")

	first, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, first, 1)

	again, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, again, "re-adding a root must not rescan")
	assert.Equal(t, int64(1), ix.Bucket(types.DialectScala).Stats().ScannedFiles)
}

func TestTrivialSymbolRecoveredByPathGuess(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Foo.scala", "package a.b\nclass Foo\nclass Extra\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	// The conventionally-named class needs no entry; the extra one does.
	toplevels := ix.Bucket(types.DialectScala).ToplevelSymbols()
	assert.NotContains(t, toplevels, types.Symbol("a/b/Foo#"))
	assert.Contains(t, toplevels, types.Symbol("a/b/Extra#"))

	defs := ix.Lookup("a/b/Foo#")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.Symbol("a/b/Foo#"), defs[0].ResolvedSymbol)
	assert.Equal(t, filepath.Join(dir, "a", "b", "Foo.scala"), defs[0].Path)
	require.NotNil(t, defs[0].Range)
}

func TestTrivialJavaSymbolRecoveredAcrossBuckets(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Foo.java", "package a.b;\npublic class Foo {}\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.NotContains(t, ix.Bucket(types.DialectJava).ToplevelSymbols(), types.Symbol("a/b/Foo#"))

	// Each bucket guesses its own extension; the coordinator's fan-out
	// covers both, so the miss in the first bucket falls through here.
	defs := ix.Lookup("a/b/Foo#")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.DialectJava, defs[0].Dialect)
	assert.Equal(t, filepath.Join(dir, "a", "b", "Foo.java"), defs[0].Path)
}

func TestScriptSymbolsAlwaysIndexed(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Foo.sc", "package a.b\nclass Foo\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	// Script files do not follow the file-name convention.
	assert.Contains(t, ix.Bucket(types.DialectScala).ToplevelSymbols(), types.Symbol("a/b/Foo#"))
}

func TestQueryMemberViaToplevelExpansion(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", `package a.b

class Widget {
  def render(): Unit = ()
}
`)
	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	defs := ix.Lookup("a/b/Widget#render().")
	require.Len(t, defs, 1)
	assert.Equal(t, types.Symbol("a/b/Widget#render()."), defs[0].ResolvedSymbol)
	require.NotNil(t, defs[0].Range)
	assert.Equal(t, 3, defs[0].Range.StartLine)
}

func TestQueryDoesNotRescanOnRepeat(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nclass Widget\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	require.NotEmpty(t, ix.Lookup("a/b/Widget#"))
	scans := ix.Bucket(types.DialectScala).Stats().DeepScans

	require.NotEmpty(t, ix.Lookup("a/b/Widget#"))
	assert.Equal(t, scans, ix.Bucket(types.DialectScala).Stats().DeepScans,
		"a direct hit must not rescan")
}

func TestCompanionResolution(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nobject Registry\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	// Only the module exists; the class-flavored query resolves to it.
	defs := ix.Lookup("a/b/Registry#")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.Symbol("a/b/Registry#"), defs[0].QueriedSymbol)
	assert.Equal(t, types.Symbol("a/b/Registry."), defs[0].ResolvedSymbol)
}

func TestSyntheticMemberResolution(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nclass Token\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	defs := ix.Lookup("a/b/Token.apply().")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.Symbol("a/b/Token.apply()."), defs[0].QueriedSymbol)
	assert.Equal(t, types.Symbol("a/b/Token#"), defs[0].ResolvedSymbol)
}

func TestInvalidationRemovesDeletedFile(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nobject Gone\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, ix.Lookup("a/b/Gone."))

	require.NoError(t, os.Remove(path))

	assert.Empty(t, ix.Lookup("a/b/Gone."))
	assert.NotContains(t, ix.Bucket(types.DialectScala).ToplevelSymbols(), types.Symbol("a/b/Gone."))
}

func TestStaleToplevelEntryYieldsNothing(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nclass Foo\nclass Extra\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Contains(t, ix.Bucket(types.DialectScala).ToplevelSymbols(), types.Symbol("a/b/Extra#"))

	// The file still exists but no longer defines the symbol; the scan
	// disproves the stale entry rather than answering from it.
	require.NoError(t, os.WriteFile(path, []byte("package a.b\nclass Foo\n"), 0o644))

	assert.Empty(t, ix.Lookup("a/b/Extra#"))
}

func TestUnknownSymbolTerminates(t *testing.T) {
	ix := newTestIndex(t)
	assert.Empty(t, ix.Lookup("no/such/Thing#member()."))
}

func TestMalformedAndLocalSymbols(t *testing.T) {
	ix := newTestIndex(t)
	assert.Empty(t, ix.Lookup("not a symbol"))
	assert.Empty(t, ix.Lookup("a//Foo#"))
	assert.Empty(t, ix.Lookup("local12"))
	assert.Empty(t, ix.Lookup("a/b/"))
}

func TestAddSourceJar(t *testing.T) {
	ix := newTestIndex(t)
	jar := filepath.Join(t.TempDir(), "lib-sources.jar")
	writeJar(t, jar, map[string]string{
		"a/b/Stuff.scala": "package a.b\nclass Engine\n",
	})

	results, err := ix.AddSourceJar(context.Background(), jar)
	require.NoError(t, err)
	require.Len(t, results, 1)

	defs := ix.Lookup("a/b/Engine#")
	require.NotEmpty(t, defs)
	assert.Contains(t, defs[0].Path, "!/a/b/Stuff.scala")
}

func TestAddSourceJarCorrupt(t *testing.T) {
	ix := newTestIndex(t)
	jar := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(jar, []byte("not a zip"), 0o644))

	// A corrupted archive yields nothing, never an error.
	results, err := ix.AddSourceJar(context.Background(), jar)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddIndexedSourceJar(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib-sources.jar")
	writeJar(t, jar, map[string]string{
		"a/b/Stuff.scala": "package a.b\nclass Engine\n",
	})
	require.NoError(t, WritePrebuilt(jar+PrebuiltSuffix, &PrebuiltIndex{
		TopLevels: map[string][]string{
			"a/b/Engine#": {"a/b/Stuff.scala"},
		},
	}))

	_, err := ix.AddIndexedSourceJar(context.Background(), jar)
	require.NoError(t, err)

	// The sidecar replaces the eager scan entirely.
	assert.Zero(t, ix.Bucket(types.DialectScala).Stats().ScannedFiles)
	assert.Contains(t, ix.Bucket(types.DialectScala).ToplevelSymbols(), types.Symbol("a/b/Engine#"))

	// A query still reaches the real entry for ranges.
	defs := ix.Lookup("a/b/Engine#")
	require.NotEmpty(t, defs)
	assert.Contains(t, defs[0].Path, "!/a/b/Stuff.scala")
	require.NotNil(t, defs[0].Range)
}

func TestModuleQualifiedPathGuess(t *testing.T) {
	ix := New(Options{
		Scanner:         scanner.New(),
		Alternatives:    alternatives.NewTextualGenerator(),
		ModuleNameGuess: true,
	})
	defer func() { require.NoError(t, ix.Close()) }()

	jar := filepath.Join(t.TempDir(), "lib-sources.jar")
	writeJar(t, jar, map[string]string{
		"META-INF/MANIFEST.MF":       "Manifest-Version: 1.0\r\nAutomatic-Module-Name: com.example.lib\r\n",
		"com.example.lib/a/Foo.java": "package a;\npublic class Foo {}\n",
	})

	_, err := ix.AddSourceJar(context.Background(), jar)
	require.NoError(t, err)

	// Once the module segment is stripped, the entry follows the
	// file-name convention, so it never gets an entry of its own.
	assert.NotContains(t, ix.Bucket(types.DialectJava).ToplevelSymbols(), types.Symbol("a/Foo#"))

	// Only the manifest-derived module prefix reaches the nested entry.
	defs := ix.Lookup("a/Foo#")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.Symbol("a/Foo#"), defs[0].ResolvedSymbol)
	assert.Contains(t, defs[0].Path, "!/com.example.lib/a/Foo.java")
	require.NotNil(t, defs[0].Range)
}

func TestPrebuiltRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jar"+PrebuiltSuffix)
	in := &PrebuiltIndex{
		TopLevels: map[string][]string{
			"a/b/Engine#": {"a/b/Stuff.scala"},
			"a/b/Util.":   {"a/b/Stuff.scala", "a/b/More.java"},
			"bogus":       {"a/b/Stuff.scala"},
		},
	}
	require.NoError(t, WritePrebuilt(path, in))

	out, err := LoadPrebuilt(path)
	require.NoError(t, err)
	assert.Equal(t, in.TopLevels, out.TopLevels)

	split := out.SplitByDialect()
	assert.Contains(t, split[types.DialectScala], types.Symbol("a/b/Engine#"))
	assert.Contains(t, split[types.DialectJava], types.Symbol("a/b/Util."))
	// Malformed symbols never survive the split.
	assert.NotContains(t, split[types.DialectScala], types.Symbol("bogus"))
}

func TestJavaQuery(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.java", `package a.b;

public class Machine {
  void run() {}
}
`)
	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	defs := ix.Lookup("a/b/Machine#run().")
	require.Len(t, defs, 1)
	assert.Equal(t, types.DialectJava, defs[0].Dialect)
}

func TestOverridePassThrough(t *testing.T) {
	var mu sync.Mutex
	var got []types.OverrideEdge

	ix := New(Options{
		Scanner: scanner.New(),
		Overrides: func(_ string, edges []types.OverrideEdge) {
			mu.Lock()
			got = append(got, edges...)
			mu.Unlock()
		},
	})
	defer func() { require.NoError(t, ix.Close()) }()

	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", `package a.b

class Base {
  def run(): Unit = ()
}

class Child extends Base {
  override def run(): Unit = ()
}
`)
	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, types.Symbol("a/b/Child#run()."), got[0].Symbol)
	assert.Equal(t, types.Symbol("a/b/Base#run()."), got[0].Overrides)
}

func TestConcurrentAddAndQuery(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/Stuff.scala", "package a.b\nobject Shared\nclass Shared\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ix.AddSourceDirectory(context.Background(), dir)
			assert.NoError(t, err)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			ix.Lookup("a/b/Shared.")
		}()
	}
	wg.Wait()

	// Exactly one of the racing adds scanned the root.
	assert.Equal(t, int64(1), ix.Bucket(types.DialectScala).Stats().ScannedFiles)

	defs := ix.Lookup("a/b/Shared.")
	require.NotEmpty(t, defs)
	assert.Equal(t, types.Symbol("a/b/Shared."), defs[0].ResolvedSymbol)
}

func TestStatsAggregate(t *testing.T) {
	ix := newTestIndex(t)
	dir := t.TempDir()
	writeSource(t, dir, "a/b/One.scala", "package a.b\nclass One\nclass Other\n")
	writeSource(t, dir, "a/b/Two.java", "package a.b;\nclass Helper {}\n")

	_, err := ix.AddSourceDirectory(context.Background(), dir)
	require.NoError(t, err)

	stats := ix.Stats()
	require.Len(t, stats, 3)
	total := stats[len(stats)-1]
	assert.Equal(t, "total", total.Dialect)
	assert.Equal(t, int64(2), total.ScannedFiles)
	assert.GreaterOrEqual(t, total.TopLevelEntries, 2)
}
