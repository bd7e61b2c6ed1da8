package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("class X\n"), 0o644))
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalkDefaults(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a/b/Foo.scala")
	touch(t, dir, "a/b/Bar.java")
	touch(t, dir, "build.sbt")
	touch(t, dir, "notes.txt")
	touch(t, dir, "target/Generated.scala")
	touch(t, dir, ".git/Hook.scala")

	files, err := New(Options{}).Walk(dir)
	require.NoError(t, err)

	got := relAll(t, dir, files)
	assert.ElementsMatch(t, []string{"a/b/Foo.scala", "a/b/Bar.java", "build.sbt"}, got)
}

func TestWalkIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main/Foo.scala")
	touch(t, dir, "main/Bar.java")
	touch(t, dir, "gen/Baz.scala")

	w := New(Options{
		Includes: []string{"**/*.scala"},
		Excludes: []string{"gen/**"},
	})
	files, err := w.Walk(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"main/Foo.scala"}, relAll(t, dir, files))
}

func TestWalkMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Small.scala")
	big := filepath.Join(dir, "Big.scala")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0o644))

	files, err := New(Options{MaxFileSize: 1024}).Walk(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Small.scala"}, relAll(t, dir, files))
}
