package index

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	lsierrors "github.com/standardbeagle/lsi/internal/errors"
	"github.com/standardbeagle/lsi/internal/types"
)

// PrebuiltSuffix names the sidecar index file of a source archive:
// "lib-sources.jar" is described by "lib-sources.jar.lsi.toml".
const PrebuiltSuffix = ".lsi.toml"

// prebuiltVersion is the only format version this build reads.
const prebuiltVersion = 1

// PrebuiltIndex is the serialized top-level candidate mapping of one
// source archive. Paths are entry names relative to the archive; ranges
// are never serialized, a query forces the full scan as usual.
type PrebuiltIndex struct {
	Version   int                 `toml:"version"`
	TopLevels map[string][]string `toml:"toplevels"`
}

// LoadPrebuilt reads and validates a sidecar index file.
func LoadPrebuilt(path string) (*PrebuiltIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lsierrors.NewFileError("read", path, err)
	}
	var idx PrebuiltIndex
	if err := toml.Unmarshal(data, &idx); err != nil {
		return nil, lsierrors.NewConfigError("prebuilt", path, err)
	}
	if idx.Version != prebuiltVersion {
		return nil, lsierrors.NewConfigError("prebuilt.version", path,
			fmt.Errorf("unsupported prebuilt index version %d", idx.Version))
	}
	return &idx, nil
}

// WritePrebuilt serializes a sidecar index file.
func WritePrebuilt(path string, idx *PrebuiltIndex) error {
	idx.Version = prebuiltVersion
	data, err := toml.Marshal(idx)
	if err != nil {
		return lsierrors.NewConfigError("prebuilt", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return lsierrors.NewFileError("write", path, err)
	}
	return nil
}

// SplitByDialect partitions the serialized entries into per-dialect
// symbol maps, keyed by the dialect of each entry's extension. Malformed
// symbols are dropped.
func (p *PrebuiltIndex) SplitByDialect() map[types.Dialect]map[types.Symbol][]string {
	out := make(map[types.Dialect]map[types.Symbol][]string)
	for raw, entries := range p.TopLevels {
		sym, err := types.ParseSymbol(raw)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			d := types.DialectForPath(entry)
			if d == types.DialectUnknown {
				continue
			}
			m := out[d]
			if m == nil {
				m = make(map[types.Symbol][]string)
				out[d] = m
			}
			m[sym] = append(m[sym], entry)
		}
	}
	return out
}
