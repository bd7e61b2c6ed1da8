package classpath

import (
	"bufio"
	"strings"
	"sync"

	"github.com/standardbeagle/lsi/internal/debug"
	"github.com/standardbeagle/lsi/internal/types"
)

// manifestPath is where jar archives declare their module identity.
const manifestPath = "META-INF/MANIFEST.MF"

// ModuleNamer is the optional capability behind the module-qualified path
// guess: given a top-level symbol, it suggests the names of modules whose
// source archives nest files under a module directory (the JDK src.zip
// layout, "java.base/java/lang/String.java"). An unavailable or
// unsuccessful namer returns no candidates; other fallbacks are
// unaffected.
type ModuleNamer interface {
	ModuleNamesFor(sym types.Symbol) []string
}

// ManifestModuleNamer derives module names from the Automatic-Module-Name
// manifest attribute of registered jar archives. Results are cached per
// archive; archives without the attribute contribute nothing.
type ManifestModuleNamer struct {
	cp *Classpath

	mu    sync.Mutex
	cache map[string]string
}

// NewManifestModuleNamer creates a namer over the given classpath.
func NewManifestModuleNamer(cp *Classpath) *ManifestModuleNamer {
	return &ManifestModuleNamer{cp: cp, cache: make(map[string]string)}
}

// ModuleNamesFor returns the distinct module names declared by registered
// archives. The symbol itself does not narrow the candidates; existence
// checks on the guessed paths do.
func (m *ManifestModuleNamer) ModuleNamesFor(sym types.Symbol) []string {
	if !sym.IsGlobal() {
		return nil
	}

	var names []string
	seen := make(map[string]struct{})
	for _, root := range m.cp.Roots() {
		if !IsJarRoot(root) {
			continue
		}
		name := m.moduleNameOf(root)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func (m *ManifestModuleNamer) moduleNameOf(jarPath string) string {
	m.mu.Lock()
	if name, ok := m.cache[jarPath]; ok {
		m.mu.Unlock()
		return name
	}
	m.mu.Unlock()

	name := m.readManifestModuleName(jarPath)

	m.mu.Lock()
	m.cache[jarPath] = name
	m.mu.Unlock()
	return name
}

func (m *ManifestModuleNamer) readManifestModuleName(jarPath string) string {
	rc, err := m.cp.OpenJar(jarPath)
	if err != nil {
		return ""
	}
	f, err := rc.Open(manifestPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "Automatic-Module-Name:"); ok {
			name := strings.TrimSpace(value)
			debug.LogArchive("module name %q from %s\n", name, jarPath)
			return name
		}
	}
	return ""
}
