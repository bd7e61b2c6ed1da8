package types

import (
	"fmt"
	"strings"
)

// Symbol is a globally-qualified symbol identifier in SemanticDB-style
// encoding. Package segments end with '/', type descriptors with '#',
// term descriptors with '.', and method descriptors with "().".
//
// Examples:
//   - "a/b/"          package a.b
//   - "a/b/Foo#"      class/trait a.b.Foo
//   - "a/b/Foo."      object a.b.Foo (companion module)
//   - "a/b/Foo#bar()." method bar on class a.b.Foo
//
// Symbols are immutable value types and structurally comparable as strings.
type Symbol string

// RootSymbol is the root package symbol.
const RootSymbol Symbol = "_root_/"

// localPrefix marks local (non-global) symbols, which have no stable
// cross-file identity and are never indexed.
const localPrefix = "local"

// IsLocal reports whether the symbol identifies a local definition.
func (s Symbol) IsLocal() bool {
	return strings.HasPrefix(string(s), localPrefix)
}

// IsGlobal reports whether the symbol has a stable, cross-file identity.
func (s Symbol) IsGlobal() bool {
	return s != "" && !s.IsLocal()
}

// IsPackage reports whether the symbol denotes a package.
func (s Symbol) IsPackage() bool {
	return len(s) > 0 && s[len(s)-1] == '/'
}

// IsType reports whether the symbol denotes a type (class, trait, interface).
func (s Symbol) IsType() bool {
	return len(s) > 0 && s[len(s)-1] == '#'
}

// IsTerm reports whether the symbol denotes a term (object, val, method).
func (s Symbol) IsTerm() bool {
	return len(s) > 0 && s[len(s)-1] == '.'
}

// IsMethod reports whether the symbol denotes a method or constructor.
func (s Symbol) IsMethod() bool {
	return strings.HasSuffix(string(s), ").")
}

// ToType converts a term-flavored symbol to its type-flavored (class)
// sibling: "a/b/Foo." becomes "a/b/Foo#". Non-term symbols are returned
// unchanged.
func (s Symbol) ToType() Symbol {
	if s.IsTerm() && !s.IsMethod() {
		return s[:len(s)-1] + "#"
	}
	return s
}

// ToTerm converts a type-flavored symbol to its term-flavored (companion
// module) sibling: "a/b/Foo#" becomes "a/b/Foo.". Non-type symbols are
// returned unchanged.
func (s Symbol) ToTerm() Symbol {
	if s.IsType() {
		return s[:len(s)-1] + "."
	}
	return s
}

// packageEnd returns the index just past the last package separator,
// honoring backtick-quoted name segments.
func (s Symbol) packageEnd() int {
	end := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`':
			inQuote = !inQuote
		case '/':
			if !inQuote {
				end = i + 1
			}
		}
	}
	return end
}

// TopLevelOwner returns the outermost class or module container of the
// symbol, the unit the top-level candidate mapping is keyed by. For
// "a/b/Foo#bar()." it returns "a/b/Foo#". Package symbols are their own
// top-level owner.
func (s Symbol) TopLevelOwner() Symbol {
	str := string(s)
	start := s.packageEnd()
	inQuote := false
	for i := start; i < len(str); i++ {
		switch str[i] {
		case '`':
			inQuote = !inQuote
		case '#', '.':
			if !inQuote {
				return Symbol(str[:i+1])
			}
		case '(', '[':
			if !inQuote {
				// A parameter or type-parameter descriptor before any
				// class/module marker: close it and take the trailing '.'.
				if j := strings.IndexAny(str[i:], ")]"); j >= 0 && i+j+1 < len(str) {
					return Symbol(str[:i+j+2])
				}
				return s
			}
		}
	}
	return s
}

// IsTopLevel reports whether the symbol is its own top-level owner and not
// a package.
func (s Symbol) IsTopLevel() bool {
	return !s.IsPackage() && s.TopLevelOwner() == s
}

// Owner returns the directly enclosing symbol, or RootSymbol when the
// symbol is a top-level package.
func (s Symbol) Owner() Symbol {
	str := string(s)
	if len(str) == 0 {
		return RootSymbol
	}
	// Drop the terminal descriptor, then back up to the previous boundary.
	end := len(str) - 1
	if str[end] == '.' && end > 0 && str[end-1] == ')' {
		if i := strings.LastIndexByte(str[:end], '('); i >= 0 {
			end = i
		}
	}
	inQuote := false
	last := -1
	for i := 0; i < end; i++ {
		switch str[i] {
		case '`':
			inQuote = !inQuote
		case '/', '#', '.':
			if !inQuote {
				last = i
			}
		}
	}
	if last < 0 {
		return RootSymbol
	}
	return Symbol(str[:last+1])
}

// DisplayName returns the unqualified name of the symbol without
// descriptors or backticks: "a/b/Foo#bar()." yields "bar".
func (s Symbol) DisplayName() string {
	str := string(s.TrimOwner())
	str = strings.TrimSuffix(str, ".")
	str = strings.TrimSuffix(str, "()")
	str = strings.TrimSuffix(str, "#")
	str = strings.TrimSuffix(str, "/")
	return strings.Trim(str, "`")
}

// TrimOwner returns the terminal descriptor of the symbol.
func (s Symbol) TrimOwner() Symbol {
	owner := s.Owner()
	if owner == RootSymbol && !strings.HasPrefix(string(s), string(RootSymbol)) {
		return s
	}
	return s[len(owner):]
}

// TrivialPaths returns the mechanical file-name guesses for a top-level
// symbol, one per source extension: "a/b/Foo#" with ".scala" yields
// "a/b/Foo.scala". It returns nil for symbols whose defining file cannot
// be derived from the identifier alone (nested, package, or quoted names).
func (s Symbol) TrivialPaths(exts ...string) []string {
	if !s.IsGlobal() || s.IsPackage() || !s.IsTopLevel() {
		return nil
	}
	base := string(s[:len(s)-1])
	if strings.ContainsRune(base, '`') {
		return nil
	}
	paths := make([]string, 0, len(exts))
	for _, ext := range exts {
		paths = append(paths, base+ext)
	}
	return paths
}

// ParseSymbol validates a raw symbol string and returns it as a Symbol.
// Local symbols are accepted as-is. A global symbol must consist of
// non-empty name segments, balanced backticks, and a terminal descriptor
// marker ('/', '#' or '.').
func ParseSymbol(raw string) (Symbol, error) {
	if raw == "" {
		return "", fmt.Errorf("empty symbol")
	}
	if strings.HasPrefix(raw, localPrefix) {
		return Symbol(raw), nil
	}
	switch raw[len(raw)-1] {
	case '/', '#', '.':
	default:
		return "", fmt.Errorf("symbol %q has no terminal descriptor", raw)
	}
	inQuote := false
	segStart := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '`':
			inQuote = !inQuote
		case '/', '#':
			if inQuote {
				continue
			}
			if i == segStart {
				return "", fmt.Errorf("symbol %q has an empty name segment", raw)
			}
			segStart = i + 1
		case '.':
			if inQuote {
				continue
			}
			if i == segStart && !(i >= 2 && raw[i-1] == ')') {
				return "", fmt.Errorf("symbol %q has an empty name segment", raw)
			}
			segStart = i + 1
		}
	}
	if inQuote {
		return "", fmt.Errorf("symbol %q has unbalanced backticks", raw)
	}
	return Symbol(raw), nil
}

// SymbolFromParts builds a global symbol from a package path and a name
// with the given descriptor suffix, quoting the name when it contains
// characters that would be ambiguous in the encoding.
func SymbolFromParts(pkg string, name string, descriptor string) Symbol {
	if strings.ContainsAny(name, "/#.()[]") {
		name = "`" + name + "`"
	}
	return Symbol(pkg + name + descriptor)
}
