// Package alternatives produces symbol identifiers plausibly related to a
// queried symbol: companions, synthetic accessors and case-class-generated
// members whose definitions live under a different identifier. The index
// engine consumes the Generator interface during its last query fallback.
package alternatives

import (
	"strings"

	"github.com/standardbeagle/lsi/internal/types"
)

// Generator supplies alternative identifiers for a symbol. Generators
// must be finite and must never echo their input; the engine additionally
// guards recursion with a visited set and a depth cap.
type Generator interface {
	AlternativesFor(sym types.Symbol) []types.Symbol
}

// syntheticNames are members generated by the compiler whose definition
// site is the enclosing template.
var syntheticNames = map[string]struct{}{
	"apply":   {},
	"unapply": {},
	"copy":    {},
	"<init>":  {},
}

// TextualGenerator derives alternatives from the identifier's structure
// alone, without a semantic context.
type TextualGenerator struct{}

// NewTextualGenerator creates the default generator.
func NewTextualGenerator() *TextualGenerator {
	return &TextualGenerator{}
}

// AlternativesFor returns the companion sibling, the accessor target of a
// setter, the owner of a synthetic member, and the companion-owner variant
// of a member symbol.
func (g *TextualGenerator) AlternativesFor(sym types.Symbol) []types.Symbol {
	if !sym.IsGlobal() || sym.IsPackage() {
		return nil
	}

	var alts []types.Symbol
	seen := map[types.Symbol]struct{}{sym: {}}
	add := func(alt types.Symbol) {
		if alt == "" || alt == sym {
			return
		}
		if _, dup := seen[alt]; dup {
			return
		}
		seen[alt] = struct{}{}
		alts = append(alts, alt)
	}

	// Companion sibling of the symbol itself.
	if sym.IsType() {
		add(sym.ToTerm())
	} else if sym.IsTerm() && !sym.IsMethod() {
		add(sym.ToType())
	}

	owner := sym.Owner()
	name := sym.DisplayName()

	// Setter "x_=" resolves at its accessor "x".
	if trimmed, ok := strings.CutSuffix(name, "_="); ok {
		add(types.SymbolFromParts(string(owner), trimmed, "."))
	}

	// Synthetic members resolve at the enclosing template.
	if _, synthetic := syntheticNames[name]; synthetic && owner != types.RootSymbol {
		add(owner)
		add(owner.ToType())
		add(owner.ToTerm())
	}

	// A member of a module may be declared on the companion class and
	// vice versa.
	if owner != types.RootSymbol && !owner.IsPackage() {
		terminal := string(sym[len(owner):])
		if owner.IsType() {
			add(types.Symbol(string(owner.ToTerm()) + terminal))
		} else if owner.IsTerm() && !owner.IsMethod() {
			add(types.Symbol(string(owner.ToType()) + terminal))
		}
	}

	return alts
}
