// Package enrich classifies resolved definitions. A SemanticContext, when
// available, supplies per-symbol flags from which the closed SymbolKind
// and secondary properties are derived; without one, classification falls
// back to the symbol's structure alone.
package enrich

import "github.com/standardbeagle/lsi/internal/types"

// SymbolFlags are the raw attributes a semantic source reports for one
// symbol. Several may be set at once; KindOf resolves the conflict with a
// fixed priority order.
type SymbolFlags uint32

const (
	FlagInterface SymbolFlags = 1 << iota
	FlagTrait
	FlagConstructor
	FlagPackageObject
	FlagClass
	FlagMacro
	FlagLocal
	FlagMethod
	FlagParameter
	FlagPackage
	FlagTypeParameter
	FlagType

	FlagAbstract
	FlagImplicit
	FlagCase
	FlagSynthetic
)

// SemanticContext supplies symbol flags from a semantic source, e.g.
// compiler-produced metadata. Implementations report ok=false for symbols
// they know nothing about.
type SemanticContext interface {
	FlagsFor(sym types.Symbol) (SymbolFlags, bool)
}

// kindChecklist fixes the resolution order: the first flag present wins.
var kindChecklist = []struct {
	flag SymbolFlags
	kind types.SymbolKind
}{
	{FlagInterface, types.KindInterface},
	{FlagTrait, types.KindTrait},
	{FlagConstructor, types.KindConstructor},
	{FlagPackageObject, types.KindPackageObject},
	{FlagClass, types.KindClass},
	{FlagMacro, types.KindMacro},
	{FlagLocal, types.KindLocal},
	{FlagMethod, types.KindMethod},
	{FlagParameter, types.KindParameter},
	{FlagPackage, types.KindPackage},
	{FlagTypeParameter, types.KindTypeParameter},
	{FlagType, types.KindType},
}

// KindOf resolves flags to the single kind, checking each candidate in
// fixed priority order.
func KindOf(flags SymbolFlags) types.SymbolKind {
	for _, entry := range kindChecklist {
		if flags&entry.flag != 0 {
			return entry.kind
		}
	}
	return types.KindUnknown
}

// PropertiesOf extracts the secondary attribute bitmask.
func PropertiesOf(flags SymbolFlags) types.SymbolProperties {
	var props types.SymbolProperties
	if flags&FlagAbstract != 0 {
		props |= types.PropertyAbstract
	}
	if flags&FlagImplicit != 0 {
		props |= types.PropertyImplicit
	}
	if flags&FlagCase != 0 {
		props |= types.PropertyCase
	}
	if flags&FlagSynthetic != 0 {
		props |= types.PropertySynthetic
	}
	return props
}

// ShapeKind classifies a symbol from its identifier structure alone, the
// fallback when no semantic source covers it.
func ShapeKind(sym types.Symbol) types.SymbolKind {
	switch {
	case sym.IsLocal():
		return types.KindLocal
	case sym.IsPackage():
		return types.KindPackage
	case sym.IsMethod():
		return types.KindMethod
	case sym.IsType():
		return types.KindType
	default:
		return types.KindUnknown
	}
}

// Decorate fills Kind and Properties on each definition, preferring the
// semantic context and degrading to shape-based classification. A nil
// context is allowed.
func Decorate(defs []types.SymbolDefinition, ctx SemanticContext) {
	for i := range defs {
		sym := defs[i].ResolvedSymbol
		if ctx != nil {
			if flags, ok := ctx.FlagsFor(sym); ok {
				defs[i].Kind = KindOf(flags)
				defs[i].Properties = PropertiesOf(flags)
				continue
			}
		}
		defs[i].Kind = ShapeKind(sym)
	}
}

// StaticContext is a map-backed SemanticContext, useful for embedding
// pre-computed metadata and for tests.
type StaticContext map[types.Symbol]SymbolFlags

// FlagsFor implements SemanticContext.
func (c StaticContext) FlagsFor(sym types.Symbol) (SymbolFlags, bool) {
	flags, ok := c[sym]
	return flags, ok
}
