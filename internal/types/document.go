package types

// OccurrenceRole distinguishes definitions from references in a scanned
// document.
type OccurrenceRole int

const (
	RoleReference OccurrenceRole = iota
	RoleDefinition
)

// SymbolOccurrence is one appearance of a symbol in a source file.
type SymbolOccurrence struct {
	Symbol Symbol
	Role   OccurrenceRole
	Range  Range
}

// IsDefinition reports whether the occurrence defines its symbol.
func (o SymbolOccurrence) IsDefinition() bool {
	return o.Role == RoleDefinition
}

// TextDocument is the result of fully scanning one source file: every
// symbol occurrence, global and local, with ranges.
type TextDocument struct {
	Path        string
	Dialect     Dialect
	Occurrences []SymbolOccurrence
}

// GlobalDefinitions returns the occurrences that define global symbols,
// the only ones the definition mapping stores.
func (d *TextDocument) GlobalDefinitions() []SymbolOccurrence {
	var defs []SymbolOccurrence
	for _, occ := range d.Occurrences {
		if occ.IsDefinition() && occ.Symbol.IsGlobal() {
			defs = append(defs, occ)
		}
	}
	return defs
}

// OverrideEdge records that Symbol overrides Overrides. Edges are passed
// through to a consumer during indexing and never stored by the engine.
type OverrideEdge struct {
	Symbol    Symbol
	Overrides Symbol
}

// IndexingResult is produced per scanned file by the add-source
// operations.
type IndexingResult struct {
	Path            string
	TopLevelSymbols []Symbol
	Overrides       []OverrideEdge
}

// SymbolKind is the closed classification produced by the enrichment
// layer, resolved by a fixed-priority flag checklist.
type SymbolKind int

const (
	KindUnknown SymbolKind = iota
	KindInterface
	KindTrait
	KindConstructor
	KindPackageObject
	KindClass
	KindMacro
	KindLocal
	KindMethod
	KindParameter
	KindPackage
	KindTypeParameter
	KindType
)

// String returns the lower-case kind name.
func (k SymbolKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindConstructor:
		return "constructor"
	case KindPackageObject:
		return "package object"
	case KindClass:
		return "class"
	case KindMacro:
		return "macro"
	case KindLocal:
		return "local"
	case KindMethod:
		return "method"
	case KindParameter:
		return "parameter"
	case KindPackage:
		return "package"
	case KindTypeParameter:
		return "type parameter"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// SymbolProperties is a bitmask of secondary attributes attached to a
// resolved definition.
type SymbolProperties uint32

const (
	PropertyAbstract SymbolProperties = 1 << iota
	PropertyImplicit
	PropertyCase
	PropertySynthetic
)

// SymbolDefinition is one resolved definition returned by a query. The
// originally queried symbol is preserved even when the definition was
// found through an alternative symbol.
type SymbolDefinition struct {
	QueriedSymbol  Symbol           `json:"queriedSymbol"`
	ResolvedSymbol Symbol           `json:"resolvedSymbol"`
	Path           string           `json:"path"`
	Dialect        Dialect          `json:"dialect"`
	Range          *Range           `json:"range,omitempty"`
	Kind           SymbolKind       `json:"kind,omitempty"`
	Properties     SymbolProperties `json:"properties,omitempty"`
}
