package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/lsi/internal/types"
)

func TestKindOfPriority(t *testing.T) {
	tests := []struct {
		name  string
		flags SymbolFlags
		want  types.SymbolKind
	}{
		{"interface beats class", FlagInterface | FlagClass, types.KindInterface},
		{"trait beats type", FlagTrait | FlagType, types.KindTrait},
		{"constructor beats method", FlagConstructor | FlagMethod, types.KindConstructor},
		{"package object beats package", FlagPackageObject | FlagPackage, types.KindPackageObject},
		{"local beats method", FlagLocal | FlagMethod, types.KindLocal},
		{"type alone", FlagType, types.KindType},
		{"nothing", 0, types.KindUnknown},
		{"properties only", FlagImplicit | FlagCase, types.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.flags))
		})
	}
}

func TestPropertiesOf(t *testing.T) {
	props := PropertiesOf(FlagClass | FlagCase | FlagAbstract)
	assert.NotZero(t, props&types.PropertyCase)
	assert.NotZero(t, props&types.PropertyAbstract)
	assert.Zero(t, props&types.PropertyImplicit)
}

func TestShapeKind(t *testing.T) {
	assert.Equal(t, types.KindMethod, ShapeKind("a/b/Foo#bar()."))
	assert.Equal(t, types.KindType, ShapeKind("a/b/Foo#"))
	assert.Equal(t, types.KindPackage, ShapeKind("a/b/"))
	assert.Equal(t, types.KindLocal, ShapeKind("local4"))
	assert.Equal(t, types.KindUnknown, ShapeKind("a/b/Foo."))
}

func TestDecorate(t *testing.T) {
	ctx := StaticContext{
		"a/b/Foo#": FlagTrait | FlagSynthetic,
	}
	defs := []types.SymbolDefinition{
		{ResolvedSymbol: "a/b/Foo#"},
		{ResolvedSymbol: "a/b/Foo#bar()."},
	}
	Decorate(defs, ctx)

	assert.Equal(t, types.KindTrait, defs[0].Kind)
	assert.NotZero(t, defs[0].Properties&types.PropertySynthetic)
	// Uncovered symbols degrade to shape classification.
	assert.Equal(t, types.KindMethod, defs[1].Kind)

	Decorate(defs, nil)
	assert.Equal(t, types.KindType, defs[0].Kind)
}
