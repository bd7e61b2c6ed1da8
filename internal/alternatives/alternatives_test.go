package alternatives

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/lsi/internal/types"
)

func TestAlternativesCompanions(t *testing.T) {
	g := NewTextualGenerator()

	assert.Contains(t, g.AlternativesFor("a/b/Foo#"), types.Symbol("a/b/Foo."))
	assert.Contains(t, g.AlternativesFor("a/b/Foo."), types.Symbol("a/b/Foo#"))
}

func TestAlternativesSetter(t *testing.T) {
	g := NewTextualGenerator()

	alts := g.AlternativesFor("a/b/Foo#`x_=`.")
	assert.Contains(t, alts, types.Symbol("a/b/Foo#x."))
}

func TestAlternativesSynthetic(t *testing.T) {
	g := NewTextualGenerator()

	tests := []struct {
		name string
		sym  types.Symbol
		want types.Symbol
	}{
		{"apply resolves at companion class", "a/b/Foo.apply().", "a/b/Foo#"},
		{"copy resolves at enclosing class", "a/b/Foo#copy().", "a/b/Foo#"},
		{"constructor resolves at enclosing class", "a/b/Foo#`<init>`().", "a/b/Foo#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, g.AlternativesFor(tt.sym), tt.want)
		})
	}
}

func TestAlternativesCompanionOwner(t *testing.T) {
	g := NewTextualGenerator()

	// A member queried on the module may live on the class, and the other
	// way round.
	assert.Contains(t, g.AlternativesFor("a/b/Foo.bar()."), types.Symbol("a/b/Foo#bar()."))
	assert.Contains(t, g.AlternativesFor("a/b/Foo#bar()."), types.Symbol("a/b/Foo.bar()."))
}

func TestAlternativesNeverEchoInput(t *testing.T) {
	g := NewTextualGenerator()

	for _, sym := range []types.Symbol{
		"a/b/Foo#",
		"a/b/Foo.",
		"a/b/Foo.apply().",
		"a/b/Foo#bar().",
		"a/b/",
		"local3",
	} {
		assert.NotContains(t, g.AlternativesFor(sym), sym, "input %s echoed", sym)
	}
}

func TestAlternativesPackagesAndLocals(t *testing.T) {
	g := NewTextualGenerator()

	assert.Empty(t, g.AlternativesFor("a/b/"))
	assert.Empty(t, g.AlternativesFor("local0"))
}

func TestSuggest(t *testing.T) {
	s := NewSuggester(3, 0.5)

	indexed := []types.Symbol{
		"a/b/UserService#",
		"a/b/UserServices#",
		"a/b/Unrelated#",
		"c/d/UserService.",
	}
	got := s.Suggest("a/b/UserServce#", indexed)
	assert.Contains(t, got, types.Symbol("a/b/UserService#"))
	assert.NotContains(t, got, types.Symbol("a/b/Unrelated#"))
}

func TestSuggestExcludesExactName(t *testing.T) {
	s := NewSuggester(3, 0.3)

	// A candidate with the same display name is not a suggestion.
	got := s.Suggest("a/b/Foo#", []types.Symbol{"c/d/Foo#"})
	assert.Empty(t, got)
}
