package alternatives

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/lsi/internal/types"
)

// Suggester offers "did you mean" candidates for a symbol that resolved
// to nothing, ranked by string similarity against the indexed top-level
// names. It serves the interactive surface only and plays no part in
// query fallback.
type Suggester struct {
	minSimilarity float32
	maxResults    int
}

// NewSuggester creates a suggester. maxResults bounds the candidate list;
// minSimilarity below which candidates are discarded is in [0,1].
func NewSuggester(maxResults int, minSimilarity float32) *Suggester {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Suggester{minSimilarity: minSimilarity, maxResults: maxResults}
}

// Suggest returns up to maxResults indexed top-level symbols whose display
// name is similar to the queried symbol's display name.
func (s *Suggester) Suggest(queried types.Symbol, indexed []types.Symbol) []types.Symbol {
	if len(indexed) == 0 {
		return nil
	}
	target := queried.DisplayName()
	if target == "" {
		return nil
	}

	byName := make(map[string][]types.Symbol, len(indexed))
	names := make([]string, 0, len(indexed))
	for _, sym := range indexed {
		name := sym.DisplayName()
		if name == "" || name == target {
			continue
		}
		if _, ok := byName[name]; !ok {
			names = append(names, name)
		}
		byName[name] = append(byName[name], sym)
	}
	if len(names) == 0 {
		return nil
	}

	matches, err := edlib.FuzzySearchSetThreshold(target, names, s.maxResults, s.minSimilarity, edlib.Levenshtein)
	if err != nil {
		return nil
	}

	var suggestions []types.Symbol
	for _, name := range matches {
		if name == "" {
			continue
		}
		syms := byName[name]
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
		suggestions = append(suggestions, syms...)
		if len(suggestions) >= s.maxResults {
			suggestions = suggestions[:s.maxResults]
			break
		}
	}
	return suggestions
}
