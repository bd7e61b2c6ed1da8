package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lsi/internal/alternatives"
	"github.com/standardbeagle/lsi/internal/enrich"
	"github.com/standardbeagle/lsi/internal/types"
)

func lookupCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: lsi lookup SYMBOL [ROOT...]")
	}
	raw := c.Args().First()
	roots := c.Args().Tail()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ix, err := buildIndex(c, cfg, roots, c.Bool("prebuilt"))
	if err != nil {
		return err
	}
	defer ix.Close()

	defs := ix.Lookup(raw)
	enrich.Decorate(defs, nil)

	if c.Bool("json") {
		return printJSON(defs)
	}

	if len(defs) == 0 {
		fmt.Printf("No definitions found for %s\n", raw)
		if c.Bool("suggest") && cfg.Suggest.Enabled {
			printSuggestions(raw, cfg.Suggest.MaxResults, float32(cfg.Suggest.MinSimilarity), ix.ToplevelSymbols())
		}
		return nil
	}

	for _, def := range defs {
		loc := def.Path
		if def.Range != nil {
			loc = fmt.Sprintf("%s:%d:%d", def.Path, def.Range.StartLine+1, def.Range.StartColumn+1)
		}
		if def.ResolvedSymbol != def.QueriedSymbol {
			fmt.Printf("%s\t%s (via %s)\n", loc, def.QueriedSymbol, def.ResolvedSymbol)
		} else {
			fmt.Printf("%s\t%s\n", loc, def.ResolvedSymbol)
		}
	}
	return nil
}

func printSuggestions(raw string, maxResults int, minSimilarity float32, indexed []types.Symbol) {
	sym, err := types.ParseSymbol(raw)
	if err != nil {
		// A malformed query still gets name-based suggestions.
		sym = types.Symbol(raw + "#")
	}
	suggester := alternatives.NewSuggester(maxResults, minSimilarity)
	suggestions := suggester.Suggest(sym, indexed)
	if len(suggestions) == 0 {
		return
	}
	fmt.Println("Did you mean:")
	for _, s := range suggestions {
		fmt.Printf("  %s\n", s)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
