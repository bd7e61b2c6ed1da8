package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lsi/internal/classpath"
	"github.com/standardbeagle/lsi/internal/index"
	"github.com/standardbeagle/lsi/internal/types"
	"github.com/standardbeagle/lsi/pkg/pathutil"
)

func indexCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	roots := c.Args().Slice()
	ix, err := buildIndex(c, cfg, roots, false)
	if err != nil {
		return err
	}
	defer ix.Close()

	if c.Bool("emit-prebuilt") {
		for _, root := range ix.Classpath().Roots() {
			if !classpath.IsJarRoot(root) {
				continue
			}
			if err := emitPrebuilt(ix, root); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", root+index.PrebuiltSuffix)
		}
	}

	if c.Bool("json") {
		return printJSON(ix.Stats())
	}
	for _, s := range ix.Stats() {
		fmt.Printf("%-8s files=%d toplevels=%d definitions=%d\n",
			s.Dialect, s.ScannedFiles, s.TopLevelEntries, s.Definitions)
	}
	return nil
}

// emitPrebuilt writes the sidecar index of one jar root from the current
// candidate mapping, keeping only entries inside that jar.
func emitPrebuilt(ix *index.OnDemandIndex, jar string) error {
	toplevels := make(map[string][]string)
	for _, d := range []types.Dialect{types.DialectScala, types.DialectJava} {
		for sym, paths := range ix.Bucket(d).Snapshot() {
			for _, path := range paths {
				jarPath, entry := pathutil.SplitJar(path)
				if entry == "" || !strings.EqualFold(jarPath, jar) {
					continue
				}
				toplevels[string(sym)] = append(toplevels[string(sym)], entry)
			}
		}
	}
	for _, entries := range toplevels {
		sort.Strings(entries)
	}
	return index.WritePrebuilt(jar+index.PrebuiltSuffix, &index.PrebuiltIndex{
		TopLevels: toplevels,
	})
}
