package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lsi/internal/index"
	"github.com/standardbeagle/lsi/internal/version"
)

func statusCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ix, err := buildIndex(c, cfg, c.Args().Slice(), false)
	if err != nil {
		return err
	}
	defer ix.Close()

	if c.Bool("json") {
		return printJSON(struct {
			Version string        `json:"version"`
			Roots   []string      `json:"roots"`
			Buckets []index.Stats `json:"buckets"`
		}{
			Version: version.Version,
			Roots:   ix.Classpath().Roots(),
			Buckets: ix.Stats(),
		})
	}

	fmt.Println(version.FullInfo())
	fmt.Println("Roots:")
	for _, root := range ix.Classpath().Roots() {
		fmt.Printf("  %s\n", root)
	}
	fmt.Println("Buckets:")
	for _, s := range ix.Stats() {
		fmt.Printf("  %-8s files=%d toplevels=%d definitions=%d queries=%d fallbackScans=%d invalidated=%d\n",
			s.Dialect, s.ScannedFiles, s.TopLevelEntries, s.Definitions, s.Queries, s.FallbackScans, s.Invalidated)
	}
	return nil
}
