package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lsi/internal/alternatives"
	"github.com/standardbeagle/lsi/internal/classpath"
	"github.com/standardbeagle/lsi/internal/config"
	"github.com/standardbeagle/lsi/internal/debug"
	"github.com/standardbeagle/lsi/internal/index"
	"github.com/standardbeagle/lsi/internal/scanner"
	"github.com/standardbeagle/lsi/internal/version"
	"github.com/standardbeagle/lsi/internal/walker"
)

func main() {
	app := &cli.App{
		Name:                   "lsi",
		Usage:                  "Lightning fast symbol-definition lookup for Scala and Java sources",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root holding the .lsi.kdl config (default: working directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.scala')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/generated/**')",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "lookup",
				Aliases:   []string{"l"},
				Usage:     "Resolve a symbol to its definitions",
				ArgsUsage: "SYMBOL [ROOT...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "suggest",
						Usage: "Offer similar symbols when nothing resolves",
					},
					&cli.BoolFlag{
						Name:  "prebuilt",
						Usage: "Use sidecar indexes for jar roots when present",
					},
				},
				Action: lookupCommand,
			},
			{
				Name:      "index",
				Aliases:   []string{"i"},
				Usage:     "Eagerly index source roots and report what was found",
				ArgsUsage: "[ROOT...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "emit-prebuilt",
						Usage: "Write a sidecar index file next to each jar root",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: indexCommand,
			},
			{
				Name:      "status",
				Usage:     "Index source roots and print bucket statistics",
				ArgsUsage: "[ROOT...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfigWithOverrides loads the project configuration and applies CLI
// flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadKDL(absRoot)
	if err != nil {
		return nil, err
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	return cfg, nil
}

// buildIndex creates the engine from configuration and registers every
// root: jar arguments as archives, everything else as directories. With
// no explicit roots the configured project root is indexed.
func buildIndex(c *cli.Context, cfg *config.Config, roots []string, prebuilt bool) (*index.OnDemandIndex, error) {
	excludes := cfg.Exclude
	if excludes == nil {
		excludes = walker.DefaultExcludes
	}
	ix := index.New(index.Options{
		Scanner:      scanner.New(),
		Alternatives: alternatives.NewTextualGenerator(),
		Walker: walker.New(walker.Options{
			Includes:    cfg.Include,
			Excludes:    excludes,
			MaxFileSize: cfg.Index.MaxFileSize,
		}),
		Workers:         cfg.EffectiveWorkers(),
		MaxAltDepth:     cfg.Query.MaxAltDepth,
		ModuleNameGuess: cfg.Index.ModuleNameGuess,
	})

	if len(roots) == 0 {
		roots = []string{cfg.Project.Root}
	}
	for _, root := range roots {
		var err error
		switch {
		case classpath.IsJarRoot(root) && prebuilt:
			_, err = ix.AddIndexedSourceJar(c.Context, root)
		case classpath.IsJarRoot(root):
			_, err = ix.AddSourceJar(c.Context, root)
		default:
			_, err = ix.AddSourceDirectory(c.Context, root)
		}
		if err != nil {
			ix.Close()
			return nil, fmt.Errorf("indexing %s: %w", root, err)
		}
	}
	return ix, nil
}
