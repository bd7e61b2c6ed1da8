// Package config loads and validates the .lsi.kdl project configuration.
package config

import (
	"runtime"
)

type Config struct {
	Version int
	Project Project
	Index   Index
	Query   Query
	Suggest Suggest
	Include []string
	Exclude []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize int64 // Skip source files larger than this many bytes
	Workers     int   // Parallel scan workers, 0 = auto-detect (NumCPU)
	// ModuleNameGuess enables the module-qualified path guess for
	// archives that nest entries under a module directory (the JDK
	// src.zip layout). Off by default; it costs one manifest read per
	// registered archive.
	ModuleNameGuess bool
}

type Query struct {
	MaxAltDepth int // Recursion cap for alternative-symbol fallback
}

type Suggest struct {
	Enabled       bool
	MaxResults    int
	MinSimilarity float64 // Levenshtein similarity cutoff in [0,1]
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Index: Index{
			MaxFileSize: 10 * 1024 * 1024,
			Workers:     0,
		},
		Query: Query{
			MaxAltDepth: 5,
		},
		Suggest: Suggest{
			Enabled:       true,
			MaxResults:    5,
			MinSimilarity: 0.6,
		},
	}
}

// EffectiveWorkers resolves the worker count, auto-detecting from the
// machine when unset.
func (c *Config) EffectiveWorkers() int {
	if c.Index.Workers > 0 {
		return c.Index.Workers
	}
	return runtime.NumCPU()
}
