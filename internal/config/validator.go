package config

import (
	"errors"
	"fmt"

	lsierrors "github.com/standardbeagle/lsi/internal/errors"
)

// Validate checks configuration values against their allowed ranges.
func Validate(cfg *Config) error {
	if err := validateProject(&cfg.Project); err != nil {
		return lsierrors.NewConfigError("project", "", err)
	}
	if err := validateIndex(&cfg.Index); err != nil {
		return lsierrors.NewConfigError("index", "", err)
	}
	if err := validateQuery(&cfg.Query); err != nil {
		return lsierrors.NewConfigError("query", "", err)
	}
	if err := validateSuggest(&cfg.Suggest); err != nil {
		return lsierrors.NewConfigError("suggest", "", err)
	}
	return nil
}

func validateProject(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func validateIndex(index *Index) error {
	if index.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", index.MaxFileSize)
	}
	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("max_file_size should not exceed 100MB, got %d", index.MaxFileSize)
	}
	if index.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", index.Workers)
	}
	return nil
}

func validateQuery(query *Query) error {
	if query.MaxAltDepth < 1 || query.MaxAltDepth > 32 {
		return fmt.Errorf("max_alt_depth must be between 1 and 32, got %d", query.MaxAltDepth)
	}
	return nil
}

func validateSuggest(suggest *Suggest) error {
	if suggest.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", suggest.MaxResults)
	}
	if suggest.MinSimilarity < 0 || suggest.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be in [0,1], got %v", suggest.MinSimilarity)
	}
	return nil
}
