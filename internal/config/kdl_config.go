package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	lsierrors "github.com/standardbeagle/lsi/internal/errors"
)

// FileName is the project configuration file looked up next to the
// project root.
const FileName = ".lsi.kdl"

// LoadKDL loads configuration from projectRoot/.lsi.kdl. A missing file
// yields the defaults, not an error.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, FileName)

	content, err := os.ReadFile(kdlPath)
	if os.IsNotExist(err) {
		cfg := Default()
		cfg.Project.Root = absOr(projectRoot)
		return cfg, nil
	}
	if err != nil {
		return nil, lsierrors.NewConfigError("file", kdlPath, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	// Relative roots resolve against the directory holding the file.
	if cfg.Project.Root == "" {
		cfg.Project.Root = absOr(projectRoot)
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, lsierrors.NewConfigError("kdl", "", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Index.MaxFileSize = sz
						}
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.Workers = v
					}
				case "module_name_guess":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.ModuleNameGuess = b
					}
				}
			}
		case "query":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_alt_depth" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Query.MaxAltDepth = v
					}
				}
			}
		case "suggest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Suggest.Enabled = b
					}
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Suggest.MaxResults = v
					}
				case "min_similarity":
					if f, ok := firstFloatArg(cn); ok {
						cfg.Suggest.MinSimilarity = f
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

// Helper functions over the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "pattern" } puts each string in a child node
	// name rather than an argument.
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}

func absOr(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
