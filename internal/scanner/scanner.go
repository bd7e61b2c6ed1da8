// Package scanner extracts symbol occurrences from Scala and Java source
// using tree-sitter. It implements the source-indexer capability the index
// engine consumes: a cheap top-level scan for eager indexing and a full
// per-file scan producing every definition with ranges.
package scanner

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lsi/internal/debug"
	lsierrors "github.com/standardbeagle/lsi/internal/errors"
	"github.com/standardbeagle/lsi/internal/types"
)

// TreeSitterScanner owns one parser, language and compiled query per
// dialect. Parsers are stateful, so parse calls are serialized per
// dialect; scans of different dialects proceed in parallel.
type TreeSitterScanner struct {
	parsers   map[types.Dialect]*tree_sitter.Parser
	languages map[types.Dialect]*tree_sitter.Language
	queries   map[types.Dialect]*tree_sitter.Query
	mu        map[types.Dialect]*sync.Mutex
}

// New creates a scanner with both dialects initialized.
func New() *TreeSitterScanner {
	s := &TreeSitterScanner{
		parsers:   make(map[types.Dialect]*tree_sitter.Parser),
		languages: make(map[types.Dialect]*tree_sitter.Language),
		queries:   make(map[types.Dialect]*tree_sitter.Query),
		mu: map[types.Dialect]*sync.Mutex{
			types.DialectScala: {},
			types.DialectJava:  {},
		},
	}
	s.setupScala()
	s.setupJava()
	return s
}

// Close releases the tree-sitter parsers.
func (s *TreeSitterScanner) Close() {
	for _, p := range s.parsers {
		p.Close()
	}
}

func (s *TreeSitterScanner) parse(content []byte, dialect types.Dialect) (*tree_sitter.Tree, error) {
	parser, ok := s.parsers[dialect]
	if !ok {
		return nil, lsierrors.NewIndexingError("parse", fmt.Errorf("no parser for dialect %s", dialect)).WithRecoverable(false)
	}
	lock := s.mu[dialect]
	lock.Lock()
	defer lock.Unlock()

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, lsierrors.NewIndexingError("parse", fmt.Errorf("tree-sitter returned no tree")).WithRecoverable(true)
	}
	return tree, nil
}

// TopLevels performs the cheap eager scan: the top-level symbols defined
// in the file plus any textually detectable override relationships. The
// path is only used to select script behavior and for diagnostics.
func (s *TreeSitterScanner) TopLevels(path string, content []byte, dialect types.Dialect) ([]types.Symbol, []types.OverrideEdge, error) {
	tree, err := s.parse(content, dialect)
	if err != nil {
		return nil, nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packagePrefix(root, content, dialect)

	query := s.queries[dialect]
	if query == nil {
		return nil, nil, nil
	}

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	queryMatches := qc.Matches(query, root, content)

	captureNames := query.CaptureNames()
	capturedNames := make(map[string]string, 4)

	var symbols []types.Symbol
	seen := make(map[types.Symbol]struct{})

	for {
		match := queryMatches.Next()
		if match == nil {
			break
		}

		for k := range capturedNames {
			delete(capturedNames, k)
		}
		for _, c := range match.Captures {
			captureName := captureNames[c.Index]
			if strings.Contains(captureName, ".name") {
				capturedNames[captureName] = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}

		for _, c := range match.Captures {
			node := c.Node
			captureName := captureNames[c.Index]
			if strings.Contains(captureName, ".name") {
				continue
			}
			if nestedInDefinition(&node) {
				continue
			}
			name := capturedNames[captureName+".name"]
			if name == "" {
				continue
			}
			sym := types.SymbolFromParts(pkg, name, descriptorFor(captureName))
			if _, dup := seen[sym]; dup {
				continue
			}
			seen[sym] = struct{}{}
			symbols = append(symbols, sym)
		}
	}

	var overrides []types.OverrideEdge
	if bytes.Contains(content, overrideMarker(dialect)) {
		doc := buildDocument(path, root, content, pkg, dialect)
		overrides = doc.overrides
	}

	debug.LogIndexing("toplevels %s: %d symbols\n", path, len(symbols))
	return symbols, overrides, nil
}

// ScanAll performs the full per-file scan: every definition, global and
// local, with source ranges, plus override edges.
func (s *TreeSitterScanner) ScanAll(path string, content []byte, dialect types.Dialect) (*types.TextDocument, error) {
	tree, err := s.parse(content, dialect)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packagePrefix(root, content, dialect)
	doc := buildDocument(path, root, content, pkg, dialect)

	debug.LogIndexing("scanall %s: %d occurrences\n", path, len(doc.doc.Occurrences))
	return doc.doc, nil
}

// Overrides re-runs the full walk and returns only the override edges.
func (s *TreeSitterScanner) Overrides(path string, content []byte, dialect types.Dialect) ([]types.OverrideEdge, error) {
	tree, err := s.parse(content, dialect)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packagePrefix(root, content, dialect)
	doc := buildDocument(path, root, content, pkg, dialect)
	return doc.overrides, nil
}

func descriptorFor(captureName string) string {
	switch captureName {
	case "class", "trait", "interface", "enum", "annotation", "type":
		return "#"
	case "object", "val", "var":
		return "."
	case "function":
		return "()."
	default:
		return "."
	}
}

func overrideMarker(dialect types.Dialect) []byte {
	if dialect == types.DialectJava {
		return []byte("@Override")
	}
	return []byte("override")
}

// packagePrefix extracts the declared package of a compilation unit as a
// symbol prefix ("a/b/"). Stacked Scala package clauses concatenate.
func packagePrefix(root *tree_sitter.Node, content []byte, dialect types.Dialect) string {
	var sb strings.Builder
	count := root.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "package_clause":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				appendPackage(&sb, string(content[nameNode.StartByte():nameNode.EndByte()]))
			}
		case "package_declaration":
			// Java: the declaration wraps a (scoped_)identifier.
			for j := uint(0); j < child.NamedChildCount(); j++ {
				part := child.NamedChild(j)
				if part.Kind() == "scoped_identifier" || part.Kind() == "identifier" {
					appendPackage(&sb, string(content[part.StartByte():part.EndByte()]))
					break
				}
			}
		}
	}
	return sb.String()
}

func appendPackage(sb *strings.Builder, dotted string) {
	for _, seg := range strings.Split(dotted, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		sb.WriteString(seg)
		sb.WriteByte('/')
	}
}

// nestedInDefinition reports whether a definition node sits inside another
// definition, i.e. is not a top-level declaration of the compilation unit.
// Package clauses do not count as nesting.
func nestedInDefinition(node *tree_sitter.Node) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "class_definition", "object_definition", "trait_definition",
			"enum_definition", "function_definition", "val_definition", "var_definition",
			"class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration", "method_declaration":
			return true
		}
	}
	return false
}
