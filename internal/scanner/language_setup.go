package scanner

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"

	"github.com/standardbeagle/lsi/internal/types"
)

func (s *TreeSitterScanner) setupScala() {
	parser := tree_sitter.NewParser()
	languagePtr := tree_sitter_scala.Language()
	language := tree_sitter.NewLanguage(languagePtr)
	err := parser.SetLanguage(language)
	if err != nil {
		return
	}

	s.parsers[types.DialectScala] = parser
	s.languages[types.DialectScala] = language

	queryStr := `
        (class_definition name: (identifier) @class.name) @class
        (object_definition name: (identifier) @object.name) @object
        (trait_definition name: (identifier) @trait.name) @trait
        (enum_definition name: (identifier) @enum.name) @enum
        (type_definition name: (type_identifier) @type.name) @type
        (val_definition pattern: (identifier) @val.name) @val
        (var_definition pattern: (identifier) @var.name) @var
        (function_definition name: (identifier) @function.name) @function
    `
	query, _ := tree_sitter.NewQuery(language, queryStr)
	// Check if query was actually created (tree-sitter Go binding bug)
	if query != nil {
		s.queries[types.DialectScala] = query
	}
}

func (s *TreeSitterScanner) setupJava() {
	parser := tree_sitter.NewParser()
	languagePtr := tree_sitter_java.Language()
	language := tree_sitter.NewLanguage(languagePtr)
	err := parser.SetLanguage(language)
	if err != nil {
		return
	}

	s.parsers[types.DialectJava] = parser
	s.languages[types.DialectJava] = language

	queryStr := `
        (class_declaration name: (identifier) @class.name) @class
        (record_declaration name: (identifier) @class.name) @class
        (interface_declaration name: (identifier) @interface.name) @interface
        (enum_declaration name: (identifier) @enum.name) @enum
        (annotation_type_declaration name: (identifier) @annotation.name) @annotation
    `
	query, _ := tree_sitter.NewQuery(language, queryStr)
	// Tree-sitter Go binding bug: err can be a typed nil which is != nil
	if query != nil {
		s.queries[types.DialectJava] = query
	}
}
