package scanner

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lsi/internal/types"
)

// documentBuilder accumulates occurrences and override edges during a full
// tree walk.
type documentBuilder struct {
	content    []byte
	dialect    types.Dialect
	doc        *types.TextDocument
	overrides  []types.OverrideEdge
	localCount int
}

// walkContext carries the enclosing scope down the tree.
type walkContext struct {
	owner      types.Symbol
	parentType types.Symbol // extends-target of the enclosing template, "" if none
	inMethod   bool
}

func buildDocument(path string, root *tree_sitter.Node, content []byte, pkg string, dialect types.Dialect) *documentBuilder {
	b := &documentBuilder{
		content: content,
		dialect: dialect,
		doc: &types.TextDocument{
			Path:    path,
			Dialect: dialect,
		},
	}
	b.walk(root, walkContext{owner: types.Symbol(pkg)})
	return b
}

func (b *documentBuilder) walk(node *tree_sitter.Node, ctx walkContext) {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		b.visit(child, ctx)
	}
}

func (b *documentBuilder) visit(node *tree_sitter.Node, ctx walkContext) {
	switch node.Kind() {
	// Scala
	case "class_definition", "trait_definition", "enum_definition":
		b.visitTemplate(node, ctx, "name", "#")
	case "object_definition":
		b.visitTemplate(node, ctx, "name", ".")
	case "type_definition":
		b.define(node, ctx, "name", "#")
	case "val_definition", "var_definition":
		sym := b.define(node, ctx, "pattern", ".")
		b.walk(node, walkContext{owner: sym, inMethod: true})
	case "function_definition":
		sym := b.define(node, ctx, "name", "().")
		b.recordOverride(node, ctx, sym, "().")
		b.walk(node, walkContext{owner: sym, inMethod: true})

	// Java
	case "class_declaration", "record_declaration":
		b.visitTemplate(node, ctx, "name", "#")
	case "interface_declaration", "enum_declaration", "annotation_type_declaration":
		b.visitTemplate(node, ctx, "name", "#")
	case "method_declaration":
		sym := b.define(node, ctx, "name", "().")
		b.recordOverride(node, ctx, sym, "().")
		b.walk(node, walkContext{owner: sym, inMethod: true})
	case "constructor_declaration":
		sym := b.define(node, ctx, "name", "().")
		b.walk(node, walkContext{owner: sym, inMethod: true})
	case "field_declaration":
		b.defineJavaFields(node, ctx)

	default:
		b.walk(node, ctx)
	}
}

// visitTemplate handles class-like declarations: define the symbol, then
// walk the body with the new owner and the extends-target for override
// resolution.
func (b *documentBuilder) visitTemplate(node *tree_sitter.Node, ctx walkContext, nameField, descriptor string) {
	sym := b.define(node, ctx, nameField, descriptor)
	if sym == "" {
		return
	}
	parent := b.extendsTarget(node, ctx)
	b.walk(node, walkContext{owner: sym, parentType: parent})
}

// define emits a definition occurrence for the node's name and returns the
// symbol. Definitions inside method bodies get local identities.
func (b *documentBuilder) define(node *tree_sitter.Node, ctx walkContext, nameField, descriptor string) types.Symbol {
	nameNode := node.ChildByFieldName(nameField)
	if nameNode == nil {
		return ""
	}
	name := string(b.content[nameNode.StartByte():nameNode.EndByte()])

	var sym types.Symbol
	if ctx.inMethod {
		sym = b.local()
	} else {
		sym = types.SymbolFromParts(string(ctx.owner), name, descriptor)
	}

	b.doc.Occurrences = append(b.doc.Occurrences, types.SymbolOccurrence{
		Symbol: sym,
		Role:   types.RoleDefinition,
		Range:  nodeRange(nameNode),
	})
	return sym
}

func (b *documentBuilder) defineJavaFields(node *tree_sitter.Node, ctx walkContext) {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := string(b.content[nameNode.StartByte():nameNode.EndByte()])
		var sym types.Symbol
		if ctx.inMethod {
			sym = b.local()
		} else {
			sym = types.SymbolFromParts(string(ctx.owner), name, ".")
		}
		b.doc.Occurrences = append(b.doc.Occurrences, types.SymbolOccurrence{
			Symbol: sym,
			Role:   types.RoleDefinition,
			Range:  nodeRange(nameNode),
		})
	}
}

func (b *documentBuilder) local() types.Symbol {
	sym := types.Symbol(fmt.Sprintf("local%d", b.localCount))
	b.localCount++
	return sym
}

// extendsTarget resolves the first extended type of a template to a
// same-package symbol guess and records a reference occurrence for it.
// This is a textual heuristic, not semantic resolution.
func (b *documentBuilder) extendsTarget(node *tree_sitter.Node, ctx walkContext) types.Symbol {
	var typeNode *tree_sitter.Node

	count := node.NamedChildCount()
	for i := uint(0); i < count && typeNode == nil; i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "extends_clause", "superclass", "super_interfaces":
			typeNode = firstTypeIdentifier(child)
		}
	}
	if typeNode == nil {
		return ""
	}

	name := string(b.content[typeNode.StartByte():typeNode.EndByte()])
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	pkg := packageOf(ctx.owner)
	sym := types.SymbolFromParts(pkg, name, "#")

	b.doc.Occurrences = append(b.doc.Occurrences, types.SymbolOccurrence{
		Symbol: sym,
		Role:   types.RoleReference,
		Range:  nodeRange(typeNode),
	})
	return sym
}

func firstTypeIdentifier(node *tree_sitter.Node) *tree_sitter.Node {
	if node.Kind() == "type_identifier" || node.Kind() == "identifier" {
		return node
	}
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if found := firstTypeIdentifier(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// recordOverride emits an override edge when the member carries the
// dialect's override marker and the enclosing template names a parent.
func (b *documentBuilder) recordOverride(node *tree_sitter.Node, ctx walkContext, sym types.Symbol, descriptor string) {
	if ctx.parentType == "" || sym == "" || !sym.IsGlobal() {
		return
	}
	if !b.hasOverrideModifier(node) {
		return
	}
	b.overrides = append(b.overrides, types.OverrideEdge{
		Symbol:    sym,
		Overrides: types.SymbolFromParts(string(ctx.parentType), sym.DisplayName(), descriptor),
	})
}

func (b *documentBuilder) hasOverrideModifier(node *tree_sitter.Node) bool {
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child.Kind() != "modifiers" {
			continue
		}
		text := string(b.content[child.StartByte():child.EndByte()])
		if b.dialect == types.DialectJava {
			return strings.Contains(text, "@Override")
		}
		return strings.Contains(text, "override")
	}
	return false
}

// packageOf returns the package prefix of an owner symbol.
func packageOf(owner types.Symbol) string {
	str := string(owner)
	last := strings.LastIndexByte(str, '/')
	if last < 0 {
		return ""
	}
	return str[:last+1]
}

func nodeRange(node *tree_sitter.Node) types.Range {
	start := node.StartPosition()
	end := node.EndPosition()
	return types.Range{
		StartLine:   int(start.Row),
		StartColumn: int(start.Column),
		EndLine:     int(end.Row),
		EndColumn:   int(end.Column),
	}
}
