// Package mainlocator statically checks that an entrypoint source file
// exports a symbol named "main", and reports where that export lives so
// the driver can produce a precise diagnostic when it doesn't.
package mainlocator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrNoMainExport is returned when no exported symbol named "main" is
// found anywhere in the source.
var ErrNoMainExport = errors.New("entrypoint has no exported \"main\" symbol")

// Location pinpoints the export statement that introduces "main".
type Location struct {
	Line   int
	Column int
}

// Find parses source (using the grammar selected by sourcePath's
// extension) and returns the location of its exported "main" symbol.
func Find(source []byte, sourcePath string) (Location, error) {
	lang, err := languageFor(sourcePath)
	if err != nil {
		return Location{}, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree := parser.Parse(nil, source)
	if tree == nil {
		return Location{}, fmt.Errorf("parse %s: tree-sitter returned no tree", sourcePath)
	}

	var found *sitter.Node
	walk(tree.RootNode(), func(node *sitter.Node) {
		if found != nil || node.Type() != "export_statement" {
			return
		}
		if exportsMain(node, source) {
			found = node
		}
	})

	if found == nil {
		return Location{}, fmt.Errorf("%s: %w", sourcePath, ErrNoMainExport)
	}
	return Location{
		Line:   int(found.StartPoint().Row) + 1,
		Column: int(found.StartPoint().Column) + 1,
	}, nil
}

func languageFor(path string) (*sitter.Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return tslang.GetLanguage(), nil
	case ".js", ".mjs", ".cjs":
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported entrypoint extension for %s", path)
	}
}

func exportsMain(node *sitter.Node, content []byte) bool {
	clause := node.ChildByFieldName("export_clause")
	if clause == nil {
		clause = firstNamedChildOfType(node, "export_clause")
	}
	if clause != nil {
		return clauseNamesMain(clause, content)
	}

	decl := node.ChildByFieldName("declaration")
	if decl != nil {
		return declarationNamesMain(decl, content)
	}

	return false
}

func clauseNamesMain(clause *sitter.Node, content []byte) bool {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() != "export_specifier" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = firstNamedChildOfType(child, "identifier", "property_identifier")
		}
		aliasNode := child.ChildByFieldName("alias")
		if aliasNode == nil {
			aliasNode = nameNode
		}
		if nodeText(aliasNode, content) == "main" {
			return true
		}
	}
	return false
}

func declarationNamesMain(decl *sitter.Node, content []byte) bool {
	switch decl.Type() {
	case "function_declaration", "class_declaration":
		return nodeText(decl.ChildByFieldName("name"), content) == "main"
	case "lexical_declaration", "variable_declaration":
		found := false
		walk(decl, func(child *sitter.Node) {
			if found || child.Type() != "variable_declarator" {
				return
			}
			if nodeText(child.ChildByFieldName("name"), content) == "main" {
				found = true
			}
		})
		return found
	default:
		return false
	}
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		visit(child)
		walk(child, visit)
	}
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func firstNamedChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, typ := range types {
			if child.Type() == typ {
				return child
			}
		}
	}
	return nil
}
