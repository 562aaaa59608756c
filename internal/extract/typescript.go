package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptExtractor extracts records from TypeScript and JavaScript
// source. Beyond definitions and calls it emits identifier and
// property-access references as pseudo-calls, so that renames of symbols
// used without an invocation still show up in the graph.
type TypeScriptExtractor struct {
	lang *sitter.Language
	exts []string
}

// NewTypeScriptExtractor creates an extractor for .ts and .js files.
func NewTypeScriptExtractor() *TypeScriptExtractor {
	return &TypeScriptExtractor{
		lang: typescript.GetLanguage(),
		exts: []string{".ts", ".js"},
	}
}

// NewTSXExtractor creates an extractor for .tsx files.
func NewTSXExtractor() *TypeScriptExtractor {
	return &TypeScriptExtractor{
		lang: tsx.GetLanguage(),
		exts: []string{".tsx"},
	}
}

// Extensions implements Extractor.
func (e *TypeScriptExtractor) Extensions() []string {
	return e.exts
}

// Extract implements Extractor.
func (e *TypeScriptExtractor) Extract(ctx context.Context, source []byte) (*Result, error) {
	root, err := parse(ctx, e.lang, source)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	visitTypeScript(root, source, "", res)
	return res, nil
}

func visitTypeScript(node *sitter.Node, source []byte, enclosing string, res *Result) {
	current := enclosing

	switch node.Type() {
	case "function_declaration", "method_definition", "arrow_function":
		// Anonymous arrow functions have no name field and are not recorded
		// as definitions; their bodies stay attributed to the outer symbol.
		if name := fieldText(node, "name", source); name != "" {
			res.Definitions = append(res.Definitions, Definition{
				Kind: DefFunction,
				Name: name,
				Line: nodeLine(node),
			})
			current = name
		}

	case "class_declaration":
		if name := fieldText(node, "name", source); name != "" {
			res.Definitions = append(res.Definitions, Definition{
				Kind: DefClass,
				Name: name,
				Line: nodeLine(node),
			})
			current = name
		}

	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn != nil {
			res.Calls = append(res.Calls, Call{
				Name:   nodeText(fn, source),
				Parent: current,
				Line:   nodeLine(node),
			})
		}

	case "identifier", "property_identifier":
		// Reference pseudo-call: only inside a known enclosing symbol.
		if current != "" {
			res.Calls = append(res.Calls, Call{
				Name:   nodeText(node, source),
				Parent: current,
				Line:   nodeLine(node),
			})
		}

	case "import_statement":
		res.Imports = append(res.Imports, Import{
			Text: nodeText(node, source),
			Line: nodeLine(node),
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		visitTypeScript(node.Child(i), source, current, res)
	}
}
