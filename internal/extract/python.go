package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor extracts records from Python source.
type PythonExtractor struct {
	lang *sitter.Language
}

// NewPythonExtractor creates a Python extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{lang: python.GetLanguage()}
}

// Extensions implements Extractor.
func (e *PythonExtractor) Extensions() []string {
	return []string{".py"}
}

// Extract implements Extractor.
func (e *PythonExtractor) Extract(ctx context.Context, source []byte) (*Result, error) {
	root, err := parse(ctx, e.lang, source)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	visitPython(root, source, "", res)
	return res, nil
}

// visitPython walks the tree carrying the current enclosing symbol. Entering
// a function or class definition updates the enclosing symbol for the
// remainder of its subtree.
func visitPython(node *sitter.Node, source []byte, enclosing string, res *Result) {
	current := enclosing

	switch node.Type() {
	case "function_definition":
		if name := fieldText(node, "name", source); name != "" {
			res.Definitions = append(res.Definitions, Definition{
				Kind: DefFunction,
				Name: name,
				Line: nodeLine(node),
			})
			current = name
		}

	case "class_definition":
		if name := fieldText(node, "name", source); name != "" {
			res.Definitions = append(res.Definitions, Definition{
				Kind: DefClass,
				Name: name,
				Line: nodeLine(node),
			})
			current = name
		}

	case "call":
		if fn := node.ChildByFieldName("function"); fn != nil {
			res.Calls = append(res.Calls, Call{
				Name:   nodeText(fn, source),
				Parent: current,
				Line:   nodeLine(node),
			})
		}

	case "import_statement", "import_from_statement":
		res.Imports = append(res.Imports, Import{
			Text: nodeText(node, source),
			Line: nodeLine(node),
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		visitPython(node.Child(i), source, current, res)
	}
}
