package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	riperr "ripple/internal/errors"
)

// Extractor extracts definition/call/import records from source text.
type Extractor interface {
	// Extract parses source and returns the extracted records. The grammar is
	// error-tolerant: malformed input yields partial results, not an error.
	Extract(ctx context.Context, source []byte) (*Result, error)

	// Extensions returns the file extensions this extractor handles,
	// lower-case with leading dot.
	Extensions() []string
}

// parse runs a fresh tree-sitter parser over source. Parsers are not safe
// for concurrent use, so one is created per call.
func parse(ctx context.Context, lang *sitter.Language, source []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, riperr.New(riperr.ExtractionFailed, "parse failed", err)
	}
	return tree.RootNode(), nil
}

// nodeText returns the source text covered by a node.
func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// fieldText returns the text of a named child field, or "" if absent.
func fieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, source)
}

// nodeLine returns the 1-based line of a node's start point.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}
