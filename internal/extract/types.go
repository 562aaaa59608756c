// Package extract turns source text into flat records of definitions, calls
// and imports using tree-sitter concrete syntax trees. Extraction is a pure
// function of its input; a single extractor value may be shared, but each
// call parses with its own parser instance.
package extract

// DefKind is the closed set of definition kinds.
type DefKind string

const (
	DefFunction DefKind = "function"
	DefClass    DefKind = "class"
)

// Definition records a function or class definition.
type Definition struct {
	Kind DefKind `json:"type"`
	Name string  `json:"name"`
	Line int     `json:"line"` // 1-based
}

// Call records a call site. Name is the literal callee expression text
// (e.g. "axios.get", "self.foo"). Parent is the enclosing definition's name,
// empty for module-scope calls.
type Call struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Line   int    `json:"line"`
}

// Import records an import statement with its raw source text.
type Import struct {
	Text string `json:"content"`
	Line int    `json:"line"`
}

// Result is the flat record emitted for one source file.
type Result struct {
	Definitions []Definition `json:"definitions"`
	Calls       []Call       `json:"calls"`
	Imports     []Import     `json:"imports"`
}

// FileRecord pairs a project-relative filename with its extraction result.
type FileRecord struct {
	Filename string `json:"filename"`
	Data     Result `json:"data"`
}
