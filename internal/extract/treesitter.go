package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TreeSitterExtractor recognizes these forms with a literal string argument:
//
//	import x from "./a"        import "./a"
//	export { y } from "./a"    export * from "./a"
//	require("./a")             import("./a")
//	import z = require("./a")  (TypeScript)
//
// Anything computed, such as require("./a" + name), is skipped.
type TreeSitterExtractor struct {
	language   string
	extensions []string

	mu     sync.Mutex
	parser *sitter.Parser
}

func newTreeSitterExtractor(language string, grammar *sitter.Language, extensions []string) *TreeSitterExtractor {
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	return &TreeSitterExtractor{
		language:   language,
		extensions: extensions,
		parser:     p,
	}
}

// NewJavaScriptExtractor handles JavaScript, including JSX.
func NewJavaScriptExtractor() *TreeSitterExtractor {
	return newTreeSitterExtractor("javascript", javascript.GetLanguage(), []string{".js", ".jsx", ".mjs", ".cjs"})
}

// NewTypeScriptExtractor handles TypeScript without JSX.
func NewTypeScriptExtractor() *TreeSitterExtractor {
	return newTreeSitterExtractor("typescript", typescript.GetLanguage(), []string{".ts", ".mts", ".cts"})
}

// NewTSXExtractor handles TypeScript with JSX.
func NewTSXExtractor() *TreeSitterExtractor {
	return newTreeSitterExtractor("tsx", tsx.GetLanguage(), []string{".tsx"})
}

func (e *TreeSitterExtractor) Language() string {
	return e.language
}

func (e *TreeSitterExtractor) Extensions() []string {
	return append([]string(nil), e.extensions...)
}

// Extract parses content and returns its specifiers in source order.
func (e *TreeSitterExtractor) Extract(content []byte) ([]string, error) {
	// sitter.Parser is not safe for concurrent use.
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, content)
	}

	specifiers := make([]string, 0)
	iter := sitter.NewIterator(root, sitter.DFSMode)
	for {
		n, err := iter.Next()
		if err != nil || n == nil {
			break
		}

		switch n.Type() {
		case "import_statement", "export_statement":
			if spec, ok := statementSource(n, content); ok {
				specifiers = append(specifiers, spec)
			}
		case "call_expression":
			if spec, ok := callSource(n, content); ok {
				specifiers = append(specifiers, spec)
			}
		}
	}
	return specifiers, nil
}

// statementSource returns the "from" string of an import or re-export.
func statementSource(node *sitter.Node, content []byte) (string, bool) {
	if source := node.ChildByFieldName("source"); source != nil {
		return stringLiteral(source, content)
	}
	// export default "x" carries a string too, but it is not a dependency.
	if node.Type() == "export_statement" {
		return "", false
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "string":
			return stringLiteral(child, content)
		case "import_require_clause":
			if source := child.ChildByFieldName("source"); source != nil {
				return stringLiteral(source, content)
			}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if grandchild := child.NamedChild(j); grandchild.Type() == "string" {
					return stringLiteral(grandchild, content)
				}
			}
		}
	}
	return "", false
}

// callSource matches require("x") and import("x") with exactly one literal argument.
func callSource(node *sitter.Node, content []byte) (string, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch {
	case fn.Type() == "import":
	case fn.Type() == "identifier" && fn.Content(content) == "require":
	default:
		return "", false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return "", false
	}
	return stringLiteral(args.NamedChild(0), content)
}

// stringLiteral unquotes a string or substitution-free template literal and
// decodes its escapes.
func stringLiteral(node *sitter.Node, content []byte) (string, bool) {
	switch node.Type() {
	case "string":
	case "template_string":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if node.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}

	raw := node.Content(content)
	if len(raw) < 2 {
		return "", false
	}
	return unescapeJS(raw[1 : len(raw)-1])
}

func syntaxError(root *sitter.Node, content []byte) *ParseError {
	iter := sitter.NewIterator(root, sitter.DFSMode)
	for {
		n, err := iter.Next()
		if err != nil || n == nil {
			break
		}
		if n.Type() != "ERROR" && !n.IsMissing() {
			continue
		}

		point := n.StartPoint()
		reason := fmt.Sprintf("syntax error near %q", snippet(n.Content(content)))
		if n.IsMissing() {
			reason = fmt.Sprintf("missing %s", n.Type())
		}
		return &ParseError{
			Reason: reason,
			Line:   int(point.Row) + 1,
			Column: int(point.Column) + 1,
		}
	}
	return &ParseError{Reason: "syntax error"}
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[:nl]
	}
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}
