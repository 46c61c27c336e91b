// Package rustsyntax parses Rust crate sources into a flat list of top-level
// items using the tree-sitter Rust grammar.
package rustsyntax

import (
	"context"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser wraps a tree-sitter parser configured for Rust. A single Parser may
// be shared; calls are serialized.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
	cache  *fileCache
}

// ParseError reports a source that could not be read or is not valid Rust.
// Line and Column are 1-based and zero when the file could not be read.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// New creates a Parser
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{parser: p, cache: newFileCache()}
}

// ParseFile reads path and parses it. Unchanged files are served from the
// previous parse.
func (p *Parser) ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Message: "reading file", Err: err}
	}
	hash := hashContent(content)
	if file, ok := p.cache.get(path, hash); ok {
		return file, nil
	}
	file, err := p.Parse(path, content)
	if err != nil {
		return nil, err
	}
	p.cache.put(path, hash, file)
	return file, nil
}

// Parse parses src. path is only used for error messages and File.Path.
func (p *Parser) Parse(path string, src []byte) (*File, error) {
	p.mu.Lock()
	tree, err := p.parser.ParseCtx(context.Background(), nil, src)
	p.mu.Unlock()
	if err != nil {
		return nil, &ParseError{File: path, Message: "parsing", Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		bad := firstError(root)
		if bad == nil {
			bad = root
		}
		pos := bad.StartPoint()
		msg := "syntax error"
		if bad.IsMissing() {
			msg = fmt.Sprintf("missing %s", bad.Type())
		}
		return nil, &ParseError{
			File:    path,
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
			Message: msg,
		}
	}

	file := &File{Path: path}
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(i)
		item, ok := extractItem(child, src)
		if !ok {
			continue
		}
		file.Items = append(file.Items, item)
	}
	return file, nil
}

// firstError returns the first ERROR or MISSING node in document order
func firstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		if bad := firstError(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
