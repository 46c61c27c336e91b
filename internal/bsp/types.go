package bsp

import "strings"

// TypePath is a path type such as `bsp_a::Board<bsp_a::I2CBus>`
type TypePath struct {
	Segments []string
	Args     []*TypePath
}

// Path builds a TypePath from its segments
func Path(segments ...string) *TypePath {
	return &TypePath{Segments: segments}
}

func (t *TypePath) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Segments, "::"))
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// Expr is an associated-function call such as `bsp_a::Board::new()`
type Expr struct {
	Type   *TypePath
	Method string
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.Type.String() + "::" + e.Method + "()"
}

// Substitution records the outcome for one generic parameter of the Board
// struct. Concrete is nil when the parameter was left unresolved.
type Substitution struct {
	Param    string
	Concrete *string
}

// ParseInfo is what one board contributes to the generated System module.
// It is rebuilt on every generation pass.
type ParseInfo struct {
	Crate string
	// Use is the path imported by the generated module (`use <Use>;`)
	Use   string
	Field string

	// FieldType and Constructor are nil when the crate has no Board struct
	FieldType   *TypePath
	Constructor *Expr

	AvailableTypes []string
	Substitutions  []Substitution
}

// HasBoard reports whether the BSP contributed a Board struct
func (p *ParseInfo) HasBoard() bool {
	return p != nil && p.FieldType != nil
}

// FieldDecl renders the struct field, `pub <field>: <type>`
func (p *ParseInfo) FieldDecl() string {
	return "pub " + p.Field + ": " + p.FieldType.String()
}

// ConstructorDecl renders the constructor entry, `<field>: <expr>`
func (p *ParseInfo) ConstructorDecl() string {
	return p.Field + ": " + p.Constructor.String()
}

func (p *ParseInfo) hasType(name string) bool {
	for _, t := range p.AvailableTypes {
		if t == name {
			return true
		}
	}
	return false
}
