package codegen

import "strings"

const indentUnit = "    "

// Item is one top-level item of a generated module
type Item interface {
	render(b *strings.Builder)
}

// Module is a generated source file. Items are separated by a blank line;
// consecutive use declarations are grouped.
type Module struct {
	Items []Item
}

// UseDecl is `use <Path>;`
type UseDecl struct {
	Path string
}

// Field is a struct field
type Field struct {
	Public bool
	Name   string
	Type   string
}

// StructDecl is a struct with named fields
type StructDecl struct {
	Public bool
	Name   string
	Fields []Field
}

// FieldInit is one `<name>: <value>` entry of a struct literal
type FieldInit struct {
	Name  string
	Value string
}

// Method is an associated function whose body is a single struct literal of
// Returns, e.g. `pub fn new() -> Self { Self { ... } }`.
type Method struct {
	Public  bool
	Name    string
	Returns string
	Init    []FieldInit
}

// ImplDecl is an inherent impl block
type ImplDecl struct {
	Type    string
	Methods []Method
}

func (u UseDecl) render(b *strings.Builder) {
	b.WriteString("use ")
	b.WriteString(u.Path)
	b.WriteString(";\n")
}

func (s StructDecl) render(b *strings.Builder) {
	if s.Public {
		b.WriteString("pub ")
	}
	b.WriteString("struct ")
	b.WriteString(s.Name)
	b.WriteString(" {\n")
	for _, f := range s.Fields {
		b.WriteString(indentUnit)
		if f.Public {
			b.WriteString("pub ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type)
		b.WriteString(",\n")
	}
	b.WriteString("}\n")
}

func (im ImplDecl) render(b *strings.Builder) {
	b.WriteString("impl ")
	b.WriteString(im.Type)
	b.WriteString(" {\n")
	for i, m := range im.Methods {
		if i > 0 {
			b.WriteByte('\n')
		}
		m.render(b, indentUnit)
	}
	b.WriteString("}\n")
}

func (m Method) render(b *strings.Builder, indent string) {
	inner := indent + indentUnit
	b.WriteString(indent)
	if m.Public {
		b.WriteString("pub ")
	}
	b.WriteString("fn ")
	b.WriteString(m.Name)
	b.WriteString("() -> ")
	b.WriteString(m.Returns)
	b.WriteString(" {\n")

	b.WriteString(inner)
	b.WriteString(m.Returns)
	b.WriteString(" {\n")
	for _, f := range m.Init {
		b.WriteString(inner + indentUnit)
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString(",\n")
	}
	b.WriteString(inner)
	b.WriteString("}\n")

	b.WriteString(indent)
	b.WriteString("}\n")
}

// Format renders the module as source text
func Format(m *Module) []byte {
	var b strings.Builder
	for i, item := range m.Items {
		if i > 0 {
			_, prevUse := m.Items[i-1].(UseDecl)
			_, curUse := item.(UseDecl)
			if !(prevUse && curUse) {
				b.WriteByte('\n')
			}
		}
		item.render(&b)
	}
	return []byte(b.String())
}
