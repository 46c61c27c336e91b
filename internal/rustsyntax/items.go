package rustsyntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ItemKind classifies a top-level item
type ItemKind string

const (
	KindStruct ItemKind = "struct"
	KindType   ItemKind = "type"
	KindEnum   ItemKind = "enum"
	KindFn     ItemKind = "fn"
	KindImpl   ItemKind = "impl"
	KindMod    ItemKind = "mod"
	KindUse    ItemKind = "use"
	KindConst  ItemKind = "const"
	KindStatic ItemKind = "static"
	KindTrait  ItemKind = "trait"
	KindMacro  ItemKind = "macro"
	KindOther  ItemKind = "other"
)

// GenericKind classifies a generic parameter
type GenericKind string

const (
	GenericType     GenericKind = "type"
	GenericLifetime GenericKind = "lifetime"
	GenericConst    GenericKind = "const"
)

// File is the parsed form of one source file: its top-level items in source order
type File struct {
	Path  string
	Items []Item
}

// Item is a single top-level item
type Item struct {
	Kind     ItemKind
	Name     string // empty for items without a name (impl blocks name their self type)
	Public   bool
	Line     int
	Generics []GenericParam
}

// GenericParam is one parameter of an item's generic list
type GenericParam struct {
	Kind GenericKind
	Name string
}

// Lookup returns the first item of the given kind and name
func (f *File) Lookup(kind ItemKind, name string) (Item, bool) {
	if f == nil {
		return Item{}, false
	}
	for _, it := range f.Items {
		if it.Kind == kind && it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// TypeParams returns the names of the type (not lifetime or const) parameters
func (it Item) TypeParams() []string {
	var names []string
	for _, g := range it.Generics {
		if g.Kind == GenericType {
			names = append(names, g.Name)
		}
	}
	return names
}

var itemKinds = map[string]ItemKind{
	"struct_item":              KindStruct,
	"type_item":                KindType,
	"enum_item":                KindEnum,
	"function_item":            KindFn,
	"function_signature_item":  KindFn,
	"impl_item":                KindImpl,
	"mod_item":                 KindMod,
	"use_declaration":          KindUse,
	"const_item":               KindConst,
	"static_item":              KindStatic,
	"trait_item":               KindTrait,
	"macro_invocation":         KindMacro,
	"macro_definition":         KindMacro,
	"union_item":               KindOther,
	"extern_crate_declaration": KindOther,
	"foreign_mod_item":         KindOther,
}

// extractItem converts one child of source_file. Comments and attributes are
// not items.
func extractItem(node *sitter.Node, source []byte) (Item, bool) {
	switch node.Type() {
	case "line_comment", "block_comment", "attribute_item", "inner_attribute_item":
		return Item{}, false
	}

	kind, ok := itemKinds[node.Type()]
	if !ok {
		kind = KindOther
	}

	item := Item{
		Kind:   kind,
		Public: hasVisibility(node, source),
		Line:   int(node.StartPoint().Row) + 1,
	}

	switch node.Type() {
	case "impl_item":
		if t := node.ChildByFieldName("type"); t != nil {
			item.Name = t.Content(source)
		}
	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			item.Name = arg.Content(source)
		}
	case "macro_invocation":
		if m := node.ChildByFieldName("macro"); m != nil {
			item.Name = m.Content(source)
		}
	default:
		if name := node.ChildByFieldName("name"); name != nil {
			item.Name = name.Content(source)
		}
	}

	if params := node.ChildByFieldName("type_parameters"); params != nil {
		item.Generics = extractGenerics(params, source)
	}

	return item, true
}

// hasVisibility reports a `pub` modifier of any scope (pub, pub(crate), ...)
func hasVisibility(node *sitter.Node, source []byte) bool {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child.Type() == "visibility_modifier" {
			return strings.HasPrefix(child.Content(source), "pub")
		}
	}
	return false
}

// extractGenerics reads a type_parameters node in declaration order. Both the
// older grammar shapes (bare type_identifier, constrained_type_parameter,
// optional_type_parameter) and the newer type_parameter node are accepted.
func extractGenerics(params *sitter.Node, source []byte) []GenericParam {
	var out []GenericParam
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		child := params.NamedChild(i)
		switch child.Type() {
		case "type_identifier":
			out = append(out, GenericParam{Kind: GenericType, Name: child.Content(source)})
		case "lifetime":
			out = append(out, GenericParam{Kind: GenericLifetime, Name: child.Content(source)})
		case "lifetime_parameter":
			name := child.ChildByFieldName("name")
			if name == nil {
				name = child.NamedChild(0)
			}
			if name != nil {
				out = append(out, GenericParam{Kind: GenericLifetime, Name: name.Content(source)})
			}
		case "constrained_type_parameter":
			left := child.ChildByFieldName("left")
			if left == nil {
				continue
			}
			kind := GenericType
			if left.Type() == "lifetime" {
				kind = GenericLifetime
			}
			out = append(out, GenericParam{Kind: kind, Name: left.Content(source)})
		case "optional_type_parameter", "type_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, GenericParam{Kind: GenericType, Name: name.Content(source)})
			}
		case "const_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, GenericParam{Kind: GenericConst, Name: name.Content(source)})
			}
		}
	}
	return out
}
