package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rustKeywords holds the strict and reserved keywords of the 2021 edition.
// None of them may be used as a plain identifier.
var rustKeywords = map[string]bool{
	"_": true, "as": true, "async": true, "await": true, "break": true,
	"const": true, "continue": true, "crate": true, "dyn": true, "else": true,
	"enum": true, "extern": true, "false": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true,
	"ref": true, "return": true, "self": true, "Self": true, "static": true,
	"struct": true, "super": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"macro": true, "override": true, "priv": true, "try": true,
	"typeof": true, "unsized": true, "virtual": true, "yield": true,
}

func checkIdent(what, name string) error {
	switch {
	case !identPattern.MatchString(name):
		return fmt.Errorf("%s %q is not a Rust identifier", what, name)
	case rustKeywords[name]:
		return fmt.Errorf("%s %q is a Rust keyword", what, name)
	}
	return nil
}

// checkIdents catches what tree-sitter accepts but rustc does not: keywords
// in identifier position and repeated field names.
func checkIdents(m *Module) error {
	var errs error
	for _, item := range m.Items {
		switch it := item.(type) {
		case UseDecl:
			for _, seg := range strings.Split(it.Path, "::") {
				errs = multierr.Append(errs, checkIdent("use path segment", seg))
			}
		case StructDecl:
			seen := make(map[string]bool, len(it.Fields))
			for _, f := range it.Fields {
				errs = multierr.Append(errs, checkIdent("field", f.Name))
				if seen[f.Name] {
					errs = multierr.Append(errs, fmt.Errorf("field %q appears more than once in %s", f.Name, it.Name))
				}
				seen[f.Name] = true
			}
		}
	}
	return errs
}
