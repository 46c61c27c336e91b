// Package bsp inspects a board's BSP crate and works out how generated code
// should name, type and construct that board.
package bsp

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/iron-coder/ironcoder/internal/rustsyntax"
)

const (
	boardStruct = "Board"
	i2cParam    = "I2C"
	i2cBusAlias = "I2CBus"
)

// Source is the part of a board the analyzer needs
type Source interface {
	Name() string
	// BSPCrate is the declared crate name, "" when the board has none
	BSPCrate() string
	// BSPPath is the local crate directory, "" when the crate is not vendored
	BSPPath() string
}

var crateReplacer = strings.NewReplacer("-", "_", "(", "", ")", "", ".", "")

var fieldReplacer = strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "", ".", "")

// CrateIdent turns a crate name into the identifier used in paths
func CrateIdent(crate string) string {
	return crateReplacer.Replace(crate)
}

// FieldIdent turns a board name into a System struct field name
func FieldIdent(name string) string {
	return strings.ToLower(fieldReplacer.Replace(name))
}

// LibPath is the crate root source file inside a BSP directory
func LibPath(bspPath string) string {
	return filepath.Join(bspPath, "src", "lib.rs")
}

// Analyze parses the board's BSP and visits it. The returned ParseInfo has
// no FieldType when the crate has no Board struct; that is not an error here.
func Analyze(src Source, parser *rustsyntax.Parser, logger *zap.SugaredLogger) (*ParseInfo, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	name := src.Name()

	crate := src.BSPCrate()
	if crate == "" {
		return nil, &Error{Kind: ErrBspMissing, Board: name}
	}

	ident := CrateIdent(crate)
	info := &ParseInfo{
		Crate: ident,
		Use:   ident,
		Field: FieldIdent(name),
	}

	if src.BSPPath() == "" {
		logger.Warnw("no local BSP crate to parse", "board", name, "crate", crate)
		return nil, &Error{Kind: ErrOther, Board: name, Err: &rustsyntax.ParseError{
			File:    crate,
			Message: "no local BSP directory",
		}}
	}

	logger.Debugw("parsing BSP", "board", name, "crate", ident)
	file, err := parser.ParseFile(LibPath(src.BSPPath()))
	if err != nil {
		logger.Warnw("couldn't parse BSP syntax", "board", name, "error", err)
		return nil, &Error{Kind: ErrOther, Board: name, Err: err}
	}

	Visit(info, file, logger)
	return info, nil
}

// Visit walks the top-level items of file in source order. A struct named
// Board sets the field type and constructor and resolves its generics on the
// spot, so only aliases declared above it are available for substitution.
func Visit(info *ParseInfo, file *rustsyntax.File, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	for _, item := range file.Items {
		switch item.Kind {
		case rustsyntax.KindStruct:
			if item.Name != boardStruct {
				continue
			}
			if info.FieldType != nil {
				logger.Debugw("ignoring repeated Board struct", "crate", info.Crate, "line", item.Line)
				continue
			}
			logger.Debugw("found Board struct", "crate", info.Crate, "line", item.Line)
			info.FieldType = Path(info.Crate, boardStruct)
			info.Constructor = &Expr{Type: Path(info.Crate, boardStruct), Method: "new"}
			Resolve(info, item.Generics, logger)

		case rustsyntax.KindType:
			if item.Name == i2cBusAlias {
				logger.Debugw("found type alias", "crate", info.Crate, "alias", item.Name)
				info.AvailableTypes = append(info.AvailableTypes, item.Name)
			}
		}
	}
}

// Resolve decides a substitution for each type parameter of the Board struct,
// in declaration order. I2C is replaced by the crate's I2CBus alias when that
// alias is already available; every other parameter is recorded unresolved.
func Resolve(info *ParseInfo, generics []rustsyntax.GenericParam, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	for _, g := range generics {
		if g.Kind != rustsyntax.GenericType {
			continue
		}
		sub := Substitution{Param: g.Name}
		if g.Name == i2cParam && info.hasType(i2cBusAlias) {
			concrete := i2cBusAlias
			info.FieldType = &TypePath{
				Segments: []string{info.Crate, boardStruct},
				Args:     []*TypePath{Path(info.Crate, i2cBusAlias)},
			}
			sub.Concrete = &concrete
			logger.Debugw("substituted generic", "crate", info.Crate, "param", g.Name, "concrete", concrete)
		} else {
			logger.Debugw("generic left unresolved", "crate", info.Crate, "param", g.Name)
		}
		info.Substitutions = append(info.Substitutions, sub)
	}
}
