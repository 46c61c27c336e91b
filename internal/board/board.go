// Package board holds the board model and loads the board catalog from disk.
package board

import (
	"fmt"
	"strings"

	"github.com/iron-coder/ironcoder/internal/bsp"
)

// Standard is a development board form factor
type Standard string

const (
	Feather     Standard = "Feather"
	Arduino     Standard = "Arduino"
	RaspberryPi Standard = "RaspberryPi"
	ThingPlus   Standard = "ThingPlus"
	MicroMod    Standard = "MicroMod"
)

// Standards lists the closed set of form factors
var Standards = []Standard{Feather, Arduino, RaspberryPi, ThingPlus, MicroMod}

// Valid reports whether s is empty or one of Standards
func (s Standard) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range Standards {
		if s == known {
			return true
		}
	}
	return false
}

// Manifest is the per-board TOML file
type Manifest struct {
	Name           string   `toml:"name" json:"name"`
	Manufacturer   string   `toml:"manufacturer" json:"manufacturer"`
	IsMainBoard    bool     `toml:"is_main_board" json:"is_main_board,omitempty"`
	Standard       Standard `toml:"standard,omitempty" json:"standard,omitempty"`
	CPU            string   `toml:"cpu,omitempty" json:"cpu,omitempty"`
	RAM            int      `toml:"ram,omitempty" json:"ram,omitempty"`
	Flash          int      `toml:"flash,omitempty" json:"flash,omitempty"`
	BSP            string   `toml:"bsp,omitempty" json:"bsp,omitempty"`
	RequiredCrates []string `toml:"required_crates,omitempty" json:"required_crates,omitempty"`
	RelatedCrates  []string `toml:"related_crates,omitempty" json:"related_crates,omitempty"`
	Pinout         Pinout   `toml:"pinout,omitempty" json:"pinout,omitempty"`
}

// Board is a catalog entry: the manifest plus what was found next to it.
// Two boards are the same board when their names match.
type Board struct {
	Manifest Manifest

	ManifestPath string
	// ImagePath is a sibling <stem>.svg or <stem>.png, if any
	ImagePath   string
	Examples    []string
	TemplateDir string
	// BSPDir is the vendored BSP crate (bsp/ next to the manifest), if any
	BSPDir string

	// ParseInfo is attached by the last code generation pass
	ParseInfo *bsp.ParseInfo
}

func (b *Board) Name() string {
	return b.Manifest.Name
}

// Key is the identity of the board
func (b *Board) Key() string {
	return b.Manifest.Name
}

func (b *Board) BSPCrate() string {
	return b.Manifest.BSP
}

func (b *Board) BSPPath() string {
	return b.BSPDir
}

func (b *Board) IsMainBoard() bool {
	return b.Manifest.IsMainBoard
}

// Equal compares by name only
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Manifest.Name == other.Manifest.Name
}

// Clone returns a copy that shares no slices with b. The attached parse
// result is not copied.
func (b *Board) Clone() *Board {
	c := *b
	c.Manifest.RequiredCrates = append([]string(nil), b.Manifest.RequiredCrates...)
	c.Manifest.RelatedCrates = append([]string(nil), b.Manifest.RelatedCrates...)
	c.Manifest.Pinout = append(Pinout(nil), b.Manifest.Pinout...)
	c.Examples = append([]string(nil), b.Examples...)
	c.ParseInfo = nil
	return &c
}

func (b *Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Board %s\n", b.Manifest.Name)
	fmt.Fprintf(&sb, "  manufacturer: %s\n", b.Manifest.Manufacturer)
	fmt.Fprintf(&sb, "  is main board? %t\n", b.Manifest.IsMainBoard)
	if b.Manifest.Standard != "" {
		fmt.Fprintf(&sb, "  standard: %s\n", b.Manifest.Standard)
	}
	fmt.Fprintf(&sb, "  num examples: %d\n", len(b.Examples))
	fmt.Fprintf(&sb, "  num required crates: %d\n", len(b.Manifest.RequiredCrates))
	fmt.Fprintf(&sb, "  num related crates: %d\n", len(b.Manifest.RelatedCrates))
	fmt.Fprintf(&sb, "  has image: %t\n", b.ImagePath != "")
	fmt.Fprintf(&sb, "  has template: %t\n", b.TemplateDir != "")
	fmt.Fprintf(&sb, "  bsp crate name: %q\n", b.Manifest.BSP)
	fmt.Fprintf(&sb, "  has local bsp: %t\n", b.BSPDir != "")
	fmt.Fprintf(&sb, "  has parse info: %t\n", b.ParseInfo != nil)
	return sb.String()
}
