package project

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/iron-coder/ironcoder/internal/board"
	"github.com/iron-coder/ironcoder/internal/system"
)

// ManifestFile is the project file at the root of a project directory
const ManifestFile = ".ironcoder.toml"

// manifest is the on-disk form of a project. Boards carry their full
// manifest so a project still opens when the catalog has changed.
type manifest struct {
	Name        string               `toml:"name" json:"name"`
	Boards      []manifestBoard      `toml:"boards,omitempty" json:"boards,omitempty"`
	Connections []manifestConnection `toml:"connections,omitempty" json:"connections,omitempty"`
}

type manifestBoard struct {
	ID       string         `toml:"id" json:"id"`
	Manifest board.Manifest `toml:"manifest" json:"manifest"`
}

type manifestConnection struct {
	Main      string          `toml:"main" json:"main"`
	Secondary string          `toml:"secondary" json:"secondary"`
	Interface board.Interface `toml:"interface" json:"interface"`
}

func toManifest(name string, sys *system.System) manifest {
	m := manifest{Name: name}
	if sys == nil {
		return m
	}
	for _, b := range sys.Boards {
		m.Boards = append(m.Boards, manifestBoard{ID: b.ID.String(), Manifest: b.Manifest})
	}
	for _, c := range sys.Connections {
		m.Connections = append(m.Connections, manifestConnection{
			Main:      c.Main.String(),
			Secondary: c.Secondary.String(),
			Interface: c.Interface,
		})
	}
	return m
}

func encodeManifest(m manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeManifest(data []byte) (manifest, error) {
	var m manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return manifest{}, err
	}
	return m, nil
}

// system rebuilds the board list and connections. Boards found in the
// catalog are replaced by a fresh copy of the catalog entry so local assets
// are picked up; unknown boards keep the saved manifest and nothing else.
func (m manifest) system(catalog *board.Catalog, unknown func(name string)) (*system.System, error) {
	sys := &system.System{}
	for _, mb := range m.Boards {
		id, err := system.ParseBoardID(mb.ID)
		if err != nil {
			return nil, fmt.Errorf("board %q: %w", mb.Manifest.Name, err)
		}
		var b *board.Board
		if catalog != nil {
			if known, ok := catalog.Find(mb.Manifest.Name); ok {
				b = known.Clone()
			}
		}
		if b == nil {
			if unknown != nil {
				unknown(mb.Manifest.Name)
			}
			b = &board.Board{Manifest: mb.Manifest}
		}
		sys.Boards = append(sys.Boards, system.Board{ID: id, Board: b})
	}
	for i, mc := range m.Connections {
		main, err := system.ParseBoardID(mc.Main)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		secondary, err := system.ParseBoardID(mc.Secondary)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		sys.Connections = append(sys.Connections, system.Connection{
			Main:      main,
			Secondary: secondary,
			Interface: mc.Interface,
		})
	}
	return sys, nil
}
