// Package system models the boards selected for a project and the
// connections between them.
package system

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iron-coder/ironcoder/internal/board"
	"github.com/iron-coder/ironcoder/internal/bsp"
)

var (
	ErrDuplicateBoard  = errors.New("system already contains that board")
	ErrMainBoardExists = errors.New("system already contains a main board")
	ErrUnknownBoard    = errors.New("board is not in the system")
)

// BoardID is a stable handle for a board in a System. It survives removal of
// other boards, unlike a list index.
type BoardID = uuid.UUID

// NewBoardID returns a fresh random id
func NewBoardID() BoardID {
	return uuid.New()
}

// ParseBoardID parses the canonical string form of an id
func ParseBoardID(s string) (BoardID, error) {
	return uuid.Parse(s)
}

// Board is one entry of the board list
type Board struct {
	ID BoardID
	*board.Board
}

// Connection joins two boards over an interface
type Connection struct {
	Main      BoardID
	Secondary BoardID
	Interface board.Interface
}

// IndexPair is a Connection expressed as board-list indices. An index is -1
// when the id is not in the list.
type IndexPair struct {
	Main      int
	Secondary int
}

// System is the ordered board list plus connections. The main board, if any,
// is always at index 0.
type System struct {
	Boards      []Board
	Connections []Connection
}

// MainBoard returns the main board, if present
func (s *System) MainBoard() (Board, bool) {
	if len(s.Boards) > 0 && s.Boards[0].IsMainBoard() {
		return s.Boards[0], true
	}
	return Board{}, false
}

// HasMainBoard reports whether a main board is present
func (s *System) HasMainBoard() bool {
	_, ok := s.MainBoard()
	return ok
}

// Contains reports whether a board with the same name is present
func (s *System) Contains(b *board.Board) bool {
	for _, sb := range s.Boards {
		if sb.Equal(b) {
			return true
		}
	}
	return false
}

// AddBoard appends b, or puts it first if it is a main board, and returns its
// new id. A second main board or a second board with the same name is
// rejected.
func (s *System) AddBoard(b *board.Board) (BoardID, error) {
	if b.IsMainBoard() && s.HasMainBoard() {
		return BoardID{}, fmt.Errorf("%w: %s", ErrMainBoardExists, b.Name())
	}
	if s.Contains(b) {
		return BoardID{}, fmt.Errorf("%w: %s", ErrDuplicateBoard, b.Name())
	}

	entry := Board{ID: NewBoardID(), Board: b}
	if b.IsMainBoard() {
		s.Boards = append([]Board{entry}, s.Boards...)
	} else {
		s.Boards = append(s.Boards, entry)
	}
	return entry.ID, nil
}

// RemoveBoard removes the board and every connection that references it.
// The removed connections are returned.
func (s *System) RemoveBoard(id BoardID) ([]Connection, error) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, id)
	}
	s.Boards = append(s.Boards[:idx], s.Boards[idx+1:]...)

	var removed []Connection
	kept := s.Connections[:0]
	for _, c := range s.Connections {
		if c.Main == id || c.Secondary == id {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	s.Connections = kept
	return removed, nil
}

// Connect records a connection between two boards already in the system
func (s *System) Connect(main, secondary BoardID, iface board.Interface) (Connection, error) {
	if s.IndexOf(main) < 0 {
		return Connection{}, fmt.Errorf("%w: main %s", ErrUnknownBoard, main)
	}
	if s.IndexOf(secondary) < 0 {
		return Connection{}, fmt.Errorf("%w: secondary %s", ErrUnknownBoard, secondary)
	}
	c := Connection{Main: main, Secondary: secondary, Interface: iface}
	s.Connections = append(s.Connections, c)
	return c, nil
}

// IndexOf returns the list index of id, or -1
func (s *System) IndexOf(id BoardID) int {
	for i, b := range s.Boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Lookup returns the board with the given id
func (s *System) Lookup(id BoardID) (Board, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.Boards[i], true
	}
	return Board{}, false
}

// FindByName returns the board with the given name
func (s *System) FindByName(name string) (Board, bool) {
	for _, b := range s.Boards {
		if b.Name() == name {
			return b, true
		}
	}
	return Board{}, false
}

// IndexPairs reports every connection as board-list indices
func (s *System) IndexPairs() []IndexPair {
	pairs := make([]IndexPair, 0, len(s.Connections))
	for _, c := range s.Connections {
		pairs = append(pairs, IndexPair{Main: s.IndexOf(c.Main), Secondary: s.IndexOf(c.Secondary)})
	}
	return pairs
}

// DanglingConnections returns connections whose ids are not in the board
// list. RemoveBoard never leaves any; a hand-edited manifest can.
func (s *System) DanglingConnections() []Connection {
	var out []Connection
	for _, c := range s.Connections {
		if s.IndexOf(c.Main) < 0 || s.IndexOf(c.Secondary) < 0 {
			out = append(out, c)
		}
	}
	return out
}

// Sources returns the board list in order, for code generation
func (s *System) Sources() []bsp.Source {
	out := make([]bsp.Source, 0, len(s.Boards))
	for _, b := range s.Boards {
		out = append(out, b.Board)
	}
	return out
}
