package system

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iron-coder/ironcoder/internal/board"
)

func newBoard(name string, main bool) *board.Board {
	return &board.Board{Manifest: board.Manifest{Name: name, Manufacturer: "Test", IsMainBoard: main}}
}

var i2c = board.Interface{Type: board.I2C, Direction: board.Bidirectional}

func TestAddBoardOrdering(t *testing.T) {
	var s System
	oled, err := s.AddBoard(newBoard("OLED", false))
	if err != nil {
		t.Fatalf("AddBoard: %v", err)
	}
	main, err := s.AddBoard(newBoard("Feather RP2040", true))
	if err != nil {
		t.Fatalf("AddBoard: %v", err)
	}
	if s.Boards[0].ID != main || s.Boards[1].ID != oled {
		t.Fatalf("main board must be first, got %v", s.Boards)
	}

	if _, err := s.AddBoard(newBoard("Uno", true)); !errors.Is(err, ErrMainBoardExists) {
		t.Fatalf("expected ErrMainBoardExists, got %v", err)
	}
	if _, err := s.AddBoard(newBoard("OLED", false)); !errors.Is(err, ErrDuplicateBoard) {
		t.Fatalf("expected ErrDuplicateBoard, got %v", err)
	}
	if len(s.Boards) != 2 {
		t.Fatalf("rejected boards must not be added, got %d", len(s.Boards))
	}
}

func TestRemoveBoardCascadesConnections(t *testing.T) {
	var s System
	main, _ := s.AddBoard(newBoard("Main", true))
	a, _ := s.AddBoard(newBoard("A", false))
	b, _ := s.AddBoard(newBoard("B", false))

	if _, err := s.Connect(main, a, i2c); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := s.Connect(main, b, i2c); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	removed, err := s.RemoveBoard(a)
	if err != nil {
		t.Fatalf("RemoveBoard: %v", err)
	}
	if len(removed) != 1 || removed[0].Secondary != a {
		t.Fatalf("expected the A connection to be removed, got %v", removed)
	}

	// B shifted from index 2 to 1; the remaining connection follows it
	if diff := cmp.Diff([]IndexPair{{Main: 0, Secondary: 1}}, s.IndexPairs()); diff != "" {
		t.Fatalf("index pairs mismatch (-want +got):\n%s", diff)
	}
	for _, p := range s.IndexPairs() {
		if p.Secondary >= len(s.Boards) || p.Secondary < 0 {
			t.Fatalf("dangling secondary index %d", p.Secondary)
		}
	}
	if d := s.DanglingConnections(); len(d) != 0 {
		t.Fatalf("expected no dangling connections, got %v", d)
	}

	if _, err := s.RemoveBoard(a); !errors.Is(err, ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard on second removal, got %v", err)
	}
}

func TestDanglingConnectionsDetected(t *testing.T) {
	var s System
	main, _ := s.AddBoard(newBoard("Main", true))
	ghost := NewBoardID()
	// simulate a hand-edited manifest
	s.Connections = append(s.Connections, Connection{Main: main, Secondary: ghost, Interface: i2c})

	d := s.DanglingConnections()
	if len(d) != 1 || d[0].Secondary != ghost {
		t.Fatalf("expected the ghost connection, got %v", d)
	}
	if diff := cmp.Diff([]IndexPair{{Main: 0, Secondary: -1}}, s.IndexPairs()); diff != "" {
		t.Fatalf("index pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectRejectsUnknownBoards(t *testing.T) {
	var s System
	main, _ := s.AddBoard(newBoard("Main", true))
	if _, err := s.Connect(main, NewBoardID(), i2c); !errors.Is(err, ErrUnknownBoard) {
		t.Fatalf("expected ErrUnknownBoard, got %v", err)
	}
	if len(s.Connections) != 0 {
		t.Fatalf("rejected connection must not be recorded")
	}
}

func TestSourcesFollowBoardOrder(t *testing.T) {
	var s System
	_, _ = s.AddBoard(newBoard("Second", false))
	_, _ = s.AddBoard(newBoard("First", true))
	_, _ = s.AddBoard(newBoard("Third", false))

	var names []string
	for _, src := range s.Sources() {
		names = append(names, src.Name())
	}
	if diff := cmp.Diff([]string{"First", "Second", "Third"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
