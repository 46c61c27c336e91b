package facts

import (
	"testing"

	"github.com/iron-coder/ironcoder/internal/board"
	"github.com/iron-coder/ironcoder/internal/system"
	"github.com/iron-coder/ironcoder/internal/validator"
)

func TestBuildTablesPopulatesRelations(t *testing.T) {
	var sys system.System
	mainID, err := sys.AddBoard(&board.Board{
		Manifest: board.Manifest{
			Name:         "Feather RP2040",
			Manufacturer: "Adafruit",
			IsMainBoard:  true,
			Standard:     board.Feather,
			BSP:          "feather_rp2040",
			Pinout: board.Pinout{
				{Interface: board.Interface{Type: board.I2C, Direction: board.Bidirectional}, Pins: []int{2, 3}},
				{Interface: board.Interface{Type: board.GPIO}, Pins: []int{13}},
			},
		},
		BSPDir: "/boards/Adafruit/Feather_RP2040/bsp",
	})
	if err != nil {
		t.Fatalf("AddBoard: %v", err)
	}
	oledID, err := sys.AddBoard(&board.Board{Manifest: board.Manifest{Name: "OLED", Manufacturer: "SparkFun"}})
	if err != nil {
		t.Fatalf("AddBoard: %v", err)
	}
	if _, err := sys.Connect(mainID, oledID, board.Interface{Type: board.I2C}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	tables := BuildTables(&sys)

	if len(tables.Boards) != 2 || !tables.Boards[0].IsMainBoard || !tables.Boards[0].HasLocalBSP {
		t.Fatalf("unexpected board rows %+v", tables.Boards)
	}
	if tables.Boards[1].Index != 1 || tables.Boards[1].Standard != "" {
		t.Fatalf("unexpected second board row %+v", tables.Boards[1])
	}
	if len(tables.Connections) != 1 {
		t.Fatalf("expected 1 connection row, got %d", len(tables.Connections))
	}
	c := tables.Connections[0]
	if c.MainIndex != 0 || c.SecondaryIndex != 1 || c.InterfaceType != "I2C" {
		t.Fatalf("unexpected connection row %+v", c)
	}
	if len(tables.Pinouts) != 2 || tables.Pinouts[0].InterfaceType != "GPIO" || tables.Pinouts[1].PinCount != 2 {
		t.Fatalf("unexpected pinout rows %+v", tables.Pinouts)
	}

	v, err := validator.New()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if err := v.ValidateFacts(tables); err != nil {
		t.Fatalf("tables should satisfy the facts contract: %v", err)
	}
}

func TestBuildTablesNilSystem(t *testing.T) {
	tables := BuildTables(nil)
	if tables.Boards == nil || tables.Connections == nil || tables.Pinouts == nil {
		t.Fatalf("tables must never contain nil relations")
	}
}
