package facts

import (
	"sort"

	"github.com/iron-coder/ironcoder/internal/system"
)

// Tables is the relational fact model for the policy engine.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Boards      []BoardRow      `json:"boards"`
	Connections []ConnectionRow `json:"connections"`
	Pinouts     []PinoutRow     `json:"pinouts"`
}

type BoardRow struct {
	ID           string `json:"id"`
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	IsMainBoard  bool   `json:"is_main_board"`
	Standard     string `json:"standard"`
	BSP          string `json:"bsp"`
	HasLocalBSP  bool   `json:"has_local_bsp"`
}

type ConnectionRow struct {
	Index          int    `json:"index"`
	MainID         string `json:"main_id"`
	SecondaryID    string `json:"secondary_id"`
	MainIndex      int    `json:"main_index"`
	SecondaryIndex int    `json:"secondary_index"`
	InterfaceType  string `json:"interface_type"`
	Direction      string `json:"direction"`
}

type PinoutRow struct {
	BoardID       string `json:"board_id"`
	InterfaceType string `json:"interface_type"`
	Direction     string `json:"direction"`
	PinCount      int    `json:"pin_count"`
}

// BuildTables flattens a System into fact rows. Board rows keep list order;
// connection rows keep insertion order; pinout rows are sorted.
func BuildTables(sys *system.System) Tables {
	out := emptyTables()
	if sys == nil {
		return out
	}

	for i, b := range sys.Boards {
		out.Boards = append(out.Boards, BoardRow{
			ID:           b.ID.String(),
			Index:        i,
			Name:         b.Name(),
			Manufacturer: b.Manifest.Manufacturer,
			IsMainBoard:  b.IsMainBoard(),
			Standard:     string(b.Manifest.Standard),
			BSP:          b.Manifest.BSP,
			HasLocalBSP:  b.BSPDir != "",
		})
		for _, m := range b.Manifest.Pinout {
			out.Pinouts = append(out.Pinouts, PinoutRow{
				BoardID:       b.ID.String(),
				InterfaceType: string(m.Interface.Type),
				Direction:     string(m.Interface.Direction),
				PinCount:      len(m.Pins),
			})
		}
	}

	for i, c := range sys.Connections {
		out.Connections = append(out.Connections, ConnectionRow{
			Index:          i,
			MainID:         c.Main.String(),
			SecondaryID:    c.Secondary.String(),
			MainIndex:      sys.IndexOf(c.Main),
			SecondaryIndex: sys.IndexOf(c.Secondary),
			InterfaceType:  string(c.Interface.Type),
			Direction:      string(c.Interface.Direction),
		})
	}

	sort.SliceStable(out.Pinouts, func(i, j int) bool {
		a, b := out.Pinouts[i], out.Pinouts[j]
		if a.BoardID != b.BoardID {
			return a.BoardID < b.BoardID
		}
		if a.InterfaceType != b.InterfaceType {
			return a.InterfaceType < b.InterfaceType
		}
		return a.Direction < b.Direction
	})

	return out
}

func emptyTables() Tables {
	return Tables{
		Boards:      []BoardRow{},
		Connections: []ConnectionRow{},
		Pinouts:     []PinoutRow{},
	}
}
