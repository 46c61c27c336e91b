package facts

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// Empty reports whether the snapshots were identical
func (d Delta) Empty() bool {
	return d.Added.Len() == 0 && d.Removed.Len() == 0
}

// Len is the total number of rows
func (t Tables) Len() int {
	return len(t.Boards) + len(t.Connections) + len(t.Pinouts)
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Boards = diffRows(from.Boards, to.Boards)
	out.Connections = diffRows(from.Connections, to.Connections)
	out.Pinouts = diffRows(from.Pinouts, to.Pinouts)

	return out
}

// diffRows returns rows of to that are not in from, counting duplicates
func diffRows[T comparable](from, to []T) []T {
	seen := make(map[T]int, len(from))
	for _, row := range from {
		seen[row]++
	}
	out := []T{}
	for _, row := range to {
		if seen[row] > 0 {
			seen[row]--
			continue
		}
		out = append(out, row)
	}
	return out
}
