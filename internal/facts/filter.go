package facts

// FilterTablesByBoards returns a new Tables object containing only rows that
// mention one of the given board ids. A connection is kept when either end
// matches.
func FilterTablesByBoards(tables Tables, ids map[string]bool) Tables {
	if len(ids) == 0 {
		return emptyTables()
	}
	out := emptyTables()

	for _, row := range tables.Boards {
		if ids[row.ID] {
			out.Boards = append(out.Boards, row)
		}
	}
	for _, row := range tables.Connections {
		if ids[row.MainID] || ids[row.SecondaryID] {
			out.Connections = append(out.Connections, row)
		}
	}
	for _, row := range tables.Pinouts {
		if ids[row.BoardID] {
			out.Pinouts = append(out.Pinouts, row)
		}
	}

	return out
}

// FilterDeltaByBoards returns a new Delta containing only rows for the specified boards.
func FilterDeltaByBoards(delta Delta, ids map[string]bool) Delta {
	if len(ids) == 0 {
		return Delta{
			Added:   emptyTables(),
			Removed: emptyTables(),
		}
	}
	return Delta{
		Added:   FilterTablesByBoards(delta.Added, ids),
		Removed: FilterTablesByBoards(delta.Removed, ids),
	}
}
