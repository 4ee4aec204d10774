package rules

/*
Next reports whether a cell is alive in the next generation.

  - fewer than 2 or more than 3 live neighbors: dead
  - dead with exactly 3 live neighbors: born
  - otherwise the cell keeps its state
*/
func Next(alive bool, neighbors int) bool {
	switch {
	case neighbors < 2 || neighbors > 3:
		return false
	case !alive && neighbors == 3:
		return true
	default:
		return alive
	}
}
