package board

// Direction is one of the eight grid ray directions. North is +y.
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirNorthEast
	DirEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
)

var deltas = map[Direction][2]int{
	DirNorth:     {0, 1},
	DirNorthEast: {1, 1},
	DirEast:      {1, 0},
	DirSouthEast: {1, -1},
	DirSouth:     {0, -1},
	DirSouthWest: {-1, -1},
	DirWest:      {-1, 0},
	DirNorthWest: {-1, 1},
}

// Delta returns the per-step coordinate offset of a direction.
func (d Direction) Delta() (dx, dy int) {
	v := deltas[d]
	return v[0], v[1]
}

// Orthogonals returns the four axis-aligned directions.
func Orthogonals() []Direction {
	return []Direction{DirNorth, DirEast, DirSouth, DirWest}
}

// Diagonals returns the four diagonal directions.
func Diagonals() []Direction {
	return []Direction{DirNorthEast, DirSouthEast, DirSouthWest, DirNorthWest}
}
