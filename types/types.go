// Package types defines the shared data structures for the Tacticore engine.
// This package contains only type definitions — no logic, no methods.
package types

// NodeType classifies a board node.
type NodeType int

const (
	NodeNormal NodeType = iota
	NodeImpassable
	NodeDestroyed
	NodeBoost
	NodeTrap
	NodeTeleport
	NodeUnstable
)

// EdgeType classifies a board edge.
type EdgeType int

const (
	EdgeNormal EdgeType = iota
	EdgeOneWay // traversable from From to To only
	EdgeBlocked
	EdgeHazardous
)

// NodeDef is the immutable template of a board node.
type NodeDef struct {
	ID           int
	X, Y         int
	Type         NodeType
	TeleportTo   int // -1 = none
	Destructible bool
}

// EdgeDef is the immutable template of a board edge.
type EdgeDef struct {
	From, To int
	Type     EdgeType
}

// SpawnZone lists the nodes a player may place units on at match start.
// Back and Front are optional subsets of Nodes used by army rows.
type SpawnZone struct {
	Player int
	Nodes  []int
	Back   []int
	Front  []int
}

// PlacementMode selects how armies reach the board.
type PlacementMode int

const (
	PlacementAutomatic PlacementMode = iota
	PlacementManual // reserved
)

// BoardDef is the immutable board template. A fresh BoardState is
// materialized from it for every match.
type BoardDef struct {
	ID            string
	Name          string
	Width, Height int
	Nodes         []NodeDef
	Edges         []EdgeDef
	SpawnZones    []SpawnZone
	Placement     PlacementMode
	TrapDamage    int // 0 = engine default
	BoostAttack   int
	BoostTurns    int
}

// NodeState is the mutable runtime state of a node.
type NodeState struct {
	ID         int
	Type       NodeType
	Active     bool
	TeleportTo int
	CollapseIn int // unstable countdown; 0 = not scheduled
}

// EdgeState is the mutable runtime state of an edge.
type EdgeState struct {
	From, To int
	Type     EdgeType
	Active   bool
}

// BoardState is the mutable runtime board.
type BoardState struct {
	DefID         string
	Width, Height int
	Nodes         []NodeState
	Edges         []EdgeState
}

// PatternKind tags a movement pattern variant.
type PatternKind int

const (
	PatternOrthogonal PatternKind = iota
	PatternDiagonal
	PatternKnight
	PatternAdjacent
	PatternForward
	PatternDiagonalCapture
)

// Pattern is a declarative movement rule. A unit's legal-target set is
// the union over its definition's patterns.
type Pattern struct {
	Kind          PatternKind
	MaxDistance   int // -1 = unbounded
	Jump          bool
	CaptureOnly   bool
	MoveOnly      bool
	FirstMoveOnly bool
}

// Stats is the stat block shared by definitions and runtime units.
type Stats struct {
	MaxHealth int
	Attack    int
	Defense   int
	Range     int
}

// UnitDef is the immutable unit template.
type UnitDef struct {
	ID         string
	Name       string
	Glyph      string // single-rune board display
	Base       Stats
	Growth     Stats // added per level above 1
	Patterns   []Pattern
	King       bool
	Castle     bool
	EnPassant  bool
	PromotesTo string // unit definition id, "" = never
	Cost       int
}

// Stat identifies a single stat for modifiers.
type Stat int

const (
	StatMaxHealth Stat = iota
	StatAttack
	StatDefense
	StatRange
)

// ModifierOp defines how a modifier combines with a stat.
type ModifierOp int

const (
	ModAdd      ModifierOp = iota
	ModMultiply            // percent, 100 = identity
	ModSet
	ModOverride
)

// ModifierDuration defines when a modifier expires.
type ModifierDuration int

const (
	DurationPermanent ModifierDuration = iota
	DurationTurns
	DurationEndOfTurn
	DurationUntilDamaged
)

// Modifier is a timed or permanent stat adjustment on a unit.
type Modifier struct {
	Stat      Stat
	Op        ModifierOp
	Value     int
	Duration  ModifierDuration
	TurnsLeft int
	Source    string
	Seq       int // application order, assigned by the unit model
}

// UnitState is the mutable, match-owned state of a unit.
type UnitState struct {
	ID        int
	DefID     string
	Owner     int
	Node      int
	Level     int
	XP        int
	Health    int
	Stats     Stats // calculated
	Modifiers []Modifier
	Items     []string
	Moved     bool // this turn
	Acted     bool // attacked this turn
	EverMoved bool
	Alive     bool
}

// RowClass selects which spawn-zone row an army slot maps to.
type RowClass int

const (
	RowBack RowClass = iota
	RowFront
)

// ArmySlot places one unit of an army relative to a spawn row.
type ArmySlot struct {
	Unit   string
	Offset int
	Row    RowClass
}

// ArmyDef is an immutable army composition.
type ArmyDef struct {
	ID    string
	Name  string
	Slots []ArmySlot
}

// Phase is the match lifecycle phase.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlacement // reserved, unused by automatic placement
	PhasePlaying
	PhaseEnded
)

// EndReason records why a match ended.
type EndReason int

const (
	EndNone EndReason = iota
	EndKingCaptured
	EndCheckmate
	EndStalemate
	EndResignation
)

// PlayerState is per-player match state.
type PlayerState struct {
	Index    int
	Army     string
	Resigned bool
}

// ActionKind tags a history record.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionAttack
	ActionEndTurn
	ActionResign
)

// Action is an immutable record of one executed command.
type Action struct {
	Kind     ActionKind
	Turn     int
	Player   int
	Unit     int
	From     int
	To       int
	Target   int // unit id for attacks, -1 otherwise
	Captured int // unit id, -1 = none
}

// MatchState is the complete mutable state of one match. It is the sole
// owner of match truth; exactly one writer mutates it at a time.
type MatchState struct {
	MatchID    string
	Phase      Phase
	Turn       int
	Current    int
	Board      BoardState
	Units      []*UnitState
	Players    []PlayerState
	Winner     int // player index, -1 = none
	Reason     EndReason
	History    []Action
	NextUnitID int
}

// GameDef holds content metadata and the default match setup.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Board   string   // board definition id
	Armies  []string // army definition id per player seat
}

// Event is emitted for host consumption after state mutation.
type Event struct {
	Type string
	Data map[string]any
}

// CommandResult is the outcome of a single host command.
type CommandResult struct {
	Accepted     bool
	Reason       string
	CapturedUnit int // unit id, -1 = none
	Phase        Phase
	Winner       int // player index, -1 = none
	Events       []Event
}
