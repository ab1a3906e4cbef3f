// Package cli provides terminal I/O, board rendering, and meta-command
// dispatch for hotseat Tacticore matches.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/engine/events"
	"github.com/nathoo/tacticore/engine/save"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// CLI handles terminal interaction with the players.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".tacticore", "saves"),
	}
}

// Run starts the match loop: render board, prompt the current player,
// dispatch, repeat until the match ends or input runs out.
func (c *CLI) Run() {
	c.printBoard()

	scanner := bufio.NewScanner(c.In)
	for {
		if c.Engine.State.Phase == types.PhaseEnded {
			c.printOutcome()
			return
		}

		c.print(fmt.Sprintf("p%d> ", c.Engine.State.Current))
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	current := c.Engine.State.Current

	switch cmd {
	case "board", "b":
		c.printBoard()

	case "units", "u":
		c.printUnits()

	case "moves", "m":
		if len(parts) < 2 {
			c.printSystem("Usage: moves <unit-id>")
			return
		}
		id, ok := c.arg(parts[1])
		if !ok {
			return
		}
		targets := c.Engine.LegalMoves(id)
		if targets == nil {
			c.printSystem(fmt.Sprintf("No such unit: %d", id))
			return
		}
		c.printLine(fmt.Sprintf("Unit %d can move to: %s", id, joinInts(targets)))

	case "move":
		if len(parts) < 3 {
			c.printSystem("Usage: move <unit-id> <node-id>")
			return
		}
		id, ok1 := c.arg(parts[1])
		node, ok2 := c.arg(parts[2])
		if !ok1 || !ok2 {
			return
		}
		c.printResult(c.Engine.RequestMove(id, node, current))

	case "attack", "a":
		if len(parts) < 3 {
			c.printSystem("Usage: attack <unit-id> <target-unit-id>")
			return
		}
		att, ok1 := c.arg(parts[1])
		tgt, ok2 := c.arg(parts[2])
		if !ok1 || !ok2 {
			return
		}
		c.printResult(c.Engine.RequestAttack(att, tgt, current))

	case "end", "e":
		c.printResult(c.Engine.RequestEndTurn(current))

	case "resign":
		c.printResult(c.Engine.RequestResign(current))

	case "help", "h":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}
}

func (c *CLI) arg(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		c.printSystem(fmt.Sprintf("Not a number: %s", s))
		return 0, false
	}
	return v, true
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine.State, c.Defs.Game.Version)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Match saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	save.Apply(c.Engine.State, sd)
	c.Engine.RebindBoard()
	c.printSystem(fmt.Sprintf("Match loaded from %s (turn %d).", name, sd.Turn))
	c.printBoard()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  — Save match (default: quicksave)",
		"  /load [name]  — Load match (default: quicksave)",
		"  /quit         — Exit",
		"  /help         — Show this help",
		"  /state        — Debug: dump current state",
		"  /trace        — Toggle debug trace output",
		"",
		"Match commands:",
		"  board (b)             — Render the board",
		"  units (u)             — List the current player's units",
		"  moves <unit> (m)      — Show a unit's legal destinations",
		"  move <unit> <node>    — Move a unit",
		"  attack <unit> <unit>  — Attack an enemy unit (a)",
		"  end (e)               — End your turn",
		"  resign                — Forfeit the match",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Match: %s", s.MatchID))
	c.printSystem(fmt.Sprintf("Turn: %d, current player: %d", s.Turn, s.Current))
	c.printSystem(fmt.Sprintf("Units alive: %d", len(aliveUnits(s))))
	c.printSystem(fmt.Sprintf("Actions recorded: %d", len(s.History)))
}

// printBoard renders the grid, top row first. Units show their glyph
// (uppercase for even seats, lowercase for odd); tiles show their
// effect.
func (c *CLI) printBoard() {
	s := c.Engine.State

	var header strings.Builder
	header.WriteString("    ")
	for x := 0; x < s.Board.Width; x++ {
		header.WriteString(fmt.Sprintf("%2d ", x))
	}
	c.printLine(header.String())

	for y := s.Board.Height - 1; y >= 0; y-- {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%2d  ", y))
		for x := 0; x < s.Board.Width; x++ {
			id := y*s.Board.Width + x
			row.WriteString(" " + c.cellGlyph(id) + " ")
		}
		c.printLine(row.String())
	}
	c.printLine(fmt.Sprintf("Turn %d — player %d to act.", s.Turn, s.Current))
}

func (c *CLI) cellGlyph(node int) string {
	if u := state.UnitAt(c.Engine.State, node); u != nil {
		g := "?"
		if def, ok := c.Defs.UnitDefFor(u); ok {
			if def.Glyph != "" {
				g = def.Glyph
			} else if def.Name != "" {
				g = def.Name[:1]
			}
		}
		if u.Owner%2 == 0 {
			return strings.ToUpper(g)
		}
		return strings.ToLower(g)
	}
	n := c.Engine.Board.Node(node)
	if n == nil {
		return " "
	}
	switch n.Type {
	case types.NodeImpassable, types.NodeDestroyed:
		return "#"
	case types.NodeTrap:
		return "^"
	case types.NodeBoost:
		return "*"
	case types.NodeTeleport:
		return "@"
	case types.NodeUnstable:
		return "~"
	default:
		return "."
	}
}

func (c *CLI) printUnits() {
	s := c.Engine.State
	for _, u := range state.UnitsOf(s, s.Current) {
		name := u.DefID
		if def, ok := c.Defs.UnitDefFor(u); ok && def.Name != "" {
			name = def.Name
		}
		flags := ""
		if u.Moved {
			flags += " moved"
		}
		if u.Acted {
			flags += " acted"
		}
		c.printLine(fmt.Sprintf("  #%d %s — node %d, hp %d/%d, lvl %d%s",
			u.ID, name, u.Node, u.Health, u.Stats.MaxHealth, u.Level, flags))
	}
}

func (c *CLI) printOutcome() {
	s := c.Engine.State
	switch {
	case s.Winner < 0:
		c.printLine("The match ends in a draw.")
	default:
		c.printLine(fmt.Sprintf("Player %d wins (%s).", s.Winner, reasonText(s.Reason)))
	}
}

func reasonText(r types.EndReason) string {
	switch r {
	case types.EndKingCaptured:
		return "king captured"
	case types.EndCheckmate:
		return "checkmate"
	case types.EndStalemate:
		return "stalemate"
	case types.EndResignation:
		return "resignation"
	default:
		return "unknown"
	}
}

func (c *CLI) printResult(res types.CommandResult) {
	if !res.Accepted {
		c.printSystem(res.Reason)
		return
	}
	for _, ev := range res.Events {
		c.printLine(events.Describe(ev))
	}
	if c.Trace {
		c.printSystem(fmt.Sprintf("[trace] events: %d, phase: %d", len(res.Events), res.Phase))
	}
}

func aliveUnits(s *types.MatchState) []*types.UnitState {
	var out []*types.UnitState
	for _, u := range s.Units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
