// Tacticore is a deterministic, data-driven rules engine for turn-based
// tactical board games.
// Usage: tacticore [--version] [--plain] [--script <file>] [--trace] <content_directory>
package main

import (
	"fmt"
	"os"

	"github.com/nathoo/tacticore/cli"
	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/loader"
	"github.com/nathoo/tacticore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var contentDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("tacticore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	if contentDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: tacticore [--version] [--plain] [--script <file>] [--trace] <content_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua game content.
	defs, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading content: %v\n", err)
		os.Exit(1)
	}

	// One seat per army listed by the game definition.
	var setups []engine.PlayerSetup
	for _, armyID := range defs.Game.Armies {
		setups = append(setups, engine.PlayerSetup{Army: armyID})
	}

	eng, err := engine.Initialize(defs, defs.Game.Board, setups)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting match: %v\n", err)
		os.Exit(1)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s v%s by %s\n\n", defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(eng, defs)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
