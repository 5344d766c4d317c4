// Lifesim is a text-driven life simulation for language learners.
// Usage: lifesim [--version] [--plain] [--script <file>] [--profile <id>] <module_directory>
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mitchellgordon95/live-language/cli"
	"github.com/mitchellgordon95/live-language/collab"
	"github.com/mitchellgordon95/live-language/engine"
	"github.com/mitchellgordon95/live-language/engine/save"
	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/loader"
	"github.com/mitchellgordon95/live-language/store"
	"github.com/mitchellgordon95/live-language/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// config comes from the environment (and .env, if present).
type config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	DBPath       string `env:"LIFESIM_DB" envDefault:"lifesim.db"`
}

func main() {
	plain := false
	trace := false
	profile := "default"
	var moduleDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("lifesim %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--profile":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--profile requires an id\n")
				os.Exit(1)
			}
			i++
			profile = args[i]
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if moduleDir == "" {
				moduleDir = args[i]
			}
		}
	}

	if moduleDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: lifesim [--version] [--plain] [--script <file>] [--profile <id>] <module_directory>\n")
		os.Exit(1)
	}

	// .env is optional; the environment may already be set.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	defs, err := loader.Load(moduleDir)
	if err != nil {
		log.Fatalf("Error loading module: %v", err)
	}

	ctx := context.Background()

	gemini, err := collab.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Error connecting to Gemini: %v", err)
	}
	defer gemini.Close()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error opening snapshot store: %v", err)
	}
	defer st.Close()

	eng := engine.New(defs, gemini, gemini)

	// Resume the profile's session if one exists for this module.
	s := state.NewState(defs, profile, eng.Now())
	if data, err := st.Get(ctx, profile); err == nil {
		if loaded, err := save.Load(data); err == nil && loaded.Session.ModuleID == defs.ID {
			s = loaded
			log.Printf("Resuming session for profile %s at turn %d", profile, s.Turn)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("Error reading snapshot: %v", err)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			log.Fatalf("Error opening script: %v", err)
		}
		defer f.Close()
		fmt.Printf("%s v%s by %s\n\n", defs.Title, defs.Version, defs.Author)
		c := cli.New(eng, st, s)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s v%s by %s\n\n", defs.Title, defs.Version, defs.Author)
		c := cli.New(eng, st, s)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, st, s); err != nil {
		log.Fatalf("Error: %v", err)
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
