package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/danielpatrickdp/nautilus-navigator/internal/logging"
	"github.com/danielpatrickdp/nautilus-navigator/internal/replay"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nautilus.db (DB mode)")
	sessionID := flag.String("session", "", "session to replay in DB mode")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	verbose := flag.Bool("v", false, "log navigator activity to stderr")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") || (*dbPath != "" && *sessionID == "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/nautilus.db --session id")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	out := io.Discard
	if *verbose {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, logger)
	} else {
		exitCode = runDBMode(*dbPath, *sessionID, logger)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-extract

func runDBMode(dbPath, sessionID string, logger *slog.Logger) int {
	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	sess, err := store.GetSession(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get session: %v\n", err)
		return 2
	}
	turns, err := logging.ListTurns(store.DB(), sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list turns: %v\n", err)
		return 2
	}
	if len(turns) == 0 {
		fmt.Fprintf(os.Stderr, "no turns logged for session %s\n", sessionID)
		return 2
	}

	f, err := replay.FromJournal(sess, turns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild session: %v\n", err)
		return 2
	}
	return run(f, logger)
}

// #endregion db-extract

// #region output

func runFixtureMode(path string, logger *slog.Logger) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	return run(f, logger)
}

func run(f *replay.Fixture, logger *slog.Logger) int {
	nav, err := f.Navigator(nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build navigator: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Println(f.Description)
	}

	results := replay.Replay(context.Background(), nav, f.Responses)
	printResults(results)

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d turns, %d commits, %d validation, %d configuration, %d solver, %d other, %d stop, terminated=%v\n",
		s.TotalTurns, s.Commits, s.ValidationErrors, s.ConfigurationErrors, s.SolverFailures, s.OtherErrors, s.Stops, s.Terminated)

	diffs := replay.Check(results, f.ExpectedResults)
	for _, d := range diffs {
		fmt.Println("DIFF", d)
	}
	if len(diffs) > 0 {
		return 1
	}
	return 0
}

// printResults outputs one table row per replayed response.
func printResults(results []replay.Result) {
	fmt.Printf("%-6s| %-11s| %-15s| %-6s| %-6s| %s\n", "Turn", "Kind", "Error", "Step", "Left", "Distance")
	fmt.Printf("%-6s+%-12s+%-16s+%-7s+%-7s+%s\n",
		"------", "------------", "----------------", "-------", "-------", "----------")

	for _, r := range results {
		kind, errKind := string(r.Kind), string(r.ErrorKind)
		if kind == "" {
			kind = "-"
		}
		if errKind == "" {
			errKind = "-"
		}
		dist := "-"
		if r.Kind == "iteration" {
			dist = fmt.Sprintf("%.4f", r.Distance)
		}
		fmt.Printf("%-6d| %-11s| %-15s| %-6d| %-6d| %s\n", r.Turn, kind, errKind, r.Step, r.IterationsLeft, dist)
	}
}

// #endregion output
