package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/nautilus-navigator/internal/logging"
	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nautilus.db")
	last := flag.Int("last", 20, "show N most recent sessions")
	sessionID := flag.String("session", "", "show single session detail")
	turns := flag.Bool("turns", false, "include the turn log in session detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/nautilus.db [--last N] [--session id] [--turns] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID != "" {
		err = runDetailMode(store, *sessionID, *turns, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		store.Close()
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID      string `json:"session_id"`
	Problem        string `json:"problem"`
	Phase          string `json:"phase"`
	Steps          int    `json:"steps"`
	NIterations    int    `json:"n_iterations"`
	IterationsLeft int    `json:"iterations_left"`
	UpdatedAt      string `json:"updated_at"`
}

func runListMode(store *state.Store, last int, jsonOut bool) error {
	sessions, err := store.ListSessions(last)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		rows[i] = listRow{
			SessionID:      s.SessionID,
			Problem:        s.Problem,
			Phase:          s.Phase,
			Steps:          s.Steps,
			NIterations:    s.NIterations,
			IterationsLeft: s.IterationsLeft,
			UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	return printListTable(rows)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-12s  %-10s  %-30s  %5s  %9s  %s\n",
		"Session", "Problem", "Phase", "Steps", "Left/Iter", "Updated")
	fmt.Printf("%-12s+-%-10s+-%-30s+-%5s+-%9s+-%s\n",
		"------------", "----------", "------------------------------", "-----", "---------", "--------------------")

	for _, r := range rows {
		fmt.Printf("%-12s  %-10s  %-30s  %5d  %4d/%-4d  %s\n",
			shortID(r.SessionID), r.Problem, r.Phase, r.Steps, r.IterationsLeft, r.NIterations, r.UpdatedAt)
	}
	if len(rows) == 0 {
		fmt.Println("(no sessions)")
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	SessionID       string    `json:"session_id"`
	Problem         string    `json:"problem"`
	Phase           string    `json:"phase"`
	ObjectiveNames  []string  `json:"objective_names"`
	Ideal           []float64 `json:"ideal"`
	Nadir           []float64 `json:"nadir"`
	NIterations     int       `json:"n_iterations"`
	IterationsLeft  int       `json:"iterations_left"`
	Solution        []float64 `json:"solution,omitempty"`
	ObjectiveVector []float64 `json:"objective_vector,omitempty"`
	Steps           []stepRow `json:"steps"`
	Turns           []turnRow `json:"turns,omitempty"`
}

type stepRow struct {
	Step     int       `json:"step"`
	Intent   string    `json:"intent"`
	Distance float64   `json:"distance"`
	Z        []float64 `json:"z"`
	Lower    []float64 `json:"lower_bounds"`
	Upper    []float64 `json:"upper_bounds"`
	Left     int       `json:"iterations_left"`
}

type turnRow struct {
	ID       int64  `json:"id"`
	Phase    string    `json:"phase"`
	Intent   string `json:"intent,omitempty"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
	Response string `json:"response,omitempty"`
}

func runDetailMode(store *state.Store, sessionID string, withTurns, jsonOut bool) error {
	sess, err := store.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	steps, err := store.ListSteps(sessionID)
	if err != nil {
		return fmt.Errorf("list steps: %w", err)
	}

	out := detailOutput{
		SessionID:       sess.SessionID,
		Problem:         sess.Problem,
		Phase:           sess.Phase,
		ObjectiveNames:  sess.ObjectiveNames,
		Ideal:           sess.Ideal,
		Nadir:           sess.Nadir,
		NIterations:     sess.NIterations,
		IterationsLeft:  sess.IterationsLeft,
		Solution:        sess.Solution,
		ObjectiveVector: sess.ObjectiveVector,
		Steps:           make([]stepRow, len(steps)),
	}
	for i, s := range steps {
		out.Steps[i] = stepRow{
			Step: s.Step, Intent: s.Intent, Distance: s.Distance,
			Z: s.Z, Lower: s.Lower, Upper: s.Upper, Left: s.IterationsLeft,
		}
	}

	if withTurns {
		entries, err := logging.ListTurns(store.DB(), sessionID)
		if err != nil {
			return fmt.Errorf("list turns: %w", err)
		}
		for _, e := range entries {
			out.Turns = append(out.Turns, turnRow{
				ID: e.ID, Phase: e.Phase, Intent: e.Intent,
				Outcome: e.Outcome, Reason: e.Reason, Response: e.ResponseJSON,
			})
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	names := out.ObjectiveNames
	fmt.Printf("Session:    %s\n", out.SessionID)
	fmt.Printf("Problem:    %s\n", out.Problem)
	fmt.Printf("Phase:      %s\n", out.Phase)
	fmt.Printf("Iterations: %d left of %d\n", out.IterationsLeft, out.NIterations)
	fmt.Printf("Ideal:      %s\n", nautilus.FormatVector(names, out.Ideal))
	fmt.Printf("Nadir:      %s\n", nautilus.FormatVector(names, out.Nadir))
	if out.Solution != nil {
		fmt.Printf("Solution:   %s\n", formatPlain(out.Solution))
		fmt.Printf("Objectives: %s\n", nautilus.FormatVector(names, out.ObjectiveVector))
	}

	fmt.Printf("\nSteps:\n")
	for _, s := range out.Steps {
		fmt.Printf("  %3d  %-14s  %8.4f  z=%s\n", s.Step, s.Intent, s.Distance, nautilus.FormatVector(names, s.Z))
		fmt.Printf("       lower=%s\n", nautilus.FormatVector(names, s.Lower))
	}

	if withTurns {
		fmt.Printf("\nTurns:\n")
		for _, t := range out.Turns {
			fmt.Printf("  %4d  %-28s  %-14s  %-19s  %s\n", t.ID, t.Phase, t.Intent, t.Outcome, t.Reason)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func formatPlain(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
