package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/nautilus-navigator/internal/config"
	"github.com/danielpatrickdp/nautilus-navigator/internal/nautilus"
	"github.com/danielpatrickdp/nautilus-navigator/internal/problem"
	"github.com/danielpatrickdp/nautilus-navigator/internal/session"
	"github.com/danielpatrickdp/nautilus-navigator/internal/solver"
	"github.com/danielpatrickdp/nautilus-navigator/internal/state"
)

// #region main
func main() {
	cfgPath := flag.String("config", os.Getenv("NAUTILUS_CONFIG"), "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	prob, err := problem.Lookup(cfg.Problem)
	if err != nil {
		log.Fatalf("problem: %v", err)
	}

	nav, err := nautilus.NewNavigator(prob, solver.WithRetry(solver.NewNelderMead(cfg.Solver), cfg.Solver.Retries), prob.Ideal, prob.Nadir, nautilus.Options{
		SessionID:      uuid.New().String(),
		ObjectiveNames: prob.ObjectiveNames,
		UtopianEpsilon: cfg.UtopianEpsilon,
		Rho:            cfg.Rho,
		Workers:        cfg.Workers,
		SolveTimeout:   cfg.SolveTimeout,
		Gate:           cfg.Gate,
		Logger:         logger,
	})
	if err != nil {
		log.Fatalf("navigator: %v", err)
	}

	drvCfg := session.Config{Problem: cfg.Problem, Logger: logger}
	if cfg.DBPath != "" {
		store, err := state.NewStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()
		drvCfg, err = session.Persistent(cfg.Problem, store, logger)
		if err != nil {
			log.Fatalf("preference store: %v", err)
		}
	}

	driver, err := session.NewDriver(nav, drvCfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("NAUTILUS navigator ready.")
	fmt.Printf("  Session: %s | Problem: %s | DB: %s\n", driver.ID(), cfg.Problem, orNone(cfg.DBPath))
	printRequest(nav.Start())
	fmt.Println("Enter one JSON response per line (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		req, err := driver.Turn(ctx, []byte(line))
		if err != nil {
			fmt.Printf("[%s] %v\n", nautilus.KindOf(err), err)
			if !nautilus.IsRecoverable(err) {
				break
			}
			continue
		}
		printRequest(req)
		if req.Kind() == nautilus.KindStop {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("read stdin: %v", err)
	}
}

// #endregion main

// #region output
func printRequest(req nautilus.Request) {
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		log.Printf("marshal %s request: %v", req.Kind(), err)
		return
	}
	fmt.Printf("--- %s ---\n%s\n", req.Kind(), data)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// #endregion output
