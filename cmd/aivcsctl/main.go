package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/marcus-qen/aivcs/internal/config"
	"github.com/marcus-qen/aivcs/internal/deploy"
	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/schedule"
	"github.com/marcus-qen/aivcs/internal/storage/memstore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	command, args, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowUsage) {
		printUsage()
		if len(os.Args) == 1 {
			os.Exit(1)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	switch command {
	case "digest":
		err = runDigest(args)
	case "deploy":
		err = runDeploy(args)
	case "schedule":
		err = runSchedule(args)
	case "version":
		fmt.Printf("aivcsctl %s (commit: %s, built: %s)\n", version, commit, date)
		return
	case "help", "--help", "-h":
		printUsage()
	default:
		err = fmt.Errorf("unknown command: %s", command)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errShowUsage = errors.New("show usage")

func parseArgs(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, errShowUsage
	}
	if args[0] == "--help" || args[0] == "-h" {
		return "", nil, errShowUsage
	}
	return args[0], args[1:], nil
}

func printUsage() {
	fmt.Print(`Usage: aivcsctl <command>

Commands:
  digest <file>             Print the canonical SHA-256 digest of a JSON file
  deploy <agent>            Run deploy_by_digest for <agent> against a fresh,
                            empty in-memory ledger/registry; --config is only
                            validated, so this reports no current release
  schedule <agent>          Run deploy_by_digest for <agent> on the cron
                            expression configured as deploySchedule; blocks
                            until interrupted
  version                   Print version information
`)
}

func runDigest(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: aivcsctl digest <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse %s as JSON: %w", args[0], err)
	}

	digest, err := domain.CanonicalDigest(v)
	if err != nil {
		return fmt.Errorf("compute digest: %w", err)
	}
	fmt.Println(digest.String())
	return nil
}

func runDeploy(args []string) error {
	var cfgPath, agent string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("--config requires a value")
			}
			cfgPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			agent = args[i]
		}
	}
	if agent == "" {
		return fmt.Errorf("usage: aivcsctl deploy [--config <path>] <agent>")
	}

	if _, err := config.Load(cfgPath); err != nil {
		return err
	}

	// The loaded config is not used to pick a backend: the registry and
	// ledger are always fresh in-memory stores with nothing promoted, so
	// ByDigest returns a "no current release" error.
	ctx := context.Background()
	registry := memstore.NewRegistry()
	ledger := memstore.NewLedger()

	if _, err := deploy.ByDigest(ctx, registry, ledger, agent, nil, time.Time{}); err != nil {
		return fmt.Errorf("deploy %s: %w", agent, err)
	}
	return nil
}

func runSchedule(args []string) error {
	var cfgPath, agent string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("--config requires a value")
			}
			cfgPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			agent = args[i]
		}
	}
	if agent == "" {
		return fmt.Errorf("usage: aivcsctl schedule [--config <path>] <agent>")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.DeploySchedule == "" {
		return fmt.Errorf("deploySchedule is not configured; nothing to schedule")
	}

	registry := memstore.NewRegistry()
	ledger := memstore.NewLedger()

	trigger := schedule.NewDeployTrigger(registry, ledger, agent, nil, func(result deploy.Result, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "scheduled deploy of %s failed: %v\n", agent, err)
			return
		}
		fmt.Printf("scheduled deploy of %s produced run %s (replay digest %s)\n", agent, result.RunID, result.Summary.ReplayDigest)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := trigger.Start(ctx, cfg.DeploySchedule); err != nil {
		return fmt.Errorf("start schedule: %w", err)
	}
	<-ctx.Done()
	trigger.Stop()
	return nil
}
