package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/interport-cargo/interport/cmd/interport/cli"
	"github.com/interport-cargo/interport/internal/app"
)

// runJobsCommand handles `interport jobs <trigger NAME|stats|retry>`.
func runJobsCommand(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	size := fs.Int("size", 10, "number of retry tasks to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: interport jobs [-size N] trigger NAME | stats | retry")
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return 1
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr, cfg.IdempotencyRetention)
	if err != nil {
		slog.Default().Error("jobs cli", slog.Any("error", err))
		return 1
	}
	defer jobsCLI.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out any
	switch rest[0] {
	case "trigger":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "usage: interport jobs trigger NAME")
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, rest[1])
		if err != nil {
			slog.Default().Error("trigger job", slog.String("job", rest[1]), slog.Any("error", err))
			return 1
		}
		out = map[string]string{"id": info.ID, "type": info.Type, "queue": info.Queue}
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			slog.Default().Error("inspect queue", slog.Any("error", err))
			return 1
		}
		out = stats
	case "retry":
		tasks, err := jobsCLI.ListRetry(ctx, *size)
		if err != nil {
			slog.Default().Error("list retry tasks", slog.Any("error", err))
			return 1
		}
		type retryTask struct {
			ID      string `json:"id"`
			Type    string `json:"type"`
			Retried int    `json:"retried"`
			LastErr string `json:"last_error"`
		}
		list := make([]retryTask, 0, len(tasks))
		for _, t := range tasks {
			list = append(list, retryTask{ID: t.ID, Type: t.Type, Retried: t.Retried, LastErr: t.LastErr})
		}
		out = list
	default:
		fmt.Fprintf(os.Stderr, "unknown jobs command %q\n", rest[0])
		return 2
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return 1
	}
	return 0
}
