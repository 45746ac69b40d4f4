// Package main implements the tzsniff CLI, which generates the timezone
// decision tree and answers lookups against a generated tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	// Lookups by zone name work even where the host has no tz database.
	_ "time/tzdata"
)

const version = "tzsniff v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [generate] [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s lookup [flags] [zone...]\n", os.Args[0])
}

func main() {
	args := os.Args[1:]
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, args)
	case "lookup":
		err = runLookup(args)
	case "version":
		fmt.Println(version)
	case "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

// logFlags are shared by every subcommand.
type logFlags struct {
	level   string
	verbose bool
}

func (l *logFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&l.verbose, "verbose", "v", false, "Enable verbose logging")
	fs.StringVar(&l.level, "log-level", "", "Log level: debug, info, warn or error (default error)")
}

func (l *logFlags) logger() (*slog.Logger, error) {
	level := slog.LevelError
	if l.verbose {
		level = slog.LevelDebug
	}
	if l.level != "" {
		if err := level.UnmarshalText([]byte(l.level)); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}
