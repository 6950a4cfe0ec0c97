// Command martory is a terminal client for the multi-tenant inventory backend: it logs in,
// lists the stores the account can reach and switches the active one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/martory/go-tenant-session/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := config.NewClient()
	opts := appOptions{
		APIURL:    c.GetAPIURL(),
		Host:      c.GetHost(),
		StateFile: c.GetStateFile(),
		Timeout:   c.GetHTTPTimeout(),
		LogLevel:  c.GetLogLevel(),
	}
	os.Exit(execute(ctx, opts, os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, opts appOptions, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	a, err := newApp(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "martory: %v\n", err)
		return 1
	}
	defer a.close()

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		fmt.Fprintf(stderr, "martory %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: martory <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}
