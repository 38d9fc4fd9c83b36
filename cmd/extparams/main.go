// Command extparams validates extension instance parameter values against
// parameter documents, lists active parameters, lints documents and exports
// their OpenAPI schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-extparams/pkg/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := run(ctx, newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, a *app, args []string) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	switch {
	case errors.As(err, &exit):
		return exit.code
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(a.stderr, "aborted")
		return 130
	default:
		fmt.Fprintf(a.stderr, "extparams: %v\n", err)
		return 2
	}
}
