package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/cli"
)

func main() {
	if needsStore(os.Args[1:]) {
		a, err := app.New(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "invoicer: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// needsStore reports whether the command line will touch invoices. Opening
// the store unlocks the database key, which prompts for a new password on
// first run, so help output must not trigger it.
func needsStore(args []string) bool {
	for _, a := range args {
		switch a {
		case "-h", "--help", "help", "completion":
			return false
		}
	}
	return true
}
