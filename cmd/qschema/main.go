package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/qschema/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// An ExitError has already been reported by its command. Anything else
	// is a usage error from cobra itself.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "qschema: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
