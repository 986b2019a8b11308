package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pmitros/edxml-tools/internal/cli"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(edxml.ExitPanic)
		}
	}()

	if os.Getenv("EDXML_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(edxml.ExitCodeForError(err))
	}
}
