// Command rsync-sub001 is the client CLI: it parses argv, dispatches
// through internal/orchestrator, and maps the result to an exit code.
//
// Grounded on cmd/gokr-rsync/rsync.go's minimal main-calls-ClientMain shape
// (teacher), generalized from a single ClientMain call into orchestrator.Run
// plus the exit-code/error-trailer mapping internal/maincmd.Main's caller
// (outside the retrieved excerpt) would have done.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oferchen/rsync-sub001/internal/clierr"
	"github.com/oferchen/rsync-sub001/internal/orchestrator"
	"github.com/oferchen/rsync-sub001/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	ctx := context.Background()
	res, err := orchestrator.Run(ctx, argv, orchestrator.Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	})
	if err != nil {
		return reportError(err)
	}
	return res.ExitCode
}

// reportError prints the client-role diagnostic and returns the exit code
// spec.md §6/§7 assigns to its error kind: 0 success, 1 syntax/usage/
// client/configuration error, 23 partial-transfer/daemon-error surface,
// 30+ reserved for protocol/timeout mapping.
func reportError(err error) int {
	code := 1
	if ce, ok := err.(*clierr.Error); ok {
		for _, line := range ce.Contexts {
			fmt.Fprintln(os.Stderr, line)
		}
		fmt.Fprintf(os.Stderr, "rsync error: %v (code %d)\n", ce, ce.ExitCode())
		fmt.Fprintln(os.Stderr, version.Trailer())
		return ce.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "rsync error: %v (code %d)\n", err, code)
	fmt.Fprintln(os.Stderr, version.Trailer())
	return code
}
