// Command clausewamrun loads a compiled program from disk and runs it
// to its first solution (or failure), printing diagnostics to stderr
// and the program's own write/1 output to stdout.
//
//	$ clausewamrun -format json program.json
//	$ clausewamrun -format msgpack -trace program.msgpack
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/clausewam/wam/engine"
	"github.com/clausewam/wam/loader"
	"github.com/clausewam/wam/wam"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("clausewamrun", flag.ContinueOnError)
	format := fs.String("format", "json", "program encoding: json or msgpack")
	trace := fs.Bool("trace", false, "log call/exit/fail/redo/cut events to stderr")
	occursCheck := fs.Bool("occurs-check", false, "enable occurs-check unification")
	maxSteps := fs.Int("max-steps", 0, "abort after this many instructions (0: unbounded)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: clausewamrun [flags] <program-file>")
		return 2
	}

	f, err := loader.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	file, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer file.Close()

	level := hclog.Warn
	if *trace {
		level = hclog.Trace
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "clausewamrun",
		Level:  level,
		Output: os.Stderr,
	})

	opts := []wam.Option{wam.WithLogger(logger), wam.WithMaxSteps(*maxSteps)}
	if *occursCheck {
		opts = append(opts, wam.WithOccursCheck())
	}

	m, err := loader.Load(file, f, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m.SetOutput(os.Stdout)

	if err := m.Run(context.Background()); err != nil {
		if _, ok := err.(*engine.NoChoicePointError); ok {
			fmt.Fprintln(os.Stderr, "no solutions")
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
