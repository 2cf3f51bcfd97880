package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/todobackend/ws-contract-tests/framework"
	"github.com/todobackend/ws-contract-tests/todotests"
)

type commandParams struct {
	envProfile   string
	filters      framework.RegexFilters
	debug        bool
	debugAll     bool
	eventTimeout time.Duration
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.envProfile, "env", "", "environment profile name (reads .env.<name>)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.DurationVar(&c.eventTimeout, "timeout", todotests.DefaultEventTimeout,
		"how long to wait for an expected push event")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommandHint builds a command line that reruns exactly the failed
// tests, so it can be copy-pasted from the output of a failed run.
func rerunCommandHint(params commandParams, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(os.Args[0])
	if params.envProfile != "" {
		b.add("-env", params.envProfile)
	}
	if params.eventTimeout != todotests.DefaultEventTimeout {
		b.add("-timeout", params.eventTimeout.String())
	}
	for _, f := range failures {
		b.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}
