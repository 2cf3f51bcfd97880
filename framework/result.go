package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// TestID identifies a test or subtest as the path of names leading to it.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

// Results accumulates the outcomes of a whole test run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skips    []TestResult
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// PrintSummary writes a human-readable summary of the test run, with failed
// test IDs listed so they can be fed back into the -run filter.
func (r Results) PrintSummary(dest io.Writer) {
	executed := len(r.Tests) - len(r.Skips)
	if r.OK() {
		color.New(color.FgGreen).Fprintf(dest, "All tests passed")
		fmt.Fprintf(dest, " (%d tests", executed)
		if len(r.Skips) > 0 {
			fmt.Fprintf(dest, ", %d skipped", len(r.Skips))
		}
		fmt.Fprintln(dest, ")")
		return
	}
	color.New(color.FgRed).Fprintf(dest, "FAILED: %d tests of %d\n", len(r.Failures), executed)
	for _, f := range r.Failures {
		fmt.Fprintf(dest, "  %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(dest, "    %s\n", line)
			}
		}
	}
}
