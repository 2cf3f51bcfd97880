package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gorilla/websocket"

	"github.com/todobackend/ws-contract-tests/client"
	"github.com/todobackend/ws-contract-tests/config"
	"github.com/todobackend/ws-contract-tests/framework"
	"github.com/todobackend/ws-contract-tests/push"
	"github.com/todobackend/ws-contract-tests/todotests"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	profile := params.envProfile
	if profile == "" {
		profile = os.Getenv("TODO_TESTS_ENV")
	}
	cfg, err := config.Load(profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	restClient := client.New(cfg, mainDebugLogger)
	coordinator := push.NewCoordinator(mainDebugLogger)

	channelLogger := framework.PrefixedLogger(mainDebugLogger, "push: ")
	channel, err := push.Dial(cfg.WebSocketURL, func(raw []byte) {
		ev, decodeErr := push.Decode(raw)
		if decodeErr != nil {
			channelLogger.Printf("Discarding message: %s", decodeErr)
			return
		}
		coordinator.Dispatch(ev)
	}, channelLogger, push.Listeners{
		OnFailure: func(err error) {
			// No reconnection: release pending waits promptly so the
			// affected tests fail with a cancellation instead of hanging.
			fmt.Fprintf(os.Stderr, "Push channel failed: %s\n", err)
			coordinator.CancelAll()
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Push channel error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running todo service contract tests against %s (push channel %s)\n",
		cfg.RestBaseURL, cfg.WebSocketURL)
	printFilterDescription(params.filters)
	fmt.Println()

	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := todotests.RunTestSuite(restClient, coordinator, params.filters.AsFilter, testLogger,
		params.eventTimeout)

	coordinator.CancelAll()
	channel.Close(websocket.CloseNormalClosure, "test run finished")

	fmt.Println()
	results.PrintSummary(os.Stdout)
	if !results.OK() {
		fmt.Printf("\nTo rerun only the failed tests:\n  %s\n", rerunCommandHint(params, results.Failures))
		os.Exit(1)
	}
}

func printFilterDescription(filters framework.RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
	}
}
