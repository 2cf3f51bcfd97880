package todotests

import (
	"time"

	"github.com/todobackend/ws-contract-tests/client"
	"github.com/todobackend/ws-contract-tests/framework"
	"github.com/todobackend/ws-contract-tests/push"
)

// RunTestSuite runs every contract test against the configured service. The
// REST client and the push coordinator are shared by all tests; the
// coordinator must already be receiving decoded events from the channel.
// eventTimeout bounds each wait for an expected push event; a non-positive
// value means DefaultEventTimeout.
func RunTestSuite(
	restClient *client.Client,
	coordinator *push.Coordinator,
	filter framework.Filter,
	testLogger framework.TestLogger,
	eventTimeout time.Duration,
) framework.Results {
	if eventTimeout <= 0 {
		eventTimeout = DefaultEventTimeout
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{
			context: c,
			env: &environment{
				client:       restClient,
				coordinator:  coordinator,
				eventTimeout: eventTimeout,
			},
		}

		t.Run("crud", DoCRUDTests)
		t.Run("validation", DoValidationTests)
		t.Run("auth", DoAuthTests)
		t.Run("pagination", DoPaginationTests)
		t.Run("notifications", DoNotificationTests)
	})
}
