// Package framework contains the domain-agnostic test harness infrastructure.
//
// The general model is:
//
// 1. The harness drives an external service under test over the network. The
// service is a black box; we only observe its HTTP responses and push
// notifications.
//
// 2. There is a general notion of a test context which is similar to Go's
// *testing.T, allowing pieces of test logic to be associated with a test
// identifier, to accumulate success/failure results, and to register cleanup
// functions.
//
// 3. Test selection is done with regex filters on the test identifiers, and
// results are reported through a pluggable TestLogger.
//
// The domain-specific code that knows what is being tested (the REST client,
// the push-notification channel, and the test API built on top of the test
// context) lives in the other packages.
package framework
