// Package todotests contains the todo service contract tests themselves and
// their supporting API.
//
// Harness infrastructure that is not specific to the todo domain, such as the
// test runner and the push-channel coordinator, is in the lower-level
// framework and push packages.
package todotests
