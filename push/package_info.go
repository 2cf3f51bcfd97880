// Package push implements the WebSocket side of the todo service contract:
// the push-notification channel, the decoding of raw messages into typed
// events, and the coordinator that lets tests wait for the event matching an
// action they have just performed.
//
// The general model is:
//
// 1. One Channel is opened per test run and shared by every test. A read
// loop delivers each raw message to a handler; the handler decodes it and
// hands the event to the Coordinator.
//
// 2. A test registers a Subscription (a predicate over events) with the
// Coordinator before issuing the REST action that will trigger the event,
// then blocks on the subscription with a timeout. Registering first closes
// the race where the notification arrives before the test is listening.
//
// 3. The Coordinator broadcasts every event to all active subscriptions; a
// subscription is completed and removed by the first event its predicate
// accepts. No ordering is guaranteed across subscriptions, so predicates
// must be scoped tightly enough (entity id or unique text, plus event kind)
// that unrelated concurrent activity cannot satisfy them.
package push
