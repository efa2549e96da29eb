// Package store holds a form model as a map addressed by dotted paths
// ("author.email", "tags.0") and publishes every mutation to subscribers.
// It replaces framework reactivity with an explicit publish/subscribe
// channel: writers call Set or Reset, dependents read from Subscribe.
//
// Values are deep copied on the way in and on the way out so callers never
// share mutable containers with the store.
package store
