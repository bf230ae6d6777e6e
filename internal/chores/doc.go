// Package chores is the household chore service: rooms, people, chores and
// their completion history, plus the "what is due" snapshot the notifier and
// CLI read.
//
// Every mutation persists through storage (debounced for edits, immediate for
// completions and removals), publishes an event on the bus and rebuilds the
// snapshot.
package chores
