// Package notifier delivers chat notifications asynchronously.
//
// Callers enqueue a transport.Notification and return immediately. A small
// worker pool drains the queue through the transport adapter under a shared
// token-bucket rate limit, retrying failed sends with jittered exponential
// backoff.
//
// # Dedup
//
// Identical notifications (same channel, target and text, or the same
// explicit DedupKey) are suppressed for DedupWindow. With PersistDedup the
// suppression survives restarts through the storage layer, so the daily due
// message is not sent twice when the daemon restarts on the same day.
package notifier
