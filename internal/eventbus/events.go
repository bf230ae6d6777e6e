package eventbus

// Event types published by chorebot components.
const (
	ChoreAdded     = "chore.added"
	ChoreUpdated   = "chore.updated"
	ChoreRemoved   = "chore.removed"
	ChoreCompleted = "chore.completed"
	ChoreSkipped   = "chore.skipped"
	ChoreSnoozed   = "chore.snoozed"

	RoomAdded   = "room.added"
	RoomUpdated = "room.updated"
	RoomRemoved = "room.removed"

	UserAdded   = "user.added"
	UserUpdated = "user.updated"
	UserRemoved = "user.removed"

	RefreshDone = "chores.refreshed"

	NotifierQueued  = "notifier.queued"
	NotifierDeduped = "notifier.deduped"
	NotifierDropped = "notifier.dropped"
	NotifierSent    = "notifier.sent"
	NotifierFailed  = "notifier.failed"
)
