package services

// Core event names pushed to boundary subscribers after mutating
// operations. Consumers poll the query API or subscribe at the edge; the
// core only emits.
const (
	EventNewMessage        = "new_message"
	EventMessageDeleted    = "message_deleted"
	EventFilterReevaluated = "filter_reevaluated"
	EventBackupCompleted   = "backup_completed"
	EventRestoreCompleted  = "restore_completed"
	EventDailySummary      = "daily_summary"
)

// EventPublisher pushes core events to whatever notification surface is
// wired in (the WebSocket hub in this deployment). Implementations must
// not block.
type EventPublisher interface {
	Publish(event string, payload interface{})
}
