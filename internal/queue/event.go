// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ContentEvent is published after a content record is created, updated or
// deleted.  It carries enough information for downstream consumers to log or
// invalidate caches without querying the primary database.
type ContentEvent struct {
	Action     string `json:"action"` // created | updated | deleted
	Type       string `json:"type"`   // resource type name (attraction, paket, ...)
	ItemID     uint64 `json:"item_id"`
	Name       string `json:"name"`
	ActorID    uint64 `json:"actor_id"`
	ImageCount int    `json:"image_count"`
	OccurredAt string `json:"occurred_at"`
}
