// Package queue carries hostel domain events over RabbitMQ: Publisher sends
// them from the API process and StartEventConsumer appends them to an audit
// log from a separate worker.
package queue

import "time"

// DefaultQueue is the durable queue events are routed to when no name is
// configured.
const DefaultQueue = "hostel.events"

// Event types.
const (
	RoomAllocated        = "room.allocated"
	RoomDeallocated      = "room.deallocated"
	BookingSubmitted     = "booking.submitted"
	BookingDecided       = "booking.decided"
	BookingCancelled     = "booking.cancelled"
	MaintenanceSubmitted = "maintenance.submitted"
	MaintenanceUpdated   = "maintenance.updated"
)

// Event is published after a state change has been committed.  It carries
// enough identifiers for downstream consumers to log or notify without
// querying the primary database.  Zero-valued ids are omitted.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	ActorUserID uint64    `json:"actor_user_id"`
	ActorRole   string    `json:"actor_role"`
	RoomID      uint64    `json:"room_id,omitempty"`
	StudentIDs  []uint64  `json:"student_ids,omitempty"`
	RequestID   uint64    `json:"request_id,omitempty"`
	Status      string    `json:"status,omitempty"`
}
