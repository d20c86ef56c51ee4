package model

import "time"

// BookingRequest is a student's request to be allocated to a specific room.
// RoomNumber and RoomCapacity are snapshots taken at submission for display;
// RoomID is authoritative.  StudentName is joined in on read.  ResolvedAt is
// set when the request leaves PENDING.
type BookingRequest struct {
	ID           uint64        `json:"id"`
	StudentID    uint64        `json:"studentId"`
	StudentName  string        `json:"studentName"`
	RoomID       uint64        `json:"roomId"`
	RoomNumber   string        `json:"roomNumber"`
	RoomCapacity Capacity      `json:"roomCapacity"`
	Status       BookingStatus `json:"status"`
	AdminRemarks *string       `json:"adminRemarks"`
	CreatedAt    time.Time     `json:"createdAt"`
	ResolvedAt   *time.Time    `json:"resolvedAt"`
}

// MaintenanceRequest is an issue report filed by a student.  RoomID may be
// nil when the student has no room yet or the room was deleted.  StudentName
// and RoomNumber are joined in on read and never stored.
type MaintenanceRequest struct {
	ID           uint64            `json:"id"`
	StudentID    uint64            `json:"studentId"`
	StudentName  string            `json:"studentName"`
	RoomID       *uint64           `json:"roomId"`
	RoomNumber   *string           `json:"roomNumber"`
	Description  string            `json:"description"`
	Status       MaintenanceStatus `json:"status"`
	AdminRemarks *string           `json:"adminRemarks"`
	CreatedAt    time.Time         `json:"createdAt"`
	ResolvedAt   *time.Time        `json:"resolvedAt"`
}

// RequestFilter narrows request listings.  Zero values mean "any".  Status
// holds the raw upper-case status value shared by both workflows.
type RequestFilter struct {
	StudentID *uint64
	RoomID    *uint64
	Status    string
}

// MatchBooking applies the filter to a booking request.
func (f RequestFilter) MatchBooking(b BookingRequest) bool {
	if f.StudentID != nil && b.StudentID != *f.StudentID {
		return false
	}
	if f.RoomID != nil && b.RoomID != *f.RoomID {
		return false
	}
	return f.Status == "" || string(b.Status) == f.Status
}

// MatchMaintenance applies the filter to a maintenance request.
func (f RequestFilter) MatchMaintenance(m MaintenanceRequest) bool {
	if f.StudentID != nil && m.StudentID != *f.StudentID {
		return false
	}
	if f.RoomID != nil && (m.RoomID == nil || *m.RoomID != *f.RoomID) {
		return false
	}
	return f.Status == "" || string(m.Status) == f.Status
}
